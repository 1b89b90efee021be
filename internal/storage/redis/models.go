package redis

// UserState is the bot dialog of one chat.
type UserState struct {
	Step      string       `json:"step"`
	Unlock    *UnlockDraft `json:"unlock,omitempty"`
	IMEICheck *IMEIDraft   `json:"imei_check,omitempty"`
	Review    *ReviewDraft `json:"review,omitempty"`
	// FlowID is the unlock flow currently shown to the chat.
	FlowID string `json:"flow_id,omitempty"`
}

type UnlockDraft struct {
	Model   string `json:"model,omitempty"`
	Service string `json:"service,omitempty"`
	IMEI    string `json:"imei,omitempty"`
}

type IMEIDraft struct {
	IMEI string `json:"imei,omitempty"`
}

type ReviewDraft struct {
	OrderID string `json:"order_id,omitempty"`
	Rating  int    `json:"rating,omitempty"`
}
