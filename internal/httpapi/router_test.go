package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unlockpro/internal/leads"
	"unlockpro/internal/metrics"
	"unlockpro/internal/session"
	"unlockpro/internal/unlock"
	"unlockpro/pkg/api"
)

type stubRelay struct {
	fields map[string]string
}

func (s *stubRelay) Submit(_ context.Context, fields map[string]string) (api.SubmitResponse, error) {
	s.fields = fields
	return api.SubmitResponse{Success: true, Message: "Email sent successfully!"}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	handler http.Handler
	manager *unlock.Manager
	clock   *session.ManualClock
	relay   *stubRelay
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	clock := session.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts := unlock.DefaultOptions()
	opts.Clock = clock
	manager := unlock.NewManager(opts, m, zap.NewNop())
	t.Cleanup(manager.Shutdown)

	relay := &stubRelay{}
	forms := leads.NewService(leads.Deps{Relay: relay, Observer: m}, zap.NewNop())

	return &testEnv{
		handler: NewRouter(Dependencies{
			Unlock:   manager,
			Forms:    forms,
			Health:   stubPinger{},
			Gatherer: reg,
			Logger:   zap.NewNop(),
		}),
		manager: manager,
		clock:   clock,
		relay:   relay,
	}
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestPrice(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/price?model=iphone-x&service=passcode", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	quote := decode[map[string]any](t, rr)
	assert.Equal(t, float64(15), quote["price"])
	assert.Equal(t, "iPhone X", quote["device_name"])

	rr = env.do(t, http.MethodGet, "/api/price?model=nokia&service=", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(50), decode[map[string]any](t, rr)["price"])
}

func TestPrices(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/prices", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode[priceListResponse](t, rr)
	assert.Len(t, body.Services, 4)
	assert.Equal(t, 100, body.Prices["icloud"]["iphone-14"])
	assert.Equal(t, 50, body.DefaultPrice)
}

func TestUnlockLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/unlock", "application/json",
		`{"model":"iphone-14","service":"icloud","imei":"352099001761481","email":"user@example.com"}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	snap := decode[unlock.Snapshot](t, rr)
	assert.Equal(t, unlock.StageSubmitted, snap.Stage)
	assert.Equal(t, "03:00", snap.Timer)

	rr = env.do(t, http.MethodPost, "/api/unlock/"+snap.ID+"/check", "", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	env.clock.Advance(2*time.Second, time.Second)
	require.Eventually(t, func() bool {
		s, err := env.manager.Get(snap.ID)
		return err == nil && s.Stage == unlock.StageAwaitingPayment
	}, 2*time.Second, 5*time.Millisecond)

	rr = env.do(t, http.MethodPost, "/api/unlock/"+snap.ID+"/check", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, unlock.StageChecking, decode[unlock.Snapshot](t, rr).Stage)

	env.clock.Advance(2*time.Second, time.Second)
	require.Eventually(t, func() bool {
		rr := env.do(t, http.MethodGet, "/api/unlock/"+snap.ID, "", "")
		return rr.Code == http.StatusOK && decode[unlock.Snapshot](t, rr).Stage == unlock.StagePending
	}, 2*time.Second, 5*time.Millisecond)

	rr = env.do(t, http.MethodGet, "/api/unlock/"+snap.ID, "", "")
	pending := decode[unlock.Snapshot](t, rr)
	require.NotNil(t, pending.Notice)
	assert.Equal(t, "Your Payment is Pending!", pending.Notice.Title)

	rr = env.do(t, http.MethodPost, "/api/unlock/"+snap.ID+"/restart", "", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/unlock/"+snap.ID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/unlock/"+snap.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "FLOW_NOT_FOUND", decode[APIError](t, rr).Code)
}

func TestUnlockValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/unlock", "application/json",
		`{"model":"","service":"icloud","imei":"123","email":"nope"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	body := decode[ValidationError](t, rr)
	assert.Equal(t, "Please enter a valid IMEI number (15-17 digits)", body.Errors["imei"])
	assert.Equal(t, "Please select your iPhone model", body.Errors["model"])
	assert.Equal(t, "Please enter a valid email address", body.Errors["email"])
	assert.Equal(t, 0, env.manager.Active())

	rr = env.do(t, http.MethodPost, "/api/unlock", "application/json", `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUnlockRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t)

	body := `{"model":"iphone-14","service":"icloud","email":"user@example.com","imei":"` +
		strings.Repeat("3", maxFormBytes) + `"}`
	rr := env.do(t, http.MethodPost, "/api/unlock", "application/json", body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, env.manager.Active())
}

func TestContactForm(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"message": {"Hello"},
	}
	rr := env.do(t, http.MethodPost, "/api/contact", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Email sent successfully!", decode[submissionResponse](t, rr).Message)
	assert.Equal(t, "Ann", env.relay.fields["name"])

	rr = env.do(t, http.MethodPost, "/api/contact", "application/json",
		`{"name":"Bo","email":"bo@example.com","subject":"","message":"Hi"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Please select a subject", decode[ValidationError](t, rr).Errors["subject"])
}

func TestIMEICheck(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/imei-check", "application/json",
		`{"imei":"356938035643809","email":"user@example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, leads.IMEICheckSuccess, decode[submissionResponse](t, rr).Message)

	rr = env.do(t, http.MethodPost, "/api/imei-check", "application/json", `{"imei":"","email":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Please enter your IMEI number", decode[ValidationError](t, rr).Errors["imei"])
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/reviews?filter=carrier", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[struct {
		Filter  string       `json:"filter"`
		Reviews []reviewView `json:"reviews"`
	}](t, rr)
	assert.Equal(t, "carrier", body.Filter)
	require.NotEmpty(t, body.Reviews)
	for _, r := range body.Reviews {
		assert.Equal(t, "carrier", r.Service)
	}

	rr = env.do(t, http.MethodGet, "/api/reviews/r1", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "★★★★★", decode[reviewView](t, rr).Stars)

	rr = env.do(t, http.MethodGet, "/api/reviews/zzz", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/reviews", "application/json", `{"order_id":"ORD-1","rating":4}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/reviews", "application/json", `{"order_id":"ORD-1","rating":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Please select a rating.", decode[ValidationError](t, rr).Errors["rating"])
}

func TestFAQ(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/faq?open=how-long&toggle=refund", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[faqResponse](t, rr)
	assert.Equal(t, "refund", body.Open)

	open := 0
	for _, item := range body.Items {
		if item.Open {
			open++
		}
	}
	assert.Equal(t, 1, open)

	rr = env.do(t, http.MethodGet, "/api/faq?open=refund&toggle=refund", "", "")
	assert.Empty(t, decode[faqResponse](t, rr).Open)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	env.do(t, http.MethodPost, "/api/imei-check", "application/json", `{"imei":"1","email":""}`)
	rr = env.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `unlockpro_forms_submissions_total{form="imei_check",result="invalid"} 1`)

	unhealthy := NewRouter(Dependencies{Health: stubPinger{err: errors.New("redis down")}, Logger: zap.NewNop()})
	rr = httptest.NewRecorder()
	unhealthy.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
