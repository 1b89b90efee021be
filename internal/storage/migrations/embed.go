// Package migrations holds the goose SQL migrations of the lead journal.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
