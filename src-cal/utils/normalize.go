package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

// Case-fold a subject so that "Standup" and "STANDUP" share one identity in
// the uniqueness index and the selector lookup. Casers are stateful, so a
// fresh one is built per call.
func NormalizeSubject(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
