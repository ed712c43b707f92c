// Package auth holds the office access gate and the session tokens issued after it.
package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gate admits an office when the passphrase equals the upper-cased office name followed by Suffix.
//
// This is a placeholder control: anyone who knows an office name can derive its passphrase.
// It only scopes which records a session sees.
type Gate struct {
	Suffix string
}

// NewGate creates a gate with the given passphrase suffix.
func NewGate(suffix string) Gate {
	return Gate{Suffix: suffix}
}

// Expected returns the passphrase for office.
func (g Gate) Expected(office string) string {
	return cases.Upper(language.Und).String(office) + g.Suffix
}

// Authorize reports whether passphrase admits office. The comparison is case-sensitive.
func (g Gate) Authorize(office, passphrase string) bool {
	if strings.TrimSpace(office) == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.Expected(office)), []byte(passphrase)) == 1
}
