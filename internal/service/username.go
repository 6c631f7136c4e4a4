package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	usernameMaxLen = 20
	suffixBytes    = 4
)

// generateUsername derives a username from the email local part and appends a
// random hex suffix so concurrent registrations with similar emails do not
// collide. The result fits the 3-20 char username constraint.
func generateUsername(email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	base := sanitize(local)
	if base == "" {
		base = "user"
	}

	suffix := make([]byte, suffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	tail := "_" + hex.EncodeToString(suffix)

	if len(base)+len(tail) > usernameMaxLen {
		base = base[:usernameMaxLen-len(tail)]
	}

	return base + tail, nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
