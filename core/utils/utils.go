package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"
)

func NowUTC() time.Time {
	return time.Now().UTC()
}

func RandString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayNameFor mirrors the dashboard header: display name, else the email local part.
func DisplayNameFor(displayName, email string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
