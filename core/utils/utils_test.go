package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDisplayNameFor(t *testing.T) {
	cases := []struct {
		name, email, want string
	}{
		{"Ana", "ana@example.com", "Ana"},
		{"  ", "jorge.p@example.com", "jorge.p"},
		{"", "noat", "noat"},
	}
	for _, tc := range cases {
		if got := DisplayNameFor(tc.name, tc.email); got != tc.want {
			t.Fatalf("DisplayNameFor(%q,%q)=%q want %q", tc.name, tc.email, got, tc.want)
		}
	}
}

func TestRandStringLength(t *testing.T) {
	s, err := RandString(32)
	if err != nil {
		t.Fatalf("rand: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("expected 32 chars, got %d", len(s))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"dpanic":  zapcore.DPanicLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%s want %s", in, got, want)
		}
	}
}
