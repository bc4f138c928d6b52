package auth

import (
	"regexp"
	"sort"
	"strings"
	"testing"
)

var rePrintfPlaceholder = regexp.MustCompile(`%(\[[0-9]+\])?[-+# 0]*[0-9]*(\.[0-9]+)?[bcdefFgGosqTtUvVxX%]`)

func TestMessageKeyCoverage(t *testing.T) {
	es, en := messages["es"], messages["en"]
	missingInEN := diffKeys(es, en)
	missingInES := diffKeys(en, es)
	if len(missingInEN) > 0 || len(missingInES) > 0 {
		t.Fatalf("language key mismatch: missing in en=%v missing in es=%v", missingInEN, missingInES)
	}
	used := []string{
		MsgWelcome, MsgSignedOut, MsgSignOutFailed, MsgMissingFields, MsgLoaded,
		MsgLoadFailed, MsgInvalidEmail, MsgSessionExpired,
		string(InvalidCredentials), string(UserNotFound), string(AccountDisabled),
		string(RateLimited), string(Unknown),
	}
	for _, key := range used {
		if _, ok := es[key]; !ok {
			t.Fatalf("missing message %q (es)", key)
		}
	}
}

func TestMessageValuesNonEmptyAndPlaceholdersMatch(t *testing.T) {
	es, en := messages["es"], messages["en"]
	var mismatch []string
	for key, esVal := range es {
		enVal := en[key]
		if strings.TrimSpace(esVal) == "" || strings.TrimSpace(enVal) == "" {
			t.Fatalf("empty message for %q", key)
		}
		if strings.Join(rePrintfPlaceholder.FindAllString(esVal, -1), ",") != strings.Join(rePrintfPlaceholder.FindAllString(enVal, -1), ",") {
			mismatch = append(mismatch, key)
		}
	}
	if len(mismatch) > 0 {
		sort.Strings(mismatch)
		t.Fatalf("placeholder mismatch between es/en: %v", mismatch)
	}
}

func diffKeys(a, b map[string]string) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
