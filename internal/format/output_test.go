package format

import (
	"strings"
	"testing"
)

func TestWrite_JSONOnly(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, map[string]int{"n": 1}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := b.String(); got != "{\"n\":1}\n" {
		t.Fatalf("compact output = %q", got)
	}

	b.Reset()
	if err := Write(&b, map[string]int{"n": 1}, "json", true); err != nil {
		t.Fatalf("Write pretty: %v", err)
	}
	got := b.String()
	if !strings.Contains(got, "\n  \"n\": 1\n") || !strings.HasSuffix(got, "\n") {
		t.Fatalf("pretty output = %q", got)
	}

	if err := Write(&b, nil, "edn", false); err == nil {
		t.Fatalf("unknown format accepted")
	}
}
