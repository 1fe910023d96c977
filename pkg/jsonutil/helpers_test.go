package jsonutil

import "testing"

func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON(`{"a":1}`)
	want := "{\n  \"a\": 1\n}"
	if got != want {
		t.Errorf("PrettyJSON = %q, want %q", got, want)
	}

	// Invalid JSON passes through untouched.
	if got := PrettyJSON("not json"); got != "not json" {
		t.Errorf("PrettyJSON(invalid) = %q", got)
	}
}

func TestCompactJSON(t *testing.T) {
	got := CompactJSON("{\n  \"a\": 1\n}")
	if got != `{"a":1}` {
		t.Errorf("CompactJSON = %q", got)
	}
	if got := CompactJSON("{"); got != "{" {
		t.Errorf("CompactJSON(invalid) = %q", got)
	}
}

func TestMustMarshal(t *testing.T) {
	if got := MustMarshal(map[string]int{"depth": 30}); got != `{"depth":30}` {
		t.Errorf("MustMarshal = %q", got)
	}
}
