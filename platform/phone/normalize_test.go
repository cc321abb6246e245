package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in     string
		region string
		want   string
	}{
		{"06 12345678", "NL", "+31612345678"},
		{"+31 6 12345678", "", "+31612345678"},
		{"0031612345678", "NL", "+31612345678"},
		{"not a number", "NL", "not a number"},
		{"  ", "NL", ""},
	}
	for _, tc := range cases {
		if got := NormalizeE164(tc.in, tc.region); got != tc.want {
			t.Fatalf("NormalizeE164(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseE164RejectsInvalid(t *testing.T) {
	if _, err := ParseE164("123", "NL"); err == nil {
		t.Fatalf("expected short number to be rejected")
	}
}
