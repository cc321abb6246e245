package sanitize

import "testing"

func TestTextStripsMarkup(t *testing.T) {
	got := Text("<b>Bel terug</b> na &lt;script&gt;alert(1)&lt;/script&gt; 14:00\r\n\r\n\r\n\r\nok")
	want := "Bel terug na alert(1) 14:00\n\nok"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := Truncate("café au lait", 4); got != "café" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
}
