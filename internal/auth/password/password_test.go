package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("expected hash to differ from the plain text")
	}
	if err := Compare(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := Compare(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}
