package validator

import "testing"

type sample struct {
	Status string `validate:"required,leadstatus"`
	Count  int    `validate:"min=1"`
}

func TestRegisterOneOf(t *testing.T) {
	v := New()
	if err := v.RegisterOneOf("leadstatus", "pending", "sold"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := v.Struct(sample{Status: "sold", Count: 1}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := v.Struct(sample{Status: "archived", Count: 1}); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	if err := v.Struct(sample{Status: "", Count: 1}); err == nil {
		t.Fatalf("expected required to still apply")
	}
}
