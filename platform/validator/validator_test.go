package validator

import "testing"

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{Count: -1})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	fields := FieldErrors(err)
	if fields["name"] != "required" || fields["count"] != "gte" {
		t.Fatalf("unexpected field errors: %v", fields)
	}
}
