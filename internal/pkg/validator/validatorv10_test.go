package validator

import (
	"errors"
	"testing"
)

type codeForm struct {
	Identity string `validate:"required,email"`
	Code     string `validate:"required,otpcode"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	t.Run("accepts a valid form", func(t *testing.T) {
		if err := v.Validate(codeForm{Identity: "admin@x.com", Code: "042187"}); err != nil {
			t.Fatalf("expected form to pass, got %v", err)
		}
	})

	t.Run("collects translated field errors", func(t *testing.T) {
		err := v.Validate(codeForm{Identity: "not-an-email", Code: ""})

		var verr V10ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected V10ValidationError, got %T: %v", err, err)
		}

		if _, ok := verr.Values()["identity"]; !ok {
			t.Fatalf("expected identity error, got %v", verr)
		}
		if _, ok := verr.Values()["code"]; !ok {
			t.Fatalf("expected code error, got %v", verr)
		}
	})

	t.Run("rejects codes that are not six digits", func(t *testing.T) {
		for _, code := range []string{"12345", "1234567", "12a456", "      "} {
			err := v.Validate(codeForm{Identity: "admin@x.com", Code: code})
			if err == nil {
				t.Fatalf("expected code %q to be rejected", code)
			}
		}
	})
}
