package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestCodeStatusCode(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInternal, http.StatusInternalServerError},
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeTooManyRequest, http.StatusTooManyRequests},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		if got := tc.code.StatusCode(); got != tc.want {
			t.Errorf("code %d: expected status %d, got %d", tc.code, tc.want, got)
		}
	}
}

func TestNewBusinessReason(t *testing.T) {
	err := NewBusinessReason("too many wrong attempts", CodeTooManyRequest, "MAX_ATTEMPTS_EXCEEDED",
		"remaining_attempts", "0")

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}

	if gerr.Msg() != "too many wrong attempts" {
		t.Fatalf("unexpected message %q", gerr.Msg())
	}
	if gerr.Reason() != "MAX_ATTEMPTS_EXCEEDED" {
		t.Fatalf("unexpected reason %q", gerr.Reason())
	}
	if gerr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", gerr.StatusCode())
	}
	if got := gerr.Fields()["remaining_attempts"]; got != "0" {
		t.Fatalf("unexpected field value %q", got)
	}
}

func TestNewBusinessReasonOddPairs(t *testing.T) {
	err := NewBusinessReason("msg", CodeUnauthorized, "CODE_MISMATCH", "dangling")

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(gerr.Fields()) != 0 {
		t.Fatalf("expected dangling key to be dropped, got %v", gerr.Fields())
	}
}

func TestNewServerWraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewServer(cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", gerr.StatusCode())
	}
}
