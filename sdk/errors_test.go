package sdk

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindUnwrapsWrappedErrors(t *testing.T) {
	base := &APIError{Kind: KindUnauthenticated, StatusCode: 401}
	wrapped := fmt.Errorf("start transcription: %w", base)

	if Kind(wrapped) != KindUnauthenticated {
		t.Fatalf("expected unauthenticated kind through wrapping")
	}
	if !IsUnauthenticated(wrapped) {
		t.Fatalf("IsUnauthenticated should see through wrapping")
	}
}

func TestKindOfPlainErrorIsTransport(t *testing.T) {
	if Kind(errors.New("connection refused")) != KindTransport {
		t.Fatalf("plain errors must classify as transport")
	}
}

func TestIsHelpersOnNil(t *testing.T) {
	if IsUnauthenticated(nil) || IsInsufficientBalance(nil) {
		t.Fatalf("nil error must not match any kind")
	}
}

func TestAPIErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{"message wins", &APIError{Message: "boom", StatusCode: 500}, "boom"},
		{"status fallback", &APIError{StatusCode: 503}, "unexpected status: 503"},
		{"generic fallback", &APIError{}, "request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
