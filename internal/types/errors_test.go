package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsFatal(t *testing.T) {
	exhausted := &ExtractionFailedError{
		URL:  "https://acme.com",
		Last: &FetchError{URL: "https://acme.com", Strategy: MethodRendered, Err: ErrFetchTimeout},
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"exhausted chain", exhausted, true},
		{"wrapped exhausted chain", fmt.Errorf("fetch: %w", exhausted), true},
		{"no content", &StageError{Stage: "parse", Err: ErrNoContentExtracted}, true},
		{"visual partial", ErrVisualExtractionPartial, false},
		{"ai request", fmt.Errorf("detailed: %w", ErrAIRequestFailed), false},
		{"ai schema", &SchemaError{Stage: "guided"}, false},
		{"single strategy failure", &FetchError{Strategy: MethodStatic, Err: ErrFetchBlocked, StatusCode: 403}, false},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.want {
			t.Errorf("%s: IsFatal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFetchErrorReason(t *testing.T) {
	tests := []struct {
		err  *FetchError
		want string
	}{
		{&FetchError{Err: ErrFetchTimeout}, "timeout"},
		{&FetchError{Err: ErrFetchBlocked, StatusCode: 403}, "HTTP 403"},
		{&FetchError{Err: ErrEmptyResponse}, "empty body"},
		{&FetchError{Err: ErrThinContent}, "page text too short"},
		{&FetchError{Err: errors.New("dial tcp: refused")}, "connection error: dial tcp: refused"},
	}
	for _, tt := range tests {
		if got := tt.err.Reason(); got != tt.want {
			t.Errorf("Reason() = %q, want %q", got, tt.want)
		}
	}
}

func TestExtractionFailedReasonUsesLastAttempt(t *testing.T) {
	err := &ExtractionFailedError{
		URL: "https://acme.com",
		Attempts: []FetchAttempt{
			{Strategy: MethodStatic, Outcome: "timeout"},
			{Strategy: MethodRendered, Outcome: "HTTP 403"},
		},
		Last: &FetchError{Strategy: MethodRendered, StatusCode: 403, Err: ErrFetchBlocked},
	}

	reason := FailureReason(err)
	if !strings.Contains(reason, "rendered") || !strings.Contains(reason, "HTTP 403") {
		t.Errorf("unexpected reason %q", reason)
	}
	if !errors.Is(err, ErrFetchBlocked) {
		t.Error("expected chain error to unwrap to ErrFetchBlocked")
	}
	if !strings.Contains(err.Error(), "static: timeout") {
		t.Errorf("Error() should list attempts, got %q", err.Error())
	}
}

func TestSchemaErrorUnwrap(t *testing.T) {
	err := &SchemaError{Stage: "detailed", Fields: []string{"positioning: required"}}
	if !errors.Is(err, ErrAISchemaInvalid) {
		t.Error("SchemaError should unwrap to ErrAISchemaInvalid")
	}
	if !strings.Contains(err.Error(), "positioning") {
		t.Errorf("missing field detail in %q", err.Error())
	}
}

func TestNewRequestRejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"ftp://acme.com", "https://", "::bad"} {
		if _, err := NewRequest(raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("NewRequest(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}

	req, err := NewRequest("https://www.acme.com/about")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Domain() != "www.acme.com" {
		t.Errorf("Domain() = %q", req.Domain())
	}
	clone := req.Clone()
	clone.URL.Path = "/changed"
	if req.URL.Path != "/about" {
		t.Error("Clone should deep copy the URL")
	}
}
