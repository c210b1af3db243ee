package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the extraction failure taxonomy.
var (
	ErrFetchTimeout            = errors.New("fetch timed out")
	ErrFetchBlocked            = errors.New("fetch blocked")
	ErrNoContentExtracted      = errors.New("no usable content extracted")
	ErrVisualExtractionPartial = errors.New("visual extraction incomplete")
	ErrAIRequestFailed         = errors.New("AI request failed")
	ErrAISchemaInvalid         = errors.New("AI response failed schema validation")

	ErrEmptyResponse = errors.New("empty response body")
	ErrThinContent   = errors.New("page text below minimum length")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNoCredentials = errors.New("no AI credential configured")
	ErrNoStrategies  = errors.New("no fetch strategies configured")
)

// FetchError wraps errors that occur during a single fetch strategy attempt.
type FetchError struct {
	URL        string
	Strategy   ExtractionMethod
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s fetch of %s (status %d): %v", e.Strategy, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch of %s: %v", e.Strategy, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Reason returns a short human-readable cause suitable for a profile's failure reason.
func (e *FetchError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrFetchTimeout):
		return "timeout"
	case errors.Is(e.Err, ErrFetchBlocked) && e.StatusCode >= 300:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	case e.Err == ErrFetchBlocked:
		return "blocked"
	case errors.Is(e.Err, ErrFetchBlocked):
		// challenge pages carry their kind, e.g. "fetch blocked: cloudflare challenge page"
		return e.Err.Error()
	case errors.Is(e.Err, ErrThinContent):
		return "page text too short"
	case errors.Is(e.Err, ErrEmptyResponse):
		return "empty body"
	default:
		return "connection error: " + e.Err.Error()
	}
}

// FetchAttempt records the outcome of one strategy in the fetch chain.
type FetchAttempt struct {
	Strategy ExtractionMethod `json:"strategy"           bson:"strategy"`
	Outcome  string           `json:"outcome"            bson:"outcome"`
	Error    string           `json:"error,omitempty"    bson:"error,omitempty"`
	Duration time.Duration    `json:"durationNs"         bson:"duration_ns"`
}

// ExtractionFailedError is returned when every fetch strategy failed.
type ExtractionFailedError struct {
	URL      string
	Attempts []FetchAttempt
	Last     error
}

func (e *ExtractionFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Strategy, a.Outcome))
	}
	return fmt.Sprintf("extraction failed for %s (%s)", e.URL, strings.Join(parts, "; "))
}

func (e *ExtractionFailedError) Unwrap() error { return e.Last }

// Reason returns the last observed failure reason.
func (e *ExtractionFailedError) Reason() string {
	var fe *FetchError
	if errors.As(e.Last, &fe) {
		return fmt.Sprintf("all fetch strategies failed; last (%s): %s", fe.Strategy, fe.Reason())
	}
	if e.Last != nil {
		return "all fetch strategies failed: " + e.Last.Error()
	}
	return "all fetch strategies failed"
}

// StageError wraps errors raised by a pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// SchemaError describes an AI response that did not match the expected schema.
type SchemaError struct {
	Stage  string
	Fields []string
}

func (e *SchemaError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s response: %v", e.Stage, ErrAISchemaInvalid)
	}
	return fmt.Sprintf("%s response: %v: %s", e.Stage, ErrAISchemaInvalid, strings.Join(e.Fields, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrAISchemaInvalid }

// StorageError wraps errors that occur during export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsFatal reports whether err must flip a profile to failed.
// Only an exhausted fetch chain and a document without usable content qualify.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var efe *ExtractionFailedError
	if errors.As(err, &efe) {
		return true
	}
	return errors.Is(err, ErrNoContentExtracted)
}

// FailureReason renders a fatal error as the user-visible reason string.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	var efe *ExtractionFailedError
	if errors.As(err, &efe) {
		return efe.Reason()
	}
	if errors.Is(err, ErrNoContentExtracted) {
		return "fetch succeeded but no usable content was extracted"
	}
	return err.Error()
}
