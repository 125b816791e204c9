package p2p

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies one member of the closed error taxonomy raised by the
// classifier. The set is fixed; unknown service failures surface as
// KindUnknown rather than being swallowed or invented.
type Kind int

const (
	// KindUnknown is the fallback for any 4xx/5xx response that matches no
	// classifier rule. It carries the raw status and body for diagnostics.
	KindUnknown Kind = iota
	// KindSlugTaken is raised when the service rejects a slug or code that
	// has already been taken.
	KindSlugTaken
	// KindNotFound is raised for 404 responses.
	KindNotFound
	// KindUniqueConstraintViolated is raised when a write violates a unique
	// constraint on the service side.
	KindUniqueConstraintViolated
	// KindEncodingMismatch is raised when a payload cannot be represented in
	// the service's character set, either pre-flight or on response.
	KindEncodingMismatch
	// KindUnknownAttribute is raised when a payload names an attribute the
	// service does not recognize.
	KindUnknownAttribute
	// KindInvalidAccessDefinition is raised for malformed access definitions.
	KindInvalidAccessDefinition
	// KindSearchError is raised when the search backend fails.
	KindSearchError
	// KindForbidden is raised when credentials are refused due to a throttle
	// or auth failure. Retryable.
	KindForbidden
	// KindTimeout is raised when the service or transport times out. Retryable.
	KindTimeout
)

var kindNames = map[Kind]string{
	KindUnknown:                  "Unknown",
	KindSlugTaken:                "SlugTaken",
	KindNotFound:                 "NotFound",
	KindUniqueConstraintViolated: "UniqueConstraintViolated",
	KindEncodingMismatch:         "EncodingMismatch",
	KindUnknownAttribute:         "UnknownAttribute",
	KindInvalidAccessDefinition:  "InvalidAccessDefinition",
	KindSearchError:              "SearchError",
	KindForbidden:                "Forbidden",
	KindTimeout:                  "Timeout",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Retryable reports whether the retry policy may re-attempt a call that
// failed with this kind. Only Forbidden and Timeout are retryable.
func (k Kind) Retryable() bool {
	return k == KindForbidden || k == KindTimeout
}

// APIError is the single error type produced by the classifier. Callers match
// on Kind via errors.Is against the exported sentinels, or errors.As to read
// the diagnostic fields.
type APIError struct {
	Kind       Kind
	Message    string
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	RequestID  string
	Attempt    int
	MaxRetries int
	Timestamp  time.Time
	Duration   time.Duration
	Cause      error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrSlugTaken                = &APIError{Kind: KindSlugTaken}
	ErrNotFound                 = &APIError{Kind: KindNotFound}
	ErrUniqueConstraintViolated = &APIError{Kind: KindUniqueConstraintViolated}
	ErrEncodingMismatch         = &APIError{Kind: KindEncodingMismatch}
	ErrUnknownAttribute         = &APIError{Kind: KindUnknownAttribute}
	ErrInvalidAccessDefinition  = &APIError{Kind: KindInvalidAccessDefinition}
	ErrSearchError              = &APIError{Kind: KindSearchError}
	ErrForbidden                = &APIError{Kind: KindForbidden}
	ErrTimeout                  = &APIError{Kind: KindTimeout}
)

// Error implements error.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("p2p: %s: %s", e.Kind, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds, so errors.Is(err, ErrNotFound) matches any
// APIError with KindNotFound.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*APIError); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// Retryable reports whether this error belongs to the retryable subtree.
func (e *APIError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.Kind.Retryable()
}

// IsRetryable reports whether err is an APIError of a retryable kind.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *APIError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Kind: %s\n", e.Kind)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if len(e.Body) > 0 {
		info += fmt.Sprintf("Body: %s\n", e.Body)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d/%d\n", e.Attempt, e.MaxRetries)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}
