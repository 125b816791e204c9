package p2p

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Rule maps a recognized response shape to an error kind. Rules are evaluated
// in order and the first match wins, so more specific patterns must come
// before broader status-code checks.
type Rule struct {
	Name  string
	Kind  Kind
	Match func(status int, body []byte) bool
}

// DefaultRules returns the ordered classification table for documented
// service failures. Only patterns the service is known to emit are included;
// deployments with additional error strings extend the table via
// WithClassifierRules rather than editing this one.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "slug taken",
			Kind: KindSlugTaken,
			Match: func(status int, body []byte) bool {
				return status >= 400 &&
					(bytes.Contains(body, []byte(`"slug":["has already been taken"]`)) ||
						bytes.Contains(body, []byte(`"code":["has already been taken"]`)))
			},
		},
		{
			Name: "unique constraint",
			Kind: KindUniqueConstraintViolated,
			Match: func(status int, body []byte) bool {
				return status >= 400 && bytes.Contains(body, []byte("Unique constraint violation"))
			},
		},
		{
			Name: "unknown attribute",
			Kind: KindUnknownAttribute,
			Match: func(status int, body []byte) bool {
				return status >= 400 && bytes.Contains(body, []byte("unknown attribute"))
			},
		},
		{
			Name: "invalid access definition",
			Kind: KindInvalidAccessDefinition,
			Match: func(status int, body []byte) bool {
				return status >= 400 && bytes.Contains(body, []byte("Invalid access definition"))
			},
		},
		{
			Name: "encoding mismatch",
			Kind: KindEncodingMismatch,
			Match: func(status int, body []byte) bool {
				return status >= 400 && bytes.Contains(body, []byte("invalid byte sequence"))
			},
		},
		{
			Name: "search error",
			Kind: KindSearchError,
			Match: func(status int, body []byte) bool {
				return status >= 500 && bytes.Contains(body, []byte("SearchError"))
			},
		},
		{
			Name: "not found",
			Kind: KindNotFound,
			Match: func(status int, body []byte) bool {
				return status == http.StatusNotFound
			},
		},
		{
			Name: "forbidden",
			Kind: KindForbidden,
			Match: func(status int, body []byte) bool {
				return status == http.StatusUnauthorized ||
					status == http.StatusForbidden ||
					status == http.StatusTooManyRequests
			},
		},
		{
			Name: "timeout",
			Kind: KindTimeout,
			Match: func(status int, body []byte) bool {
				if status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout {
					return true
				}
				return status >= 500 && bytes.Contains(bytes.ToLower(body), []byte("timeout"))
			},
		},
	}
}

// classifier turns a completed HTTP exchange into either success (nil) or
// exactly one *APIError. It is the only place error kinds are minted.
type classifier struct {
	rules []Rule
}

func newClassifier(extra []Rule) *classifier {
	// caller rules are checked first so they can shadow the defaults
	return &classifier{rules: append(append([]Rule{}, extra...), DefaultRules()...)}
}

// Classify inspects status and body. A 2xx status is success. A 304 is left
// to the dispatcher, which serves the cached entry. Everything else resolves
// through the rule table, falling back to KindUnknown with the raw status and
// body attached.
func (c *classifier) Classify(status int, body []byte) *APIError {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusNotModified {
		return nil
	}

	for _, rule := range c.rules {
		if rule.Match(status, body) {
			return &APIError{
				Kind:       rule.Kind,
				Message:    rule.Name,
				StatusCode: status,
				Body:       body,
			}
		}
	}

	// Unknown error strings are never swallowed: surface status and body so
	// operators can extend the rule table.
	msg := "unrecognized service error"
	if errMsg := firstServiceError(body); errMsg != "" {
		msg = errMsg
	}
	return &APIError{
		Kind:       KindUnknown,
		Message:    msg,
		StatusCode: status,
		Body:       body,
	}
}

// ClassifyTransport maps a transport-level failure (no response) to an error
// kind. Timeouts and deadline expiry are retryable; anything else is the
// fallback kind with the cause preserved.
func (c *classifier) ClassifyTransport(err error) *APIError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Message: "deadline exceeded", Cause: err}
	}
	return &APIError{Kind: KindUnknown, Message: "transport error", Cause: err}
}

// firstServiceError pulls the first entry from an {"errors": [...]} body.
// Unparseable bodies fall through to status-only classification.
func firstServiceError(body []byte) string {
	var payload struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Errors) == 0 {
		return ""
	}
	return strings.TrimSpace(payload.Errors[0])
}
