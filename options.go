package p2p

import (
	"net/http"
	"time"
)

// Option configures a Client beyond the connection Config.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its timeout bounds each attempt;
// overall deadlines come from the caller's context.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-attempt timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithMaxRetries sets the retry budget on a default policy with standard
// backoff tunables.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.retryPolicy = NewDefaultRetryPolicy(n, 100*time.Millisecond, 10*time.Second, 2.0, 0.1)
	}
}

// WithBackoff configures the default retry policy in full.
func WithBackoff(maxRetries int, initial, max time.Duration, multiplier, jitter float64, strategy BackoffStrategy) Option {
	return func(c *Client) {
		c.retryPolicy = NewDefaultRetryPolicyWithStrategy(maxRetries, initial, max, multiplier, jitter, strategy)
	}
}

// WithRateLimiter smooths outbound traffic through a token bucket.
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithClassifierRules prepends rules to the classification table. Caller
// rules are evaluated before the defaults, so deployments can recognize
// service error strings this library does not ship.
func WithClassifierRules(rules ...Rule) Option {
	return func(c *Client) {
		c.classifier = newClassifier(rules)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithRequestIDGenerator overrides the request ID generator used in debug
// logs and error context.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.requestIDGen = gen
	}
}

// WithoutEncodingCheck disables the pre-flight character set check. The
// service will still reject unrepresentable payloads; the classifier then
// raises EncodingMismatch from the response instead.
func WithoutEncodingCheck() Option {
	return func(c *Client) {
		c.encodingCheck = false
	}
}
