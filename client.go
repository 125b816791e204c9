package p2p

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

// Client is a connection to the Content Services API. It owns the immutable
// configuration and drives the cache, rate limiter, retry policy and error
// classifier for every dispatched call. Safe for concurrent use.
type Client struct {
	baseURL              string
	authToken            string
	debug                bool
	imageServicesURL     string
	cache                Cache
	preserveEmbeddedTags bool
	productAffiliateCode string
	sourceCode           string
	webappName           string

	httpClient      *http.Client
	retryPolicy     RetryPolicy
	rateLimiter     *RateLimiter
	classifier      *classifier
	logger          Logger
	metrics         *MetricsCollector
	requestIDGen    func() string
	encodingCheck   bool
	validationError error
}

// Request is one generic operation against the API. The convenience layer
// shapes these; Do executes them.
type Request struct {
	// Method defaults to GET.
	Method string
	// Path is the resource path, e.g. "/content_items/my-slug.json".
	Path string
	// Query parameters; part of the request signature.
	Query Query
	// Body is JSON-encoded when non-nil.
	Body any
	// ForceUpdate bypasses the cache read but still refreshes the stored
	// value on success.
	ForceUpdate bool
	// NoCache opts this call out of the cache entirely.
	NoCache bool
	// Cacheable opts a non-GET call into the cache (multi-item fetches).
	// GETs are cacheable by default.
	Cacheable bool
	// Secondary dispatches against the image-services URL instead of the
	// API root.
	Secondary bool
}

// Response is the successful result of a dispatched Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	ETag       string
	// Cached reports that the body was served from the cache with no
	// network call, or refreshed via a 304.
	Cached bool
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// New constructs a Client from an explicit Config plus functional options.
// The configuration is validated best effort; call ValidationError to check.
func New(cfg Config, options ...Option) *Client {
	client := &Client{
		baseURL:              cfg.BaseURL,
		authToken:            cfg.AuthToken,
		debug:                cfg.Debug,
		imageServicesURL:     cfg.ImageServicesURL,
		cache:                cfg.Cache,
		preserveEmbeddedTags: cfg.PreserveEmbeddedTags,
		productAffiliateCode: cfg.ProductAffiliateCode,
		sourceCode:           cfg.SourceCode,
		webappName:           cfg.WebappName,

		httpClient:    &http.Client{Timeout: 30 * time.Second},
		retryPolicy:   NewDefaultRetryPolicy(3, 100*time.Millisecond, 10*time.Second, 2.0, 0.1),
		classifier:    newClassifier(nil),
		encodingCheck: true,
		requestIDGen:  defaultRequestID,
	}

	for _, option := range options {
		option(client)
	}

	if client.cache == nil {
		client.cache = NoCache{}
	}
	if client.productAffiliateCode == "" {
		client.productAffiliateCode = "chinews"
	}
	if client.sourceCode == "" {
		client.sourceCode = "chicagotribune"
	}
	if client.webappName == "" {
		client.webappName = "tRibbit"
	}
	if client.logger == nil {
		if client.debug {
			client.logger = NewDebugLogger()
		} else {
			client.logger = NopLogger{}
		}
	}

	if err := client.validate(); err != nil {
		client.validationError = err
	}

	return client
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error { return c.validationError }

func (c *Client) validate() error {
	if c.baseURL == "" {
		return fmt.Errorf("p2p: BaseURL is required")
	}
	if c.authToken == "" {
		return fmt.Errorf("p2p: AuthToken is required")
	}
	if c.retryPolicy == nil {
		return fmt.Errorf("p2p: retry policy must not be nil")
	}
	return nil
}

// Do executes one request: body encoding and pre-flight checks, cache
// lookup, the transport/classify/retry loop, and the cache write-through.
// Every outbound call in the library funnels through here.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	payload, err := c.encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	requestID := c.requestIDGen()

	c.metrics.RecordRequestStart(method, req.Path)
	defer c.metrics.RecordRequestEnd(method, req.Path)

	cacheEnabled := !req.NoCache && !isNoCache(c.cache) &&
		(method == http.MethodGet || req.Cacheable)

	var sig Signature
	var cached *Entry
	if cacheEnabled {
		sig, err = NewSignatureWithBody(method, req.Path, req.Query, payload)
		if err != nil {
			return nil, &APIError{Kind: KindUnknown, Message: "query encoding failed", Cause: err}
		}

		entry, found := c.cache.Get(sig)
		if found {
			cached = entry
			if !req.ForceUpdate {
				c.metrics.RecordCacheHit(method, req.Path)
				if c.debug {
					c.logger.Debug("cache hit", "requestID", requestID, "signature", string(sig))
				}
				c.metrics.RecordRequest(method, req.Path, entry.StatusCode, time.Since(start))
				return responseFromEntry(entry), nil
			}
			// force update: keep the entry for a conditional refresh but
			// always go to the network
		} else {
			c.metrics.RecordCacheMiss(method, req.Path)
		}
	}

	resp, apiErr := c.dispatch(ctx, method, req, payload, cached, requestID, start)
	duration := time.Since(start)
	if apiErr != nil {
		c.metrics.RecordRequest(method, req.Path, apiErr.StatusCode, duration)
		return nil, apiErr
	}
	c.metrics.RecordRequest(method, req.Path, resp.StatusCode, duration)

	if cacheEnabled && !resp.Cached {
		c.cache.Set(sig, entryFromResponse(resp))
		if c.debug {
			c.logger.Debug("response cached", "requestID", requestID, "signature", string(sig))
		}
	}

	return resp, nil
}

// dispatch runs the attempt loop: rate limit, transport, classification and
// the retry policy, until success or a non-retryable error.
func (c *Client) dispatch(ctx context.Context, method string, req Request, payload []byte, cached *Entry, requestID string, start time.Time) (*Response, *APIError) {
	url := c.requestURL(req)

	var qs string
	if len(req.Query) > 0 {
		encoded, err := req.Query.Encode()
		if err != nil {
			return nil, &APIError{Kind: KindUnknown, Message: "query encoding failed", Cause: err}
		}
		qs = encoded
		url += "?" + qs
	}

	attempt := 0
	for {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, c.finishError(c.classifier.ClassifyTransport(err), method, url, requestID, attempt, start)
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return nil, c.finishError(&APIError{Kind: KindUnknown, Message: "building request failed", Cause: err},
				method, url, requestID, attempt, start)
		}
		c.setHeaders(httpReq, payload, req.ForceUpdate, cached)

		var apiErr *APIError
		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			apiErr = c.classifier.ClassifyTransport(err)
			if c.debug {
				c.logger.Debug("attempt failed", "requestID", requestID,
					"method", method, "path", req.Path, "attempt", attempt, "error", err)
			}
		} else {
			body, readErr := io.ReadAll(httpResp.Body)
			_ = httpResp.Body.Close()
			if readErr != nil {
				apiErr = &APIError{Kind: KindUnknown, Message: "reading response failed", Cause: readErr}
			} else {
				if c.debug {
					c.logger.Debug("attempt", "requestID", requestID,
						"method", method, "path", req.Path, "status", httpResp.StatusCode, "attempt", attempt)
				}

				if httpResp.StatusCode == http.StatusNotModified && cached != nil {
					// conditional refresh: the cached value is still current
					return responseFromEntry(cached), nil
				}

				apiErr = c.classifier.Classify(httpResp.StatusCode, body)
				if apiErr == nil {
					return &Response{
						StatusCode: httpResp.StatusCode,
						Header:     httpResp.Header,
						Body:       body,
						ETag:       httpResp.Header.Get("ETag"),
					}, nil
				}
			}
		}

		c.metrics.RecordError(apiErr.Kind, method, req.Path)

		delay, retry := c.retryPolicy.ShouldRetry(apiErr, attempt)
		if !retry {
			return nil, c.finishError(apiErr, method, url, requestID, attempt, start)
		}

		c.metrics.RecordRetry(method, req.Path)
		if c.debug {
			c.logger.Debug("scheduling retry", "requestID", requestID,
				"attempt", attempt+1, "backoff", delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			// cancellation aborts further attempts and surfaces as a timeout
			return nil, c.finishError(&APIError{Kind: KindTimeout, Message: "canceled during retry backoff", Cause: ctx.Err()},
				method, url, requestID, attempt, start)
		case <-timer.C:
		}
		attempt++
	}
}

// finishError stamps diagnostic context onto a classified error.
func (c *Client) finishError(apiErr *APIError, method, url, requestID string, attempt int, start time.Time) *APIError {
	apiErr.Method = method
	apiErr.URL = url
	apiErr.RequestID = requestID
	apiErr.Attempt = attempt
	apiErr.Timestamp = time.Now()
	apiErr.Duration = time.Since(start)
	if p, ok := c.retryPolicy.(*DefaultRetryPolicy); ok {
		apiErr.MaxRetries = p.MaxRetries()
	}
	return apiErr
}

func (c *Client) requestURL(req Request) string {
	if req.Secondary && c.imageServicesURL != "" {
		return c.imageServicesURL + req.Path
	}
	return c.baseURL + req.Path
}

func (c *Client) setHeaders(httpReq *http.Request, payload []byte, forceUpdate bool, cached *Entry) {
	httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	httpReq.Header.Set("User-Agent", userAgent())
	if len(payload) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if forceUpdate && cached != nil && !cached.LastModified.IsZero() {
		httpReq.Header.Set("If-Modified-Since", cached.LastModified.UTC().Format(http.TimeFormat))
	}
}

// encodeBody marshals the request body and, when encoding checks are on,
// verifies the payload is representable in the service's character set
// before anything goes on the wire.
func (c *Client) encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "encoding request body failed", Cause: err}
	}
	if c.encodingCheck {
		if _, err := charmap.Windows1252.NewEncoder().Bytes(payload); err != nil {
			return nil, &APIError{
				Kind:    KindEncodingMismatch,
				Message: "payload not representable in the service character set",
				Cause:   err,
			}
		}
	}
	return payload, nil
}

func responseFromEntry(entry *Entry) *Response {
	return &Response{
		StatusCode: entry.StatusCode,
		Header:     entry.Header,
		Body:       entry.Body,
		ETag:       entry.ETag,
		Cached:     true,
	}
}

func entryFromResponse(resp *Response) *Entry {
	entry := &Entry{
		Body:       resp.Body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		ETag:       resp.ETag,
		StoredAt:   time.Now(),
	}
	if resp.Header != nil {
		if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
			entry.LastModified = lm
		}
	}
	return entry
}

func isNoCache(cache Cache) bool {
	if cache == nil {
		return true
	}
	_, ok := cache.(NoCache)
	return ok
}

// getJSON, postJSON, putJSON and deleteJSON are the verbs the convenience
// layer is built on.

func (c *Client) getJSON(ctx context.Context, path string, query Query, force bool, v any) error {
	resp, err := c.Do(ctx, Request{Path: path, Query: query, ForceUpdate: force})
	if err != nil {
		return err
	}
	return resp.JSON(v)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, v any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return err
	}
	if len(resp.Body) == 0 {
		return nil
	}
	return resp.JSON(v)
}

func (c *Client) putJSON(ctx context.Context, path string, body any, v any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
	if err != nil {
		return err
	}
	if len(resp.Body) == 0 || v == nil {
		return nil
	}
	return resp.JSON(v)
}

// doJSON performs an arbitrary request and decodes the response body into v.
// Mutating endpoints that carry query parameters go through here.
func (c *Client) doJSON(ctx context.Context, req Request, v any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Body) == 0 || v == nil {
		return nil
	}
	return resp.JSON(v)
}

func (c *Client) deleteJSON(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func defaultRequestID() string {
	return uuid.NewString()
}
