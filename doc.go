// Package p2p is a client for the Content Services API with composable
// reliability primitives:
//
//   - Retries with exponential backoff + jitter, driven by a closed error
//     taxonomy (only Forbidden and Timeout retry)
//   - Rate limiting (token bucket)
//   - Pluggable response caching (in-memory, Redis, or none) keyed by a
//     deterministic request signature
//   - Transparent batching of multi-item fetches over the service's
//     25-item limit
//   - Prometheus metrics and structured debug logging
//
// Design goals:
//   - Small surface area, functional options configure everything
//   - Every failure maps into one typed error so callers never parse strings
//   - Safe concurrent use of a single *Client instance
//
// Typical usage:
//
//	cfg, err := p2p.FromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Cache = p2p.NewMemoryCache()
//	client := p2p.New(cfg,
//	    p2p.WithMaxRetries(3),
//	    p2p.WithRateLimiter(10, time.Second),
//	)
//	item, err := client.GetContentItem(ctx, "chi-some-story", nil, false)
//
// The convenience layer (content items, collections, sections, thumbs)
// is built on Client.Do, which callers can also use directly for endpoints
// the layer does not cover.
package p2p
