package p2p

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// MultiItemLimit is the service's documented per-request cap on multi-item
// fetches. Larger requests are split transparently.
const MultiItemLimit = 25

// multiItemEpoch is the If-Modified-Since floor sent for items we hold no
// copy of, matching the original client's behavior.
var multiItemEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type multiItemResult struct {
	ID     int             `json:"id"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// GetMultiContentItems fetches many content items by id in one logical call.
// Inputs beyond MultiItemLimit are split into consecutive chunks, one
// multi-fetch per chunk through the dispatcher (each independently cached,
// retried and classified). The result preserves the input order exactly; an
// id the service reports as not found, or as unchanged with no body, leaves
// a nil at its position. Any
// chunk or item failing with a non-retryable error fails the whole call —
// there is no partial result.
func (c *Client) GetMultiContentItems(ctx context.Context, ids []int, query Query, force bool) ([]map[string]any, error) {
	if query == nil {
		query = c.defaultContentItemQuery()
	}

	byID := make(map[int]multiItemResult, len(ids))
	for _, chunk := range chunkSlice(ids, MultiItemLimit) {
		items := make([]map[string]any, 0, len(chunk))
		for _, id := range chunk {
			items = append(items, map[string]any{
				"id":                id,
				"if_modified_since": multiItemEpoch.Format(http.TimeFormat),
			})
		}

		body := map[string]any{"content_items": items}
		for k, v := range query {
			body[k] = v
		}

		resp, err := c.Do(ctx, Request{
			Method:      http.MethodPost,
			Path:        "/content_items/multi.json",
			Body:        body,
			Cacheable:   true,
			ForceUpdate: force,
		})
		if err != nil {
			return nil, err
		}

		var results []multiItemResult
		if err := resp.JSON(&results); err != nil {
			return nil, &APIError{Kind: KindUnknown, Message: "decoding multi-item response failed", Cause: err}
		}

		for _, result := range results {
			switch result.Status {
			case http.StatusOK, http.StatusNotModified:
				byID[result.ID] = result
			case http.StatusNotFound:
				// gap by position; recorded so the id is not "missing"
				byID[result.ID] = result
			default:
				if apiErr := c.classifier.Classify(result.Status, result.Body); apiErr != nil {
					apiErr.Message = "multi-item fetch failed: " + apiErr.Message
					return nil, apiErr
				}
			}
		}
	}

	merged := make([]map[string]any, len(ids))
	for i, id := range ids {
		result, ok := byID[id]
		if !ok || result.Status == http.StatusNotFound {
			continue
		}
		if result.Status == http.StatusNotModified && len(result.Body) == 0 {
			// unchanged since if_modified_since; nothing to decode
			continue
		}
		var wrapper struct {
			ContentItem map[string]any `json:"content_item"`
		}
		if err := json.Unmarshal(result.Body, &wrapper); err != nil {
			return nil, &APIError{Kind: KindUnknown, Message: "decoding multi-item body failed", Cause: err}
		}
		merged[i] = wrapper.ContentItem
	}
	return merged, nil
}

// chunkSlice splits items into consecutive chunks of at most size, preserving
// order.
func chunkSlice[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
