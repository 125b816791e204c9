package p2p

import (
	"bytes"
	"context"
	"errors"
	"net/http"
)

// defaultContentItemQuery mirrors the parameters the service expects for a
// typical content-item read.
func (c *Client) defaultContentItemQuery() Query {
	return Query{
		"include": []string{
			"web_url",
			"section",
			"related_items",
			"content_topics",
			"embedded_items",
		},
		"filter": c.defaultFilter(),
	}
}

func (c *Client) defaultFilter() Query {
	return Query{
		"product_affiliate": c.productAffiliateCode,
		"state":             "live",
	}
}

func (c *Client) contentItemDefaults() map[string]any {
	return map[string]any{
		"content_item_type_code":  "blurb",
		"product_affiliate_code":  c.productAffiliateCode,
		"source_code":             c.sourceCode,
		"content_item_state_code": "live",
	}
}

// GetContentItem fetches a single content item by slug. A nil query uses the
// default content-item query. With force set, the cache is bypassed on read
// and refreshed from the response.
func (c *Client) GetContentItem(ctx context.Context, slug string, query Query, force bool) (map[string]any, error) {
	if query == nil {
		query = c.defaultContentItemQuery()
	}
	var wrapper struct {
		ContentItem map[string]any `json:"content_item"`
	}
	if err := c.getJSON(ctx, "/content_items/"+slug+".json", query, force, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.ContentItem, nil
}

// CreateContentItem creates a content item, filling service defaults for
// fields the caller leaves unset.
func (c *Client) CreateContentItem(ctx context.Context, item map[string]any) (map[string]any, error) {
	merged := c.contentItemDefaults()
	for k, v := range item {
		merged[k] = v
	}
	body := map[string]any{"content_item": merged}
	if c.preserveEmbeddedTags {
		body["preserve_embedded_tags"] = true
	}

	var resp map[string]any
	if err := c.postJSON(ctx, "/content_items.json", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateContentItem updates a content item. With slug empty the value of the
// item's "slug" key is used (and stripped from the payload, which is what the
// service expects). The cached entry for the item's default read is dropped;
// readers holding other queries refresh with force.
func (c *Client) UpdateContentItem(ctx context.Context, slug string, item map[string]any) (map[string]any, error) {
	content := make(map[string]any, len(item))
	for k, v := range item {
		content[k] = v
	}
	if slug == "" {
		s, ok := content["slug"].(string)
		if !ok || s == "" {
			return nil, &APIError{Kind: KindUnknown, Message: "update requires a slug"}
		}
		slug = s
	}
	delete(content, "slug")

	body := map[string]any{"content_item": content}
	if c.preserveEmbeddedTags {
		body["preserve_embedded_tags"] = true
	}

	var resp map[string]any
	if err := c.putJSON(ctx, "/content_items/"+slug+".json", body, &resp); err != nil {
		return nil, err
	}
	c.invalidateContentItem(slug)
	return resp, nil
}

// CreateOrUpdateContentItem attempts an update and falls back to a create
// when the item does not exist. Reports whether a create happened.
func (c *Client) CreateOrUpdateContentItem(ctx context.Context, item map[string]any) (bool, map[string]any, error) {
	resp, err := c.UpdateContentItem(ctx, "", item)
	if err == nil {
		return false, resp, nil
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Retryable() {
		return false, nil, err
	}
	resp, err = c.CreateContentItem(ctx, item)
	if err != nil {
		return false, nil, err
	}
	return true, resp, nil
}

// DeleteContentItem removes a content item. Reports whether the service
// confirmed destruction.
func (c *Client) DeleteContentItem(ctx context.Context, slug string) (bool, error) {
	body, err := c.deleteJSON(ctx, "/content_items/"+slug+".json")
	if err != nil {
		return false, err
	}
	c.invalidateContentItem(slug)
	return bytes.Contains(body, []byte("destroyed successfully")), nil
}

// JunkContentItem sets a content item to junk status, which hides it from
// everything downstream.
func (c *Client) JunkContentItem(ctx context.Context, slug string) (map[string]any, error) {
	return c.UpdateContentItem(ctx, "", map[string]any{
		"slug":                    slug,
		"content_item_state_code": "junk",
	})
}

// AddTopic attaches a topic to a content item.
func (c *Client) AddTopic(ctx context.Context, slug string, topicID string) error {
	err := c.putJSON(ctx, "/content_items/"+slug+".json", map[string]any{"add_topic_ids": topicID}, nil)
	if err != nil {
		return err
	}
	c.invalidateContentItem(slug)
	return nil
}

// RemoveTopic detaches a topic from a content item.
func (c *Client) RemoveTopic(ctx context.Context, slug string, topicID string) error {
	err := c.putJSON(ctx, "/content_items/"+slug+".json", map[string]any{"remove_topic_ids": topicID}, nil)
	if err != nil {
		return err
	}
	c.invalidateContentItem(slug)
	return nil
}

// PushIntoContentItem pushes slugs onto the top of a content item's related
// items list.
func (c *Client) PushIntoContentItem(ctx context.Context, slug string, itemSlugs []string) (map[string]any, error) {
	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Method: http.MethodPut,
		Path:   "/content_items/prepend.json",
		Query:  Query{"id": slug},
		Body:   map[string]any{"items": itemSlugs},
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.invalidateContentItem(slug)
	return resp, nil
}

// InsertIntoContentItem inserts slugs into a content item's related items
// list starting at position (1-based).
func (c *Client) InsertIntoContentItem(ctx context.Context, slug string, itemSlugs []string, position int) (map[string]any, error) {
	items := make([]map[string]any, 0, len(itemSlugs))
	for i, s := range itemSlugs {
		items = append(items, map[string]any{"slug": s, "position": position + i})
	}

	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Method: http.MethodPut,
		Path:   "/content_items/insert.json",
		Query:  Query{"id": slug},
		Body:   map[string]any{"items": items},
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.invalidateContentItem(slug)
	return resp, nil
}

// AppendIntoContentItem appends slugs to the end of a content item's related
// items list.
func (c *Client) AppendIntoContentItem(ctx context.Context, slug string, itemSlugs []string) (map[string]any, error) {
	item, err := c.GetContentItem(ctx, slug, nil, false)
	if err != nil {
		return nil, err
	}
	position := 1
	if related, ok := item["related_items"].([]any); ok {
		position = len(related) + 1
	}
	return c.InsertIntoContentItem(ctx, slug, itemSlugs, position)
}

// Search queries the content-item search endpoint. Search backend failures
// classify as SearchError.
func (c *Client) Search(ctx context.Context, params Query) (map[string]any, error) {
	var resp map[string]any
	if err := c.getJSON(ctx, "/content_items/search.json", params, false, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// invalidateContentItem drops the cached default-query read for a slug.
// Best effort, like the original client: entries under non-default queries
// stay until a force-update refreshes them.
func (c *Client) invalidateContentItem(slug string) {
	sig, err := NewSignature(http.MethodGet, "/content_items/"+slug+".json", c.defaultContentItemQuery())
	if err != nil {
		return
	}
	c.cache.Delete(sig)
}
