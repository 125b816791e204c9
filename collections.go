package p2p

import (
	"context"
	"net/http"
	"time"
)

func (c *Client) defaultCollectionQuery() Query {
	return Query{"filter": c.defaultFilter()}
}

func (c *Client) defaultCollectionLayoutQuery() Query {
	return Query{
		"include": "items",
		"filter":  c.defaultFilter(),
	}
}

// GetCollection fetches the data for a collection. To get the items in a
// collection, use GetCollectionLayout.
func (c *Client) GetCollection(ctx context.Context, code string, query Query, force bool) (map[string]any, error) {
	if query == nil {
		query = c.defaultCollectionQuery()
	}
	var wrapper struct {
		Collection map[string]any `json:"collection"`
	}
	if err := c.getJSON(ctx, "/collections/"+code+".json", query, force, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Collection, nil
}

// CreateCollection creates a new collection. The data map must carry "code",
// "name" and "section_path"; "collection_type_code", "last_modified_time"
// and "product_affiliate_code" fall back to service defaults when unset.
func (c *Client) CreateCollection(ctx context.Context, data map[string]any) (map[string]any, error) {
	code, _ := data["code"].(string)
	if code == "" {
		return nil, &APIError{Kind: KindUnknown, Message: "create collection requires a code"}
	}

	typeCode := data["collection_type_code"]
	if typeCode == nil {
		typeCode = "misc"
	}
	lastModified := data["last_modified_time"]
	if lastModified == nil {
		lastModified = time.Now().UTC()
	}
	affiliate := data["product_affiliate_code"]
	if affiliate == nil {
		affiliate = c.productAffiliateCode
	}

	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Method: http.MethodPost,
		Path:   "/collections.json",
		Query:  Query{"id": code},
		Body: map[string]any{
			"collection": map[string]any{
				"code":                 code,
				"name":                 data["name"],
				"collection_type_code": typeCode,
				"last_modified_time":   lastModified,
				"sequence":             999,
			},
			"product_affiliate_code": affiliate,
			"section_path":           data["section_path"],
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	collection, ok := resp["collection"].(map[string]any)
	if !ok {
		return nil, &APIError{Kind: KindUnknown, Message: "create collection response missing collection"}
	}
	return collection, nil
}

// DeleteCollection deletes a collection.
func (c *Client) DeleteCollection(ctx context.Context, code string) error {
	if _, err := c.deleteJSON(ctx, "/collections/"+code+".json"); err != nil {
		return err
	}
	c.invalidateCollection(code)
	return nil
}

// PushIntoCollection pushes content item slugs onto the top of a collection.
func (c *Client) PushIntoCollection(ctx context.Context, code string, itemSlugs []string) (map[string]any, error) {
	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Method: http.MethodPut,
		Path:   "/collections/prepend.json",
		Query:  Query{"id": code},
		Body:   map[string]any{"items": itemSlugs},
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.invalidateCollection(code)
	return resp, nil
}

// SuppressInCollection suppresses slugs in a collection. With no affiliates
// given, the client's product affiliate code is used.
func (c *Client) SuppressInCollection(ctx context.Context, code string, itemSlugs []string, affiliates []string) (map[string]any, error) {
	if len(affiliates) == 0 {
		affiliates = []string{c.productAffiliateCode}
	}
	items := make([]map[string]any, 0, len(itemSlugs))
	for _, slug := range itemSlugs {
		items = append(items, map[string]any{"slug": slug, "affiliates": affiliates})
	}

	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Method: http.MethodPut,
		Path:   "/collections/suppress.json",
		Query:  Query{"id": code},
		Body:   map[string]any{"items": items},
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.invalidateCollection(code)
	return resp, nil
}

// InsertPositionInCollection inserts a slug at the top of a collection.
func (c *Client) InsertPositionInCollection(ctx context.Context, code string, slug string) (map[string]any, error) {
	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Method: http.MethodPut,
		Path:   "/collections/insert.json",
		Query:  Query{"id": code},
		Body: map[string]any{"items": []map[string]any{
			{"slug": slug, "position": 1},
		}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.invalidateCollection(code)
	return resp, nil
}

// GetCollectionLayout fetches the current layout of a collection, the
// ordered items readers render.
func (c *Client) GetCollectionLayout(ctx context.Context, code string, query Query, force bool) (map[string]any, error) {
	if query == nil {
		query = c.defaultCollectionLayoutQuery()
	}
	var wrapper struct {
		CollectionLayout map[string]any `json:"collection_layout"`
	}
	if err := c.getJSON(ctx, "/current_collections/"+code+".json", query, force, &wrapper); err != nil {
		return nil, err
	}
	layout := wrapper.CollectionLayout
	if layout != nil {
		// The service omits the code from layout responses.
		layout["code"] = code
	}
	return layout, nil
}

// invalidateCollection drops the cached default-query reads for a collection
// and its layout. Best effort, like invalidateContentItem.
func (c *Client) invalidateCollection(code string) {
	if sig, err := NewSignature(http.MethodGet, "/collections/"+code+".json", c.defaultCollectionQuery()); err == nil {
		c.cache.Delete(sig)
	}
	if sig, err := NewSignature(http.MethodGet, "/current_collections/"+code+".json", c.defaultCollectionLayoutQuery()); err == nil {
		c.cache.Delete(sig)
	}
}
