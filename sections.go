package p2p

import "context"

// GetSection fetches the collections configured for a section path.
func (c *Client) GetSection(ctx context.Context, path string, query Query, force bool) (map[string]any, error) {
	if query == nil {
		query = Query{
			"section_path":           path,
			"product_affiliate_code": c.productAffiliateCode,
			"include":                "default_section_path_collections",
		}
	}
	var resp map[string]any
	if err := c.getJSON(ctx, "/sections/show_collections.json", query, force, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSectionConfigs fetches the webapp configuration for a section path.
func (c *Client) GetSectionConfigs(ctx context.Context, path string, query Query, force bool) (map[string]any, error) {
	if query == nil {
		query = Query{
			"section_path":           path,
			"product_affiliate_code": c.productAffiliateCode,
			"webapp_name":            c.webappName,
		}
	}
	var resp map[string]any
	if err := c.getJSON(ctx, "/sections/show_configs.json", query, force, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetThumbForSlug fetches display information for the images associated with
// a slug. The request goes to the image services host.
func (c *Client) GetThumbForSlug(ctx context.Context, slug string, force bool) (map[string]any, error) {
	var resp map[string]any
	err := c.doJSON(ctx, Request{
		Path:        "/photos/turbine/" + slug + ".json",
		Secondary:   true,
		ForceUpdate: force,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
