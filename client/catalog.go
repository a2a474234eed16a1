package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CatIndices lists indices via the cat API, optionally narrowed by a
// pattern like "logs-*". The headers choose the returned columns, sortBy
// the server-side sort order.
func (c *Client) CatIndices(ctx context.Context, pattern string, headers []string, sortBy string) ([]IndexInfo, error) {
	path := "/_cat/indices"
	if pattern != "" {
		path += "/" + url.PathEscape(pattern)
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("h", strings.Join(headers, ","))
	if sortBy != "" {
		params.Set("s", sortBy)
	}
	data, _, err := c.get(ctx, path, params, DefaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	var indices []IndexInfo
	if err := json.Unmarshal(data, &indices); err != nil {
		return nil, fmt.Errorf("malformed cat indices response: %w", err)
	}
	return indices, nil
}

// CatAliases lists aliases via the cat API, optionally narrowed by a
// pattern.
func (c *Client) CatAliases(ctx context.Context, pattern string) ([]AliasInfo, error) {
	path := "/_cat/aliases"
	if pattern != "" {
		path += "/" + url.PathEscape(pattern)
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("h", "alias,index,filter,routing.index,routing.search")
	params.Set("s", "alias")
	data, _, err := c.get(ctx, path, params, DefaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	var aliases []AliasInfo
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("malformed cat aliases response: %w", err)
	}
	return aliases, nil
}

// IndexSettings returns the raw settings document of an index.
func (c *Client) IndexSettings(ctx context.Context, index string) (json.RawMessage, error) {
	data, _, err := c.get(ctx, "/"+url.PathEscape(index)+"/_settings", nil, DefaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ILMExplain returns the lifecycle state of an index or of every index
// behind an alias.
func (c *Client) ILMExplain(ctx context.Context, index string) (*ILMExplainResponse, error) {
	data, _, err := c.get(ctx, "/"+url.PathEscape(index)+"/_ilm/explain", nil, DefaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	var ilm ILMExplainResponse
	if err := json.Unmarshal(data, &ilm); err != nil {
		return nil, fmt.Errorf("malformed ILM explain response: %w", err)
	}
	return &ilm, nil
}

// Alias returns the member indices of an alias with their per-index alias
// configuration. Unknown aliases are fatal.
func (c *Client) Alias(ctx context.Context, name string) (map[string]IndexAliases, error) {
	data, _, err := c.get(ctx, "/_alias/"+url.PathEscape(name), nil, DefaultTimeout, map[int]StatusHandler{
		http.StatusNotFound: {Behavior: Fail, Message: fmt.Sprintf("alias not found: %s", name)},
	})
	if err != nil {
		return nil, err
	}
	var aliases map[string]IndexAliases
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("malformed alias response: %w", err)
	}
	return aliases, nil
}

// DateRangeOf finds the oldest and newest value of a date field across an
// index or alias using a min/max aggregation.
func (c *Client) DateRangeOf(ctx context.Context, index, field string) (*DateRange, error) {
	query := fmt.Sprintf(`{"size":0,"aggs":{"min_date":{"min":{"field":%q}},"max_date":{"max":{"field":%q}}}}`, field, field)
	data, _, err := c.post(ctx, "/"+url.PathEscape(index)+"/_search", nil, []byte(query), 60*time.Second, nil)
	if err != nil {
		return nil, err
	}
	var res struct {
		Aggregations struct {
			MinDate DateAggValue `json:"min_date"`
			MaxDate DateAggValue `json:"max_date"`
		} `json:"aggregations"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("malformed date range response: %w", err)
	}
	return &DateRange{
		Min: res.Aggregations.MinDate.ValueAsString,
		Max: res.Aggregations.MaxDate.ValueAsString,
	}, nil
}

// Info returns the cluster banner from GET /.
func (c *Client) Info(ctx context.Context) (*ClusterInfo, error) {
	data, _, err := c.get(ctx, "/", nil, DefaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	var info ClusterInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("malformed cluster info response: %w", err)
	}
	return &info, nil
}
