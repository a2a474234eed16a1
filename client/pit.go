package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// OpenPIT opens a point-in-time cursor on the given index or alias and
// returns its id.
func (c *Client) OpenPIT(ctx context.Context, index, keepAlive string) (string, error) {
	params := url.Values{}
	params.Set("keep_alive", keepAlive)
	data, _, err := c.post(ctx, "/"+index+"/_pit", params, nil, 60*time.Second, nil)
	if err != nil {
		return "", err
	}
	var pit PITResponse
	if err := json.Unmarshal(data, &pit); err != nil {
		return "", fmt.Errorf("malformed point-in-time response: %w", err)
	}
	if pit.ID == "" {
		return "", errors.New("malformed point-in-time response: missing id")
	}
	return pit.ID, nil
}

// ClosePIT releases a point-in-time cursor. Closing a cursor that is
// already gone is not an error.
func (c *Client) ClosePIT(ctx context.Context, id string) error {
	body, err := json.Marshal(PITResponse{ID: id})
	if err != nil {
		return err
	}
	_, _, err = c.del(ctx, "/_pit", body, DefaultTimeout, map[int]StatusHandler{
		http.StatusNotFound: {Behavior: Suppress},
	})
	return err
}

// SearchWithPIT runs one page of a cursor search. The query must already
// carry the pit block; cursor searches address the whole cluster, not an
// index.
func (c *Client) SearchWithPIT(ctx context.Context, query string) (*SearchResponse, error) {
	data, _, err := c.post(ctx, "/_search", nil, []byte(query), 120*time.Second, nil)
	if err != nil {
		return nil, err
	}
	return parseSearch(data)
}
