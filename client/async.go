package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Defaults for submitting async searches. The short completion wait makes
// submit return quickly; the long keep-alive leaves the search retrievable
// for later status checks and result fetches.
const (
	DefaultWaitFor   = "1s"
	DefaultKeepAlive = "1h"
)

// SubmitAsyncSearch starts an async search on the given index or alias. The
// call returns after waitFor at the latest; the search keeps running
// server-side and its results are kept for keepAlive.
func (c *Client) SubmitAsyncSearch(ctx context.Context, index, query, waitFor, keepAlive string) (*AsyncSearchResponse, error) {
	params := url.Values{}
	params.Set("wait_for_completion_timeout", waitFor)
	params.Set("keep_on_completion", "true")
	params.Set("keep_alive", keepAlive)
	data, _, err := c.post(ctx, "/"+index+"/_async_search", params, []byte(query), 60*time.Second, nil)
	if err != nil {
		return nil, err
	}
	res, err := parseAsyncSearch(data)
	if err != nil {
		return nil, err
	}
	if res.ID == "" {
		return nil, errors.New("malformed async search response: missing id")
	}
	return res, nil
}

// GetAsyncSearch fetches the current state of an async search, optionally
// blocking up to waitFor for completion. Unknown ids are fatal here; use
// PollAsyncSearch where absence is expected.
func (c *Client) GetAsyncSearch(ctx context.Context, id, waitFor string) (*AsyncSearchResponse, error) {
	params := url.Values{}
	if waitFor != "" {
		params.Set("wait_for_completion_timeout", waitFor)
	}
	data, _, err := c.get(ctx, "/_async_search/"+url.PathEscape(id), params, 120*time.Second, map[int]StatusHandler{
		http.StatusNotFound: {Behavior: Fail, Message: "search not found"},
	})
	if err != nil {
		return nil, err
	}
	return parseAsyncSearch(data)
}

// PollAsyncSearch fetches the state of an async search, reporting absence
// as a nil response instead of failing when the search has expired or was
// deleted.
func (c *Client) PollAsyncSearch(ctx context.Context, id string) (*AsyncSearchResponse, error) {
	data, ok, err := c.get(ctx, "/_async_search/"+url.PathEscape(id), nil, DefaultTimeout, map[int]StatusHandler{
		http.StatusNotFound: {Behavior: Suppress},
	})
	if err != nil || !ok {
		return nil, err
	}
	return parseAsyncSearch(data)
}

// DeleteAsyncSearch removes an async search and its kept results, reporting
// whether anything was deleted. The onMissing behavior decides how a 404 is
// treated: the delete command warns, the export cleanup stays silent.
func (c *Client) DeleteAsyncSearch(ctx context.Context, id string, onMissing ErrorBehavior) (bool, error) {
	_, ok, err := c.del(ctx, "/_async_search/"+url.PathEscape(id), nil, DefaultTimeout, map[int]StatusHandler{
		http.StatusNotFound: {Behavior: onMissing, Message: "search not found (may have already expired)"},
	})
	return ok, err
}

// WaitForAsyncSearch polls at the given interval until the search stops
// running. A search that disappears mid-wait counts as done and yields a
// nil response. With a positive timeout the wait gives up with
// ErrWaitTimeout while the search keeps running server-side. onProgress
// observes shard accounting on every poll.
func (c *Client) WaitForAsyncSearch(ctx context.Context, id string, interval, timeout time.Duration, onProgress func(shards Shards, elapsed time.Duration)) (*AsyncSearchResponse, error) {
	started := time.Now()
	for {
		res, err := c.PollAsyncSearch(ctx, id)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, nil
		}
		if onProgress != nil {
			onProgress(res.Response.Shards, time.Since(started))
		}
		if !res.IsRunning {
			return res, nil
		}
		if timeout > 0 && time.Since(started) >= timeout {
			return nil, ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
