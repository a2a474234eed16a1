package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOpenPIT(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/logs-2024/_pit", r.URL.Path)
		assert.Equal(t, "10m", r.URL.Query().Get("keep_alive"))
		w.Write([]byte(`{"id":"pit-abc"}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", nil)
	id, err := c.OpenPIT(context.Background(), "logs-2024", "10m")
	require.NoError(t, err)
	assert.Equal(t, "pit-abc", id)
}

func TestOpenPITMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", nil)
	_, err := c.OpenPIT(context.Background(), "logs", "10m")
	require.EqualError(t, err, "malformed point-in-time response: missing id")
}

func TestClosePIT(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/_pit", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"pit-abc"}`, string(body))
		w.Write([]byte(`{"succeeded":true,"num_freed":1}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", nil)
	require.NoError(t, c.ClosePIT(context.Background(), "pit-abc"))
}

func TestClosePITAlreadyGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, "key", nil)
	assert.NoError(t, c.ClosePIT(context.Background(), "pit-gone"))
}

func TestSearchWithPIT(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/_search", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "pit-abc", gjson.GetBytes(body, "pit.id").String())
		w.Write([]byte(`{"pit_id":"pit-rotated","hits":{"total":{"value":2,"relation":"eq"},"hits":[{"_id":"1","sort":[1]},{"_id":"2","sort":[2]}]}}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", nil)
	res, err := c.SearchWithPIT(context.Background(), `{"pit":{"id":"pit-abc","keep_alive":"10m"},"sort":[{"_shard_doc":"asc"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "pit-rotated", res.PITID)
	assert.Len(t, res.Hits.Hits, 2)
	assert.Equal(t, 2, res.Hits.TotalCount())
}

func TestSearchWithPITMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"took":1}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", nil)
	_, err := c.SearchWithPIT(context.Background(), `{}`)
	require.EqualError(t, err, "malformed search response: missing hits")
}
