package tools

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"heckel.io/esctl/client"
)

func TestPrepareQuery(t *testing.T) {
	query, err := PrepareQuery(ExportOptions{
		Query:          `{"query":{"match":{"message":"error"}}}`,
		PageSize:       500,
		FromDate:       "2024-01-01",
		ToDate:         "2024-02-01",
		TimestampField: "@timestamp",
	})
	require.NoError(t, err)
	assert.Equal(t, "error", gjson.Get(query, "query.bool.must.0.match.message").String())
	assert.Equal(t, "2024-01-01", gjson.Get(query, `query.bool.filter.0.range.\@timestamp.gte`).String())
	assert.Equal(t, "asc", gjson.Get(query, `sort.0.\@timestamp`).String())
	assert.EqualValues(t, 500, gjson.Get(query, "size").Int())
}

func TestExportEndToEnd(t *testing.T) {
	f := newFakeCluster(t, "logs", 5)
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	hits, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index:    "logs",
		Query:    `{"query":{"match_all":{}}}`,
		PageSize: 2,
	})
	require.NoError(t, err)
	require.Len(t, hits, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, docValues(t, hits))

	assert.Equal(t, 1, f.asyncSubmits)
	assert.Equal(t, 1, f.asyncDeletes)
	assert.Equal(t, 1, f.pitOpens)
	assert.Equal(t, 1, f.pitCloses)
	assert.Equal(t, 4, f.searchCount)

	// The submitted query carries page size and the default sort
	assert.EqualValues(t, 2, gjson.Get(f.submitBody, "size").Int())
	assert.Equal(t, "asc", gjson.Get(f.submitBody, `sort.0.\@timestamp`).String())

	out := status.String()
	assert.Contains(t, out, "Starting export from logs")
	assert.Contains(t, out, "Initial search complete, got 2 hits in first page")
	assert.Contains(t, out, "Export complete! Total documents: 5")
}

func TestExportTimeFilterOnWire(t *testing.T) {
	f := newFakeCluster(t, "logs", 3)
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	_, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index:          "logs",
		Query:          `{"query":{"term":{"env":"prod"}}}`,
		FromDate:       "2024-01-01",
		ToDate:         "2024-02-01",
		TimestampField: "event.created",
	})
	require.NoError(t, err)
	assert.Equal(t, "prod", gjson.Get(f.submitBody, "query.bool.must.0.term.env").String())
	assert.Equal(t, "2024-01-01", gjson.Get(f.submitBody, `query.bool.filter.0.range.event\.created.gte`).String())
	assert.Equal(t, "2024-02-01", gjson.Get(f.submitBody, `query.bool.filter.0.range.event\.created.lt`).String())
	assert.Equal(t, "asc", gjson.Get(f.submitBody, `sort.0.event\.created`).String())
}

func TestExportNoDocuments(t *testing.T) {
	f := newFakeCluster(t, "logs", 0)
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	hits, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index: "logs",
		Query: `{}`,
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 1, f.searchCount)
	assert.Equal(t, 1, f.pitCloses)
	assert.Equal(t, 1, f.asyncDeletes)
	assert.Contains(t, status.String(), "Export complete! Total documents: 0")
}

func TestExportWaitPhase(t *testing.T) {
	f := newFakeCluster(t, "logs", 5)
	f.submitRunning = true
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	hits, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index:    "logs",
		Query:    `{}`,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, hits, 5)
	assert.Equal(t, 1, f.asyncPolls)
	assert.Contains(t, status.String(), "Initial search complete")
}

func TestExportWaitTimeout(t *testing.T) {
	f := newFakeCluster(t, "logs", 5)
	f.submitRunning = true
	f.runningPolls = 1000
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	_, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index:       "logs",
		Query:       `{}`,
		WaitTimeout: time.Nanosecond,
	})
	assert.ErrorIs(t, err, client.ErrWaitTimeout)
	// The search is cleaned up even on a timed out wait, the cursor is
	// never opened
	assert.Equal(t, 1, f.asyncDeletes)
	assert.Equal(t, 0, f.pitOpens)
	assert.Equal(t, 0, f.searchCount)
}

func TestExportSearchVanishesDuringWait(t *testing.T) {
	f := newFakeCluster(t, "logs", 3)
	f.submitRunning = true
	f.asyncGone = true
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	hits, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index: "logs",
		Query: `{}`,
	})
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	assert.NotContains(t, status.String(), "Initial search complete")
	assert.Contains(t, status.String(), "Export complete! Total documents: 3")
}

func TestExportSubmitFails(t *testing.T) {
	f := newFakeCluster(t, "logs", 5)
	f.failSubmit = true
	server := httptest.NewServer(f.handler())
	defer server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	_, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index: "logs",
		Query: `{}`,
	})
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 0, f.asyncDeletes)
	assert.Equal(t, 0, f.pitOpens)
}

func TestExportConnectError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	var status bytes.Buffer
	c := client.New(server.URL, "key", nil)
	_, err := Export(context.Background(), c, zap.NewNop(), &status, ExportOptions{
		Index: "logs",
		Query: `{}`,
	})
	var connErr *client.ConnectError
	require.ErrorAs(t, err, &connErr)
}
