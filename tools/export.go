package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"heckel.io/esctl/client"
	"heckel.io/esctl/util"
	"io"
	"time"
)

// ExportOptions configures a full export run. Zero values fall back to the
// documented defaults.
type ExportOptions struct {
	Index          string
	Query          string
	PageSize       int           // default 1000
	KeepAlive      string        // cursor keep-alive, default 10m
	FromDate       string        // inclusive lower time bound, optional
	ToDate         string        // exclusive upper time bound, optional
	TimestampField string        // default @timestamp
	WaitTimeout    time.Duration // cap on the async wait phase, 0 waits forever
}

const exportPollInterval = 5 * time.Second

// PrepareQuery turns the caller's raw query document into the export query:
// optional time-range filter, default sort, page size.
func PrepareQuery(opts ExportOptions) (string, error) {
	query, err := WithTimeRange(opts.Query, opts.TimestampField, opts.FromDate, opts.ToDate)
	if err != nil {
		return "", err
	}
	if query, err = WithDefaultSort(query, opts.TimestampField); err != nil {
		return "", err
	}
	return WithSize(query, opts.PageSize)
}

// Export runs the full pipeline: prepare the query, run it as an async
// search to completion, then drain the result set through a cursor pager.
// Progress goes to the status writer; the hits come back in sort order.
func Export(ctx context.Context, c *client.Client, logger *zap.Logger, status io.Writer, opts ExportOptions) ([]json.RawMessage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.KeepAlive == "" {
		opts.KeepAlive = "10m"
	}
	if opts.TimestampField == "" {
		opts.TimestampField = "@timestamp"
	}
	release := c.Session()
	defer release()

	query, err := PrepareQuery(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("prepared export query", zap.String("query", query))

	// The async search validates the query and warms up frozen indices
	// before any cursor is opened
	fmt.Fprintf(status, "Starting export from %s\n", opts.Index)
	res, err := c.SubmitAsyncSearch(ctx, opts.Index, query, client.DefaultWaitFor, client.DefaultKeepAlive)
	if err != nil {
		return nil, err
	}
	searchID := res.ID
	defer func() {
		if _, derr := c.DeleteAsyncSearch(ctx, searchID, client.Suppress); derr != nil {
			logger.Warn("failed to delete async search", zap.String("id", searchID), zap.Error(derr))
		}
	}()

	bar := util.NewProgressBar(status)
	if res.IsRunning {
		res, err = c.WaitForAsyncSearch(ctx, searchID, exportPollInterval, opts.WaitTimeout, func(shards client.Shards, elapsed time.Duration) {
			bar.Status(fmt.Sprintf("running async search, shards %s, elapsed %ds", shards, int(elapsed.Seconds())))
		})
		bar.Clear()
		if err != nil {
			return nil, err
		}
	}
	if res != nil {
		fmt.Fprintf(status, "Initial search complete, got %d hits in first page\n", len(res.Hits()))
		if res.Response.Hits != nil {
			bar.SetTotal(res.Response.Hits.TotalCount())
		}
	}

	pager := &Pager{
		Client:    c,
		Logger:    logger,
		Index:     opts.Index,
		KeepAlive: opts.KeepAlive,
		OnPage: func(page int, hits []json.RawMessage) {
			var size int64
			for _, hit := range hits {
				size += int64(len(hit))
			}
			bar.Add(len(hits), size)
		},
	}
	hits, err := pager.Run(ctx, query)
	if err != nil {
		return nil, err
	}
	bar.Done()
	fmt.Fprintf(status, "Export complete! Total documents: %d\n", len(hits))
	return hits, nil
}
