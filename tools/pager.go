package tools

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"heckel.io/esctl/client"
)

// Pager drains a query through a point-in-time cursor, page by page, in a
// stable total order. The cursor is closed on every exit path; close
// failures are logged, never escalated over the original error.
type Pager struct {
	Client    *client.Client
	Logger    *zap.Logger
	Index     string
	KeepAlive string
	OnPage    func(page int, hits []json.RawMessage)
}

// Run pages through all documents matching the query. The query should
// already carry sort and size; Run adds the tie-breaker, the cursor and the
// search_after resumption marker, rebuilding the page request from the base
// query every round.
func (p *Pager) Run(ctx context.Context, query string) ([]json.RawMessage, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := withTiebreaker(query)
	if err != nil {
		return nil, err
	}
	pitID, err := p.Client.OpenPIT(ctx, p.Index, p.KeepAlive)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Close the latest rotated cursor id, not necessarily the one open returned
		if cerr := p.Client.ClosePIT(ctx, pitID); cerr != nil {
			logger.Warn("failed to close point-in-time cursor", zap.Error(cerr))
		}
	}()

	var all []json.RawMessage
	searchAfter := ""
	for page := 1; ; page++ {
		pq, err := withPIT(base, pitID, p.KeepAlive)
		if err != nil {
			return nil, err
		}
		if searchAfter != "" {
			if pq, err = withSearchAfter(pq, searchAfter); err != nil {
				return nil, err
			}
		}
		res, err := p.Client.SearchWithPIT(ctx, pq)
		if err != nil {
			return nil, err
		}
		hits := res.Hits.Hits
		if len(hits) == 0 {
			break
		}
		all = append(all, hits...)
		last := gjson.GetBytes(hits[len(hits)-1], "sort")
		if !last.Exists() {
			return nil, errors.New("hit without sort values, cannot resume pagination")
		}
		searchAfter = last.Raw
		if res.PITID != "" {
			pitID = res.PITID
		}
		if p.OnPage != nil {
			p.OnPage(page, hits)
		}
	}
	return all, nil
}
