// Package tools implements the export pipeline: query preparation, cursor
// paging and the async-search-then-page orchestration, plus the JSONL
// extraction engine.
package tools

import (
	"fmt"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// WithTimeRange merges a half-open [from, to) range filter on the given
// date field into the query document, preserving whatever the caller wrote.
// A non-bool query is first wrapped under bool.must so the filter can sit
// next to it; an existing filter list is appended to, never replaced.
func WithTimeRange(query, field, from, to string) (string, error) {
	if from == "" && to == "" {
		return query, nil
	}
	q := gjson.Get(query, "query")
	var err error
	switch {
	case !q.Exists():
		query, err = sjson.SetRaw(query, "query", `{"bool":{"filter":[]}}`)
	case !q.Get("bool").Exists():
		query, err = sjson.SetRaw(query, "query", fmt.Sprintf(`{"bool":{"must":[%s],"filter":[]}}`, q.Raw))
	case !q.Get("bool.filter").Exists():
		query, err = sjson.SetRaw(query, "query.bool.filter", `[]`)
	}
	if err != nil {
		return "", err
	}
	// A caller-supplied filter may be a single clause rather than a list
	if f := gjson.Get(query, "query.bool.filter"); !f.IsArray() {
		query, err = sjson.SetRaw(query, "query.bool.filter", "["+f.Raw+"]")
		if err != nil {
			return "", err
		}
	}
	bounds := "{}"
	if from != "" {
		if bounds, err = sjson.Set(bounds, "gte", from); err != nil {
			return "", err
		}
	}
	if to != "" {
		if bounds, err = sjson.Set(bounds, "lt", to); err != nil {
			return "", err
		}
	}
	return sjson.SetRaw(query, "query.bool.filter.-1", fmt.Sprintf(`{"range":{%q:%s}}`, field, bounds))
}

// WithDefaultSort sorts ascending by the timestamp field unless the caller
// already chose a sort order.
func WithDefaultSort(query, field string) (string, error) {
	if gjson.Get(query, "sort").Exists() {
		return query, nil
	}
	return sjson.SetRaw(query, "sort", fmt.Sprintf(`[{%q:"asc"}]`, field))
}

// WithSize sets the number of hits each search request returns.
func WithSize(query string, size int) (string, error) {
	return sjson.Set(query, "size", size)
}

// withTiebreaker appends the _shard_doc tie-breaker to the sort so cursor
// pagination is total-ordered even when sort keys collide. A bare object or
// string sort is wrapped into a list first.
func withTiebreaker(query string) (string, error) {
	sort := gjson.Get(query, "sort")
	var err error
	if !sort.Exists() {
		query, err = sjson.SetRaw(query, "sort", `[]`)
	} else if !sort.IsArray() {
		query, err = sjson.SetRaw(query, "sort", "["+sort.Raw+"]")
	}
	if err != nil {
		return "", err
	}
	return sjson.SetRaw(query, "sort.-1", `{"_shard_doc":"asc"}`)
}

// withPIT attaches the cursor to the query. Cursor searches must not name
// an index; the cursor already pins one.
func withPIT(query, id, keepAlive string) (string, error) {
	query, err := sjson.Set(query, "pit.id", id)
	if err != nil {
		return "", err
	}
	return sjson.Set(query, "pit.keep_alive", keepAlive)
}

// withSearchAfter resumes the query after the sort values of the last seen
// hit.
func withSearchAfter(query, sortValues string) (string, error) {
	return sjson.SetRaw(query, "search_after", sortValues)
}
