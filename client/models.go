package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/tidwall/gjson"
)

// Shards is the shard accounting block attached to search responses.
type Shards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// String renders shard progress the way the status commands print it.
func (s Shards) String() string {
	return fmt.Sprintf("%d/%d (skipped: %d, failed: %d)", s.Successful, s.Total, s.Skipped, s.Failed)
}

// HitsContainer holds the raw hit documents plus the total-hits block,
// which is either a plain number or {"value": n, "relation": "eq"}
// depending on cluster settings.
type HitsContainer struct {
	Total json.RawMessage   `json:"total"`
	Hits  []json.RawMessage `json:"hits"`
}

// TotalCount returns the reported total hit count in either encoding.
func (h *HitsContainer) TotalCount() int {
	if h == nil || len(h.Total) == 0 {
		return 0
	}
	total := gjson.ParseBytes(h.Total)
	if total.Type == gjson.Number {
		return int(total.Int())
	}
	return int(total.Get("value").Int())
}

// ResponseBody is the inner search response carried by an async search.
type ResponseBody struct {
	Shards   Shards         `json:"_shards"`
	Hits     *HitsContainer `json:"hits"`
	Took     int            `json:"took"`
	TimedOut bool           `json:"timed_out"`
}

// AsyncSearchResponse is the envelope returned by the async search API.
type AsyncSearchResponse struct {
	ID        string        `json:"id"`
	IsRunning bool          `json:"is_running"`
	IsPartial bool          `json:"is_partial"`
	Response  *ResponseBody `json:"response"`
}

// Hits returns the raw hit documents received so far.
func (r *AsyncSearchResponse) Hits() []json.RawMessage {
	if r == nil || r.Response == nil || r.Response.Hits == nil {
		return nil
	}
	return r.Response.Hits.Hits
}

func parseAsyncSearch(data []byte) (*AsyncSearchResponse, error) {
	var res AsyncSearchResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("malformed async search response: %w", err)
	}
	if res.Response == nil {
		return nil, errors.New("malformed async search response: missing response body")
	}
	return &res, nil
}

// SearchResponse is a plain search response, as returned by PIT searches.
// The pit_id field carries the rotated cursor id to use for the next page.
type SearchResponse struct {
	PITID string         `json:"pit_id"`
	Hits  *HitsContainer `json:"hits"`
}

func parseSearch(data []byte) (*SearchResponse, error) {
	var res SearchResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}
	if res.Hits == nil {
		return nil, errors.New("malformed search response: missing hits")
	}
	return &res, nil
}

// PITResponse identifies a point-in-time cursor. It doubles as the close
// request body.
type PITResponse struct {
	ID string `json:"id"`
}

// IndexInfo is one row of GET /_cat/indices?format=json. The cat API
// returns every column as a string.
type IndexInfo struct {
	Index        string `json:"index"`
	Health       string `json:"health"`
	Status       string `json:"status"`
	Pri          string `json:"pri,omitempty"`
	Rep          string `json:"rep,omitempty"`
	DocsCount    string `json:"docs.count"`
	StoreSize    string `json:"store.size"`
	CreationDate string `json:"creation.date"`
}

// AliasInfo is one row of GET /_cat/aliases?format=json.
type AliasInfo struct {
	Alias         string `json:"alias"`
	Index         string `json:"index"`
	Filter        string `json:"filter"`
	RoutingIndex  string `json:"routing.index"`
	RoutingSearch string `json:"routing.search"`
}

// ILMIndexInfo is the lifecycle state of one index.
type ILMIndexInfo struct {
	Index   string `json:"index"`
	Managed bool   `json:"managed"`
	Policy  string `json:"policy,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Action  string `json:"action,omitempty"`
	Step    string `json:"step,omitempty"`
	Age     string `json:"age,omitempty"`
}

// ILMExplainResponse maps index names to their lifecycle state.
type ILMExplainResponse struct {
	Indices map[string]ILMIndexInfo `json:"indices"`
}

// AliasConfig is the per-index configuration of one alias membership.
type AliasConfig struct {
	Filter        json.RawMessage `json:"filter,omitempty"`
	IndexRouting  string          `json:"index_routing,omitempty"`
	SearchRouting string          `json:"search_routing,omitempty"`
	IsWriteIndex  *bool           `json:"is_write_index,omitempty"`
}

// IndexAliases lists the aliases of one index, as returned by GET /_alias.
type IndexAliases struct {
	Aliases map[string]AliasConfig `json:"aliases"`
}

// DateAggValue is a min/max date aggregation result. Value is null when the
// index holds no documents with the field.
type DateAggValue struct {
	Value         *float64 `json:"value"`
	ValueAsString string   `json:"value_as_string,omitempty"`
}

// DateRange is the oldest and newest value of a date field, as ISO strings.
// Either side is empty when no documents carry the field.
type DateRange struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// ClusterVersion is the version block of the cluster banner.
type ClusterVersion struct {
	Number        string `json:"number"`
	BuildFlavor   string `json:"build_flavor"`
	BuildType     string `json:"build_type"`
	BuildDate     string `json:"build_date"`
	LuceneVersion string `json:"lucene_version"`
}

// ClusterInfo is the banner returned by GET /.
type ClusterInfo struct {
	Name        string         `json:"name"`
	ClusterName string         `json:"cluster_name"`
	ClusterUUID string         `json:"cluster_uuid"`
	Version     ClusterVersion `json:"version"`
	Tagline     string         `json:"tagline"`
}
