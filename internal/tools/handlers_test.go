package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/osmcp/osmcp/internal/errorsx"
	"github.com/osmcp/osmcp/internal/models"
	"github.com/osmcp/osmcp/internal/tools"
)

func invoke(t *testing.T, reg *tools.Registry, name string, args map[string]interface{}) tools.Result {
	t.Helper()
	res, err := reg.Invoke(context.Background(), name, args)
	if err != nil {
		t.Fatalf("Invoke %s: %v", name, err)
	}
	if len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Fatalf("malformed envelope: %+v", res.Content)
	}
	return res
}

func TestListIndices(t *testing.T) {
	cluster := &fakeCluster{indices: []map[string]interface{}{
		{"index": "logs-2024", "health": "green"},
		{"index": "docs", "health": "yellow"},
	}}
	reg := defaultRegistry(t, cluster, nil)

	res := invoke(t, reg, "ListIndexTool", nil)
	if res.IsError {
		t.Fatalf("unexpected failure: %s", res.Content.Text())
	}
	if got := res.Content.Text(); got != "logs-2024\ndocs" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestListIndicesFailures(t *testing.T) {
	tests := []struct {
		name    string
		cluster *fakeCluster
		want    string
		reason  errorsx.ReasonCode
	}{
		{
			name:    "collaborator fault",
			cluster: &fakeCluster{err: errors.New("connection refused")},
			want:    "Error listing indices: connection refused",
			reason:  errorsx.ReasonCollaborator,
		},
		{
			name:    "record without index",
			cluster: &fakeCluster{indices: []map[string]interface{}{{"health": "green"}}},
			want:    "Error listing indices: index record 0 has no index name",
			reason:  errorsx.ReasonMalformed,
		},
		{
			name:    "panic",
			cluster: &fakeCluster{panicWith: "boom"},
			want:    "Error listing indices: panic: boom",
			reason:  errorsx.ReasonPanic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := invoke(t, defaultRegistry(t, tt.cluster, nil), "ListIndexTool", nil)
			if !res.IsError {
				t.Fatal("expected failure")
			}
			if got := res.Content.Text(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if errorsx.Reason(res.Err) != tt.reason {
				t.Errorf("expected reason %s, got %s", tt.reason, errorsx.Reason(res.Err))
			}
		})
	}
}

func TestIndexMapping(t *testing.T) {
	cluster := &fakeCluster{mapping: []byte(`{"docs":{"mappings":{"properties":{"title":{"type":"text"}}}}}`)}
	reg := defaultRegistry(t, cluster, nil)

	res := invoke(t, reg, "IndexMappingTool", map[string]interface{}{"index": "docs"})
	if res.IsError {
		t.Fatalf("unexpected failure: %s", res.Content.Text())
	}
	if cluster.lastIndex != "docs" {
		t.Errorf("expected index docs, got %q", cluster.lastIndex)
	}

	want := `Mapping for docs:
{
  "docs": {
    "mappings": {
      "properties": {
        "title": {
          "type": "text"
        }
      }
    }
  }
}`
	if got := res.Content.Text(); got != want {
		t.Errorf("unexpected text:\n%s", got)
	}
}

func TestIndexMappingEscapesNonASCII(t *testing.T) {
	cluster := &fakeCluster{mapping: []byte(`{"文書":{"_meta":{"note":"説明 😀","tab":"a\tb"}}}`)}
	reg := defaultRegistry(t, cluster, nil)

	res := invoke(t, reg, "IndexMappingTool", map[string]interface{}{"index": "文書"})

	want := `Mapping for 文書:
{
  "\u6587\u66f8": {
    "_meta": {
      "note": "\u8aac\u660e \ud83d\ude00",
      "tab": "a\tb"
    }
  }
}`
	if got := res.Content.Text(); got != want {
		t.Errorf("unexpected text:\n%s", got)
	}
}

func TestIndexMappingTimeout(t *testing.T) {
	reg := defaultRegistry(t, &fakeCluster{err: errors.New("timeout")}, nil)

	res := invoke(t, reg, "IndexMappingTool", map[string]interface{}{"index": "docs"})
	if !res.IsError {
		t.Fatal("expected failure")
	}
	if got := res.Content.Text(); got != "Error getting mapping: timeout" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestSearchIndexRedactsHits(t *testing.T) {
	cluster := &fakeCluster{searchResp: []byte(`{
		"took": 3,
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "1", "_source": {"title": "東京", "embedding": [0.1, 0.2], "metadata": {"page": 4, "_node_content": "{\"big\":true}"}}},
				{"_id": "2", "_source": {"title": "plain", "metadata": "not an object"}},
				{"_id": "3"}
			]
		}
	}`)}
	reg := defaultRegistry(t, cluster, nil)

	res := invoke(t, reg, "SearchIndexTool", map[string]interface{}{
		"index": "docs",
		"query": map[string]interface{}{"query": map[string]interface{}{"match_all": map[string]interface{}{}}},
	})
	if res.IsError {
		t.Fatalf("unexpected failure: %s", res.Content.Text())
	}

	text := res.Content.Text()
	const prefix = "Original Search results from docs:\n"
	if !strings.HasPrefix(text, prefix) {
		t.Fatalf("missing prefix: %q", text)
	}
	if strings.Contains(text, "embedding") || strings.Contains(text, "_node_content") {
		t.Errorf("redacted fields leaked: %s", text)
	}
	if !strings.Contains(text, `"title": "\u6771\u4eac"`) {
		t.Errorf("non-ASCII title not escaped: %s", text)
	}

	var doc struct {
		Took int `json:"took"`
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(text, prefix)), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc.Took != 3 || len(doc.Hits.Hits) != 3 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	first := doc.Hits.Hits[0].Source
	if first["title"] != "東京" {
		t.Errorf("title changed: %v", first["title"])
	}
	meta, _ := first["metadata"].(map[string]interface{})
	if meta["page"] != float64(4) || len(meta) != 1 {
		t.Errorf("metadata not preserved: %v", meta)
	}
	if doc.Hits.Hits[1].Source["metadata"] != "not an object" {
		t.Errorf("non-object metadata changed: %v", doc.Hits.Hits[1].Source)
	}
}

func TestSearchIndexPassesQueryThrough(t *testing.T) {
	cluster := &fakeCluster{searchResp: []byte(`{}`)}
	reg := defaultRegistry(t, cluster, nil)

	query := `{"query":{"term":{"status":"open"}}}`
	invoke(t, reg, "SearchIndexTool", map[string]interface{}{"index": "docs", "query": query})
	if cluster.lastQuery != query {
		t.Errorf("expected query passed verbatim, got %#v", cluster.lastQuery)
	}
}

func TestSearchIndexFailure(t *testing.T) {
	reg := defaultRegistry(t, &fakeCluster{err: errors.New("index_not_found_exception")}, nil)
	res := invoke(t, reg, "SearchIndexTool", map[string]interface{}{"index": "nope", "query": map[string]interface{}{}})
	if got := res.Content.Text(); !res.IsError || got != "Error searching index: index_not_found_exception" {
		t.Errorf("unexpected result %v %q", res.IsError, got)
	}
}

func TestGetShardsTable(t *testing.T) {
	cluster := &fakeCluster{shards: models.ShardsResult{Shards: []map[string]interface{}{
		{"index": "docs", "shard": "0", "prirep": "p", "state": "STARTED", "docs": "10", "store": "5kb", "ip": "10.0.0.1", "node": "node-a"},
		{"index": "docs", "shard": "0", "prirep": "r", "state": "UNASSIGNED", "docs": nil, "store": nil, "ip": nil, "node": nil},
	}}}
	reg := defaultRegistry(t, cluster, nil)

	res := invoke(t, reg, "GetShardsTool", map[string]interface{}{"index": "docs"})
	if res.IsError {
		t.Fatalf("unexpected failure: %s", res.Content.Text())
	}

	want := "index | shard | prirep | state | docs | store | ip | node\n" +
		"docs | 0 | p | STARTED | 10 | 5kb | 10.0.0.1 | node-a\n" +
		"docs | 0 | r | UNASSIGNED |  |  |  | \n"
	if got := res.Content.Text(); got != want {
		t.Errorf("unexpected table:\n%q\nwant\n%q", got, want)
	}
}

func TestGetShardsClusterError(t *testing.T) {
	cluster := &fakeCluster{shards: models.ShardsResult{Error: "cluster unavailable"}}
	reg := defaultRegistry(t, cluster, nil)

	res := invoke(t, reg, "GetShardsTool", map[string]interface{}{"index": "docs"})
	got := res.Content.Text()
	if got != "Error getting shards: cluster unavailable" {
		t.Errorf("unexpected text %q", got)
	}
	if strings.Contains(got, "prirep") {
		t.Error("header emitted for cluster error")
	}
}

func TestGetShardsFaults(t *testing.T) {
	tests := []struct {
		name    string
		cluster *fakeCluster
		want    string
	}{
		{"transport", &fakeCluster{err: errors.New("connection reset")}, "Error getting shards information: connection reset"},
		{"missing column", &fakeCluster{shards: models.ShardsResult{Shards: []map[string]interface{}{{"index": "docs"}}}},
			`Error getting shards information: shard 0 is missing "shard"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := invoke(t, defaultRegistry(t, tt.cluster, nil), "GetShardsTool", map[string]interface{}{"index": "docs"})
			if !res.IsError || res.Content.Text() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, res.Content.Text())
			}
		})
	}
}

func TestGetWeather(t *testing.T) {
	weather := &fakeWeather{overview: &models.ForecastOverview{
		PublishingOffice: "気象庁",
		ReportDatetime:   "2024-05-01T10:41:00+09:00",
		Text:             "東京地方は晴れています。",
	}}
	reg := defaultRegistry(t, &fakeCluster{}, weather)

	res := invoke(t, reg, "GetWeatherTool", map[string]interface{}{"prefecture": "東京都"})
	if res.IsError {
		t.Fatalf("unexpected failure: %s", res.Content.Text())
	}
	if len(weather.codes) != 1 || weather.codes[0] != "130000" {
		t.Errorf("expected area code 130000, got %v", weather.codes)
	}
	want := "Weather overview for 東京都\nPublishing office: 気象庁\nReport time: 2024-05-01T10:41:00+09:00\n\n東京地方は晴れています。"
	if got := res.Content.Text(); got != want {
		t.Errorf("unexpected text %q", got)
	}
}

func TestGetWeatherDefaults(t *testing.T) {
	weather := &fakeWeather{overview: &models.ForecastOverview{}}
	reg := defaultRegistry(t, &fakeCluster{}, weather)

	res := invoke(t, reg, "GetWeatherTool", map[string]interface{}{"prefecture": "沖縄県"})
	want := "Weather overview for 沖縄県\nPublishing office: unknown\nReport time: unknown\n\nweather information unavailable"
	if got := res.Content.Text(); got != want {
		t.Errorf("unexpected text %q", got)
	}
	if weather.codes[0] != "471000" {
		t.Errorf("expected 471000, got %s", weather.codes[0])
	}
}

func TestGetWeatherUnsupportedPrefecture(t *testing.T) {
	weather := &fakeWeather{}
	reg := defaultRegistry(t, &fakeCluster{}, weather)

	res := invoke(t, reg, "GetWeatherTool", map[string]interface{}{"prefecture": "Tokyo"})
	if len(weather.codes) != 0 {
		t.Errorf("network called for unsupported prefecture: %v", weather.codes)
	}
	if !strings.HasPrefix(res.Content.Text(), "Unsupported prefecture: Tokyo. Please specify one of the 47 prefectures of Japan") {
		t.Errorf("unexpected text %q", res.Content.Text())
	}
	if !errorsx.HasReason(res.Err, errorsx.ReasonUnsupportedInput) {
		t.Errorf("expected unsupported_input, got %s", errorsx.Reason(res.Err))
	}
}

func TestGetWeatherHidesFaultDetail(t *testing.T) {
	faults := []error{
		errors.New("dial tcp: lookup www.jma.go.jp: no such host"),
		errors.New("forecast service returned status: 503 Service Unavailable"),
		context.DeadlineExceeded,
	}
	for _, fault := range faults {
		t.Run(fault.Error(), func(t *testing.T) {
			reg := defaultRegistry(t, &fakeCluster{}, &fakeWeather{err: fault})
			res := invoke(t, reg, "GetWeatherTool", map[string]interface{}{"prefecture": "大阪府"})
			if !res.IsError {
				t.Fatal("expected failure")
			}
			if got := res.Content.Text(); got != "Failed to retrieve weather information. Please try again later." {
				t.Errorf("unexpected text %q", got)
			}
			if !errors.Is(res.Err, fault) {
				t.Errorf("underlying fault not kept for logging: %v", res.Err)
			}
		})
	}
}
