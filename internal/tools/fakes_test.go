package tools_test

import (
	"context"
	"encoding/json"

	"github.com/osmcp/osmcp/internal/models"
)

type fakeCluster struct {
	indices    []map[string]interface{}
	mapping    json.RawMessage
	searchResp json.RawMessage
	shards     models.ShardsResult
	err        error
	panicWith  interface{}

	lastIndex string
	lastQuery interface{}
	calls     int
}

func (f *fakeCluster) ListIndices(ctx context.Context) ([]map[string]interface{}, error) {
	f.calls++
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.indices, f.err
}

func (f *fakeCluster) GetMapping(ctx context.Context, index string) (json.RawMessage, error) {
	f.calls++
	f.lastIndex = index
	return f.mapping, f.err
}

func (f *fakeCluster) Search(ctx context.Context, index string, query interface{}) (json.RawMessage, error) {
	f.calls++
	f.lastIndex = index
	f.lastQuery = query
	return f.searchResp, f.err
}

func (f *fakeCluster) GetShards(ctx context.Context, index string) (models.ShardsResult, error) {
	f.calls++
	f.lastIndex = index
	return f.shards, f.err
}

type fakeWeather struct {
	overview *models.ForecastOverview
	err      error

	codes []string
}

func (f *fakeWeather) FetchOverview(ctx context.Context, areaCode string) (*models.ForecastOverview, error) {
	f.codes = append(f.codes, areaCode)
	return f.overview, f.err
}
