// Package tools defines the tool descriptor, the response envelope and the
// registry the transports dispatch through, plus the OpenSearch and weather
// tools themselves.
package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/osmcp/osmcp/internal/models"
)

// ContentTypeText is the only content type tools produce.
const ContentTypeText = "text"

// Content is a single {type, text} record of a tool response.
type Content = models.ContentItem

// Envelope is the ordered sequence of records every tool returns, on success
// and on failure alike.
type Envelope []Content

// TextEnvelope returns a one-record text envelope.
func TextEnvelope(text string) Envelope {
	return Envelope{{Type: ContentTypeText, Text: text}}
}

// Text joins the text of every record with newlines.
func (e Envelope) Text() string {
	parts := make([]string, len(e))
	for i, c := range e {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n")
}

// Result is the outcome of one invocation. Content is always a well-formed
// envelope; Err keeps the underlying fault for logging and is never sent to
// the caller.
type Result struct {
	Content Envelope
	IsError bool
	Err     error
}

// Success wraps text as a successful result.
func Success(text string) Result {
	return Result{Content: TextEnvelope(text)}
}

// Failure wraps the caller-facing text of a failed invocation.
func Failure(text string, err error) Result {
	return Result{Content: TextEnvelope(text), IsError: true, Err: err}
}

// Tool represents a callable function the host can invoke
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	// Args is the zero value of the argument struct Execute decodes into.
	// Transports that derive schemas from Go types reflect on it.
	Args interface{}
	// Execute runs the tool on arguments that already passed InputSchema.
	// It never panics and always returns a well-formed envelope.
	Execute func(ctx context.Context, input map[string]interface{}) Result
}

// IndexLister lists cluster indices as cat indices records.
type IndexLister interface {
	ListIndices(ctx context.Context) ([]map[string]interface{}, error)
}

// MappingGetter fetches the mapping document of an index.
type MappingGetter interface {
	GetMapping(ctx context.Context, index string) (json.RawMessage, error)
}

// Searcher runs a query DSL document against an index.
type Searcher interface {
	Search(ctx context.Context, index string, query interface{}) (json.RawMessage, error)
}

// ShardsGetter fetches cat shards rows for an index.
type ShardsGetter interface {
	GetShards(ctx context.Context, index string) (models.ShardsResult, error)
}

// OpenSearch is the full set of cluster calls the OpenSearch tools need.
type OpenSearch interface {
	IndexLister
	MappingGetter
	Searcher
	ShardsGetter
}

// WeatherClient fetches the forecast overview for a JMA area code.
type WeatherClient interface {
	FetchOverview(ctx context.Context, areaCode string) (*models.ForecastOverview, error)
}
