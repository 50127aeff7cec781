package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/osmcp/osmcp/internal/models"
	"github.com/tidwall/gjson"
)

// OpenSearchService issues REST calls against an OpenSearch cluster.
//
// Requests are built with the esapi request types and performed directly on an
// elastictransport client; the higher-level elasticsearch.Client refuses to
// talk to servers that do not identify as Elasticsearch.
type OpenSearchService struct {
	transport       esapi.Transport
	allowedPatterns []string // index patterns that are permitted
}

// NewOpenSearchService creates a cluster client for rawURL. Retries are off
// unless maxRetries is positive.
func NewOpenSearchService(rawURL, user, password string, verifyCerts bool, maxRetries int, allowedPatterns []string) (*OpenSearchService, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse opensearch url: %w", err)
	}

	cfg := elastictransport.Config{
		URLs:         []*url.URL{u},
		MaxRetries:   maxRetries,
		DisableRetry: maxRetries <= 0,
	}
	if user != "" {
		cfg.Username = user
		cfg.Password = password
	}
	if !verifyCerts {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}

	tp, err := elastictransport.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("elastictransport.New: %w", err)
	}
	return NewOpenSearchServiceWithTransport(tp, allowedPatterns), nil
}

// NewOpenSearchServiceWithTransport wraps an existing transport.
func NewOpenSearchServiceWithTransport(tp esapi.Transport, allowedPatterns []string) *OpenSearchService {
	return &OpenSearchService{
		transport:       tp,
		allowedPatterns: allowedPatterns,
	}
}

// IsIndexAllowed returns true if the index matches any of the allowed patterns.
// If no patterns are configured, all indices are allowed.
func (s *OpenSearchService) IsIndexAllowed(index string) bool {
	if len(s.allowedPatterns) == 0 {
		return true
	}
	for _, pattern := range s.allowedPatterns {
		matched, err := filepath.Match(pattern, index)
		if err == nil && matched {
			return true
		}
		// Also allow if index starts with the pattern prefix (without wildcard)
		prefix := strings.TrimSuffix(pattern, "*")
		if prefix != pattern && strings.HasPrefix(index, prefix) {
			return true
		}
	}
	return false
}

// AllowedPatterns returns the configured index patterns
func (s *OpenSearchService) AllowedPatterns() []string {
	return s.allowedPatterns
}

// TestConnection pings the cluster
func (s *OpenSearchService) TestConnection(ctx context.Context) error {
	res, err := esapi.PingRequest{}.Do(ctx, s.transport)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

// GetClusterHealth returns cluster health status
func (s *OpenSearchService) GetClusterHealth(ctx context.Context) (map[string]interface{}, error) {
	res, err := esapi.ClusterHealthRequest{}.Do(ctx, s.transport)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return decodeBody(res)
}

// ListIndices returns all indices, filtered by allowedPatterns if configured
func (s *OpenSearchService) ListIndices(ctx context.Context) ([]map[string]interface{}, error) {
	res, err := esapi.CatIndicesRequest{Format: "json"}.Do(ctx, s.transport)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, responseError(res.Status(), raw)
	}

	var all []map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode indices: %w", err)
	}

	if len(s.allowedPatterns) == 0 {
		return all, nil
	}
	var filtered []map[string]interface{}
	for _, idx := range all {
		name, _ := idx["index"].(string)
		if s.IsIndexAllowed(name) {
			filtered = append(filtered, idx)
		}
	}
	return filtered, nil
}

// GetMapping returns the raw index mapping document
func (s *OpenSearchService) GetMapping(ctx context.Context, index string) (json.RawMessage, error) {
	if !s.IsIndexAllowed(index) {
		return nil, fmt.Errorf("access to index %q is not permitted", index)
	}
	res, err := esapi.IndicesGetMappingRequest{Index: []string{index}}.Do(ctx, s.transport)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return readBody(res)
}

// Search runs query against index and returns the raw response document.
// A string query is sent verbatim as the request body; anything else is
// JSON-encoded. A nil query searches without a body.
func (s *OpenSearchService) Search(ctx context.Context, index string, query interface{}) (json.RawMessage, error) {
	if !s.IsIndexAllowed(index) {
		return nil, fmt.Errorf("access to index %q is not permitted", index)
	}

	req := esapi.SearchRequest{Index: []string{index}}
	switch q := query.(type) {
	case nil:
	case string:
		req.Body = strings.NewReader(q)
	case json.RawMessage:
		req.Body = bytes.NewReader(q)
	default:
		bodyBytes, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("marshal query: %w", err)
		}
		req.Body = bytes.NewReader(bodyBytes)
	}

	res, err := req.Do(ctx, s.transport)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return readBody(res)
}

// GetShards returns the cat shards rows for index. An error body from the
// cluster is reported in the result rather than as an error.
func (s *OpenSearchService) GetShards(ctx context.Context, index string) (models.ShardsResult, error) {
	if !s.IsIndexAllowed(index) {
		return models.ShardsResult{}, fmt.Errorf("access to index %q is not permitted", index)
	}
	res, err := esapi.CatShardsRequest{Index: []string{index}, Format: "json"}.Do(ctx, s.transport)
	if err != nil {
		return models.ShardsResult{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return models.ShardsResult{}, fmt.Errorf("read response: %w", err)
	}
	if res.IsError() {
		return models.ShardsResult{Error: errorReason(res.Status(), raw)}, nil
	}

	var shards []map[string]interface{}
	if err := json.Unmarshal(raw, &shards); err != nil {
		return models.ShardsResult{}, fmt.Errorf("decode shards: %w", err)
	}
	return models.ShardsResult{Shards: shards}, nil
}

func readBody(res *esapi.Response) (json.RawMessage, error) {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.IsError() {
		return nil, responseError(res.Status(), raw)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode response: invalid JSON")
	}
	return raw, nil
}

func decodeBody(res *esapi.Response) (map[string]interface{}, error) {
	raw, err := readBody(res)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

func responseError(status string, body []byte) error {
	return fmt.Errorf("opensearch error [%s]: %s", status, errorReason(status, body))
}

// errorReason extracts the human-readable part of an error body: the nested
// error.reason of a structured error, the error string of a flat one, or the
// HTTP status when the body carries neither.
func errorReason(status string, body []byte) string {
	if !gjson.ValidBytes(body) {
		return status
	}
	if reason := gjson.GetBytes(body, "error.reason"); reason.Type == gjson.String {
		return reason.String()
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		if e.Type == gjson.String {
			return e.String()
		}
		return e.Raw
	}
	return status
}
