package tools

import (
	"context"

	"github.com/osmcp/osmcp/internal/errorsx"
)

// SearchIndexArgs carries a query DSL document. Query is passed through
// untouched: a string is sent as the request body, anything else is encoded.
type SearchIndexArgs struct {
	Index string      `mapstructure:"index" json:"index,omitempty" jsonschema:"required,description=Name of the OpenSearch index to search"`
	Query interface{} `mapstructure:"query" json:"query,omitempty" jsonschema:"required,description=Query DSL document as an object or a JSON string"`
}

// SearchIndexTool runs a query DSL search and returns the raw response with
// embeddings and node content stripped from each hit.
func SearchIndexTool(cluster Searcher) Tool {
	return newTool(
		"SearchIndexTool",
		"Searches an index using a query written in query domain-specific language (DSL) in OpenSearch",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"index": stringProperty("Name of the OpenSearch index to search"),
				"query": map[string]interface{}{
					"description": "Query DSL document, as an object or a JSON string",
				},
			},
			"required": []interface{}{"index", "query"},
		},
		Prefixed("Error searching index: "),
		func(ctx context.Context, args SearchIndexArgs) (string, error) {
			raw, err := cluster.Search(ctx, args.Index, args.Query)
			if err != nil {
				return "", errorsx.Wrap(err, errorsx.ReasonCollaborator)
			}
			clean, err := SanitizeHits(raw)
			if err != nil {
				return "", errorsx.Wrap(err, errorsx.ReasonMalformed)
			}
			return "Original Search results from " + args.Index + ":\n" + indentJSON(clean), nil
		},
	)
}
