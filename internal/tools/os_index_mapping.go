package tools

import (
	"context"

	"github.com/osmcp/osmcp/internal/errorsx"
)

// IndexArgs names the index a tool operates on.
type IndexArgs struct {
	Index string `mapstructure:"index" json:"index,omitempty" jsonschema:"required,description=Name of the OpenSearch index"`
}

func indexSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"index": stringProperty("Name of the OpenSearch index"),
		},
		"required": []interface{}{"index"},
	}
}

// IndexMappingTool returns the mapping and settings document of an index.
func IndexMappingTool(cluster MappingGetter) Tool {
	return newTool(
		"IndexMappingTool",
		"Retrieves index mapping and setting information for an index in OpenSearch",
		indexSchema(),
		Prefixed("Error getting mapping: "),
		func(ctx context.Context, args IndexArgs) (string, error) {
			mapping, err := cluster.GetMapping(ctx, args.Index)
			if err != nil {
				return "", errorsx.Wrap(err, errorsx.ReasonCollaborator)
			}
			return "Mapping for " + args.Index + ":\n" + indentJSON(mapping), nil
		},
	)
}
