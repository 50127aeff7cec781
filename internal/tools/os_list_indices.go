package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/osmcp/osmcp/internal/errorsx"
)

// ListIndicesArgs takes no arguments.
type ListIndicesArgs struct{}

// ListIndicesTool lists every index name visible to the cluster client, one
// per line.
func ListIndicesTool(cluster IndexLister) Tool {
	return newTool(
		"ListIndexTool",
		"Lists all indices in OpenSearch",
		map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Prefixed("Error listing indices: "),
		func(ctx context.Context, _ ListIndicesArgs) (string, error) {
			indices, err := cluster.ListIndices(ctx)
			if err != nil {
				return "", errorsx.Wrap(err, errorsx.ReasonCollaborator)
			}

			names := make([]string, 0, len(indices))
			for i, idx := range indices {
				name, ok := idx["index"].(string)
				if !ok {
					return "", errorsx.Wrap(fmt.Errorf("index record %d has no index name", i), errorsx.ReasonMalformed)
				}
				names = append(names, name)
			}
			return strings.Join(names, "\n"), nil
		},
	)
}
