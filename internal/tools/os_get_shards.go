package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/osmcp/osmcp/internal/errorsx"
)

// shardColumns is the fixed column order of the shard table.
var shardColumns = []string{"index", "shard", "prirep", "state", "docs", "store", "ip", "node"}

// shardsFailure distinguishes errors the cluster reported in its response
// from faults raised while fetching or rendering.
func shardsFailure(err error) string {
	if errorsx.HasReason(err, errorsx.ReasonClusterReported) {
		return "Error getting shards: " + err.Error()
	}
	return "Error getting shards information: " + err.Error()
}

// GetShardsTool renders cat shards output for an index as a pipe-separated
// table.
func GetShardsTool(cluster ShardsGetter) Tool {
	return newTool(
		"GetShardsTool",
		"Gets information about shards in OpenSearch",
		indexSchema(),
		shardsFailure,
		func(ctx context.Context, args IndexArgs) (string, error) {
			result, err := cluster.GetShards(ctx, args.Index)
			if err != nil {
				return "", errorsx.Wrap(err, errorsx.ReasonCollaborator)
			}
			if result.HasError() {
				return "", errorsx.New(result.Error, errorsx.ReasonClusterReported)
			}

			var b strings.Builder
			b.WriteString(strings.Join(shardColumns, " | "))
			b.WriteString("\n")
			for i, shard := range result.Shards {
				cells := make([]string, len(shardColumns))
				for c, col := range shardColumns {
					v, ok := shard[col]
					if !ok {
						return "", errorsx.Wrap(fmt.Errorf("shard %d is missing %q", i, col), errorsx.ReasonMalformed)
					}
					cells[c] = cell(v)
				}
				b.WriteString(strings.Join(cells, " | "))
				b.WriteString("\n")
			}
			return b.String(), nil
		},
	)
}

func cell(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
