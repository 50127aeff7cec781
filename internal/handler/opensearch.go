package handler

import (
	"context"
	"net/http"

	"github.com/osmcp/osmcp/internal/models"
)

// ClusterHealthGetter reports the cluster's _cluster/health document.
type ClusterHealthGetter interface {
	GetClusterHealth(ctx context.Context) (map[string]interface{}, error)
	AllowedPatterns() []string
}

// OpenSearchHandler exposes cluster status next to the tool endpoints.
type OpenSearchHandler struct {
	cluster ClusterHealthGetter
}

func NewOpenSearchHandler(cluster ClusterHealthGetter) *OpenSearchHandler {
	return &OpenSearchHandler{cluster: cluster}
}

// ClusterHealth handles GET /api/v1/opensearch/cluster/health
func (h *OpenSearchHandler) ClusterHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.cluster.GetClusterHealth(r.Context())
	if err != nil {
		models.WriteError(w, http.StatusServiceUnavailable, "cluster health check failed: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "success",
		"health":           health,
		"allowed_patterns": h.cluster.AllowedPatterns(),
	})
}
