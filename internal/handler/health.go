package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/osmcp/osmcp/internal/models"
	"golang.org/x/sync/errgroup"
)

// Version is reported by the health endpoint and the MCP server info.
const Version = "1.0.0"

const healthCheckTimeout = 5 * time.Second

// HealthChecker is implemented by services that can report connectivity
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	checkers map[string]HealthChecker
}

// NewHealthHandler probes every non-nil checker; nil entries are reported as
// disabled.
func NewHealthHandler(checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Health probes all dependencies concurrently. Any failure degrades the
// overall status and turns the response into a 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"server": "ok"}
	var mu sync.Mutex
	record := func(name, status string) {
		mu.Lock()
		checks[name] = status
		mu.Unlock()
	}

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	var g errgroup.Group
	for _, name := range names {
		checker := h.checkers[name]
		if checker == nil {
			record(name, "disabled")
			continue
		}
		g.Go(func() error {
			if err := checker.TestConnection(ctx); err != nil {
				record(name, "unavailable: "+err.Error())
				return err
			}
			record(name, "ok")
			return nil
		})
	}

	overallStatus := "healthy"
	statusCode := http.StatusOK
	if err := g.Wait(); err != nil {
		overallStatus = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: Version,
		Checks:  checks,
	})
}
