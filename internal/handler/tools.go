package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/osmcp/osmcp/internal/errorsx"
	"github.com/osmcp/osmcp/internal/middleware"
	"github.com/osmcp/osmcp/internal/models"
	"github.com/osmcp/osmcp/internal/security"
	"github.com/osmcp/osmcp/internal/tools"
	"github.com/rs/zerolog/log"
)

const maxRequestBody = 1 << 20

// ToolsHandler serves the registry over JSON.
type ToolsHandler struct {
	registry *tools.Registry
	audit    *security.AuditLogger
}

func NewToolsHandler(registry *tools.Registry, audit *security.AuditLogger) *ToolsHandler {
	return &ToolsHandler{registry: registry, audit: audit}
}

// ListTools handles GET /api/v1/tools
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	list := h.registry.List()
	infos := make([]models.ToolInfo, 0, len(list))
	for _, t := range list {
		infos = append(infos, models.ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	models.WriteJSON(w, http.StatusOK, models.ToolListResponse{
		Status: "success",
		Tools:  infos,
		Count:  len(infos),
	})
}

// CallTool handles POST /api/v1/tools/{name}. Tool failures are reported in
// the envelope with a 200; only unknown tools and bad input are HTTP errors.
func (h *ToolsHandler) CallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.registry.Get(name); !ok {
		models.WriteError(w, http.StatusNotFound, "unknown tool: "+name)
		return
	}

	var req models.ToolCallRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	res, err := h.registry.Invoke(r.Context(), name, req.Arguments)
	if err != nil {
		var verr *tools.ValidationError
		switch {
		case errors.As(err, &verr):
			models.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, tools.ErrUnknownTool):
			models.WriteError(w, http.StatusNotFound, err.Error())
		default:
			log.Error().Err(err).Str("tool", name).Msg("tool dispatch failed")
			models.WriteError(w, http.StatusInternalServerError, "tool dispatch failed")
		}
		return
	}

	call := security.ToolCall{
		Tool:      name,
		Arguments: req.Arguments,
		APIKey:    middleware.APIKeyFromContext(r.Context()),
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Transport: "http",
		IsError:   res.IsError,
		Duration:  time.Since(start),
	}
	if res.IsError {
		call.Reason = string(errorsx.Reason(res.Err))
	}
	h.audit.LogToolCall(call)

	models.WriteJSON(w, http.StatusOK, models.ToolCallResponse{
		Content: res.Content,
		IsError: res.IsError,
	})
}
