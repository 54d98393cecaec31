package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/assistant"
	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/middleware"
)

// ToolsHandler serves POST /api/tools/{tool} for every catalogue entry.
// Protected tools require a valid access token and charge the caller's
// quota; the rest accept anonymous calls.
type ToolsHandler struct {
	registry  *assistant.Registry
	runner    *assistant.RunTool
	protected map[string]bool
	log       zerolog.Logger
}

func NewToolsHandler(registry *assistant.Registry, runner *assistant.RunTool, protectedTools []string, log zerolog.Logger) *ToolsHandler {
	protected := make(map[string]bool, len(protectedTools))
	for _, name := range protectedTools {
		protected[strings.TrimSpace(name)] = true
	}
	return &ToolsHandler{registry: registry, runner: runner, protected: protected, log: log}
}

type toolRequest struct {
	Fields map[string]string   `json:"fields"`
	Images []ports.InlineImage `json:"images,omitempty"`
}

// ListTools returns the catalogue so clients can discover tool names and
// their field lists.
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	items := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		tool, _ := h.registry.Get(name)
		items = append(items, map[string]interface{}{
			"name":      tool.Name,
			"required":  tool.Required,
			"optional":  tool.Optional,
			"protected": h.protected[tool.Name],
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": items})
}

// Run executes the tool named in the URL.
func (h *ToolsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tool")
	tool, ok := h.registry.Get(name)
	if !ok {
		writeErr(w, http.StatusNotFound, "", "unknown tool")
		return
	}
	var body toolRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.RecordToolRequest(name, "validation_error")
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if strings.TrimSpace(body.Fields[tool.Required]) == "" {
		middleware.RecordToolRequest(name, "validation_error")
		writeErr(w, http.StatusBadRequest, "", tool.Required+" is required")
		return
	}
	fields := make(map[string]string, len(body.Fields))
	for _, f := range tool.Fields() {
		fields[f] = TruncateField(body.Fields[f])
	}

	input := assistant.RunToolInput{Tool: tool, Fields: fields, Images: body.Images}
	if h.protected[name] {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			middleware.RecordToolRequest(name, "validation_error")
			writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
			return
		}
		input.UserID = identity.UserID
		input.Metered = true
	}

	result, err := h.runner.Execute(r.Context(), input)
	if err != nil {
		if errors.Is(err, domerrors.ErrRateLimited) {
			middleware.RecordToolRequest(name, "rate_limited")
			writeErr(w, http.StatusTooManyRequests, ErrCodeRateLimited, err.Error())
			return
		}
		middleware.RecordToolRequest(name, "upstream_error")
		h.log.Error().Err(err).Str("tool", name).Msg("tool run failed")
		writeErr(w, http.StatusInternalServerError, "", "Internal Server Error")
		return
	}
	middleware.RecordToolRequest(name, "ok")
	writeJSON(w, http.StatusOK, map[string]string{"result": result.Text})
}
