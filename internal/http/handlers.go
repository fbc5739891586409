package http

import (
	"encoding/json"
	"net/http"
	"time"

	"creativesync/internal/logger"
	"creativesync/internal/models"
	"creativesync/internal/parsing"

	"github.com/gorilla/mux"
)

// Handler contains the ops HTTP handlers. The ops surface reads pipeline
// state and triggers probes/dry runs; it is not part of the ingestion data
// path.
type Handler struct {
	pipelines map[string]parsing.Service
	logger    logger.Service
}

// NewHandler creates a new ops HTTP handler over the configured pipelines,
// keyed by source name
func NewHandler(pipelines map[string]parsing.Service, logger logger.Service) *Handler {
	return &Handler{
		pipelines: pipelines,
		logger:    logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Sources   []string  `json:"sources"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	// Extract LogEvent from context to get ProcessID for X-Request-ID header
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// LastRuns handles GET /api/runs/last, returning the most recent run report
// per source. Sources that have not completed a run yet map to null.
func (h *Handler) LastRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runs := make(map[string]*models.RunReport, len(h.pipelines))
	for source, pipeline := range h.pipelines {
		runs[source] = pipeline.LastReport()
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, runs); err != nil {
		h.logger.LogError(ctx, logger.OpParseAndSync, "", "Failed to encode run reports", err, models.LogSeverityLow, nil)
	}
}

// TestConnection handles GET /api/test-connection/{source}
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pipeline, ok := h.pipeline(w, r)
	if !ok {
		return
	}

	report := pipeline.TestConnection(ctx)

	statusCode := http.StatusOK
	if report.ConnectionStatus != "ok" {
		statusCode = http.StatusBadGateway
	}

	if err := h.writeJSONResponse(w, r, statusCode, report); err != nil {
		h.logger.LogError(ctx, logger.OpTestConnection, report.Source, "Failed to encode connection report", err, models.LogSeverityLow, nil)
	}
}

// DryRun handles POST /api/dry-run/{source}
func (h *Handler) DryRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pipeline, ok := h.pipeline(w, r)
	if !ok {
		return
	}

	h.logger.LogInfo(ctx, logger.OpDryRun, "Dry run requested",
		map[string]interface{}{"source": pipeline.Source()})

	report, err := pipeline.DryRun(ctx)
	if err != nil {
		h.logger.LogError(ctx, logger.OpDryRun, pipeline.Source(), "Dry run failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, http.StatusBadGateway, "dry run failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, report); err != nil {
		h.logger.LogError(ctx, logger.OpDryRun, pipeline.Source(), "Failed to encode dry run report", err, models.LogSeverityLow, nil)
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sources := make([]string, 0, len(h.pipelines))
	for source := range h.pipelines {
		sources = append(sources, source)
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Sources:   sources,
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// pipeline resolves the {source} path variable to a configured pipeline,
// writing the error response itself when the source is unknown
func (h *Handler) pipeline(w http.ResponseWriter, r *http.Request) (parsing.Service, bool) {
	source := mux.Vars(r)["source"]
	pipeline, ok := h.pipelines[source]
	if !ok {
		h.writeErrorResponse(w, r, http.StatusNotFound, "unknown source", "no pipeline configured for source: "+source)
		return nil, false
	}
	return pipeline, true
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}
