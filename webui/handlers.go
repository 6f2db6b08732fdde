// handlers.go contains the REST API handlers. Success responses share the
// {"success": true, ...} envelope; failures return {"error", "message"}
// with the status code derived from the pipeline error kind.
package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"artgen_backend/core"
	"artgen_backend/db"
	"artgen_backend/models"

	"go.uber.org/zap"
)

// maxRequestBody bounds the /api/generate request body.
const maxRequestBody = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", zap.Error(err))
	}
}

// writeError maps a pipeline error to its HTTP status. Unknown errors are
// reported as internal without leaking detail to the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := core.KindOf(err)

	status := http.StatusInternalServerError
	message := "internal server error"
	switch kind {
	case core.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case core.KindQuota:
		status = http.StatusTooManyRequests
		message = err.Error()
	case core.KindModelConfig:
		message = err.Error()
	default:
		kind = core.KindInternal
	}

	if pe, ok := core.AsPipelineError(err); ok {
		message = pe.Message
	}

	s.writeJSON(w, status, errorResponse{Error: string(kind), Message: message})
}

// handleGenerate serves POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:   "method_not_allowed",
			Message: "use POST",
		})
		return
	}

	ip := clientIP(r)
	if allowed, retryAfter := s.limiter.Allow(ip); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		s.writeError(w, core.NewQuotaError("too many requests, please try again later"))
		return
	}

	var req models.GenerationRequest
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, core.NewValidationError(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	result, err := s.generator.Generate(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.store != nil {
		s.store.SaveAsync(db.GenerationRecord{
			ID:             result.ID,
			Model:          result.Metadata.Model,
			Style:          result.Metadata.Style,
			Prompt:         result.Metadata.Prompt,
			EnhancedPrompt: result.Metadata.EnhancedPrompt,
			NegativePrompt: result.Metadata.NegativePrompt,
			Parameters:     result.Metadata.Parameters,
			Image:          result.Image,
			Placeholder:    result.Metadata.Placeholder,
			EstimatedCost:  result.Metadata.EstimatedCost,
			CreatedAt:      result.Metadata.Timestamp,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"id":       result.ID,
		"image":    result.Image,
		"metadata": result.Metadata,
	})
}

// handleHistory serves GET /api/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:   "method_not_allowed",
			Message: "use GET",
		})
		return
	}
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"history": []db.GenerationRecord{},
			"count":   0,
		})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, core.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	records, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		s.writeError(w, errors.New("history unavailable"))
		return
	}
	if records == nil {
		records = []db.GenerationRecord{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": records,
		"count":   len(records),
	})
}

// handleStyles serves GET /api/styles.
func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"styles":  s.styles.Styles(),
	})
}

// handleModels serves GET /api/models.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"models":  s.models.Profiles(),
	})
}

// handlePresets serves GET /api/presets.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"presets": s.styles.Presets(),
	})
}

// handleHealth serves GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}
