package reputation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chesswatch/chesswatch-api/internal/pkg/response"
	"github.com/chesswatch/chesswatch-api/internal/pkg/validator"
)

// Handler handles reputation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reputation handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SubmitReport submits a new player report
// POST /reports
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.SubmitReport(r.Context(), &req)
	if err != nil {
		var fieldErr *FieldError
		switch {
		case errors.As(err, &fieldErr):
			response.ValidationError(w, map[string]string{fieldErr.Field: fieldErr.Message})
		case errors.Is(err, ErrNotSaved):
			response.Error(w, http.StatusInternalServerError, "NOT_SAVED", "Report could not be persisted")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, result)
}

// GetPlayer returns reputation data for a specific player
// GET /reports/player/{username}
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		response.BadRequest(w, "Username is required")
		return
	}

	response.OK(w, h.service.GetReputation(r.Context(), username))
}

// Search searches for suspicious players matching criteria
// GET /reports/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req := NewSearchRequest()

	q := r.URL.Query()
	if raw := q.Get("min_reports"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid min_reports")
			return
		}
		req.MinReports = v
	}
	if raw := q.Get("min_risk_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(w, "Invalid min_risk_score")
			return
		}
		req.MinRiskScore = v
	}
	req.Confidence = q.Get("confidence")
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid limit")
			return
		}
		req.Limit = v
	}

	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result := h.service.Search(r.Context(), req)

	meta := response.Meta{
		Total: result.TotalFound,
		Limit: req.Limit,
	}
	response.WithMeta(w, result, meta)
}

// GlobalStats returns global statistics about the database
// GET /statistics/global
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.service.GlobalStatistics(r.Context()))
}

// SetBanned marks a player as banned or clears the flag
// POST /admin/players/{username}/ban
func (h *Handler) SetBanned(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		response.BadRequest(w, "Username is required")
		return
	}

	// Body is optional; a missing banned field defaults to true
	banned := true
	if r.Body != nil && r.ContentLength != 0 {
		var req SetBannedRequest
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
		if req.Banned != nil {
			banned = *req.Banned
		}
	}

	result, err := h.service.SetBanned(r.Context(), username, banned)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlayerNotFound):
			response.NotFound(w, "Player not found")
		case errors.Is(err, ErrNotSaved):
			response.Error(w, http.StatusInternalServerError, "NOT_SAVED", "Ban state could not be persisted")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// Health reports process status and report log totals
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.service.Health(r.Context()))
}
