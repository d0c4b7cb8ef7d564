package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omarshaarawi/hoopsbot/internal/service"
)

type handler struct {
	svc  Service
	chat Chatter
	now  func() time.Time
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.now().UTC(),
	})
}

func (h *handler) listWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.svc.ListWeeks(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"weeks": weeks})
}

func (h *handler) getWeek(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "week must be a number", nil)
		return
	}

	week, err := h.svc.GetWeek(r.Context(), n, parseBoolParam(r, "refresh"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, week)
}

func (h *handler) leagueSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetLeagueSummary(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *handler) seasonReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetSeasonReport(r.Context(), parseBoolParam(r, "refresh"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.svc.GetUpcomingPreview(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

func (h *handler) predictions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.svc.GetPredictions(r.Context(), q.Get("team"), q.Get("opponent"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *handler) rosters(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.GetRosterTotals(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"teams": totals})
}

func (h *handler) players(w http.ResponseWriter, r *http.Request) {
	players, err := h.svc.GetPlayers(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}

func (h *handler) compare(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.svc.Compare(r.Context(), chi.URLParam(r, "team1"), chi.URLParam(r, "team2"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cmp)
}

type chatRequest struct {
	Query string `json:"query"`
}

func (h *handler) chatbot(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "No query provided", nil)
		return
	}

	data := h.svc.ChatContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{
		"response": h.chat.Answer(r.Context(), req.Query, data),
	})
}

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Export(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func parseBoolParam(r *http.Request, param string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(param))
	return err == nil && v
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Error(message, "status", status, "error", err)
	}
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondServiceError maps the service error kinds to HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "status", status, "error", err)
	}
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: errorMessage(err),
		Code:    status,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrDataNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if svcErr.Kind == service.ErrUpstreamUnavailable || svcErr.Err == nil {
			return svcErr.Kind.Error()
		}
		return svcErr.Err.Error()
	}
	return "internal error"
}
