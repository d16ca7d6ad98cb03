package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"screening-score-service/internal/app"
	"screening-score-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Handler exposes the scoring use cases as JSON over HTTP.
type Handler struct {
	service *app.ScoringService
	log     logrus.FieldLogger
}

func NewHandler(service *app.ScoringService, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes mounts every endpoint, including the statistics websocket.
func (h *Handler) Routes() http.Handler {
	ws := NewWSHandler(h.service, h.log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/candidates/{candidateID}/score", h.SaveScore)
	r.Post("/candidates/{candidateID}/score/preview", h.PreviewScore)
	r.Get("/candidates/{candidateID}/report", h.Report)
	r.Post("/scores/batch", h.BatchScore)
	r.Get("/screenings/{screeningID}/statistics", h.Statistics)
	r.Get("/ws/screenings/{screeningID}/statistics", ws.ServeWS)
	return r
}

type scoreRequest struct {
	Answers   []domain.Answer `json:"answers"`
	TimeTaken int             `json:"timeTaken"`
	ScoredBy  string          `json:"scoredBy"`
}

type batchRequest struct {
	ScoredBy    string              `json:"scoredBy"`
	Submissions []domain.Submission `json:"submissions"`
}

func (h *Handler) SaveScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, badRequest(err))
		return
	}
	result, err := h.service.ScoreCandidate(r.Context(), domain.Submission{
		CandidateID: chi.URLParam(r, "candidateID"),
		Answers:     req.Answers,
		TimeTaken:   req.TimeTaken,
	}, req.ScoredBy)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) PreviewScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, badRequest(err))
		return
	}
	result, err := h.service.CalculateScore(r.Context(), domain.Submission{
		CandidateID: chi.URLParam(r, "candidateID"),
		Answers:     req.Answers,
		TimeTaken:   req.TimeTaken,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) BatchScore(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, badRequest(err))
		return
	}
	if req.ScoredBy == "" {
		h.respondError(w, r, domain.ErrMissingScorer)
		return
	}
	respondJSON(w, http.StatusOK, h.service.BatchScore(r.Context(), req.Submissions, req.ScoredBy))
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetScreeningStatistics(r.Context(), chi.URLParam(r, "screeningID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GenerateCandidateReport(r.Context(), chi.URLParam(r, "candidateID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func badRequest(err error) error {
	return errors.Join(domain.ErrInvalidArgument, err)
}

// statusFor maps domain error classes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request failed")
		msg = http.StatusText(code)
	}
	respondJSON(w, code, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
