package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/domain"
)

// Handler exposes the attempt use cases over JSON. Rate limiting and token
// verification are applied as middleware in the server wiring; by the time a
// request lands here it carries a verified owner key.
type Handler struct {
	service *app.AttemptService
}

func NewHandler(service *app.AttemptService) *Handler {
	return &Handler{service: service}
}

// Register mounts the attempt routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quizzes/{quizID}/start", h.handleStart)
	mux.HandleFunc("POST /api/quizzes/{quizID}/stop", h.handleStop)
	mux.HandleFunc("POST /api/quizzes/{quizID}/submit", h.handleSubmit)
	mux.HandleFunc("GET /api/quizzes/{quizID}/questions", h.handleQuestions)
}

type submitRequest struct {
	Answers []domain.Answer `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ownerKey, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		http.Error(w, "missing access token", http.StatusUnauthorized)
		return
	}

	started, err := h.service.Start(r.Context(), r.PathValue("quizID"), ownerKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, started)
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	ownerKey, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		http.Error(w, "missing access token", http.StatusUnauthorized)
		return
	}

	if err := h.service.Stop(r.Context(), r.PathValue("quizID"), ownerKey); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ownerKey, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		http.Error(w, "missing access token", http.StatusUnauthorized)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submit payload"})
		return
	}

	result, err := h.service.Submit(r.Context(), r.PathValue("quizID"), ownerKey, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context(), r.PathValue("quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// writeError maps the domain failure taxonomy onto transport status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAttemptActive), errors.Is(err, domain.ErrNoActiveAttempt):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAnswerMismatch):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
