package quiz

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/models"
)

var (
	errBadBody = apperr.Validation("Invalid request body")
	errBadID   = apperr.Validation("Invalid test id")
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "quiz")}
}

// RegisterRoutes mounts history on protected and the model-backed routes on ai,
// which the caller is expected to have rate limited.
func (h *Handler) RegisterRoutes(protected, ai *mux.Router) {
	ai.HandleFunc("/tests/generate", h.Generate).Methods("POST")
	ai.HandleFunc("/tests/generate-from-text", h.GenerateFromText).Methods("POST")
	ai.HandleFunc("/tests/evaluate", h.Evaluate).Methods("POST")
	ai.HandleFunc("/ask-ai", h.Ask).Methods("POST")

	protected.HandleFunc("/tests/history", h.History).Methods("GET")
	protected.HandleFunc("/tests/{id:[0-9]+}", h.Get).Methods("GET")
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	var req models.GenerateRequest
	if err := decode(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	resp, err := h.service.GenerateFromNotes(r.Context(), userID, req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GenerateFromText(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := decode(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	resp, err := h.service.GenerateFromText(r.Context(), req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	var req models.EvaluateRequest
	if err := decode(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	resp, err := h.service.Evaluate(r.Context(), userID, req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	tests, err := h.service.History(r.Context(), userID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.TestHistoryResponse{Success: true, Tests: tests})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		apperr.Write(w, h.log, errBadID)
		return
	}

	t, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.TestResponse{Success: true, Test: t})
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := decode(r, &req); err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.AskResponse{Success: true, Answer: answer})
}
