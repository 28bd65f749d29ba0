package analytics

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/models"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "analytics")}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/tests", h.GetSummary).Methods("GET")
	protected.HandleFunc("/streak", h.GetStreak).Methods("GET")
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.SummaryResponse{Success: true, Summary: summary})
}

func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	streak, err := h.service.Streak(r.Context(), userID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.StreakResponse{Success: true, Streak: streak})
}
