package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/models"
)

var errBadBody = apperr.Validation("Invalid request body")

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "auth")}
}

// RegisterRoutes mounts the public auth routes on api and /auth/me on protected.
func (h *Handler) RegisterRoutes(api, protected *mux.Router) {
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	protected.HandleFunc("/auth/me", h.GetCurrentUser).Methods("GET")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, h.log, errBadBody)
		return
	}

	token, user, err := h.service.Register(r.Context(), req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, models.AuthResponse{
		Success: true,
		Message: "Registration successful",
		Token:   token,
		User:    *user,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, h.log, errBadBody)
		return
	}

	token, user, err := h.service.Login(r.Context(), req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, models.AuthResponse{
		Success: true,
		Message: "Login success",
		Token:   token,
		User:    *user,
	})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, models.UserResponse{Success: true, User: *user})
}
