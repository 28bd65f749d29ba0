package notes

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
	errBadID   = apperr.Validation("Invalid note id")
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "notes")}
}

// RegisterRoutes mounts note CRUD and merge on the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/notes", h.List).Methods("GET")
	protected.HandleFunc("/notes", h.Create).Methods("POST")
	protected.HandleFunc("/notes/merge", h.Merge).Methods("POST")
	protected.HandleFunc("/notes/{id:[0-9]+}", h.Get).Methods("GET")
	protected.HandleFunc("/notes/{id:[0-9]+}", h.Update).Methods("PUT")
	protected.HandleFunc("/notes/{id:[0-9]+}", h.Delete).Methods("DELETE")
}

func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	notes, err := h.service.List(r.Context(), userID)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.NoteListResponse{Success: true, Notes: notes})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}
	id, ok := noteID(r)
	if !ok {
		apperr.Write(w, h.log, errBadID)
		return
	}

	n, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.NoteResponse{Success: true, Note: n})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, h.log, errBadBody)
		return
	}

	n, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, models.NoteResponse{Success: true, Note: n})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}
	id, ok := noteID(r)
	if !ok {
		apperr.Write(w, h.log, errBadID)
		return
	}

	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, h.log, errBadBody)
		return
	}

	n, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.NoteResponse{Success: true, Note: n})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}
	id, ok := noteID(r)
	if !ok {
		apperr.Write(w, h.log, errBadID)
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Note deleted"})
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}

	var req models.MergeNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, h.log, errBadBody)
		return
	}

	n, err := h.service.Merge(r.Context(), userID, req.NoteIDs)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, models.NoteResponse{Success: true, Note: n})
}
