package ocr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/models"
)

var (
	ErrNoFile      = apperr.Validation("No PDF file received")
	ErrFileTooBig  = apperr.Validation("File is too large")
	errUnprocessed = apperr.New(apperr.KindInternal, "Server error while processing PDF.")
)

// NoteCreator stores the note produced from an upload.
type NoteCreator interface {
	Create(ctx context.Context, userID int64, req models.NoteRequest) (*models.Note, error)
}

type Handler struct {
	ingest   *Ingestor
	notes    NoteCreator
	maxBytes int64
	log      *logger.Logger
}

func NewHandler(ingest *Ingestor, notes NoteCreator, maxBytes int64, log *logger.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{ingest: ingest, notes: notes, maxBytes: maxBytes, log: log.With("handler", "ocr")}
}

// RegisterRoutes mounts the upload endpoints on ai, which should be rate limited.
func (h *Handler) RegisterRoutes(ai *mux.Router) {
	ai.HandleFunc("/notes/ocr", h.UploadNote).Methods("POST")
	ai.HandleFunc("/tests/ocr-text", h.ExtractText).Methods("POST")
}

// readUpload pulls the "file" part and optional "title" field out of a multipart body.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (Document, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return Document{}, "", ErrFileTooBig
		}
		return Document{}, "", ErrNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return Document{}, "", ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Document{}, "", errUnprocessed.Wrap(err)
	}
	if len(data) == 0 {
		return Document{}, "", ErrNoFile
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return Document{Name: header.Filename, MimeType: mimeType, Data: data}, r.FormValue("title"), nil
}

// UploadNote OCRs a file into a new note. Unreadable files still produce a
// placeholder note, flagged as degraded.
func (h *Handler) UploadNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apperr.Write(w, h.log, middleware.ErrNoToken)
		return
	}
	if !h.ingest.Configured() {
		apperr.Write(w, h.log, ErrNotConfigured)
		return
	}

	doc, formTitle, err := h.readUpload(w, r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	title := Title(formTitle, doc.Name, "PDF note")

	text, err := h.ingest.Extract(r.Context(), doc)
	degraded := errors.Is(err, ErrUnreadable)
	if err != nil && !degraded {
		apperr.Write(w, h.log, err)
		return
	}

	content := Truncate(text)
	if degraded {
		content = Placeholder(doc.Name)
	}
	note, err := h.notes.Create(r.Context(), userID, models.NoteRequest{Title: title, Content: content})
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	resp := models.NoteResponse{Success: true, Note: note}
	if degraded {
		resp.Degraded = true
		resp.Warning = PlaceholderWarning
	}
	apperr.WriteJSON(w, http.StatusCreated, resp)
}

// ExtractText OCRs a file for quiz generation without storing anything.
func (h *Handler) ExtractText(w http.ResponseWriter, r *http.Request) {
	if !h.ingest.Configured() {
		apperr.Write(w, h.log, ErrNotConfigured)
		return
	}

	doc, formTitle, err := h.readUpload(w, r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	text, err := h.ingest.Extract(r.Context(), doc)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.OCRTextResponse{
		Success: true,
		Text:    text,
		Title:   Title(formTitle, doc.Name, "PDF test"),
	})
}
