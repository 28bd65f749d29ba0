package models

import "time"

// Note is a user-owned text document. Every read and write is scoped by UserID.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type MergeNotesRequest struct {
	NoteIDs []int64 `json:"noteIds"`
}

type NoteResponse struct {
	Success  bool   `json:"success"`
	Note     *Note  `json:"note"`
	Degraded bool   `json:"degraded,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type NoteListResponse struct {
	Success bool   `json:"success"`
	Notes   []Note `json:"notes"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
