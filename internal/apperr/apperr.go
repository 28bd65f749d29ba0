package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/studysphere/backend/internal/logger"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindUnusableContent
	KindUpstream
	KindPersistence
	KindMisconfigured
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUnusableContent:
		return "unusable_content"
	case KindUpstream:
		return "upstream"
	case KindPersistence:
		return "persistence"
	case KindMisconfigured:
		return "misconfigured"
	default:
		return "internal"
	}
}

// Status maps a kind onto its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindUnusableContent:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a caller-safe Message and an optional internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so package
// sentinels keep working after being wrapped with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e with err attached as the cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error    { return New(KindValidation, msg) }
func NotFound(msg string) *Error      { return New(KindNotFound, msg) }
func Unauthorized(msg string) *Error  { return New(KindAuth, msg) }
func Internal(err error) *Error       { return Wrap(KindInternal, InternalMessage, err) }
func Persistence(err error) *Error    { return Wrap(KindPersistence, InternalMessage, err) }
func Misconfigured(msg string) *Error { return New(KindMisconfigured, msg) }

const InternalMessage = "Internal server error"

// Envelope is the failure body every endpoint shares.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// From extracts the *Error in err's chain, or wraps err as Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Write renders err as a {success:false,message} response. Causes are logged, never sent.
func Write(w http.ResponseWriter, log *logger.Logger, err error) {
	ae := From(err)
	status := ae.Kind.Status()
	if log != nil {
		fields := []interface{}{"kind", ae.Kind.String(), "status", status}
		if ae.Err != nil {
			fields = append(fields, "error", ae.Err.Error())
		}
		if status >= http.StatusInternalServerError {
			log.Error(ae.Message, fields...)
		} else {
			log.Debug(ae.Message, fields...)
		}
	}
	WriteJSON(w, status, Envelope{Success: false, Message: ae.Message})
}

// WriteJSON encodes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
