package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/FACorreiaa/habitnest-api/app/lock"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// SuccessEnvelope is the body of every successful response.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   *int `json:"count,omitempty"`
}

// ErrorEnvelope is the body of every error response. Errors carries per-field
// messages for validation failures.
type ErrorEnvelope struct {
	Success   bool               `json:"success"`
	Error     string             `json:"error"`
	RequestID string             `json:"request_id,omitempty"`
	Errors    []types.FieldError `json:"errors,omitempty"`
}

// ErrorResponse writes a standard JSON error response including request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, ErrorEnvelope{
		Success:   false,
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// SuccessResponse wraps data in the success envelope.
func SuccessResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	WriteJSONResponse(w, r, status, SuccessEnvelope{Success: true, Data: data})
}

// ListResponse is SuccessResponse with the item count.
func ListResponse[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	WriteJSONResponse(w, r, http.StatusOK, SuccessEnvelope{Success: true, Data: items, Count: &n})
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// DecodeJSONBody reads and decodes a JSON request body. Unknown keys are
// ignored so clients may send fields such as "user" that the server
// overwrites anyway.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBytes = 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q (wanted %s)", unmarshalTypeError.Field, unmarshalTypeError.Type)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")

		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

		case errors.As(err, &invalidUnmarshalError):
			panic(fmt.Errorf("developer error: invalid argument passed to json.Unmarshal: %w", err))

		default:
			return fmt.Errorf("error decoding JSON body: %w", err)
		}
	}

	if err = dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// IDParam reads a uuid path parameter. A malformed id is reported as
// ErrNotFound, the same as an id that does not exist.
func IDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", types.ErrNotFound)
	}
	return id, nil
}

// StatusForError maps a service error onto the HTTP status and client message.
// Anything unrecognised is a 500 with a generic message.
func StatusForError(err error) (int, string) {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrConflict):
		return http.StatusBadRequest, "Time conflict with existing schedule entry"
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, types.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authorized to access this route"
	case errors.Is(err, types.ErrForbidden):
		return http.StatusUnauthorized, "Not authorized to access this resource"
	case errors.Is(err, lock.ErrLockTimeout):
		return http.StatusServiceUnavailable, "Server busy, please retry"
	default:
		return http.StatusInternalServerError, "Server Error"
	}
}

// HandleServiceError writes the error envelope for err, logging server-side
// failures.
func HandleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message := StatusForError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
	} else {
		logger.WarnContext(r.Context(), "Request rejected", slog.Int("status", status), slog.String("reason", err.Error()))
	}

	env := ErrorEnvelope{
		Success:   false,
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	}
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		env.Errors = verr.Fields
	}
	WriteJSONResponse(w, r, status, env)
}
