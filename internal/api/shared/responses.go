package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/redact"
)

// TimestampFormat is the layout of meta.timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

// Meta is the free-form meta member of an envelope or error object.
type Meta map[string]any

// ErrorObject is one entry of the errors member.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Meta   Meta   `json:"meta,omitempty"`
}

// Envelope is the top-level body of every JSON response.
type Envelope struct {
	Data     any               `json:"data,omitempty"`
	Errors   []ErrorObject     `json:"errors,omitempty"`
	Included []any             `json:"included,omitempty"`
	Meta     Meta              `json:"meta,omitempty"`
	Links    map[string]string `json:"links,omitempty"`
}

// StatusTitle returns the standard title for status.
func StatusTitle(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusMethodNotAllowed:
		return "Method Not Allowed"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	case http.StatusInternalServerError:
		return "Internal Server Error"
	}
	return http.StatusText(status)
}

func timestamp() string {
	return time.Now().UTC().Format(TimestampFormat)
}

func metaOrTimestamp(meta []Meta) Meta {
	if len(meta) > 0 && len(meta[0]) > 0 {
		return meta[0]
	}
	return Meta{"timestamp": timestamp()}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode JSON response",
			"error", err,
			"trace_id", GetTraceID(r.Context()))
	}
}

// OK writes a 200 envelope around data.
func OK(w http.ResponseWriter, r *http.Request, data any, meta ...Meta) {
	RespondWithJSON(w, r, http.StatusOK, Envelope{Data: data, Meta: metaOrTimestamp(meta)})
}

// OKWithIncluded writes a 200 envelope with side-loaded resources.
func OKWithIncluded(w http.ResponseWriter, r *http.Request, data any, included []any, meta ...Meta) {
	RespondWithJSON(w, r, http.StatusOK, Envelope{
		Data:     data,
		Included: included,
		Meta:     metaOrTimestamp(meta),
	})
}

// Created writes a 201 envelope around data.
func Created(w http.ResponseWriter, r *http.Request, data any, meta ...Meta) {
	RespondWithJSON(w, r, http.StatusCreated, Envelope{Data: data, Meta: metaOrTimestamp(meta)})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes a single-error envelope. An empty title selects the standard
// title for status.
func Error(w http.ResponseWriter, r *http.Request, status int, title, detail string, meta ...Meta) {
	if title == "" {
		title = StatusTitle(status)
	}
	logErrorResponse(r, status, detail, nil)
	RespondWithJSON(w, r, status, Envelope{
		Errors: []ErrorObject{{
			Status: fmt.Sprint(status),
			Title:  title,
			Detail: detail,
		}},
		Meta: metaOrTimestamp(meta),
	})
}

// ServerError writes a 500 envelope whose detail is err's message, and logs
// the redacted error.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	logErrorResponse(r, http.StatusInternalServerError, "", err)
	RespondWithJSON(w, r, http.StatusInternalServerError, Envelope{
		Errors: []ErrorObject{{
			Status: fmt.Sprint(http.StatusInternalServerError),
			Title:  StatusTitle(http.StatusInternalServerError),
			Detail: err.Error(),
		}},
		Meta: metaOrTimestamp(nil),
	})
}

// ValidationErrors writes a 400 with one error object per field message.
// Messages bound to domain.NonFieldErrors carry no field in their meta.
func ValidationErrors(w http.ResponseWriter, r *http.Request, errs domain.FieldErrors) {
	ts := timestamp()
	objects := make([]ErrorObject, 0, len(errs))
	for _, e := range errs {
		meta := Meta{"timestamp": ts}
		if e.Field != domain.NonFieldErrors {
			meta["field"] = e.Field
		}
		objects = append(objects, ErrorObject{
			Status: fmt.Sprint(http.StatusBadRequest),
			Title:  StatusTitle(http.StatusBadRequest),
			Detail: e.Message,
			Meta:   meta,
		})
	}
	writeValidation(w, r, objects, ts, errs.Error())
}

// ValidationErrorsFromList writes a 400 with one error object per message.
func ValidationErrorsFromList(w http.ResponseWriter, r *http.Request, messages []string) {
	ts := timestamp()
	objects := make([]ErrorObject, 0, len(messages))
	for _, m := range messages {
		objects = append(objects, ErrorObject{
			Status: fmt.Sprint(http.StatusBadRequest),
			Title:  StatusTitle(http.StatusBadRequest),
			Detail: m,
			Meta:   Meta{"timestamp": ts},
		})
	}
	writeValidation(w, r, objects, ts, fmt.Sprint(messages))
}

func writeValidation(w http.ResponseWriter, r *http.Request, objects []ErrorObject, ts, summary string) {
	logErrorResponse(r, http.StatusBadRequest, summary, nil)
	RespondWithJSON(w, r, http.StatusBadRequest, Envelope{
		Errors: objects,
		Meta:   Meta{"timestamp": ts},
	})
}

// logErrorResponse logs an error response.
//
// Log level strategy:
// - 5xx errors: ERROR, with the redacted cause
// - 429 Too Many Requests: WARN (operational concern)
// - Other status codes: DEBUG
func logErrorResponse(r *http.Request, status int, detail string, err error) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
	}
	if detail != "" {
		logAttrs = append(logAttrs, slog.String("detail", redact.String(detail)))
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if status == http.StatusTooManyRequests {
		logLevel = slog.LevelWarn
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)
}
