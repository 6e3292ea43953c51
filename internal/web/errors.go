package web

// errors.go renders every handler error the same way:
//  1. The HTTP status comes from the error's place in the core taxonomy.
//  2. The user-facing message and code come from core.MapError.
//  3. The technical error is logged with the request ID for correlation.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/leadintake/internal/core"
	"github.com/JonMunkholm/leadintake/internal/logging"
)

// errNoFile is returned when an import request carries no CSV.
var errNoFile = errors.New("no file provided")

// ErrorResponse is the JSON body of every error reply. Fields carries
// per-field validation errors; Result carries the import outcome when an
// import is rejected as a whole.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Action  string                `json:"action,omitempty"`
	Code    string                `json:"code"`
	Fields  core.ValidationErrors `json:"fields,omitempty"`
	Result  *core.ImportResult    `json:"result,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		verrs    core.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, core.ErrLeadNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConcurrencyConflict), errors.Is(err, core.ErrDuplicateLead):
		return http.StatusConflict
	case errors.Is(err, core.ErrBatchTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidVersion), errors.Is(err, core.ErrInvalidCSV),
		errors.Is(err, core.ErrEmptyFile), errors.Is(err, errNoFile), errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its mapped JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorWith(w, r, err, ErrorResponse{})
}

// respondErrorWith is respondError with extra body fields filled in by the
// caller.
func (s *Server) respondErrorWith(w http.ResponseWriter, r *http.Request, err error, body ErrorResponse) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.WithActor(r.Context(), actorFrom(r))
	logArgs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", logArgs...)
	} else {
		logger.Warn("request rejected", logArgs...)
	}

	body.Error = userMsg.Message
	body.Message = userMsg.Message
	body.Action = userMsg.Action
	body.Code = userMsg.Code

	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		body.Fields = verrs
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("json encode error", "error", err)
	}
}
