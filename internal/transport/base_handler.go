package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-playground/validator/v10"
)

const (
	genericInternalMessage = "internal server error"

	// MaxJSONBody caps request bodies read by DecodeJSON.
	MaxJSONBody = 1 << 20
)

var ErrBodyTooLarge = &internal.AppError{
	Type:       internal.ErrorTypeValidation,
	Code:       internal.ErrCodeBodyTooLarge,
	Message:    "request body too large",
	StatusCode: http.StatusRequestEntityTooLarge,
}

var (
	validate = newValidator()

	exposeInternalErrors atomic.Bool
)

// ExposeInternalErrors toggles whether 500 responses carry the underlying
// error text. Only enabled in development.
func ExposeInternalErrors(enabled bool) {
	exposeInternalErrors.Store(enabled)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess wraps data in the {success, data} envelope.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	h.WriteJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	body := map[string]interface{}{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	h.WriteJSON(w, status, body)
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, internal.Response{
		Success: false,
		Error:   message,
	})
}

// HandleServiceError maps err onto the response taxonomy. Unknown errors
// become 500 with the detail hidden unless ExposeInternalErrors is set.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError(genericInternalMessage, err)
	}

	lg := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		lg.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", appErr.Code, "error", err)
	}

	status, body := appErr.ToHTTPResponse()
	if status >= http.StatusInternalServerError {
		body.Error = genericInternalMessage
		if exposeInternalErrors.Load() && appErr.Cause != nil {
			body.Error = fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
	}
	h.WriteJSON(w, status, body)
}

// DecodeJSON reads the request body into dest and runs struct validation.
func (h *BaseHandler) DecodeJSON(r *http.Request, dest interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, MaxJSONBody)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs validator tags on dest.
func ValidateStruct(dest interface{}) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return internal.NewValidationError("validation failed", internal.ErrCodeValidationFailed)
	}
	details := internal.ValidationErrors{}
	for _, fe := range errs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("%s %s", fe.Field(), validationMessage(fe)),
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	return BearerToken(r)
}

func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}
