package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/docfmt"
	"github.com/tsawler/docfmt/api/model"
	"github.com/tsawler/docfmt/format"
	"github.com/tsawler/docfmt/internal/rulestore"
	"github.com/tsawler/docfmt/internal/services"
)

// Error types reported to clients.
const (
	ErrorTypeValidation  = "VALIDATION_ERROR"
	ErrorTypeIntegrity   = "INTEGRITY_ERROR"
	ErrorTypeNotFound    = "NOT_FOUND_ERROR"
	ErrorTypeTooLarge    = "TOO_LARGE_ERROR"
	ErrorTypeUnavailable = "UNAVAILABLE_ERROR"
	ErrorTypeInternal    = "INTERNAL_ERROR"
)

// AppError is an error with the HTTP status it maps to.
type AppError struct {
	Type    string
	Message string
	Details string
	Code    int
}

func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError reports bad input.
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) AppError {
	return AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewTooLargeError reports an upload over the size limit.
func NewTooLargeError(message string) AppError {
	return AppError{
		Type:    ErrorTypeTooLarge,
		Message: message,
		Code:    http.StatusRequestEntityTooLarge,
	}
}

// NewInternalError reports a server fault.
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// FromError maps a service error to an AppError.
func FromError(err error) AppError {
	var (
		app *AppError
		de  *docfmt.DecodeError
		se  *docfmt.SchemaError
		ie  *docfmt.IntegrityError
	)
	switch {
	case errors.As(err, &app):
		return *app
	case errors.As(err, &de):
		return NewValidationError("document could not be read", err.Error())
	case errors.As(err, &se):
		return NewValidationError("invalid rule record", err.Error())
	case errors.Is(err, format.ErrUnsupported),
		errors.Is(err, services.ErrEmptyRules),
		errors.Is(err, rulestore.ErrInvalidName):
		return NewValidationError(err.Error())
	case errors.As(err, &ie):
		return AppError{
			Type:    ErrorTypeIntegrity,
			Message: "document structure is inconsistent",
			Details: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		}
	case errors.Is(err, rulestore.ErrNotFound):
		return NewNotFoundError("formatting rules not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return AppError{
			Type:    ErrorTypeUnavailable,
			Message: "server is busy, try again later",
			Code:    http.StatusServiceUnavailable,
		}
	}
	var ae AppError
	if errors.As(err, &ae) {
		return ae
	}
	return NewInternalError("internal server error", err.Error())
}

// ErrorHandler recovers panics and renders errors added with HandleError.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithFields(logrus.Fields{
					FieldError:   rec,
					"stack":      string(debug.Stack()),
					FieldPath:    c.Request.URL.Path,
					FieldTraceID: TraceID(c),
				}).Error("Panic recovered in API request")

				resp := model.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred")
				if gin.Mode() == gin.DebugMode {
					resp.Message = fmt.Sprintf("Panic: %v", rec)
				}
				resp.TraceID = TraceID(c)
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		e := FromError(c.Errors.Last().Err)
		entry := logger.WithFields(logrus.Fields{
			"error_type": e.Type,
			FieldTraceID: TraceID(c),
			FieldPath:    c.Request.URL.Path,
		})
		if e.Code >= http.StatusInternalServerError {
			entry.Error(e.Error())
		} else {
			entry.Warn(e.Error())
		}

		message := e.Message
		if e.Details != "" && (e.Code < http.StatusInternalServerError || gin.Mode() == gin.DebugMode) {
			message = e.Message + ": " + e.Details
		}
		resp := model.NewErrorResponse(e.Code, message)
		resp.TraceID = TraceID(c)
		c.AbortWithStatusJSON(e.Code, resp)
	}
}

// HandleError records err for ErrorHandler.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
