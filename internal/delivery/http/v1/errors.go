package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager-api/internal/validation"
)

const (
	msgValidationError    = "Validation error"
	msgInvalidCredentials = "Invalid login credentials"
	msgUnauthorized       = "Unauthorized"
	msgTaskNotFound       = "Task not found"
	msgEndpointNotFound   = "Endpoint not found"
	msgMethodNotAllowed   = "Method not allowed"
	msgTooManyAttempts    = "Too Many Attempts."
)

type apiError struct {
	Code    int
	Message string
	Errors  validation.Errors
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, envelope{
		Success: false,
		Message: err.Message,
		Errors:  err.Errors,
	})
}

func newValidationError(errs validation.Errors) apiError {
	return apiError{
		Code:    http.StatusUnprocessableEntity,
		Message: msgValidationError,
		Errors:  errs,
	}
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// newInternalError exposes the raw error message to the client.
func newInternalError(err error) apiError {
	return newAPIError(http.StatusInternalServerError, err.Error())
}

// bindJSON decodes the request body into obj. An empty body decodes to
// the zero value so the field rules report what is missing.
func (h *handlerImpl) bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	h.logger.Warn().
		Err(err).
		Msg("failed to bind request body")

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		abort(c, newValidationError(validation.Errors{
			typeErr.Field: {fmt.Sprintf("The %s field must be a %s.", typeErr.Field, jsonTypeName(typeErr.Type.Kind().String()))},
		}))
		return false
	}
	abort(c, newValidationError(validation.Errors{
		"body": {"The request body must be a valid JSON object."},
	}))
	return false
}

func jsonTypeName(kind string) string {
	switch kind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "list"
	case "map", "struct":
		return "object"
	default:
		return "number"
	}
}
