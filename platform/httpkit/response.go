// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"leaddesk_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	MsgInvalidRequest   = "invalid request"
	MsgValidationFailed = "validation failed"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values (anywhere in the chain) use their Kind for the status.
// Anything else is an unexpected failure and becomes a 500 carrying the raw message.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	return true
}

// ParseUUIDParam reads a UUID path parameter, writing a 400 when it is malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Error(c, http.StatusBadRequest, MsgInvalidRequest, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// StructValidator is satisfied by *validator.Validator.
type StructValidator interface {
	Struct(s interface{}) error
}

// BindJSON decodes the request body into req and validates it. On failure it
// writes a 400 and returns false.
func BindJSON(c *gin.Context, v StructValidator, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		Error(c, http.StatusBadRequest, MsgInvalidRequest, err.Error())
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Struct(req); err != nil {
		Error(c, http.StatusBadRequest, MsgValidationFailed, err.Error())
		return false
	}
	return true
}

// BindQuery decodes query parameters into req and validates it.
func BindQuery(c *gin.Context, v StructValidator, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		Error(c, http.StatusBadRequest, MsgInvalidRequest, err.Error())
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Struct(req); err != nil {
		Error(c, http.StatusBadRequest, MsgValidationFailed, err.Error())
		return false
	}
	return true
}
