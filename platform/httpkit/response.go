// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"wedding_crm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
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

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// HandleError maps domain errors to HTTP responses.
// A typed *apperr.Error anywhere in the chain decides the status code; its
// public message is rendered, so persistence detail never reaches the caller.
// Untyped errors become a generic 500. The raw error is attached to the gin
// context for RequestLogger. Returns true if an error was handled.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		var details interface{}
		if domainErr.HTTPStatus() < http.StatusInternalServerError {
			details = domainErr.Details
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.PublicMessage(),
			Details: details,
		})
		return true
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperr.GenericFailureMessage})
	return true
}

// BindError renders a request decoding or struct validation failure as 400.
func BindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
}
