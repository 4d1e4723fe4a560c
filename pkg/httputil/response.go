package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

// Response is the envelope every endpoint returns. Clients branch on the
// Success flag; payload fields are merged alongside it.
type Response gin.H

// OK sends a success envelope with optional payload fields merged in.
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// OKMessage sends a success envelope carrying only a message.
func OKMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// Created sends a success envelope with 201.
func Created(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}

// Fail translates an error into the envelope. AppErrors carry their own
// status; anything else is treated as an internal failure.
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode()
		message = appErr.Message
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

// FailStatus sends a failure envelope with an explicit status.
func FailStatus(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
