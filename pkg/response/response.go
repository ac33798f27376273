package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

// JSON sends a success response. Bodies are written bare to keep the client contract.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Message responds with {message, <key>: value}; an empty key sends the message alone.
func Message(c *gin.Context, status int, message string, key string, value interface{}) {
	body := gin.H{"message": message}
	if key != "" {
		body[key] = value
	}
	JSON(c, status, body)
}

// Error sends an error response converting the error to the common structure. The
// original error is attached to the context so the request logger records the cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, appErr)
}

// Attachment streams a generated file as a download.
func Attachment(c *gin.Context, contentType, filename string, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
