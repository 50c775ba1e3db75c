package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

// The storefront frontend expects {success, message, ...} envelopes on the
// CRUD endpoints; the payment endpoints use their own fixed shapes.

func respondOK(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondRepoError maps the common repository errors to statuses.
func respondRepoError(c *gin.Context, err error, notFoundMsg, conflictMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(c, http.StatusConflict, conflictMsg)
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
