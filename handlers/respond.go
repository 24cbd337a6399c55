package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"atelier/database"
	"atelier/gallery"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses: missing rows to
// 404, rejected input to 400, everything else to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gallery.ErrNoFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal error",
			"details": err.Error(), // Include details in dev
		})
	}
}

// idParam parses the numeric :id path segment.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
