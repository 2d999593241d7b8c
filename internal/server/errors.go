package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/validation"
)

func respondError(c *gin.Context, fallback string, err error) {
	status := apperrors.HTTPStatus(err)

	var se *apperrors.StandardError
	if !errors.As(err, &se) {
		c.JSON(status, gin.H{"error": fallback, "details": err.Error()})
		return
	}

	switch se.Code {
	case apperrors.ErrCodeValidationFailed:
		c.JSON(status, gin.H{"error": "Validation failed", "details": se.Details})
	case apperrors.ErrCodeApplicationNotFound, apperrors.ErrCodeFileRejected:
		c.JSON(status, gin.H{"error": se.Message})
	default:
		c.JSON(status, gin.H{"error": fallback, "details": se.Details})
	}
}

func respondInvalid(c *gin.Context, res *validation.Result) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": res.Errors})
}

func respondUnavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}
