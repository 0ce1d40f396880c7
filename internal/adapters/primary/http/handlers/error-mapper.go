package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Missing precondition
	case errors.Is(err, domain.ErrDatasetAbsent):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})

	// Not found errors
	case errors.Is(err, domain.ErrModelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrUploadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidDataset),
		errors.Is(err, domain.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Profiling, training or serialization failures
	case domain.KindOf(err) == domain.KindExternalCall:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	default:
		log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
