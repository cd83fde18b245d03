package handlers

import (
	"errors"
	"log"
	"net/http"

	"vastra_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError fait le mapping erreur métier → statut HTTP. Toute erreur hors
// taxonomie est logguée côté serveur et masquée au client en 500 générique.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *services.ValidationError
		notFoundErr    *services.NotFoundError
		conflictErr    *services.ConflictError
		forbiddenErr   *services.ForbiddenError
		expiredErr     *services.ExpiredError
		invalidCodeErr *services.InvalidCodeError
		deliveryErr    *services.DeliveryError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Msg})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Msg})
	case errors.As(err, &expiredErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": expiredErr.Msg, "code": "expired"})
	case errors.As(err, &invalidCodeErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCodeErr.Msg, "code": "invalid"})
	case errors.As(err, &deliveryErr):
		log.Printf("❌ Échec envoi SMS: %v", deliveryErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": deliveryErr.Msg})
	default:
		log.Printf("❌ Erreur interne: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
	}
}
