package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hyowon-dev/sugang-api/internal/middleware"
	"github.com/hyowon-dev/sugang-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(middleware.ContextStudentKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
