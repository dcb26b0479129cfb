package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyowon-dev/sugang-api/internal/service"
	appErrors "github.com/hyowon-dev/sugang-api/pkg/errors"
	"github.com/hyowon-dev/sugang-api/pkg/response"
)

// ContextStudentKey is the gin context key storing session claims.
const ContextStudentKey = "currentStudent"

// Session protects routes by requiring a valid session token.
func Session(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ResolveSession(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextStudentKey, claims)
		c.Next()
	}
}
