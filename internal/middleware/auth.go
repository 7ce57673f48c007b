package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/handler"
	"github.com/medremind/reminder-api/internal/service/auth"
)

// ContextCaregiverID is the gin context key carrying the authenticated
// caregiver's id.
const ContextCaregiverID = "caregiverID"

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets the caregiver id in
// context. Every schedule read or mutation sits behind this.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextCaregiverID, claims.CaregiverID.String())
		c.Set("caregiverEmail", claims.Email)
		c.Next()
	}
}

// CaregiverID extracts the authenticated caregiver id set by Authenticate.
func CaregiverID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(ContextCaregiverID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
