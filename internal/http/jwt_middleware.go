package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mini-linkedin/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el bearer token y guarda claims en el contexto.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene los claims del token desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
