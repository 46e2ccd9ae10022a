package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mini-linkedin/internal/domain"
	"mini-linkedin/internal/service"
)

func setupMiddlewareRouter(jwtSvc *service.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": claims.UserID})
	})
	return r
}

func TestJWTAuthMiddleware_AllowsValidToken(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", 15*time.Minute)
	r := setupMiddlewareRouter(jwtSvc)

	token, err := jwtSvc.GenerateToken(domain.User{ID: "u1", Name: "Ann", Email: "ann@x.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthMiddleware_RejectsMissingOrBadToken(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", 15*time.Minute)
	r := setupMiddlewareRouter(jwtSvc)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong scheme, got %d", rec.Code)
	}
}
