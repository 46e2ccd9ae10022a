package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mini-linkedin/internal/service"
)

// AuthHandler mantiene dependencias para endpoints de registro y login.
type AuthHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Bio      string `json:"bio" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidName),
			errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
			return
		}
	}

	token, err := h.jwtServ.GenerateToken(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		return
	}

	token, err := h.jwtServ.GenerateToken(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me maneja GET /auth/me. Vuelve a resolver el sujeto del token: un token
// valido cuyo usuario ya no existe se rechaza con 401.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		h.logger.Error("resolve current user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
