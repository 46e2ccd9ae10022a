package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mini-linkedin/internal/service"
)

// UserHandler mantiene dependencias para endpoints de perfiles de usuario.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	postServ *service.PostService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, postServ *service.PostService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		postServ: postServ,
	}
}

// GetUser maneja GET /users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserPosts maneja GET /users/:id/posts.
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.userServ.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get user"})
		return
	}

	posts, err := h.postServ.ListByAuthor(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list user posts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// UpdateProfile maneja PUT /users/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,max=100"`
		Bio  string `json:"bio" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), claims.UserID, req.Name, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		default:
			h.logger.Error("update profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, user)
}

// SearchUsers maneja GET /users?search=.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userServ.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.logger.Error("search users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search users"})
		return
	}
	c.JSON(http.StatusOK, users)
}
