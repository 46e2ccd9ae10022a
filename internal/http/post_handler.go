package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mini-linkedin/internal/service"
)

// PostHandler mantiene dependencias para endpoints del feed de posts.
type PostHandler struct {
	logger   *zap.Logger
	postServ *service.PostService
}

// NewPostHandler crea una instancia de PostHandler con dependencias necesarias.
func NewPostHandler(logger *zap.Logger, postServ *service.PostService) *PostHandler {
	return &PostHandler{
		logger:   logger,
		postServ: postServ,
	}
}

// ListPosts maneja GET /posts.
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postServ.Feed(c.Request.Context())
	if err != nil {
		h.logger.Error("list posts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost maneja GET /posts/:id.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		h.logger.Error("get post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost maneja POST /posts.
func (h *PostHandler) CreatePost(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create post request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	post, err := h.postServ.Create(c.Request.Context(), claims.UserID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		default:
			h.logger.Error("create post failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
			return
		}
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost maneja DELETE /posts/:id.
func (h *PostHandler) DeletePost(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	err := h.postServ.Delete(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		case errors.Is(err, service.ErrNotPostAuthor):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the author can delete this post"})
			return
		default:
			h.logger.Error("delete post failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete post"})
			return
		}
	}

	c.Status(http.StatusNoContent)
}

// LikePost maneja PUT /posts/:id/like.
func (h *PostHandler) LikePost(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	result, err := h.postServ.ToggleLike(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		h.logger.Error("toggle like failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle like"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CommentPost maneja POST /posts/:id/comment. Devuelve la lista completa de
// comentarios, no solo el nuevo.
func (h *PostHandler) CommentPost(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid comment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	comments, err := h.postServ.AddComment(c.Request.Context(), c.Param("id"), claims.UserID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		case errors.Is(err, service.ErrCommentInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		default:
			h.logger.Error("add comment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add comment"})
			return
		}
	}

	c.JSON(http.StatusOK, comments)
}
