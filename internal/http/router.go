package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mini-linkedin/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	postH *PostHandler,
	userH *UserHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireAuth := JWTAuthMiddleware(jwtSvc)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "mini linkedin api running"})
	})

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/me", requireAuth, authH.Me)

	posts := r.Group("/posts")
	posts.GET("", postH.ListPosts)
	posts.GET("/:id", postH.GetPost)
	posts.POST("", requireAuth, postH.CreatePost)
	posts.DELETE("/:id", requireAuth, postH.DeletePost)
	posts.PUT("/:id/like", requireAuth, postH.LikePost)
	posts.POST("/:id/comment", requireAuth, postH.CommentPost)

	users := r.Group("/users")
	users.GET("", userH.SearchUsers)
	users.GET("/:id", userH.GetUser)
	users.GET("/:id/posts", userH.GetUserPosts)
	users.PUT("/profile", requireAuth, userH.UpdateProfile)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
