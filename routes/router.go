package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/config"
	"github.com/vlogsite/blogify/controllers"
	"github.com/vlogsite/blogify/middleware"
	"github.com/vlogsite/blogify/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	taxonomyController := controllers.NewTaxonomyController(db)
	dashboardController := controllers.NewDashboardController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api")

	users := api.Group("/users")
	users.Use(middleware.RateLimitMiddleware())
	users.POST("/register", authController.Register)
	users.POST("/login", authController.Login)
	users.POST("/logout", authController.Logout)
	users.GET("/profile", middleware.AuthRequired(), authController.Profile)
	users.POST("/:id/follow", middleware.AuthRequired(), authController.Follow)
	users.POST("/:id/unfollow", middleware.AuthRequired(), authController.Unfollow)
	users.GET("/:id/followers", authController.ListFollowers)
	users.GET("/:id/following", authController.ListFollowing)
	users.GET("/:id", authController.GetUserPublic)

	posts := api.Group("/posts")
	posts.GET("", middleware.AuthOptional(), postController.ListPosts)
	posts.GET("/:id", middleware.AuthOptional(), postController.GetPost)
	posts.POST("", middleware.AuthRequired(), postController.CreatePost)
	posts.PUT("/:id", middleware.AuthRequired(), postController.UpdatePost)
	posts.DELETE("/:id", middleware.AuthRequired(), postController.DeletePost)
	posts.POST("/:id/like", middleware.AuthRequired(), postController.ToggleLike)
	posts.POST("/:id/dislike", middleware.AuthRequired(), postController.ToggleDislike)
	posts.POST("/:id/track-view", postController.TrackView)

	comments := api.Group("/comments")
	comments.GET("/:id", commentController.ListComments) // :id is the post id
	comments.POST("", middleware.AuthRequired(), commentController.CreateComment)
	comments.PUT("/:id", middleware.AuthRequired(), commentController.UpdateComment)
	comments.DELETE("/:id", middleware.AuthRequired(), commentController.DeleteComment)
	comments.POST("/:id/like", middleware.AuthRequired(), commentController.ToggleLike)

	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.AuthRequired())
	dashboard.GET("/user", dashboardController.UserDashboard)
	dashboard.GET("/post/:id", dashboardController.PostAnalytics)

	categories := api.Group("/categories")
	categories.GET("", taxonomyController.ListCategories)
	categories.POST("", middleware.AuthRequired(), taxonomyController.CreateCategory)
	categories.PUT("/:id", middleware.AuthRequired(), taxonomyController.UpdateCategory)
	categories.DELETE("/:id", middleware.AuthRequired(), taxonomyController.DeleteCategory)

	tags := api.Group("/tags")
	tags.GET("", taxonomyController.ListTags)
	tags.POST("", middleware.AuthRequired(), taxonomyController.CreateTag)
	tags.PUT("/:id", middleware.AuthRequired(), taxonomyController.UpdateTag)
	tags.DELETE("/:id", middleware.AuthRequired(), taxonomyController.DeleteTag)

	api.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
