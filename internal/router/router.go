package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/handler"
	"github.com/photofolio/internal/logger"
)

const sessionName = "photofolio_session"

// Options configures the engine around the handler set.
type Options struct {
	SessionSecret  string
	SecureCookies  bool
	AllowedOrigins []string
	// StaticDir is served under StaticURL when set, for the local blob store.
	StaticDir string
	StaticURL string
	Log       *logger.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger(opts.Log))
	r.Use(handler.CORS(opts.AllowedOrigins))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 本地存储时直接提供上传的图片
	if opts.StaticDir != "" && opts.StaticURL != "" {
		r.Static(opts.StaticURL, opts.StaticDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/login", api.Login)
		authGroup.GET("/callback", api.Callback)
		authGroup.POST("/logout", api.Logout)
		authGroup.GET("/me", api.Me)
	}

	r.GET("/projects/:slug", api.ShowProject)
	r.GET("/stories/:slug", api.ShowStory)

	public := r.Group("/api")
	{
		public.GET("/projects", api.ListProjects)
		public.GET("/projects/:id", api.GetProject)
		public.GET("/projects/:id/lightbox", api.Lightbox)
		public.GET("/projects-list", api.ProjectsList)
		public.GET("/iconic-images", api.ListIconicImages)
	}

	admin := r.Group("/api")
	admin.Use(api.AdminRequired())
	{
		admin.POST("/projects", api.CreateProject)
		admin.PUT("/projects/:id", api.UpdateProject)
		admin.DELETE("/projects/:id", api.DeleteProject)

		admin.POST("/projects/:id/blocks", api.AddBlock)
		admin.PATCH("/projects/:id/blocks/:blockId", api.UpdateBlock)
		admin.DELETE("/projects/:id/blocks/:blockId", api.DeleteBlock)
		admin.POST("/projects/:id/blocks/:blockId/move", api.MoveBlock)
		admin.POST("/projects/:id/blocks/:blockId/images", api.AddGalleryImage)
		admin.DELETE("/projects/:id/blocks/:blockId/images/:index", api.RemoveGalleryImage)
		admin.POST("/projects/:id/blocks/:blockId/images/move", api.MoveGalleryImage)

		admin.GET("/gallery-images", api.ListGalleryImages)
		admin.POST("/upload", api.UploadImage)
		admin.DELETE("/delete-image", api.DeleteImage)
		admin.GET("/image-usage", api.ImageUsage)
		admin.POST("/iconic-images", api.ReplaceIconicImages)
	}

	return r
}
