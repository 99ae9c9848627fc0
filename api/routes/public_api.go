package routes

import (
	"yatube/api/handlers"
	"yatube/api/middleware"
	"yatube/cache"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PublicApi регистрирует страницы сайта. sessionAuth должен стоять перед
// кэшем страниц, потому что ключ кэша зависит от пользователя.
func PublicApi(router *gin.Engine, h *handlers.Handlers, pageCache *cache.PageCache, sessionAuth gin.HandlerFunc) {
	handlers.RegisterValidators()

	router.NoRoute(sessionAuth, h.NotFound)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	site := router.Group("/", sessionAuth)
	login := middleware.LoginRequired()
	both := func(path string, chain ...gin.HandlerFunc) {
		site.GET(path, chain...)
		site.POST(path, chain...)
	}

	if pageCache != nil {
		site.GET("/", pageCache.Middleware(middleware.ViewerID), h.Index)
	} else {
		site.GET("/", h.Index)
	}
	both("/new/", login, h.NewPost)
	site.GET("/follow/", login, h.FollowIndex)
	both("/group/new/", login, h.NewGroup)
	site.GET("/group/:slug/", h.GroupPosts)
	site.GET("/media/*key", h.Media)

	both("/auth/signup/", h.Signup)
	both("/auth/login/", h.Login)
	both("/auth/logout/", h.Logout)
	site.GET("/ws/feed/", login, h.WSFeed)

	site.GET("/:username/", h.Profile)
	both("/:username/edit/", login, h.ProfileEdit)
	both("/:username/follow/", login, h.Follow)
	both("/:username/unfollow/", login, h.Unfollow)

	site.GET("/:username/:post_id/", h.PostView)
	both("/:username/:post_id/edit/", login, h.EditPost)
	site.POST("/:username/:post_id/delete/", login, h.DeletePost)
	both("/:username/:post_id/comment/", login, h.AddComment)
	site.POST("/:username/:post_id/comment/:comment_id/delete/", login, h.DeleteComment)
	both("/:username/:post_id/like/", login, h.Like)
	both("/:username/:post_id/unlike/", login, h.Unlike)
}

// NewEngine собирает gin с логированием, 500-страницей, метриками и всеми маршрутами
func NewEngine(htmlRender render.HTMLRender, h *handlers.Handlers, pageCache *cache.PageCache, sessionAuth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.HTMLRender = htmlRender
	router.Use(gin.Logger(), h.Recovery(), middleware.PrometheusMiddleware("yatube"))
	PublicApi(router, h, pageCache, sessionAuth)
	return router
}
