package routes

import (
	"pulse/api/handlers"
	"pulse/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1/")
	{
		public.POST("auth/register", handlers.Register)
		public.POST("auth/login", handlers.Login)
		public.GET("user/search", handlers.UserSearch)
		public.GET("user/get/:id", handlers.GetProfile)
		public.GET("posts/:post_id", handlers.GetPost)
		public.GET("posts/:post_id/comments", handlers.GetComments)
		public.GET("user/:user_id/followers", handlers.GetFollowers)
		public.GET("user/:user_id/following", handlers.GetFollowing)

		// Лента: анонимный доступ только в режиме all
		public.GET("feed", middleware.AuthOptional(), handlers.GetFeed)
	}

	private := router.Group("/api/v1/")
	private.Use(middleware.AuthRequired())
	{
		private.POST("auth/logout", handlers.Logout)
		private.PUT("user/profile", handlers.UpdateProfile)
		private.POST("user/avatar", handlers.UploadAvatar)
		private.GET("user/suggestions", handlers.GetSuggestions)

		// Посты и вовлеченность
		private.POST("posts", handlers.CreatePost)
		private.DELETE("posts/:post_id", handlers.DeletePost)
		private.POST("posts/:post_id/like", handlers.ToggleLike)
		private.POST("posts/:post_id/save", handlers.ToggleSave)
		private.POST("posts/:post_id/comments", handlers.AddComment)
		private.POST("posts/:post_id/report", handlers.CreateReport)
		private.GET("posts/saved", handlers.GetSavedPosts)

		// Подписки
		private.POST("follow/:user_id", handlers.Follow)
		private.DELETE("follow/:user_id", handlers.Unfollow)

		// Диалоги
		private.GET("dialogs", handlers.ListConversationsHandler)
		private.POST("dialog/:user_id/send", handlers.SendMessageHandler)
		private.GET("dialog/:user_id/list", handlers.ListDialogHandler)

		// Уведомления
		private.GET("notifications", handlers.ListNotifications)
		private.POST("notifications/:id/read", handlers.MarkNotificationRead)
		private.POST("notifications/read_all", handlers.MarkAllNotificationsRead)

		// Живые события
		private.GET("ws/events", handlers.WSEventsHandler)
	}

	admin := router.Group("/api/v1/admin/")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("reports", handlers.ListReports)
		admin.POST("reports/:id/resolve", handlers.ResolveReport)
		admin.POST("feed/invalidate/:user_id", handlers.InvalidateUserFeed)
		admin.POST("feed/rebuild/:user_id", handlers.RebuildUserFeed)
		admin.GET("queue/stats", handlers.GetQueueStats)
	}

	return public
}
