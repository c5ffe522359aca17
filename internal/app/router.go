package app

import (
	"qahub_backend/docs"
	"qahub_backend/internal/config"
	"qahub_backend/internal/middleware"
	"qahub_backend/internal/model"
	"qahub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 问答浏览：允许游客访问，登录用户参与浏览量统计
	a.registerBrowseRoutes(router, c, repos)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerAuthorizedRoutes(authGroup, c)
	}

	// 4. 管理员相关接口
	a.registerAdminRoutes(router, c, repos)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerBrowseRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	browse := router.Group("/api")
	browse.Use(middleware.TryAuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	{
		browse.GET("/questions", c.question.List)
		browse.GET("/questions/:id", c.question.Detail)
		browse.GET("/questions/:id/answers", c.answer.List)
		browse.GET("/questions/:id/answers/accepted", c.answer.Accepted)
		browse.GET("/answers/top", c.answer.TopVoted)
		browse.GET("/tags", c.tag.List)
		browse.GET("/tags/:id", c.tag.Get)
		browse.GET("/users/:id", c.user.GetProfile)
	}
}

func (a *App) registerAuthorizedRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.PUT("/users/profile", c.user.UpdateProfile)
	rg.PUT("/users/password", c.user.ChangePassword)

	// 问题
	rg.POST("/questions", c.question.Create)
	rg.PUT("/questions/:id", c.question.Update)
	rg.DELETE("/questions/:id", c.question.Delete)
	rg.POST("/questions/:id/vote", c.question.Vote)
	rg.PUT("/questions/:id/closed", c.question.Close)
	rg.POST("/questions/:id/bounty", c.question.SetBounty)

	// 回答
	rg.POST("/questions/:id/answers", c.answer.Create)
	rg.POST("/questions/:id/answers/:answerId/accept", c.answer.Accept)
	rg.DELETE("/questions/:id/answers/:answerId/accept", c.answer.Unaccept)
	rg.PUT("/answers/:id", c.answer.Update)
	rg.DELETE("/answers/:id", c.answer.Delete)
	rg.POST("/answers/:id/vote", c.answer.Vote)

	// 通知
	rg.GET("/notifications", c.notification.Inbox)
	rg.GET("/notifications/unread-count", c.notification.UnreadCount)
	rg.PUT("/notifications/read-all", c.notification.MarkAllRead)
	rg.PUT("/notifications/:id/read", c.notification.MarkRead)
	rg.DELETE("/notifications/:id/read", c.notification.MarkUnread)
	rg.DELETE("/notifications/:id", c.notification.Delete)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	{
		// 1. 内容管理：管理员和版主均可访问
		moderation := admin.Group("/")
		moderation.Use(middleware.RoleMiddleware(model.RoleAdmin, model.RoleModerator))
		{
			moderation.PUT("/questions/:id/featured", c.question.Feature)
			moderation.PUT("/questions/:id/hidden", c.question.Hide)
			moderation.POST("/questions/:id/restore", c.question.Restore)
			moderation.PUT("/answers/:id/hidden", c.answer.Hide)
			moderation.POST("/answers/:id/restore", c.answer.Restore)
			moderation.POST("/tags", c.tag.Create)
			moderation.PUT("/tags/:id", c.tag.Update)
			moderation.PUT("/tags/:id/synonym", c.tag.SetSynonym)
			moderation.PUT("/tags/:id/featured", c.tag.Feature)
			moderation.PUT("/tags/:id/moderated", c.tag.Moderate)
			moderation.PUT("/tags/:id/hidden", c.tag.Hide)
			moderation.DELETE("/tags/:id", c.tag.Delete)
			moderation.POST("/tags/:id/restore", c.tag.Restore)
		}

		// 2. 其他所有接口：仅限管理员访问
		adminOnly := admin.Group("/")
		adminOnly.Use(middleware.RoleMiddleware(model.RoleAdmin))
		{
			adminOnly.GET("/users", c.user.ListUsers)
			adminOnly.GET("/users/:id", c.user.GetUser)
			adminOnly.PUT("/users/:id/disabled", c.user.SetDisabled)
			adminOnly.PUT("/users/:id/verified", c.user.SetVerified)
			adminOnly.PUT("/users/:id/role", c.user.SetRole)
			adminOnly.PUT("/users/:id/password", c.user.ResetPassword)
			adminOnly.PUT("/users/:id/reputation", c.user.AdjustReputation)
			adminOnly.DELETE("/users/:id", c.user.DeleteUser)
			adminOnly.POST("/users/:id/restore", c.user.RestoreUser)
			adminOnly.POST("/notifications/broadcast", c.notification.Broadcast)
			adminOnly.POST("/maintenance/retention-sweep", c.maintenance.Sweep)
		}
	}
}
