package router

import (
	"github.com/gin-gonic/gin"

	"github.com/reachbase/reachbase-backend/internal/config"
	"github.com/reachbase/reachbase-backend/internal/http/handlers"
	"github.com/reachbase/reachbase-backend/internal/http/middleware"
	"github.com/reachbase/reachbase-backend/internal/metrics"
	"github.com/reachbase/reachbase-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	workspaceHandler *handlers.WorkspaceHandler,
	templateHandler *handlers.TemplateHandler,
	contactHandler *handlers.ContactHandler,
	accountHandler *handlers.AccountHandler,
	sequenceHandler *handlers.SequenceHandler,
	dealHandler *handlers.DealHandler,
	statsHandler *handlers.StatsHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
	m *metrics.Metrics,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware())
		r.GET("/metrics", m.Handler())
	}

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", authHandler.DeleteSession)
		protectedAuth.DELETE("/sessions", authHandler.DeleteAllSessionsExcept)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/me", workspaceHandler.Me)
		protected.GET("/workspace", workspaceHandler.Get)
		protected.GET("/workspace/members", workspaceHandler.ListMembers)

		protected.GET("/stats", statsHandler.GetWorkspaceStats)

		// Библиотека шаблонов
		protected.GET("/templates", templateHandler.List)
		protected.POST("/templates", templateHandler.Create)
		protected.GET("/templates/:id", middleware.UUIDValidator("id"), templateHandler.Get)
		protected.PATCH("/templates/:id", middleware.UUIDValidator("id"), templateHandler.Update)
		protected.DELETE("/templates/:id", middleware.UUIDValidator("id"), templateHandler.Delete)
		protected.POST("/templates/:id/use", middleware.UUIDValidator("id"), templateHandler.RecordUse)
		protected.PUT("/templates/:id/performance", middleware.UUIDValidator("id"), templateHandler.RecordPerformance)
		protected.POST("/templates/:id/favorite", middleware.UUIDValidator("id"), templateHandler.AddFavorite)
		protected.DELETE("/templates/:id/favorite", middleware.UUIDValidator("id"), templateHandler.RemoveFavorite)

		// Подборки шаблонов
		protected.GET("/collections", templateHandler.ListCollections)
		protected.POST("/collections", templateHandler.CreateCollection)
		protected.DELETE("/collections/:id", middleware.UUIDValidator("id"), templateHandler.DeleteCollection)
		protected.POST("/collections/:id/templates/:templateId", middleware.UUIDValidator("id"), middleware.UUIDValidator("templateId"), templateHandler.AddToCollection)
		protected.DELETE("/collections/:id/templates/:templateId", middleware.UUIDValidator("id"), middleware.UUIDValidator("templateId"), templateHandler.RemoveFromCollection)

		// Контакты
		protected.GET("/contacts", contactHandler.List)
		protected.POST("/contacts", contactHandler.Create)
		protected.GET("/contacts/:id", middleware.UUIDValidator("id"), contactHandler.Get)
		protected.PATCH("/contacts/:id", middleware.UUIDValidator("id"), contactHandler.Update)
		protected.DELETE("/contacts/:id", middleware.UUIDValidator("id"), contactHandler.Delete)

		// Компании
		protected.GET("/accounts", accountHandler.List)
		protected.POST("/accounts", accountHandler.Create)
		protected.GET("/accounts/:id", middleware.UUIDValidator("id"), accountHandler.Get)
		protected.PATCH("/accounts/:id", middleware.UUIDValidator("id"), accountHandler.Update)
		protected.DELETE("/accounts/:id", middleware.UUIDValidator("id"), accountHandler.Delete)

		// Последовательности рассылки
		protected.GET("/sequences", sequenceHandler.List)
		protected.POST("/sequences", sequenceHandler.Create)
		protected.GET("/sequences/:id", middleware.UUIDValidator("id"), sequenceHandler.Get)
		protected.PATCH("/sequences/:id", middleware.UUIDValidator("id"), sequenceHandler.Update)
		protected.DELETE("/sequences/:id", middleware.UUIDValidator("id"), sequenceHandler.Delete)
		protected.POST("/sequences/:id/enroll", middleware.UUIDValidator("id"), sequenceHandler.Enroll)
		protected.GET("/sequences/:id/enrollments", middleware.UUIDValidator("id"), sequenceHandler.ListEnrollments)
		protected.POST("/enrollments/:id/pause", middleware.UUIDValidator("id"), sequenceHandler.PauseEnrollment)
		protected.POST("/enrollments/:id/resume", middleware.UUIDValidator("id"), sequenceHandler.ResumeEnrollment)

		// Сделки
		protected.GET("/deals", dealHandler.List)
		protected.POST("/deals", dealHandler.Create)
		protected.GET("/deals/pipeline", dealHandler.PipelineSummary)
		protected.GET("/deals/:id", middleware.UUIDValidator("id"), dealHandler.Get)
		protected.PATCH("/deals/:id", middleware.UUIDValidator("id"), dealHandler.Update)
		protected.DELETE("/deals/:id", middleware.UUIDValidator("id"), dealHandler.Delete)
	}

	return r
}
