package server

import (
	"context"
	"net/http"
	"time"

	"anoa.com/kudoswall/internal/config"
	"anoa.com/kudoswall/internal/middleware"
	"anoa.com/kudoswall/internal/scheduler"
	"anoa.com/kudoswall/pkg/ratelimit"
	"anoa.com/kudoswall/pkg/storage"

	avatarHttp "anoa.com/kudoswall/internal/modules/avatar/delivery/http"
	avatarService "anoa.com/kudoswall/internal/modules/avatar/service"

	badgeHttp "anoa.com/kudoswall/internal/modules/badge/delivery/http"
	badgeRepo "anoa.com/kudoswall/internal/modules/badge/repository"
	badgeService "anoa.com/kudoswall/internal/modules/badge/service"

	dashboardHttp "anoa.com/kudoswall/internal/modules/dashboard/delivery/http"
	dashboardService "anoa.com/kudoswall/internal/modules/dashboard/service"

	kpiHttp "anoa.com/kudoswall/internal/modules/kpi/delivery/http"
	kpiRepo "anoa.com/kudoswall/internal/modules/kpi/repository"
	kpiService "anoa.com/kudoswall/internal/modules/kpi/service"

	kudosHttp "anoa.com/kudoswall/internal/modules/kudos/delivery/http"
	kudosRepo "anoa.com/kudoswall/internal/modules/kudos/repository"
	kudosService "anoa.com/kudoswall/internal/modules/kudos/service"

	leaderboardHttp "anoa.com/kudoswall/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/kudoswall/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/kudoswall/internal/modules/leaderboard/service"

	notiHttp "anoa.com/kudoswall/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/kudoswall/internal/modules/notification/repository"
	notifService "anoa.com/kudoswall/internal/modules/notification/service"

	profileHttp "anoa.com/kudoswall/internal/modules/profile/delivery/http"
	profileService "anoa.com/kudoswall/internal/modules/profile/service"

	searchService "anoa.com/kudoswall/internal/modules/search/service"

	userHttp "anoa.com/kudoswall/internal/modules/user/delivery/http"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	userService "anoa.com/kudoswall/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-level clients. Redis, Meili and Images are optional.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Meili  meilisearch.ServiceManager
	Images storage.ImageStorage
	Log    *zap.Logger
}

type Server struct {
	engine    *gin.Engine
	scheduler *scheduler.Scheduler
	deps      Deps
}

func NewServer(deps Deps) (*Server, error) {
	cfg := deps.Config
	log := deps.Log

	userRepo := userRepo.NewUserRepository(deps.DB)
	kudosRepo := kudosRepo.NewKudosRepository(deps.DB)

	var searchSvc searchService.SearchService
	if deps.Meili != nil {
		searchSvc = searchService.NewMeiliSearchService(deps.Meili, log)
	} else {
		log.Info("meilisearch disabled, kudos search will return nothing")
		searchSvc = searchService.NewNoopSearchService()
	}

	authSvc := userService.NewAuthService(userRepo, userService.AuthConfig{
		Secret:             cfg.JWTSecret,
		TokenTTL:           cfg.JWTTTL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GoogleRedirectURL:  cfg.GoogleRedirectURL,
	}, log)
	authHandler := userHttp.NewAuthHandler(authSvc, cfg.FrontendURL)
	userHandler := userHttp.NewUserHandler(userService.NewUserService(userRepo))

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(deps.DB)
	notificationSvc := notifService.NewNotificationService(notificationRepository, deps.Redis, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, deps.Redis, cfg.AllowedOrigins, log)

	badgeSvc := badgeService.NewBadgeService(badgeRepo.NewBadgeRepository(deps.DB), kudosRepo, notificationSvc, badgeService.Config{
		WeekStart: cfg.WeekStart,
		Location:  cfg.Location,
	}, log)
	badgeHandler := badgeHttp.NewBadgeHandler(badgeSvc)

	kudosSvc := kudosService.NewKudosService(
		kudosRepo,
		userRepo,
		badgeSvc,
		searchSvc,
		notificationSvc,
		ratelimit.New(deps.Redis),
		kudosService.Config{RateLimit: cfg.RateLimitKudos},
		log,
	)
	kudosHandler := kudosHttp.NewKudosHandler(kudosSvc, cfg.RateLimitKudos)

	kpiSvc := kpiService.NewKPIService(kpiRepo.NewKPIRepository(deps.DB), log)
	kpiHandler := kpiHttp.NewKPIHandler(kpiSvc)

	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(deps.DB), userRepo, badgeSvc, log)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	avatarSvc := avatarService.NewAvatarService(avatarService.Config{
		UpstreamURL: cfg.AvatarUpstreamURL,
		MaxRetries:  cfg.AvatarMaxRetries,
		CacheTTL:    cfg.AvatarCacheTTL,
	}, deps.Redis, log)
	avatarHandler := avatarHttp.NewAvatarHandler(avatarSvc)

	profileSvc := profileService.NewProfileService(userRepo, badgeSvc, kudosRepo, leaderboardSvc, deps.Images, cfg.PublicBaseURL, log)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	dashboardSvc := dashboardService.NewDashboardService(userRepo, kudosRepo, kpiSvc, badgeSvc, leaderboardSvc)
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc)

	jobs := scheduler.New(cfg.Location, log)
	if err := jobs.Register(badgeService.NewWeeklyStarJob(badgeSvc, cfg.WeeklyStarCron, log)); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	router.Use(middleware.RequestLogger(log))

	s := &Server{engine: router, scheduler: jobs, deps: deps}
	router.GET("/healthz", s.healthz)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}
	api.GET("/avatar/:options", avatarHandler.GetAvatar)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Team
		protected.GET("/users", userHandler.ListUsers)
		protected.GET("/users/count", dashboardHandler.GetStats)
		protected.GET("/users/:id", userHandler.GetUser)
		protected.GET("/users/:id/kudos", kudosHandler.GetUserKudos)
		protected.GET("/users/:id/badges", badgeHandler.GetUserBadges)

		// Kudos
		protected.POST("/kudos", kudosHandler.SendKudos)
		protected.GET("/kudos", kudosHandler.GetWall)
		protected.GET("/kudos/received", kudosHandler.GetReceived)
		protected.GET("/kudos/sent", kudosHandler.GetSent)
		protected.GET("/kudos/search", kudosHandler.Search)

		// Badges
		protected.GET("/badges", badgeHandler.GetCatalog)
		protected.GET("/badges/me", badgeHandler.GetMyBadges)
		protected.POST("/badges/evaluate", badgeHandler.Evaluate)

		// KPIs
		protected.GET("/kpis", kpiHandler.ListKPIs)
		protected.POST("/kpis", kpiHandler.CreateKPI)
		protected.PUT("/kpis/:id", kpiHandler.UpdateKPI)
		protected.DELETE("/kpis/:id", kpiHandler.DeleteKPI)

		// Profile
		protected.GET("/profile/me", profileHandler.GetMyProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.PUT("/profile/avatar", profileHandler.UpdateAvatarOptions)
		protected.POST("/profile/avatar/upload", profileHandler.UploadAvatar)
		protected.GET("/profile/:id", profileHandler.GetProfile)

		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		// Notifications
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok"}
	code := http.StatusOK

	sqlDB, err := s.deps.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	if s.deps.Redis != nil {
		status["redis"] = "ok"
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
