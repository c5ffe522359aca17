package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qahub_backend/internal/config"
	"qahub_backend/internal/controller"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/service"
	"qahub_backend/pkg/database"
	"qahub_backend/pkg/logger"
	"qahub_backend/pkg/monitoring"
	"qahub_backend/pkg/security"
	"qahub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	tag          *repository.TagRepository
	question     *repository.QuestionRepository
	answer       *repository.AnswerRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	question     *service.QuestionService
	answer       *service.AnswerService
	tag          *service.TagService
	notification *service.NotificationService
	retention    *service.RetentionService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	question     *controller.QuestionController
	answer       *controller.AnswerController
	tag          *controller.TagController
	notification *controller.NotificationController
	health       *controller.HealthController
	maintenance  *controller.MaintenanceController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新回调入口（configwatcher 触发）
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("配置已热更新")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	tagRepo := repository.NewTagRepository(db)
	return &repositories{
		user:         repository.NewUserRepository(db),
		tag:          tagRepo,
		question:     repository.NewQuestionRepository(db, tagRepo),
		answer:       repository.NewAnswerRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.notification = service.NewNotificationService(repos.notification, repos.user, rdb)
	s.question = service.NewQuestionService(repos.question, repos.answer, repos.tag, repos.user, s.notification, rdb)
	s.answer = service.NewAnswerService(repos.answer, repos.question, repos.user, s.notification)
	s.tag = service.NewTagService(repos.tag)
	s.retention = service.NewRetentionService(repos.user, repos.tag, repos.question, repos.answer, repos.notification)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		question:     controller.NewQuestionController(s.question),
		answer:       controller.NewAnswerController(s.answer),
		tag:          controller.NewTagController(s.tag),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db, rdb),
		maintenance:  controller.NewMaintenanceController(s.retention, cfg.Retention.Days),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期执行保留期清理
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if !cfg.Retention.Enabled {
		return
	}

	interval := time.Duration(cfg.Retention.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			if _, err := s.retention.SweepOlderThan(cfg.Retention.Days); err != nil {
				logger.Log.Error("retention sweep error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb, cfg)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("qa-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
