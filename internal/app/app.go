package app

import (
	"adaptive_lms_backend/internal/config"
	"adaptive_lms_backend/internal/controller"
	"adaptive_lms_backend/internal/repository"
	"adaptive_lms_backend/internal/service"
	"adaptive_lms_backend/pkg/configwatcher"
	"adaptive_lms_backend/pkg/database"
	"adaptive_lms_backend/pkg/logger"
	"adaptive_lms_backend/pkg/monitoring"
	"adaptive_lms_backend/pkg/security"
	"adaptive_lms_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	catalog         *repository.CatalogRepository
	enrollment      *repository.EnrollmentRepository
	lessonProgress  *repository.LessonProgressRepository
	quizAttempt     *repository.QuizAttemptRepository
	answerRecord    *repository.AnswerRecordRepository
	practiceSet     *repository.PracticeSetRepository
	practiceAttempt *repository.PracticeAttemptRepository
}

type services struct {
	policy          *service.PolicyStore
	access          *service.AccessPolicy
	progress        *service.ProgressService
	quizAttempt     *service.QuizAttemptService
	practiceAttempt *service.PracticeAttemptService
	practiceSet     *service.PracticeSetService
	enrollment      *service.EnrollmentService
}

type controllers struct {
	attempt    *controller.AttemptController
	practice   *controller.PracticeController
	enrollment *controller.EnrollmentController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		catalog:         repository.NewCatalogRepository(db),
		enrollment:      repository.NewEnrollmentRepository(db),
		lessonProgress:  repository.NewLessonProgressRepository(db),
		quizAttempt:     repository.NewQuizAttemptRepository(db),
		answerRecord:    repository.NewAnswerRecordRepository(db),
		practiceSet:     repository.NewPracticeSetRepository(db),
		practiceAttempt: repository.NewPracticeAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.policy = service.NewPolicyStore(service.ScoringPolicyFromConfig(cfg.Scoring))
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		if err := s.policy.Update(newCfg.Scoring); err != nil {
			logger.Log.Error("Scoring thresholds not updated", zap.Error(err))
		}
	})

	var publisher service.DirectivePublisher = service.NoopDirectivePublisher{}
	if rdb != nil {
		publisher = service.NewRedisDirectivePublisher(rdb, cfg.Practice.DirectiveQueue)
	}

	s.access = service.NewAccessPolicy(repos.enrollment)
	s.progress = service.NewProgressService(repos.catalog, repos.lessonProgress, repos.enrollment)
	s.quizAttempt = service.NewQuizAttemptService(
		db,
		repos.catalog,
		repos.quizAttempt,
		repos.answerRecord,
		s.access,
		s.progress,
		s.policy,
		publisher,
		cfg.Practice.PublishDirectives,
	)
	s.practiceAttempt = service.NewPracticeAttemptService(db, repos.practiceSet, repos.practiceAttempt, s.policy)
	s.practiceSet = service.NewPracticeSetService(
		repos.practiceSet,
		repos.catalog,
		repos.enrollment,
		repos.quizAttempt,
		s.access,
		publisher,
	)
	s.enrollment = service.NewEnrollmentService(repos.catalog, repos.enrollment)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		attempt:    controller.NewAttemptController(s.quizAttempt),
		practice:   controller.NewPracticeController(s.practiceAttempt, s.practiceSet),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())

	a.limiter = security.NewIPRateLimiter(cfg.RateLimit)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 组装路由与依赖，数据库与 Redis 由调用方提供（rdb 可为 nil）
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("adaptive-lms", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) Run() {
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	go a.limiter.Run(bgCtx)
	go func() {
		if err := configwatcher.Watch(bgCtx, "configs", a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
