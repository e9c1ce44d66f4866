package app

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/config"
	"cbt_cms/internal/controller"
	"cbt_cms/internal/repository"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/configwatcher"
	"cbt_cms/pkg/database"
	"cbt_cms/pkg/logger"
	"cbt_cms/pkg/monitoring"
	"cbt_cms/pkg/security"
	"cbt_cms/pkg/tracing"
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
	Client          *client.Client
	tracer          *sdktrace.TracerProvider
	stopWatch       context.CancelFunc
	listSessions    *service.QuestionListSessions
	configCallbacks []func(*config.Config)
}

type repositories struct {
	transfer *repository.TransferJobRepository
	session  *repository.EditorSessionRepository
}

type services struct {
	auth     *service.AuthService
	nav      *service.NavigationService
	storage  *service.StorageService
	transfer *service.TransferService
	bank     *service.QuestionBankService
	lists    *service.QuestionListSessions
	editor   *service.EditorService
	tryout   *service.TryoutService
	upload   *service.UploadService
}

type controllers struct {
	auth     *controller.AuthController
	question *controller.QuestionController
	editor   *controller.EditorController
	upload   *controller.UploadController
	tryout   *controller.TryoutController
	transfer *controller.TransferController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		transfer: repository.NewTransferJobRepository(db),
		session:  repository.NewEditorSessionRepository(rdb, cfg.Editor.SessionTTL),
	}
}

// initServices wires the services around the exam API client. transfers and
// sessions are interfaces so the same wiring runs against in-memory stores.
func initServices(cfg *config.Config, gw *client.Client, transfers service.TransferStore, sessions service.EditorStore) *services {
	s := &services{}

	s.nav = service.NewNavigationService()
	s.auth = service.NewAuthService(gw, s.nav, cfg)
	s.storage = service.NewStorageService(cfg)
	s.transfer = service.NewTransferService(transfers)
	s.bank = service.NewQuestionBankService(gw, s.transfer, cfg.Upstream.ImportTemplateURL)
	s.lists = service.NewQuestionListSessions(s.bank, cfg.Editor.SessionTTL)
	s.editor = service.NewEditorService(sessions, gw)
	s.tryout = service.NewTryoutService(gw, s.transfer, s.storage, cfg.Export)
	s.upload = service.NewUploadService(cfg.Upstream.UploadMode, gw, s.storage)

	return s
}

func initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth, s.nav),
		question: controller.NewQuestionController(s.bank, s.lists),
		editor:   controller.NewEditorController(s.editor),
		upload:   controller.NewUploadController(s.upload),
		tryout:   controller.NewTryoutController(s.tryout),
		transfer: controller.NewTransferController(s.transfer),
		health:   controller.NewHealthController(db, rdb),
	}
}

func setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(security.CORSOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ExposedHeaders: util.DownloadHeaders,
	}))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// newRouter builds the HTTP surface over ready controllers.
func newRouter(cfg *config.Config, c *controllers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	setupMiddlewares(router, cfg)
	registerRoutes(router, c, cfg)

	if cfg.Storage.Type == util.StorageLocal && cfg.Storage.LocalPath != "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return router
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb
	app.Client = client.New(cfg.Upstream)

	repos := app.initRepositories(db, rdb, cfg)
	services := initServices(cfg, app.Client, repos.transfer, repos.session)
	controllers := initControllers(services, db, rdb)
	app.listSessions = services.lists

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("cbt_cms", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.Router = newRouter(cfg, controllers)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.ApplyMode(newCfg.Server.Mode)
	})
	app.startConfigWatcher()

	return app
}

func (a *App) startConfigWatcher() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel

	go func() {
		err := configwatcher.WatchConfig(ctx, "configs", func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("config watcher disabled", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
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

	if a.stopWatch != nil {
		a.stopWatch()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.listSessions != nil {
		a.listSessions.Shutdown()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
