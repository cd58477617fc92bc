package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/domain/fiber/handler"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/repository"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/usecase"
	"github.com/fadilmartias/cover-letter-generator/internal/workflow"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	workflowTTL   = 2 * time.Hour
	evictInterval = 5 * time.Minute
	maxWorkflows  = 1000
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appConfig := config.LoadAppConfig()
	authConfig := config.LoadAuthConfig()
	genConfig := config.LoadGenerationConfig()
	logr := logging.New(appConfig.Env)

	if authConfig.JWTSecret == "" {
		if appConfig.IsProduction() {
			log.Fatal("JWT_SECRET not set")
		}
		log.Println("Warning: JWT_SECRET not set, signed-in routes will reject every token")
	}

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: handler.BodyLimit,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.Session([]byte(authConfig.JWTSecret)))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	generator, err := service.NewTextGenerator(ctx, genConfig.Provider, logr)
	if err != nil {
		log.Fatal(err)
	}
	embedder := newEmbedder(ctx, generator, logr)
	storage := newStorage(ctx, logr)

	fetcher := service.NewJobFetchService(config.LoadFetchConfig(), logr)
	extractor := service.NewResumeExtractService(logr)
	letters := service.NewCoverLetterService(generator, genConfig, logr)

	applicationRepo := repository.NewApplicationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	applications := usecase.NewApplicationUsecase(applicationRepo, embedder, logr)
	chat := usecase.NewChatUsecase(chatRepo, fetcher, generator, letters, genConfig, logr)
	profile := usecase.NewProfileUsecase(profileRepo, extractor, storage, logr)

	workflows := workflow.NewStore(workflow.Deps{
		Fetcher:   fetcher,
		Extractor: extractor,
		Letters:   letters,
		Config:    genConfig,
		Log:       logr,
	}, workflowTTL, maxWorkflows)
	go workflows.Run(ctx, evictInterval)

	handler.NewWorkflowHandler(workflows, applications).RegisterRoutes(app)
	handler.NewJobHandler(fetcher, letters).RegisterRoutes(app)
	handler.NewApplicationHandler(applications).RegisterRoutes(app)
	handler.NewChatHandler(chat).RegisterRoutes(app)
	handler.NewProfileHandler(profile).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logr.Debug(ctx, "runtime stats", "goroutines", runtime.NumGoroutine(), "workflows", workflows.Len())
			}
		}
	}()

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logr.Error(context.Background(), "shutdown failed", "error", err)
		}
	}()

	logr.Info(ctx, "server starting", "port", appConfig.Port, "provider", genConfig.Provider)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

// newEmbedder returns the Gemini client used for related-application search,
// or nil when no Gemini key is configured.
func newEmbedder(ctx context.Context, generator service.TextGenerator, logr logging.Logger) service.Embedder {
	if gemini, ok := generator.(*service.GeminiService); ok {
		return gemini
	}
	if config.LoadGeminiConfig().APIKey == "" {
		logr.Info(ctx, "GEMINI_API_KEY not set, related applications disabled")
		return nil
	}
	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), config.LoadFetchConfig().Timeout, logr)
	if err != nil {
		logr.Warn(ctx, "gemini embedder unavailable", "error", err)
		return nil
	}
	return gemini
}

// newStorage returns the S3 bucket for résumé files, or nil when storage is not configured.
func newStorage(ctx context.Context, logr logging.Logger) service.ObjectStorage {
	cfg := config.LoadStorageConfig()
	if !cfg.Enabled() {
		logr.Info(ctx, "object storage not configured, only extracted resume text is kept")
		return nil
	}
	storage, err := service.NewS3Storage(ctx, cfg, logr)
	if err != nil {
		log.Fatalf("Could not create object storage: %v", err)
	}
	return storage
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	for _, ext := range []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`, `CREATE EXTENSION IF NOT EXISTS vector`} {
		if err := db.Exec(ext).Error; err != nil {
			log.Fatalf("could not enable extension: %v", err)
		}
	}

	err = db.AutoMigrate(&model.Application{}, &model.ApplicationEmbedding{}, &model.ChatMessage{}, &model.Profile{})
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
