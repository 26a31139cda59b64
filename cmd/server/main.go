package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lexigrade/api/internal/client"
	"github.com/lexigrade/api/internal/config"
	"github.com/lexigrade/api/internal/extract"
	"github.com/lexigrade/api/internal/fetch"
	"github.com/lexigrade/api/internal/handler"
	"github.com/lexigrade/api/internal/middleware"
	"github.com/lexigrade/api/internal/pipeline"
	"github.com/lexigrade/api/internal/service"
	"github.com/lexigrade/api/internal/translate"
	ws "github.com/lexigrade/api/internal/websocket"
	"github.com/lexigrade/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	llmClient := client.NewLLMClient(&cfg.LLM)
	proxyClient := client.NewRenderProxyClient(&cfg.Proxy)

	// Initialize R2 client (optional - PDF uploads are rejected without it)
	var r2Client client.StorageClient
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		c, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		} else {
			r2Client = c
		}
	} else {
		log.Println("Info: R2 storage not configured, PDF sources disabled")
	}

	// Initialize services
	articleService := service.NewArticleService(redisClient, asynqClient,
		time.Duration(cfg.Pipeline.RetentionHours)*time.Hour)
	uploadService := service.NewUploadService(r2Client)

	// Initialize pipeline stages
	fetcher := fetch.NewFetcher(time.Duration(cfg.Pipeline.FetchTimeout)*time.Second, cfg.Pipeline.MinFetchBytes, proxyClient)
	extractor := extract.NewExtractor(cfg.Overrides, cfg.Pipeline.MinContentChars)
	llmTimeout := time.Duration(cfg.LLM.Timeout) * time.Second
	translator := translate.NewTranslator(llmClient, llmTimeout)
	detector := translate.NewDetector(llmClient, llmTimeout)

	translationPipeline := pipeline.New(fetcher, extractor, detector, translator,
		articleService, uploadService, hub, pipeline.Options{
			WaveSize:        cfg.Pipeline.WaveSize,
			MinContentChars: cfg.Pipeline.MinContentChars,
			Chunking:        cfg.Chunking,
		})

	// Initialize handlers
	articleHandler := handler.NewArticleHandler(articleService, validate)
	uploadHandler := handler.NewUploadHandler(uploadService)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // 10MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"llm":   llmClient.IsConfigured(),
				"proxy": proxyClient.IsConfigured(),
				"r2":    r2Client != nil,
				"redis": redisClient.Ping(c.Context()).Err() == nil,
			},
		})
	})

	// API routes
	api := app.Group("/api")

	articles := api.Group("/articles")
	articles.Post("/", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerHour), articleHandler.Submit)
	articles.Post("/pdf", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour), uploadHandler.PDF)
	articles.Get("/:articleId/status", rateLimiter.StatusLimit(cfg.RateLimit.StatusPerMin), articleHandler.Status)
	articles.Get("/:articleId", articleHandler.Result)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/articles/:articleId", websocket.New(func(c *websocket.Conn) {
		articleID := c.Params("articleId")
		hub.HandleConnection(c, articleID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, translationPipeline)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, p *pipeline.Pipeline) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// One article already fans out into a wave of concurrent LLM
			// calls, so article-level concurrency stays low.
			Concurrency: 4,
			Queues: map[string]int{
				"translate": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	translateWorker := worker.NewTranslateWorker(p)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeTranslate, translateWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
