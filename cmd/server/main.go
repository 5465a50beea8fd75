package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attunelab/welfare-archive/internal/config"
	"github.com/attunelab/welfare-archive/internal/database"
	"github.com/attunelab/welfare-archive/internal/handlers"
	"github.com/attunelab/welfare-archive/internal/routes"
	"github.com/attunelab/welfare-archive/internal/services"
	"github.com/attunelab/welfare-archive/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// JSON structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting welfare-archive", "version", handlers.Version)

	// ─── Config ──────────────────────────────────────────────────────────
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("Config load failed", "error", err)
		os.Exit(1)
	}

	// ─── Storage ─────────────────────────────────────────────────────────
	var (
		conversationStore storage.ConversationStore
		analysisStore     storage.AnalysisStore
		db                *gorm.DB
	)

	if cfg.Database.UseInMemory {
		slog.Warn("Using in-memory storage, data will not survive restarts")
		conversationStore = storage.NewMemoryConversationStore()
		analysisStore = storage.NewMemoryAnalysisStore()
	} else {
		if err := database.Connect(cfg); err != nil {
			slog.Error("Database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("Database migration failed", "error", err)
			os.Exit(1)
		}
		db = database.DB
		conversationStore = storage.NewPostgresConversationStore(db)
		analysisStore = storage.NewPostgresAnalysisStore(db)
	}

	// ─── Services ────────────────────────────────────────────────────────
	searchIndex := services.NewSearchIndex(conversationStore, analysisStore)
	aggregator := services.NewAggregator(analysisStore)

	// ─── Handlers ────────────────────────────────────────────────────────
	conversationHandler := handlers.NewConversationHandler(conversationStore, searchIndex)
	analysisHandler := handlers.NewAnalysisHandler(analysisStore, aggregator)
	systemHandler := handlers.NewSystemHandler(db)

	// ─── Fiber App ───────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      "welfare-archive v" + handlers.Version,
		ServerHeader: "welfare-archive",
		BodyLimit:    10 * 1024 * 1024, // long conversations with thinking blocks
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Request logger
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		)
		return err
	})

	// ─── Routes ──────────────────────────────────────────────────────────
	routes.Setup(app, conversationHandler, analysisHandler, systemHandler)

	// ─── Graceful Shutdown ───────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down welfare-archive...")

		if err := app.Shutdown(); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}

		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	}()

	// ─── Start ───────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Server.Port
	slog.Info("welfare-archive listening", "addr", listenAddr)

	if err := app.Listen(listenAddr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
