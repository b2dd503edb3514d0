package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"threadpost/ai"
	"threadpost/config"
	"threadpost/handlers/api"
	"threadpost/middleware"
	"threadpost/storage"
	"threadpost/thread"
	"threadpost/uploads"
	"threadpost/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
		utils.Log.Error("Failed to create data directory: %v", err)
		os.Exit(1)
	}

	// Single database handle shared by all storage, opened once for the
	// process lifetime
	db, err := storage.InitDB(cfg.Storage.DataDir)
	if err != nil {
		utils.Log.Error("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	conversationStore := storage.NewConversationStorage(db)
	userStore := storage.NewUserStorage(db)
	appender := thread.NewAppender(conversationStore)
	resolver := uploads.NewResolver(cfg.Uploads.Endpoint, cfg.Uploads.Preset)
	relay := ai.NewRelay(conversationStore, cfg.AI.BaseURL, cfg.AI.Timeout())

	if cfg.AI.BaseURL == "" {
		utils.Log.Warn("AI_SERVICE_URL not set; generate requests will fail until configured")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})

	// Add global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(logger.New())  // Request logging
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))
	app.Use(middleware.RateLimiter(cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))

	// Initialize handlers
	userHandler := api.NewUserHandler(cfg, userStore)
	conversationHandler := api.NewConversationHandler(conversationStore, userStore, appender, resolver)
	generateHandler := api.NewGenerateHandler(relay)

	// User directory routes
	users := app.Group("/api/users")
	{
		users.Post("/", userHandler.HandleRegister)
		users.Post("/login", userHandler.HandleLogin)
		users.Get("/me", middleware.RequireAuth(cfg.JWT.Secret), userHandler.HandleMe)
	}

	// Conversation routes
	conversations := app.Group("/api/conversations")
	{
		conversations.Post("/", conversationHandler.HandleCreate)
		conversations.Get("/user/:email", conversationHandler.HandleGetForUser)
		conversations.Get("/:id", conversationHandler.HandleGetByID)
		conversations.Get("/:id/recipient", conversationHandler.HandleReplyRecipient)
		conversations.Post("/:id/reply", conversationHandler.HandleReply)
		conversations.Post("/:id/generate", generateHandler.HandleGenerate)
	}

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Start server
	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
		os.Exit(1)
	}
}
