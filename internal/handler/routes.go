package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"studygen/internal/config"
	"studygen/internal/middleware"
)

// NewApp builds the fiber application with middleware and every API route.
func NewApp(serverCfg config.ServerConfig, log *zap.Logger, summarize *SummarizeHandler, quiz *QuizHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "studygen",
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		BodyLimit:    serverCfg.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	// Inside the logger so recovered panics are logged with their 500.
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader + ",Content-Disposition",
		MaxAge:        300,
	}))

	RegisterRoutes(app.Group("/api"), summarize, quiz)
	return app
}

// RegisterRoutes mounts the summarize and quiz endpoints on router.
func RegisterRoutes(router fiber.Router, summarize *SummarizeHandler, quiz *QuizHandler) {
	router.Post("/summarize", summarize.Summarize)
	router.Get("/summarize/health", summarize.Health)

	quizGroup := router.Group("/quiz")
	quizGroup.Post("/generate", quiz.GenerateQuiz)
	quizGroup.Post("/export", quiz.ExportQuiz)
	quizGroup.Post("/validate", quiz.ValidateQuiz)
	quizGroup.Get("/health", quiz.Health)
}
