package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/dolbomcare/carelog-backend/internal/gateway"
  "github.com/dolbomcare/carelog-backend/internal/handlers"
  "github.com/dolbomcare/carelog-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  ClientHandler     *handlers.ClientHandler
  JournalHandler    *handlers.JournalHandler
  ReportHandler     *handlers.ReportHandler
  Gateway           *gateway.Gateway
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)
  // The websocket gateway authenticates its own handshake.
  router.GET("/ws/journal", cfg.Gateway.HandleJournalSocket)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Client
  protected.POST("/client", cfg.ClientHandler.Register)
  protected.GET("/client", cfg.ClientHandler.ListMine)
  protected.GET("/client/:id", cfg.ClientHandler.Get)
  // Journal
  protected.POST("/journal", cfg.JournalHandler.Create)
  protected.GET("/journal", cfg.JournalHandler.ListByDateRange)
  protected.GET("/journal/client/:clientId", cfg.JournalHandler.ListByClient)
  protected.GET("/journal/:id", cfg.JournalHandler.Get)
  protected.GET("/journal/:id/summary", cfg.JournalHandler.GetSummary)
  protected.GET("/journal/:id/audio", cfg.JournalHandler.GetRawAudio)
  protected.PATCH("/journal/:id/transcript", cfg.JournalHandler.UpdateTranscript)
  protected.POST("/journal/:id/summarize", cfg.JournalHandler.Summarize)
  protected.GET("/journal/:id/download-docx-url", cfg.JournalHandler.GetDocxDownloadURL)
  protected.GET("/journal/:id/download-pdf-url", cfg.JournalHandler.GetPdfDownloadURL)
  // Report
  protected.POST("/report/weekly", cfg.ReportHandler.CreateWeekly)
  protected.GET("/report/weekly/:id", cfg.ReportHandler.Get)
  protected.GET("/report/weekly/:id/download-docx-url", cfg.ReportHandler.GetDocxDownloadURL)
  protected.GET("/report/weekly/:id/download-pdf-url", cfg.ReportHandler.GetPdfDownloadURL)

  return router
}
