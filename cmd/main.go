package main

import (
  "fmt"
  "os"
  "time"
  "github.com/dolbomcare/carelog-backend/internal/clients/reportgen"
  "github.com/dolbomcare/carelog-backend/internal/clients/stt"
  "github.com/dolbomcare/carelog-backend/internal/db"
  "github.com/dolbomcare/carelog-backend/internal/gateway"
  "github.com/dolbomcare/carelog-backend/internal/handlers"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/middleware"
  "github.com/dolbomcare/carelog-backend/internal/repos"
  "github.com/dolbomcare/carelog-backend/internal/server"
  "github.com/dolbomcare/carelog-backend/internal/services"
  "github.com/dolbomcare/carelog-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  referenceLocation := services.LoadReferenceLocation(log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  memberRepo := repos.NewMemberRepo(thePG, log)
  clientRepo := repos.NewClientRepo(thePG, log)
  journalRepo := repos.NewJournalRepo(thePG, log)
  reportRepo := repos.NewReportRepo(thePG, log)

  // External clients
  log.Info("Setting up external clients from main...")
  sttClient := stt.NewClient(log)
  reportgenClient := reportgen.NewClient(log)

  // Services
  log.Info("Setting up Services from main...")
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Error("Could not init BucketService", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(log, memberRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  clientService := services.NewClientService(log, clientRepo, memberRepo)
  journalService := services.NewJournalService(log, journalRepo, clientRepo, memberRepo, bucketService, reportgenClient, referenceLocation)
  reportService := services.NewReportService(log, reportRepo, journalRepo, clientRepo, memberRepo, reportgenClient, referenceLocation)

  // Gateway
  log.Info("Setting up voice gateway from main...")
  registry := gateway.NewRegistry()
  voiceGateway := gateway.NewGateway(log, registry, sttClient, journalService, authService)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  clientHandler := handlers.NewClientHandler(clientService)
  journalHandler := handlers.NewJournalHandler(journalService)
  reportHandler := handlers.NewReportHandler(reportService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:       authHandler,
    AuthMiddleware:    authMiddleware,
    ClientHandler:     clientHandler,
    JournalHandler:    journalHandler,
    ReportHandler:     reportHandler,
    Gateway:           voiceGateway,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
