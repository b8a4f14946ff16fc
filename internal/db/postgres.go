package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/dolbomcare/carelog-backend/internal/types"
  "github.com/dolbomcare/carelog-backend/internal/utils"
  "github.com/dolbomcare/carelog-backend/internal/logger"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "carelog", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  serviceLog.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Member{},
    &types.Client{},
    &types.Journal{},
    &types.Report{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  s.log.Info("Configuring foreign key relationships for postgres tables...")
  constraints := []string{
    `ALTER TABLE "journal" ADD CONSTRAINT "fk_journal_client_id"
     FOREIGN KEY ("client_id") REFERENCES "client"("id") ON DELETE CASCADE`,
    `ALTER TABLE "journal" ADD CONSTRAINT "fk_journal_care_worker_id"
     FOREIGN KEY ("care_worker_id") REFERENCES "member"("id") ON DELETE CASCADE`,
    `ALTER TABLE "report" ADD CONSTRAINT "fk_report_client_id"
     FOREIGN KEY ("client_id") REFERENCES "client"("id") ON DELETE CASCADE`,
  }
  for _, ddl := range constraints {
    if err := s.db.Exec(ddl).Error; err != nil {
      s.log.Warn("Skipping foreign key constraint", "error", err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
