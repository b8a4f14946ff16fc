package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dolbomcare/carelog-backend/internal/logger"
	"github.com/dolbomcare/carelog-backend/internal/types"
)

// DB opens a fresh in-memory sqlite database migrated with the full schema.
// Each test gets its own database; the shared-cache DSN keeps gorm's pooled
// connections on the same store.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", t.Name(), uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.Member{}, &types.Client{}, &types.Journal{}, &types.Report{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func SeedMember(t *testing.T, db *gorm.DB, name, role string) *types.Member {
	t.Helper()
	member := &types.Member{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Name:     name,
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	return member
}

func SeedClient(t *testing.T, db *gorm.DB, name string, socialWorkerID, careWorkerID uuid.UUID) *types.Client {
	t.Helper()
	client := &types.Client{
		ID:             uuid.New(),
		Name:           name,
		BirthDate:      time.Date(1940, time.May, 12, 0, 0, 0, 0, time.UTC),
		Gender:         "여",
		SocialWorkerID: socialWorkerID,
		CareWorkerID:   careWorkerID,
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	return client
}

func SeedJournal(t *testing.T, db *gorm.DB, clientID, careWorkerID uuid.UUID, createdAt time.Time, transcript string) *types.Journal {
	t.Helper()
	journal := &types.Journal{
		ID:           uuid.New(),
		ClientID:     clientID,
		CareWorkerID: careWorkerID,
		RawAudioURL:  fmt.Sprintf("https://storage.example.com/audio_%s.webm", uuid.NewString()),
		Transcript:   transcript,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := db.Create(journal).Error; err != nil {
		t.Fatalf("failed to seed journal: %v", err)
	}
	return journal
}
