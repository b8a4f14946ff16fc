package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type JournalRepo interface {
  Create(ctx context.Context, tx *gorm.DB, journals []*types.Journal) ([]*types.Journal, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Journal, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Journal, error)
  GetByClientID(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Journal, error)
  GetByCreatedAtRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Journal, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type journalRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
  return &journalRepo{db: db, log: baseLog.With("repo", "JournalRepo")}
}

func (r *journalRepo) Create(ctx context.Context, tx *gorm.DB, journals []*types.Journal) ([]*types.Journal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(journals) == 0 {
    return []*types.Journal{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&journals).Error; err != nil {
    return nil, err
  }
  return journals, nil
}

func (r *journalRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Journal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var journal types.Journal
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Limit(1).
    Find(&journal).Error
  if err != nil {
    return nil, err
  }
  if journal.ID == uuid.Nil {
    return nil, nil
  }
  return &journal, nil
}

func (r *journalRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Journal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Journal
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *journalRepo) GetByClientID(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Journal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Journal
  if clientID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("client_id = ?", clientID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetByCreatedAtRange returns journals created within [start, end]. Callers
// compute the bounds in the reference timezone and pass them in UTC.
func (r *journalRepo) GetByCreatedAtRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Journal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Journal
  if err := transaction.WithContext(ctx).
    Where("created_at >= ? AND created_at <= ?", start, end).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *journalRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil || len(updates) == 0 {
    return nil
  }
  updates["updated_at"] = time.Now().UTC()
  return transaction.WithContext(ctx).
    Model(&types.Journal{}).
    Where("id = ?", id).
    Updates(updates).Error
}
