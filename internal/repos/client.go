package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type ClientRepo interface {
  Create(ctx context.Context, tx *gorm.DB, clients []*types.Client) ([]*types.Client, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Client, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Client, error)
  GetByWorker(ctx context.Context, tx *gorm.DB, socialWorkerID, careWorkerID uuid.UUID) ([]*types.Client, error)
}

type clientRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
  return &clientRepo{db: db, log: baseLog.With("repo", "ClientRepo")}
}

func (r *clientRepo) Create(ctx context.Context, tx *gorm.DB, clients []*types.Client) ([]*types.Client, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(clients) == 0 {
    return []*types.Client{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&clients).Error; err != nil {
    return nil, err
  }
  return clients, nil
}

func (r *clientRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Client, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var client types.Client
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Limit(1).
    Find(&client).Error
  if err != nil {
    return nil, err
  }
  if client.ID == uuid.Nil {
    return nil, nil
  }
  return &client, nil
}

func (r *clientRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Client, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Client
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

// GetByWorker lists clients assigned to either of the given workers. A nil
// uuid skips that condition, matching the original OR-list behavior.
func (r *clientRepo) GetByWorker(ctx context.Context, tx *gorm.DB, socialWorkerID, careWorkerID uuid.UUID) ([]*types.Client, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Client
  q := transaction.WithContext(ctx)
  switch {
  case socialWorkerID != uuid.Nil && careWorkerID != uuid.Nil:
    q = q.Where("social_worker_id = ? OR care_worker_id = ?", socialWorkerID, careWorkerID)
  case socialWorkerID != uuid.Nil:
    q = q.Where("social_worker_id = ?", socialWorkerID)
  case careWorkerID != uuid.Nil:
    q = q.Where("care_worker_id = ?", careWorkerID)
  default:
    return results, nil
  }
  if err := q.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
