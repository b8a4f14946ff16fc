package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type ReportRepo interface {
  Create(ctx context.Context, tx *gorm.DB, reports []*types.Report) ([]*types.Report, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Report, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type reportRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
  return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, reports []*types.Report) ([]*types.Report, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(reports) == 0 {
    return []*types.Report{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&reports).Error; err != nil {
    return nil, err
  }
  return reports, nil
}

func (r *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Report, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var report types.Report
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Limit(1).
    Find(&report).Error
  if err != nil {
    return nil, err
  }
  if report.ID == uuid.Nil {
    return nil, nil
  }
  return &report, nil
}

func (r *reportRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil || len(updates) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Report{}).
    Where("id = ?", id).
    Updates(updates).Error
}
