package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type MemberRepo interface {
  Create(ctx context.Context, tx *gorm.DB, members []*types.Member) ([]*types.Member, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Member, error)
  GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Member, error)
  EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type memberRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
  return &memberRepo{db: db, log: baseLog.With("repo", "MemberRepo")}
}

func (r *memberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.Member) ([]*types.Member, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(members) == 0 {
    return []*types.Member{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
    return nil, err
  }
  return members, nil
}

func (r *memberRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Member, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var member types.Member
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Limit(1).
    Find(&member).Error
  if err != nil {
    return nil, err
  }
  if member.ID == uuid.Nil {
    return nil, nil
  }
  return &member, nil
}

func (r *memberRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Member, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Member
  if len(emails) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("email IN ?", emails).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *memberRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Member{}).
    Where("email = ?", email).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}
