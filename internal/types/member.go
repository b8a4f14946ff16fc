package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  RoleSocialWorker = "SOCIAL_WORKER"
  RoleCareWorker   = "CARE_WORKER"
)

type Member struct {
  ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  Email       string        `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password    string        `gorm:"not null;column:password" json:"-"`
  Name        string        `gorm:"not null;column:name" json:"name"`
  Role        string        `gorm:"not null;column:role" json:"role"`
  CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (Member) TableName() string {
  return "member"
}
