package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  GenderFemale = "여"
  GenderMale   = "남"
)

type Client struct {
  ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  Name              string        `gorm:"not null;column:name" json:"name"`
  BirthDate         time.Time     `gorm:"not null;column:birth_date" json:"birth_date"`
  Gender            string        `gorm:"not null;column:gender" json:"gender"`
  GuardianContact   string        `gorm:"column:guardian_contact" json:"guardian_contact"`
  Address           string        `gorm:"column:address" json:"address"`
  SocialWorkerID    uuid.UUID     `gorm:"type:uuid;not null;index;column:social_worker_id" json:"social_worker_id"`
  CareWorkerID      uuid.UUID     `gorm:"type:uuid;not null;index;column:care_worker_id" json:"care_worker_id"`
  CreatedAt         time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt         time.Time     `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string {
  return "client"
}
