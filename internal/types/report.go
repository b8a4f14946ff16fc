package types

import (
  "encoding/json"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// JournalSummaryItem is the denormalized snapshot of one journal taken at
// report-creation time. It is never re-derived after the report is created,
// so later journal edits do not change past reports.
type JournalSummaryItem struct {
  Date        string    `json:"date"`
  CareWorker  string    `json:"careWorker"`
  Service     string    `json:"service"`
  Notes       string    `json:"notes"`
}

type Report struct {
  ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
  ClientID          uuid.UUID         `gorm:"type:uuid;not null;index;column:client_id" json:"client_id"`
  CareWorkerID      uuid.UUID         `gorm:"type:uuid;not null;column:care_worker_id" json:"care_worker_id"`
  SocialWorkerID    uuid.UUID         `gorm:"type:uuid;not null;index;column:social_worker_id" json:"social_worker_id"`
  PeriodStart       time.Time         `gorm:"not null;column:period_start" json:"period_start"`
  PeriodEnd         time.Time         `gorm:"not null;column:period_end" json:"period_end"`
  JournalSummary    datatypes.JSON    `gorm:"not null;column:journal_summary" json:"journal_summary"`
  Title             string            `gorm:"not null;default:'';column:title" json:"title"`
  CareLevel         string            `gorm:"not null;default:'';column:care_level" json:"care_level"`
  Summary           string            `gorm:"not null;default:'';column:summary" json:"summary"`
  RiskNotes         string            `gorm:"not null;default:'';column:risk_notes" json:"risk_notes"`
  Evaluation        string            `gorm:"not null;default:'';column:evaluation" json:"evaluation"`
  Suggestion        string            `gorm:"not null;default:'';column:suggestion" json:"suggestion"`
  ExportedPdf       string            `gorm:"not null;default:'';column:exported_pdf" json:"exported_pdf"`
  ExportedDocx      string            `gorm:"not null;default:'';column:exported_docx" json:"exported_docx"`
  CreatedAt         time.Time         `gorm:"not null" json:"created_at"`
}

func (Report) TableName() string {
  return "report"
}

func MarshalJournalSummary(items []JournalSummaryItem) (datatypes.JSON, error) {
  raw, err := json.Marshal(items)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}

func UnmarshalJournalSummary(raw datatypes.JSON) ([]JournalSummaryItem, error) {
  var items []JournalSummaryItem
  if len(raw) == 0 {
    return items, nil
  }
  if err := json.Unmarshal(raw, &items); err != nil {
    return nil, err
  }
  return items, nil
}
