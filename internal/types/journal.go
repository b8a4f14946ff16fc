package types

import (
  "strings"
  "time"
  "github.com/google/uuid"
)

type Journal struct {
  ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  ClientID          uuid.UUID     `gorm:"type:uuid;not null;index;column:client_id" json:"client_id"`
  CareWorkerID      uuid.UUID     `gorm:"type:uuid;not null;index;column:care_worker_id" json:"care_worker_id"`
  RawAudioURL       string        `gorm:"not null;column:raw_audio_url" json:"raw_audio_url"`
  Transcript        string        `gorm:"not null;column:transcript" json:"transcript"`
  EditedTranscript  string        `gorm:"not null;default:'';column:edited_transcript" json:"edited_transcript"`
  Summary           string        `gorm:"not null;default:'';column:summary" json:"summary"`
  Recommendations   string        `gorm:"not null;default:'';column:recommendations" json:"recommendations"`
  Opinion           string        `gorm:"not null;default:'';column:opinion" json:"opinion"`
  Result            string        `gorm:"not null;default:'';column:result" json:"result"`
  Note              string        `gorm:"not null;default:'';column:note" json:"note"`
  ExportedPdf       string        `gorm:"not null;default:'';column:exported_pdf" json:"exported_pdf"`
  ExportedDocx      string        `gorm:"not null;default:'';column:exported_docx" json:"exported_docx"`
  CreatedAt         time.Time     `gorm:"not null;index" json:"created_at"`
  UpdatedAt         time.Time     `gorm:"not null" json:"updated_at"`
}

func (Journal) TableName() string {
  return "journal"
}

// CanonicalTranscript is the text every summarization path works from:
// the edited transcript once a care worker has corrected it, otherwise
// the raw transcription.
func (j *Journal) CanonicalTranscript() string {
  if strings.TrimSpace(j.EditedTranscript) != "" {
    return j.EditedTranscript
  }
  return j.Transcript
}
