package services

import (
  "bytes"
  "context"
  "fmt"
  "strings"
  "time"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/clients/reportgen"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/repos"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type CreateJournalInput struct {
  ClientID      uuid.UUID
  CareWorkerID  uuid.UUID
  Audio         []byte
  Transcript    string
}

type JournalListItem struct {
  ID          uuid.UUID   `json:"id"`
  CreatedAt   time.Time   `json:"created_at"`
}

type JournalNarrative struct {
  Summary           string    `json:"summary"`
  Recommendations   string    `json:"recommendations"`
  Opinion           string    `json:"opinion"`
  Result            string    `json:"result"`
  Note              string    `json:"note"`
}

type JournalSummarizeResult struct {
  File              string          `json:"file"`
  DocxURL           string          `json:"docx_url"`
  PdfURL            string          `json:"pdf_url"`
  Narrative         JournalNarrative `json:"narrative"`
  Journal           *types.Journal  `json:"journal"`
}

type JournalService interface {
  CreateJournal(ctx context.Context, in CreateJournalInput) (*types.Journal, error)
  FindJournal(ctx context.Context, id uuid.UUID) (*types.Journal, error)
  FindJournalSummary(ctx context.Context, id, careWorkerID, socialWorkerID uuid.UUID) (*JournalNarrative, error)
  FindJournalListByClient(ctx context.Context, clientID, careWorkerID, socialWorkerID uuid.UUID) ([]JournalListItem, error)
  FindJournalListByDateRange(ctx context.Context, startDate, endDate string) ([]JournalListItem, error)
  FindRawAudio(ctx context.Context, id, careWorkerID uuid.UUID) (string, error)
  ModifyTranscript(ctx context.Context, id, careWorkerID uuid.UUID, editedTranscript string) (*types.Journal, error)
  SummarizeJournal(ctx context.Context, id, careWorkerID uuid.UUID) (*JournalSummarizeResult, error)
  FindDocxPresignedURL(ctx context.Context, id uuid.UUID) (string, error)
  FindPdfPresignedURL(ctx context.Context, id uuid.UUID) (string, error)
}

type journalService struct {
  log             *logger.Logger
  journalRepo     repos.JournalRepo
  clientRepo      repos.ClientRepo
  memberRepo      repos.MemberRepo
  bucketService   BucketService
  reportgenClient reportgen.Client
  loc             *time.Location
}

func NewJournalService(
  log *logger.Logger,
  journalRepo repos.JournalRepo,
  clientRepo repos.ClientRepo,
  memberRepo repos.MemberRepo,
  bucketService BucketService,
  reportgenClient reportgen.Client,
  loc *time.Location,
) JournalService {
  serviceLog := log.With("service", "JournalService")
  return &journalService{
    log:             serviceLog,
    journalRepo:     journalRepo,
    clientRepo:      clientRepo,
    memberRepo:      memberRepo,
    bucketService:   bucketService,
    reportgenClient: reportgenClient,
    loc:             loc,
  }
}

// CreateJournal uploads the audio blob first, then inserts the journal row.
// The row requires a non-null audio URL, so a failed upload never leaves a
// journal behind.
func (js *journalService) CreateJournal(ctx context.Context, in CreateJournalInput) (*types.Journal, error) {
  if in.ClientID == uuid.Nil || in.CareWorkerID == uuid.Nil {
    return nil, fmt.Errorf("%w: clientId and careWorkerId are required", apperr.ErrInvalidInput)
  }
  filename := fmt.Sprintf("audio_%s_%d.webm", in.ClientID, time.Now().UnixMilli())
  if err := js.bucketService.UploadFile(ctx, filename, bytes.NewReader(in.Audio)); err != nil {
    js.log.Error("Failed to upload journal audio", "filename", filename, "error", err)
    return nil, fmt.Errorf("%w: audio upload: %v", apperr.ErrJournalPersistence, err)
  }
  rawAudioURL := js.bucketService.GetPublicURL(filename)

  journal := &types.Journal{
    ID:           uuid.New(),
    ClientID:     in.ClientID,
    CareWorkerID: in.CareWorkerID,
    RawAudioURL:  rawAudioURL,
    Transcript:   in.Transcript,
  }
  if _, err := js.journalRepo.Create(ctx, nil, []*types.Journal{journal}); err != nil {
    js.log.Error("Failed to create journal row", "error", err)
    return nil, fmt.Errorf("%w: insert: %v", apperr.ErrJournalPersistence, err)
  }
  js.log.Debug("Journal entry created", "journalID", journal.ID, "rawAudioUrl", rawAudioURL)
  return journal, nil
}

func (js *journalService) FindJournal(ctx context.Context, id uuid.UUID) (*types.Journal, error) {
  journal, err := js.journalRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch journal: %w", err)
  }
  if journal == nil {
    return nil, fmt.Errorf("%w: journal %s", apperr.ErrNotFound, id)
  }
  return journal, nil
}

func (js *journalService) FindJournalSummary(ctx context.Context, id, careWorkerID, socialWorkerID uuid.UUID) (*JournalNarrative, error) {
  journal, err := js.FindJournal(ctx, id)
  if err != nil {
    return nil, err
  }
  client, err := js.clientRepo.GetByID(ctx, nil, journal.ClientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch client: %w", err)
  }
  if socialWorkerID != uuid.Nil && (client == nil || client.SocialWorkerID != socialWorkerID) {
    return nil, apperr.ErrUnauthorized
  }
  if careWorkerID != uuid.Nil && journal.CareWorkerID != careWorkerID {
    return nil, apperr.ErrUnauthorized
  }
  return &JournalNarrative{
    Summary:         journal.Summary,
    Recommendations: journal.Recommendations,
    Opinion:         journal.Opinion,
    Result:          journal.Result,
    Note:            journal.Note,
  }, nil
}

func (js *journalService) FindJournalListByClient(ctx context.Context, clientID, careWorkerID, socialWorkerID uuid.UUID) ([]JournalListItem, error) {
  client, err := js.clientRepo.GetByID(ctx, nil, clientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch client: %w", err)
  }
  if client == nil {
    return nil, fmt.Errorf("%w: client %s", apperr.ErrNotFound, clientID)
  }
  if (socialWorkerID != uuid.Nil && client.SocialWorkerID != socialWorkerID) ||
    (careWorkerID != uuid.Nil && client.CareWorkerID != careWorkerID) {
    return nil, apperr.ErrUnauthorized
  }
  journals, err := js.journalRepo.GetByClientID(ctx, nil, clientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list journals: %w", err)
  }
  items := make([]JournalListItem, 0, len(journals))
  for _, j := range journals {
    items = append(items, JournalListItem{ID: j.ID, CreatedAt: j.CreatedAt})
  }
  return items, nil
}

func (js *journalService) FindJournalListByDateRange(ctx context.Context, startDate, endDate string) ([]JournalListItem, error) {
  lower, upper, err := dayBounds(js.loc, startDate, endDate)
  if err != nil {
    return nil, err
  }
  journals, err := js.journalRepo.GetByCreatedAtRange(ctx, nil, lower, upper)
  if err != nil {
    return nil, fmt.Errorf("Failed to list journals by date range: %w", err)
  }
  items := make([]JournalListItem, 0, len(journals))
  for _, j := range journals {
    items = append(items, JournalListItem{ID: j.ID, CreatedAt: j.CreatedAt})
  }
  return items, nil
}

func (js *journalService) FindRawAudio(ctx context.Context, id, careWorkerID uuid.UUID) (string, error) {
  journal, err := js.FindJournal(ctx, id)
  if err != nil {
    return "", err
  }
  if careWorkerID == uuid.Nil || journal.CareWorkerID != careWorkerID {
    return "", apperr.ErrUnauthorized
  }
  return journal.RawAudioURL, nil
}

func (js *journalService) ModifyTranscript(ctx context.Context, id, careWorkerID uuid.UUID, editedTranscript string) (*types.Journal, error) {
  journal, err := js.FindJournal(ctx, id)
  if err != nil {
    return nil, err
  }
  if journal.CareWorkerID != careWorkerID {
    return nil, apperr.ErrUnauthorized
  }
  if err := js.journalRepo.UpdateFields(ctx, nil, id, map[string]interface{}{
    "edited_transcript": editedTranscript,
  }); err != nil {
    return nil, fmt.Errorf("Failed to update transcript: %w", err)
  }
  journal.EditedTranscript = editedTranscript
  return journal, nil
}

// SummarizeJournal drives the single-journal docx flow. It is independent
// from weekly report generation: a journal summarized here is not marked or
// skipped by later weekly aggregation.
func (js *journalService) SummarizeJournal(ctx context.Context, id, careWorkerID uuid.UUID) (*JournalSummarizeResult, error) {
  journal, err := js.FindJournal(ctx, id)
  if err != nil {
    return nil, err
  }
  if journal.CareWorkerID != careWorkerID {
    return nil, apperr.ErrUnauthorized
  }
  client, err := js.clientRepo.GetByID(ctx, nil, journal.ClientID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch client: %w", err)
  }
  careWorker, err := js.memberRepo.GetByID(ctx, nil, journal.CareWorkerID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch care worker: %w", err)
  }

  req := js.mapJournalToRequest(journal, client, careWorker)
  result, err := js.reportgenClient.GenerateJournalDocx(ctx, req)
  if err != nil {
    return nil, fmt.Errorf("Failed to generate journal docx: %w", err)
  }

  updates := map[string]interface{}{
    "exported_docx":   result.DocxURL,
    "exported_pdf":    result.PdfURL,
    "summary":         result.Summary,
    "recommendations": result.Recommendations,
    "opinion":         result.Opinion,
    "result":          result.Result,
    "note":            result.Note,
  }
  if err := js.journalRepo.UpdateFields(ctx, nil, journal.ID, updates); err != nil {
    return nil, fmt.Errorf("Failed to persist journal summary: %w", err)
  }
  journal.ExportedDocx = result.DocxURL
  journal.ExportedPdf = result.PdfURL
  journal.Summary = result.Summary
  journal.Recommendations = result.Recommendations
  journal.Opinion = result.Opinion
  journal.Result = result.Result
  journal.Note = result.Note

  return &JournalSummarizeResult{
    File:    result.File,
    DocxURL: result.DocxURL,
    PdfURL:  result.PdfURL,
    Narrative: JournalNarrative{
      Summary:         result.Summary,
      Recommendations: result.Recommendations,
      Opinion:         result.Opinion,
      Result:          result.Result,
      Note:            result.Note,
    },
    Journal: journal,
  }, nil
}

func (js *journalService) mapJournalToRequest(journal *types.Journal, client *types.Client, careWorker *types.Member) *reportgen.JournalDocxRequest {
  clientName := ""
  contact := ""
  if client != nil {
    clientName = client.Name
    contact = client.GuardianContact
  }
  manager := ""
  if careWorker != nil {
    manager = careWorker.Name
  }
  return &reportgen.JournalDocxRequest{
    Text:    journal.CanonicalTranscript(),
    Date:    formatDate(journal.CreatedAt, js.loc),
    Manager: manager,
    Client:  clientName,
    Contact: contact,
    Opinion: journal.Opinion,
    Result:  journal.Result,
    Note:    journal.Note,
  }
}

func (js *journalService) FindDocxPresignedURL(ctx context.Context, id uuid.UUID) (string, error) {
  journal, err := js.FindJournal(ctx, id)
  if err != nil {
    return "", err
  }
  if journal.ExportedDocx == "" {
    return "", fmt.Errorf("%w: journal %s has no exported docx", apperr.ErrDocumentNotFound, id)
  }
  return js.reportgenClient.JournalDownloadURL(ctx, reportgen.KindDocx, fileNameFromURL(journal.ExportedDocx))
}

func (js *journalService) FindPdfPresignedURL(ctx context.Context, id uuid.UUID) (string, error) {
  journal, err := js.FindJournal(ctx, id)
  if err != nil {
    return "", err
  }
  if journal.ExportedPdf == "" {
    return "", fmt.Errorf("%w: journal %s has no exported pdf", apperr.ErrDocumentNotFound, id)
  }
  return js.reportgenClient.JournalDownloadURL(ctx, reportgen.KindPdf, fileNameFromURL(journal.ExportedPdf))
}

// fileNameFromURL strips any path or URL prefix down to the bare filename
// the document service keys its presigned URLs by.
func fileNameFromURL(u string) string {
  if idx := strings.LastIndex(u, "/"); idx >= 0 {
    return u[idx+1:]
  }
  return u
}
