package services

import (
  "context"
  "fmt"
  "sort"
  "sync"
  "time"
  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/clients/reportgen"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/repos"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

const (
  ReportStatusPending  = "PENDING"
  ReportStatusComplete = "COMPLETE"

  maxConcurrentReports = 4
)

type CreateWeeklyReportsInput struct {
  SocialWorkerID  uuid.UUID
  JournalIDs      []uuid.UUID
  StartDate       string
  EndDate         string
}

type WeeklyReportView struct {
  ID              uuid.UUID                  `json:"id"`
  ClientID        uuid.UUID                  `json:"clientId"`
  ClientName      string                     `json:"clientName"`
  Status          string                     `json:"status"`
  PeriodStart     string                     `json:"periodStart"`
  PeriodEnd       string                     `json:"periodEnd"`
  Title           string                     `json:"title"`
  CareLevel       string                     `json:"careLevel"`
  Summary         string                     `json:"summary"`
  RiskNotes       string                     `json:"riskNotes"`
  Evaluation      string                     `json:"evaluation"`
  Suggestion      string                     `json:"suggestion"`
  JournalSummary  []types.JournalSummaryItem `json:"journalSummary"`
}

type ReportService interface {
  CreateWeeklyReports(ctx context.Context, in CreateWeeklyReportsInput) ([]WeeklyReportView, error)
  FindWeeklyReport(ctx context.Context, id uuid.UUID) (*WeeklyReportView, error)
  FindWeeklyReportDocxPresignedURL(ctx context.Context, id uuid.UUID) (string, error)
  FindWeeklyReportPdfPresignedURL(ctx context.Context, id uuid.UUID) (string, error)
}

type reportService struct {
  log             *logger.Logger
  reportRepo      repos.ReportRepo
  journalRepo     repos.JournalRepo
  clientRepo      repos.ClientRepo
  memberRepo      repos.MemberRepo
  reportgenClient reportgen.Client
  loc             *time.Location
}

func NewReportService(
  log *logger.Logger,
  reportRepo repos.ReportRepo,
  journalRepo repos.JournalRepo,
  clientRepo repos.ClientRepo,
  memberRepo repos.MemberRepo,
  reportgenClient reportgen.Client,
  loc *time.Location,
) ReportService {
  serviceLog := log.With("service", "ReportService")
  return &reportService{
    log:             serviceLog,
    reportRepo:      reportRepo,
    journalRepo:     journalRepo,
    clientRepo:      clientRepo,
    memberRepo:      memberRepo,
    reportgenClient: reportgenClient,
    loc:             loc,
  }
}

// CreateWeeklyReports collects journals either from an explicit ID list or
// from a validated calendar period, groups them per client, and generates one
// weekly report per group. Each group is persisted as a pending row before
// the summarization call so a service outage never loses the grouping work;
// the same row is updated in place once the narrative arrives.
func (rs *reportService) CreateWeeklyReports(ctx context.Context, in CreateWeeklyReportsInput) ([]WeeklyReportView, error) {
  journals, err := rs.collectJournals(ctx, in)
  if err != nil {
    return nil, err
  }
  if len(journals) == 0 {
    return nil, apperr.ErrNoMatchingJournals
  }

  groups, clients, err := rs.groupByAuthorizedClient(ctx, journals, in.SocialWorkerID)
  if err != nil {
    return nil, err
  }
  if len(groups) == 0 {
    return nil, apperr.ErrNoAuthorizedJournals
  }

  socialWorkerName := ""
  if in.SocialWorkerID != uuid.Nil {
    worker, err := rs.memberRepo.GetByID(ctx, nil, in.SocialWorkerID)
    if err != nil {
      return nil, fmt.Errorf("Failed to fetch social worker: %w", err)
    }
    if worker != nil {
      socialWorkerName = worker.Name
    }
  }

  clientIDs := make([]uuid.UUID, 0, len(groups))
  for clientID := range groups {
    clientIDs = append(clientIDs, clientID)
  }
  sort.Slice(clientIDs, func(i, j int) bool {
    return clientIDs[i].String() < clientIDs[j].String()
  })

  var (
    mu    sync.Mutex
    views []WeeklyReportView
    failures []error
  )
  g, gctx := errgroup.WithContext(ctx)
  g.SetLimit(maxConcurrentReports)
  for _, clientID := range clientIDs {
    clientID := clientID
    group := groups[clientID]
    client := clients[clientID]
    g.Go(func() error {
      view, err := rs.generateForGroup(gctx, client, group, socialWorkerName)
      mu.Lock()
      defer mu.Unlock()
      if err != nil {
        rs.log.Error("Weekly report generation failed for client", "clientID", clientID, "error", err)
        failures = append(failures, err)
      }
      if view != nil {
        views = append(views, *view)
      }
      return nil
    })
  }
  if err := g.Wait(); err != nil {
    return nil, err
  }

  if len(views) == 0 {
    return nil, fmt.Errorf("%w: %d group(s) failed", apperr.ErrNoReportsGenerated, len(failures))
  }
  sort.Slice(views, func(i, j int) bool {
    return views[i].ClientID.String() < views[j].ClientID.String()
  })
  return views, nil
}

func (rs *reportService) collectJournals(ctx context.Context, in CreateWeeklyReportsInput) ([]*types.Journal, error) {
  if len(in.JournalIDs) > 0 {
    journals, err := rs.journalRepo.GetByIDs(ctx, nil, in.JournalIDs)
    if err != nil {
      return nil, fmt.Errorf("Failed to fetch journals: %w", err)
    }
    // An explicit list with a period narrows to that window; no weekday
    // restriction applies here.
    if in.StartDate != "" && in.EndDate != "" {
      lower, upper, err := dayBounds(rs.loc, in.StartDate, in.EndDate)
      if err != nil {
        return nil, err
      }
      inWindow := journals[:0]
      for _, j := range journals {
        if !j.CreatedAt.Before(lower) && !j.CreatedAt.After(upper) {
          inWindow = append(inWindow, j)
        }
      }
      journals = inWindow
    }
    sort.Slice(journals, func(i, j int) bool {
      return journals[i].CreatedAt.Before(journals[j].CreatedAt)
    })
    return journals, nil
  }

  if err := validatePeriod(in.StartDate, in.EndDate); err != nil {
    return nil, err
  }
  lower, upper, err := dayBounds(rs.loc, in.StartDate, in.EndDate)
  if err != nil {
    return nil, err
  }
  journals, err := rs.journalRepo.GetByCreatedAtRange(ctx, nil, lower, upper)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch journals for period: %w", err)
  }
  // Period-driven generation covers working days only.
  weekday := journals[:0]
  for _, j := range journals {
    if isWeekday(j.CreatedAt, rs.loc) {
      weekday = append(weekday, j)
    }
  }
  return weekday, nil
}

// groupByAuthorizedClient buckets journals per client, silently dropping any
// journal whose client does not belong to the requesting social worker.
func (rs *reportService) groupByAuthorizedClient(ctx context.Context, journals []*types.Journal, socialWorkerID uuid.UUID) (map[uuid.UUID][]*types.Journal, map[uuid.UUID]*types.Client, error) {
  idSet := make(map[uuid.UUID]struct{})
  ids := make([]uuid.UUID, 0)
  for _, j := range journals {
    if _, seen := idSet[j.ClientID]; !seen {
      idSet[j.ClientID] = struct{}{}
      ids = append(ids, j.ClientID)
    }
  }
  clientRows, err := rs.clientRepo.GetByIDs(ctx, nil, ids)
  if err != nil {
    return nil, nil, fmt.Errorf("Failed to fetch clients: %w", err)
  }
  clients := make(map[uuid.UUID]*types.Client, len(clientRows))
  for _, c := range clientRows {
    clients[c.ID] = c
  }

  groups := make(map[uuid.UUID][]*types.Journal)
  for _, j := range journals {
    client, ok := clients[j.ClientID]
    if !ok {
      continue
    }
    if socialWorkerID != uuid.Nil && client.SocialWorkerID != socialWorkerID {
      continue
    }
    groups[j.ClientID] = append(groups[j.ClientID], j)
  }
  for _, group := range groups {
    sort.Slice(group, func(i, j int) bool {
      return group[i].CreatedAt.Before(group[j].CreatedAt)
    })
  }
  return groups, clients, nil
}

func (rs *reportService) generateForGroup(ctx context.Context, client *types.Client, group []*types.Journal, socialWorkerName string) (*WeeklyReportView, error) {
  items := make([]types.JournalSummaryItem, 0, len(group))
  for _, j := range group {
    careWorkerName := ""
    if worker, err := rs.memberRepo.GetByID(ctx, nil, j.CareWorkerID); err == nil && worker != nil {
      careWorkerName = worker.Name
    }
    items = append(items, types.JournalSummaryItem{
      Date:       formatDate(j.CreatedAt, rs.loc),
      CareWorker: careWorkerName,
      Service:    j.CanonicalTranscript(),
      Notes:      j.Note,
    })
  }

  // The period is a pair of calendar dates, not timestamps.
  periodStart := truncateToDate(group[0].CreatedAt, rs.loc)
  periodEnd := truncateToDate(group[len(group)-1].CreatedAt, rs.loc)
  summaryJSON, err := types.MarshalJournalSummary(items)
  if err != nil {
    return nil, fmt.Errorf("Failed to encode journal summary: %w", err)
  }

  report := &types.Report{
    ID:             uuid.New(),
    ClientID:       client.ID,
    CareWorkerID:   group[0].CareWorkerID,
    SocialWorkerID: client.SocialWorkerID,
    PeriodStart:    periodStart,
    PeriodEnd:      periodEnd,
    JournalSummary: summaryJSON,
  }
  if _, err := rs.reportRepo.Create(ctx, nil, []*types.Report{report}); err != nil {
    return nil, fmt.Errorf("Failed to create pending report: %w", err)
  }

  view := &WeeklyReportView{
    ID:             report.ID,
    ClientID:       client.ID,
    ClientName:     client.Name,
    Status:         ReportStatusPending,
    PeriodStart:    formatDate(periodStart, rs.loc),
    PeriodEnd:      formatDate(periodEnd, rs.loc),
    JournalSummary: items,
  }

  result, err := rs.reportgenClient.GenerateWeeklyReport(ctx, &reportgen.WeeklyReportRequest{
    JournalSummary:   items,
    PeriodStart:      view.PeriodStart,
    PeriodEnd:        view.PeriodEnd,
    ClientName:       client.Name,
    BirthDate:        formatDate(client.BirthDate, rs.loc),
    GuardianContact:  client.GuardianContact,
    ReportDate:       formatDate(time.Now(), rs.loc),
    SocialWorkerName: socialWorkerName,
  })
  if err != nil {
    // The pending row stays behind for later retry.
    return view, fmt.Errorf("Failed to generate weekly report: %w", err)
  }

  updates := map[string]interface{}{
    "title":         result.Title,
    "care_level":    result.CareLevel,
    "summary":       result.Summary,
    "risk_notes":    result.RiskNotes,
    "evaluation":    result.Evaluation,
    "suggestion":    result.Suggestion,
    "exported_docx": result.DocxURL,
    "exported_pdf":  result.PdfURL,
  }
  if err := rs.reportRepo.UpdateFields(ctx, nil, report.ID, updates); err != nil {
    return view, fmt.Errorf("Failed to persist generated report: %w", err)
  }

  view.Status = ReportStatusComplete
  view.Title = result.Title
  view.CareLevel = result.CareLevel
  view.Summary = result.Summary
  view.RiskNotes = result.RiskNotes
  view.Evaluation = result.Evaluation
  view.Suggestion = result.Suggestion
  return view, nil
}

func (rs *reportService) FindWeeklyReport(ctx context.Context, id uuid.UUID) (*WeeklyReportView, error) {
  report, err := rs.reportRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch report: %w", err)
  }
  if report == nil {
    return nil, fmt.Errorf("%w: report %s", apperr.ErrNotFound, id)
  }
  items, err := types.UnmarshalJournalSummary(report.JournalSummary)
  if err != nil {
    return nil, fmt.Errorf("Failed to decode journal summary: %w", err)
  }
  clientName := ""
  if client, err := rs.clientRepo.GetByID(ctx, nil, report.ClientID); err == nil && client != nil {
    clientName = client.Name
  }
  status := ReportStatusComplete
  if report.Summary == "" && report.Title == "" {
    status = ReportStatusPending
  }
  return &WeeklyReportView{
    ID:             report.ID,
    ClientID:       report.ClientID,
    ClientName:     clientName,
    Status:         status,
    PeriodStart:    formatDate(report.PeriodStart, rs.loc),
    PeriodEnd:      formatDate(report.PeriodEnd, rs.loc),
    Title:          report.Title,
    CareLevel:      report.CareLevel,
    Summary:        report.Summary,
    RiskNotes:      report.RiskNotes,
    Evaluation:     report.Evaluation,
    Suggestion:     report.Suggestion,
    JournalSummary: items,
  }, nil
}

func (rs *reportService) FindWeeklyReportDocxPresignedURL(ctx context.Context, id uuid.UUID) (string, error) {
  report, err := rs.findReport(ctx, id)
  if err != nil {
    return "", err
  }
  if report.ExportedDocx == "" {
    return "", fmt.Errorf("%w: report %s has no exported docx", apperr.ErrDocumentNotFound, id)
  }
  return rs.reportgenClient.WeeklyDownloadURL(ctx, reportgen.KindDocx, fileNameFromURL(report.ExportedDocx))
}

func (rs *reportService) FindWeeklyReportPdfPresignedURL(ctx context.Context, id uuid.UUID) (string, error) {
  report, err := rs.findReport(ctx, id)
  if err != nil {
    return "", err
  }
  if report.ExportedPdf == "" {
    return "", fmt.Errorf("%w: report %s has no exported pdf", apperr.ErrDocumentNotFound, id)
  }
  return rs.reportgenClient.WeeklyDownloadURL(ctx, reportgen.KindPdf, fileNameFromURL(report.ExportedPdf))
}

func (rs *reportService) findReport(ctx context.Context, id uuid.UUID) (*types.Report, error) {
  report, err := rs.reportRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch report: %w", err)
  }
  if report == nil {
    return nil, fmt.Errorf("%w: report %s", apperr.ErrNotFound, id)
  }
  return report, nil
}
