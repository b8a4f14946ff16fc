package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dolbomcare/carelog-backend/internal/apperr"
	"github.com/dolbomcare/carelog-backend/internal/clients/reportgen"
	"github.com/dolbomcare/carelog-backend/internal/repos"
	"github.com/dolbomcare/carelog-backend/internal/testutil"
	"github.com/dolbomcare/carelog-backend/internal/types"
)

type stubReportGen struct {
	mu            sync.Mutex
	weeklyCalls   []*reportgen.WeeklyReportRequest
	weeklyErr     error
	docxCalls     []*reportgen.JournalDocxRequest
	downloadCalls []string
}

func (s *stubReportGen) GenerateWeeklyReport(ctx context.Context, req *reportgen.WeeklyReportRequest) (*reportgen.WeeklyReportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weeklyCalls = append(s.weeklyCalls, req)
	if s.weeklyErr != nil {
		return nil, s.weeklyErr
	}
	return &reportgen.WeeklyReportResult{
		Title:     "Weekly Report for " + req.ClientName,
		CareLevel: "3",
		Summary:   "stable",
		DocxURL:   "https://storage.example.com/reports/weekly.docx",
		PdfURL:    "https://storage.example.com/reports/weekly.pdf",
	}, nil
}

func (s *stubReportGen) GenerateJournalDocx(ctx context.Context, req *reportgen.JournalDocxRequest) (*reportgen.JournalDocxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docxCalls = append(s.docxCalls, req)
	return &reportgen.JournalDocxResult{
		File:    "journal_1.docx",
		DocxURL: "https://storage.example.com/reports/journal_1.docx",
		PdfURL:  "https://storage.example.com/reports/journal_1.pdf",
		Summary: "generated summary",
	}, nil
}

func (s *stubReportGen) WeeklyDownloadURL(ctx context.Context, kind, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadCalls = append(s.downloadCalls, fileName)
	return "https://signed.example.com/" + fileName, nil
}

func (s *stubReportGen) JournalDownloadURL(ctx context.Context, kind, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadCalls = append(s.downloadCalls, fileName)
	return "https://signed.example.com/" + fileName, nil
}

func newReportService(t *testing.T, db *gorm.DB, gen reportgen.Client) ReportService {
	t.Helper()
	log := testutil.Logger(t)
	return NewReportService(
		log,
		repos.NewReportRepo(db, log),
		repos.NewJournalRepo(db, log),
		repos.NewClientRepo(db, log),
		repos.NewMemberRepo(db, log),
		gen,
		kst(t),
	)
}

// journalAt seeds a journal created at the given local date in the reference
// timezone.
func journalAt(t *testing.T, db *gorm.DB, clientID, careWorkerID uuid.UUID, loc *time.Location, date string, hour int, transcript string) *types.Journal {
	t.Helper()
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return testutil.SeedJournal(t, db, clientID, careWorkerID, day.Add(time.Duration(hour)*time.Hour).UTC(), transcript)
}

func TestCreateWeeklyReports_GroupsJournalsPerClient(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	clientA := testutil.SeedClient(t, db, "Client A", social.ID, care.ID)
	clientB := testutil.SeedClient(t, db, "Client B", social.ID, care.ID)

	// 2026-08-24 is a Monday.
	journalAt(t, db, clientA.ID, care.ID, loc, "2026-08-26", 10, "wednesday visit")
	journalAt(t, db, clientA.ID, care.ID, loc, "2026-08-24", 10, "monday visit")
	journalAt(t, db, clientB.ID, care.ID, loc, "2026-08-25", 10, "tuesday visit")

	gen := &stubReportGen{}
	svc := newReportService(t, db, gen)
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(views))
	}

	byClient := map[uuid.UUID]WeeklyReportView{}
	for _, v := range views {
		byClient[v.ClientID] = v
	}
	a := byClient[clientA.ID]
	if a.Status != ReportStatusComplete {
		t.Fatalf("expected complete report, got %q", a.Status)
	}
	if a.PeriodStart != "2026-08-24" || a.PeriodEnd != "2026-08-26" {
		t.Fatalf("expected per-client period from journal dates, got %s..%s", a.PeriodStart, a.PeriodEnd)
	}
	if len(a.JournalSummary) != 2 || a.JournalSummary[0].Service != "monday visit" {
		t.Fatalf("expected chronological journal summary, got %+v", a.JournalSummary)
	}
	b := byClient[clientB.ID]
	if b.PeriodStart != "2026-08-25" || b.PeriodEnd != "2026-08-25" {
		t.Fatalf("expected single-day period, got %s..%s", b.PeriodStart, b.PeriodEnd)
	}
	if len(gen.weeklyCalls) != 2 {
		t.Fatalf("expected one generation call per client, got %d", len(gen.weeklyCalls))
	}
	if bd := gen.weeklyCalls[0].BirthDate; bd != "1940-05-12" {
		t.Fatalf("expected formatted birth date, got %q", bd)
	}

	var count int64
	if err := db.Model(&types.Report{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 persisted reports, got %d", count)
	}
}

func TestCreateWeeklyReports_RejectsPeriodLongerThanAWeek(t *testing.T) {
	db := testutil.DB(t)
	svc := newReportService(t, db, &stubReportGen{})
	_, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		StartDate: "2026-08-24",
		EndDate:   "2026-08-31",
	})
	if !errors.Is(err, apperr.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCreateWeeklyReports_SkipsWeekendJournalsInPeriodMode(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)

	// 2026-08-29 and 2026-08-30 are Saturday and Sunday.
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-28", 10, "friday visit")
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-29", 10, "saturday visit")

	gen := &stubReportGen{}
	svc := newReportService(t, db, gen)
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || len(views[0].JournalSummary) != 1 {
		t.Fatalf("expected only the weekday journal, got %+v", views)
	}
	if views[0].JournalSummary[0].Service != "friday visit" {
		t.Fatalf("expected friday visit, got %q", views[0].JournalSummary[0].Service)
	}
}

func TestCreateWeeklyReports_ExplicitIDsKeepWeekendJournals(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)

	saturday := journalAt(t, db, client.ID, care.ID, loc, "2026-08-29", 10, "saturday visit")

	svc := newReportService(t, db, &stubReportGen{})
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		JournalIDs:     []uuid.UUID{saturday.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || len(views[0].JournalSummary) != 1 {
		t.Fatalf("expected the weekend journal to be included, got %+v", views)
	}
}

func TestCreateWeeklyReports_ExplicitIDsWithPeriodNarrowToWindow(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)

	inRange := journalAt(t, db, client.ID, care.ID, loc, "2026-08-25", 10, "in range")
	outOfRange := journalAt(t, db, client.ID, care.ID, loc, "2026-09-02", 10, "out of range")

	svc := newReportService(t, db, &stubReportGen{})
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		JournalIDs:     []uuid.UUID{inRange.ID, outOfRange.ID},
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || len(views[0].JournalSummary) != 1 {
		t.Fatalf("expected only the in-window journal, got %+v", views)
	}
	if views[0].JournalSummary[0].Service != "in range" {
		t.Fatalf("unexpected journal: %+v", views[0].JournalSummary[0])
	}
}

func TestCreateWeeklyReports_DropsJournalsOfOtherSocialWorkers(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	mine := testutil.SeedMember(t, db, "Mine", types.RoleSocialWorker)
	other := testutil.SeedMember(t, db, "Other", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	myClient := testutil.SeedClient(t, db, "My Client", mine.ID, care.ID)
	otherClient := testutil.SeedClient(t, db, "Other Client", other.ID, care.ID)

	journalAt(t, db, myClient.ID, care.ID, loc, "2026-08-24", 10, "mine")
	journalAt(t, db, otherClient.ID, care.ID, loc, "2026-08-24", 11, "not mine")

	svc := newReportService(t, db, &stubReportGen{})
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: mine.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].ClientID != myClient.ID {
		t.Fatalf("expected only the owned client, got %+v", views)
	}

	// A social worker with no matching clients gets a distinct error.
	stranger := testutil.SeedMember(t, db, "Stranger", types.RoleSocialWorker)
	_, err = svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: stranger.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if !errors.Is(err, apperr.ErrNoAuthorizedJournals) {
		t.Fatalf("expected ErrNoAuthorizedJournals, got %v", err)
	}
}

func TestCreateWeeklyReports_NoJournalsInPeriod(t *testing.T) {
	db := testutil.DB(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	svc := newReportService(t, db, &stubReportGen{})
	_, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if !errors.Is(err, apperr.ErrNoMatchingJournals) {
		t.Fatalf("expected ErrNoMatchingJournals, got %v", err)
	}
}

func TestCreateWeeklyReports_EditedTranscriptTakesPrecedence(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)

	j := journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "raw words")
	if err := db.Model(&types.Journal{}).Where("id = ?", j.ID).
		Update("edited_transcript", "corrected words").Error; err != nil {
		t.Fatalf("failed to edit transcript: %v", err)
	}

	gen := &stubReportGen{}
	svc := newReportService(t, db, gen)
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views[0].JournalSummary[0].Service != "corrected words" {
		t.Fatalf("expected edited transcript in summary, got %q", views[0].JournalSummary[0].Service)
	}
}

func TestCreateWeeklyReports_PendingRowSurvivesGeneratorFailure(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "visit")

	gen := &stubReportGen{weeklyErr: fmt.Errorf("report server down")}
	svc := newReportService(t, db, gen)
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Status != ReportStatusPending {
		t.Fatalf("expected a pending view, got %+v", views)
	}

	var report types.Report
	if err := db.First(&report, "id = ?", views[0].ID).Error; err != nil {
		t.Fatalf("expected pending row persisted: %v", err)
	}
	if report.Title != "" || report.Summary != "" {
		t.Fatalf("expected pending row without narrative, got %+v", report)
	}
}

func TestCreateWeeklyReports_StoresDateOnlyPeriod(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 14, "afternoon visit")
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-26", 9, "morning visit")

	svc := newReportService(t, db, &stubReportGen{})
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report types.Report
	if err := db.First(&report, "id = ?", views[0].ID).Error; err != nil {
		t.Fatalf("expected report row: %v", err)
	}
	start := report.PeriodStart.In(loc)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("expected period start truncated to midnight, got %v", start)
	}
	if got := start.Format("2006-01-02"); got != "2026-08-24" {
		t.Fatalf("expected period start date 2026-08-24, got %s", got)
	}
	if got := report.PeriodEnd.In(loc).Format("2006-01-02"); got != "2026-08-26" {
		t.Fatalf("expected period end date 2026-08-26, got %s", got)
	}
}

func TestCreateWeeklyReports_CareWorkerFromJournals(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	author := testutil.SeedMember(t, db, "Author", types.RoleCareWorker)
	replacement := testutil.SeedMember(t, db, "Replacement", types.RoleCareWorker)
	// The client has since been reassigned; the journals were written by the
	// original care worker.
	client := testutil.SeedClient(t, db, "Client", social.ID, replacement.ID)
	journalAt(t, db, client.ID, author.ID, loc, "2026-08-24", 10, "visit")

	svc := newReportService(t, db, &stubReportGen{})
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report types.Report
	if err := db.First(&report, "id = ?", views[0].ID).Error; err != nil {
		t.Fatalf("expected report row: %v", err)
	}
	if report.CareWorkerID != author.ID {
		t.Fatalf("expected care worker from the journals, got %s", report.CareWorkerID)
	}
}

func TestFindWeeklyReport_RoundTrip(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "visit")

	svc := newReportService(t, db, &stubReportGen{})
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.FindWeeklyReport(context.Background(), views[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != ReportStatusComplete || got.ClientName != "Client" {
		t.Fatalf("unexpected view: %+v", got)
	}
	if len(got.JournalSummary) != 1 || got.JournalSummary[0].Service != "visit" {
		t.Fatalf("expected the stored journal summary, got %+v", got.JournalSummary)
	}
}

func TestWeeklyReportPresignedURL_StripsPathPrefix(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "visit")

	gen := &stubReportGen{}
	svc := newReportService(t, db, gen)
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url, err := svc.FindWeeklyReportPdfPresignedURL(context.Background(), views[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://signed.example.com/weekly.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
	if len(gen.downloadCalls) != 1 || gen.downloadCalls[0] != "weekly.pdf" {
		t.Fatalf("expected bare file name, got %v", gen.downloadCalls)
	}
}

func TestWeeklyReportPresignedURL_PendingReportHasNoDocument(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "visit")

	gen := &stubReportGen{weeklyErr: fmt.Errorf("down")}
	svc := newReportService(t, db, gen)
	views, err := svc.CreateWeeklyReports(context.Background(), CreateWeeklyReportsInput{
		SocialWorkerID: social.ID,
		StartDate:      "2026-08-24",
		EndDate:        "2026-08-28",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gen.downloadCalls = nil
	_, err = svc.FindWeeklyReportDocxPresignedURL(context.Background(), views[0].ID)
	if !errors.Is(err, apperr.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if len(gen.downloadCalls) != 0 {
		t.Fatalf("expected no lookup call for a missing document")
	}
}
