package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/dolbomcare/carelog-backend/internal/apperr"
	"github.com/dolbomcare/carelog-backend/internal/repos"
	"github.com/dolbomcare/carelog-backend/internal/testutil"
	"github.com/dolbomcare/carelog-backend/internal/types"
)

type stubBucket struct {
	uploads   []string
	uploadErr error
}

func (s *stubBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *stubBucket) DeleteFile(ctx context.Context, key string) error { return nil }

func (s *stubBucket) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func newJournalService(t *testing.T, db *gorm.DB, bucket BucketService, gen *stubReportGen) JournalService {
	t.Helper()
	log := testutil.Logger(t)
	return NewJournalService(
		log,
		repos.NewJournalRepo(db, log),
		repos.NewClientRepo(db, log),
		repos.NewMemberRepo(db, log),
		bucket,
		gen,
		kst(t),
	)
}

func TestCreateJournal_UploadsAudioBeforeInsert(t *testing.T) {
	db := testutil.DB(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)

	bucket := &stubBucket{}
	svc := newJournalService(t, db, bucket, &stubReportGen{})
	journal, err := svc.CreateJournal(context.Background(), CreateJournalInput{
		ClientID:     client.ID,
		CareWorkerID: care.ID,
		Audio:        []byte("webm bytes"),
		Transcript:   "visited today",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bucket.uploads) != 1 || !strings.HasPrefix(bucket.uploads[0], "audio_"+client.ID.String()) {
		t.Fatalf("unexpected upload keys: %v", bucket.uploads)
	}
	if journal.RawAudioURL != "https://cdn.example.com/"+bucket.uploads[0] {
		t.Fatalf("unexpected audio url %q", journal.RawAudioURL)
	}

	var stored types.Journal
	if err := db.First(&stored, "id = ?", journal.ID).Error; err != nil {
		t.Fatalf("expected persisted journal: %v", err)
	}
	if stored.Transcript != "visited today" {
		t.Fatalf("unexpected transcript %q", stored.Transcript)
	}
}

func TestCreateJournal_FailedUploadLeavesNoRow(t *testing.T) {
	db := testutil.DB(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)

	bucket := &stubBucket{uploadErr: fmt.Errorf("bucket unavailable")}
	svc := newJournalService(t, db, bucket, &stubReportGen{})
	_, err := svc.CreateJournal(context.Background(), CreateJournalInput{
		ClientID:     client.ID,
		CareWorkerID: care.ID,
		Audio:        []byte("webm bytes"),
	})
	if !errors.Is(err, apperr.ErrJournalPersistence) {
		t.Fatalf("expected ErrJournalPersistence, got %v", err)
	}

	var count int64
	if err := db.Model(&types.Journal{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no journal rows, got %d", count)
	}
}

func TestModifyTranscript_OwnerOnly(t *testing.T) {
	db := testutil.DB(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	owner := testutil.SeedMember(t, db, "Owner", types.RoleCareWorker)
	intruder := testutil.SeedMember(t, db, "Intruder", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, owner.ID)
	journal := journalAt(t, db, client.ID, owner.ID, kst(t), "2026-08-24", 9, "raw")

	svc := newJournalService(t, db, &stubBucket{}, &stubReportGen{})
	if _, err := svc.ModifyTranscript(context.Background(), journal.ID, intruder.ID, "tampered"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	updated, err := svc.ModifyTranscript(context.Background(), journal.ID, owner.ID, "corrected")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CanonicalTranscript() != "corrected" {
		t.Fatalf("expected edited transcript to win, got %q", updated.CanonicalTranscript())
	}
}

func TestSummarizeJournal_PersistsNarrative(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journal := journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "raw words")

	gen := &stubReportGen{}
	svc := newJournalService(t, db, &stubBucket{}, gen)
	result, err := svc.SummarizeJournal(context.Background(), journal.ID, care.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Narrative.Summary != "generated summary" {
		t.Fatalf("unexpected narrative: %+v", result.Narrative)
	}
	if len(gen.docxCalls) != 1 || gen.docxCalls[0].Text != "raw words" {
		t.Fatalf("unexpected docx request: %+v", gen.docxCalls)
	}
	if gen.docxCalls[0].Client != "Client" || gen.docxCalls[0].Manager != "Care Worker" {
		t.Fatalf("expected client and manager names, got %+v", gen.docxCalls[0])
	}

	var stored types.Journal
	if err := db.First(&stored, "id = ?", journal.ID).Error; err != nil {
		t.Fatalf("expected journal: %v", err)
	}
	if stored.Summary != "generated summary" || stored.ExportedDocx == "" {
		t.Fatalf("expected persisted narrative and export url, got %+v", stored)
	}
}

func TestFindDocxPresignedURL_MissingDocumentShortCircuits(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journal := journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "raw")

	gen := &stubReportGen{}
	svc := newJournalService(t, db, &stubBucket{}, gen)
	_, err := svc.FindDocxPresignedURL(context.Background(), journal.ID)
	if !errors.Is(err, apperr.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if len(gen.downloadCalls) != 0 {
		t.Fatalf("expected no lookup call, got %v", gen.downloadCalls)
	}
}

func TestFindPdfPresignedURL_StripsPathPrefix(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	care := testutil.SeedMember(t, db, "Care Worker", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, care.ID)
	journal := journalAt(t, db, client.ID, care.ID, loc, "2026-08-24", 10, "raw")
	if err := db.Model(&types.Journal{}).Where("id = ?", journal.ID).
		Update("exported_pdf", "https://storage.example.com/reports/journal_7.pdf").Error; err != nil {
		t.Fatalf("failed to set export url: %v", err)
	}

	gen := &stubReportGen{}
	svc := newJournalService(t, db, &stubBucket{}, gen)
	url, err := svc.FindPdfPresignedURL(context.Background(), journal.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://signed.example.com/journal_7.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
	if len(gen.downloadCalls) != 1 || gen.downloadCalls[0] != "journal_7.pdf" {
		t.Fatalf("expected bare file name, got %v", gen.downloadCalls)
	}
}

func TestFindRawAudio_OwnerOnly(t *testing.T) {
	db := testutil.DB(t)
	loc := kst(t)
	social := testutil.SeedMember(t, db, "Social Worker", types.RoleSocialWorker)
	owner := testutil.SeedMember(t, db, "Owner", types.RoleCareWorker)
	intruder := testutil.SeedMember(t, db, "Intruder", types.RoleCareWorker)
	client := testutil.SeedClient(t, db, "Client", social.ID, owner.ID)
	journal := journalAt(t, db, client.ID, owner.ID, loc, "2026-08-24", 10, "raw")

	svc := newJournalService(t, db, &stubBucket{}, &stubReportGen{})
	if _, err := svc.FindRawAudio(context.Background(), journal.ID, intruder.ID); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	url, err := svc.FindRawAudio(context.Background(), journal.ID, owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != journal.RawAudioURL {
		t.Fatalf("unexpected url %q", url)
	}
}
