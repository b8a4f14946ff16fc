package apperr

import "errors"

// Sentinel failures surfaced by the session, journal and report paths.
// Boundary layers (HTTP handlers, the websocket gateway) translate these
// with errors.Is; everything else wraps with fmt.Errorf("...: %w", err).
var (
	// ErrAuthenticationFailure rejects a connection or request before any
	// state is created for it.
	ErrAuthenticationFailure = errors.New("authentication failed")

	// ErrNoAudioRecorded is returned when a recording session is stopped
	// without any buffered fragments.
	ErrNoAudioRecorded = errors.New("no audio recorded")

	// ErrEmptyTranscript is returned when the reassembled transcript is
	// empty after trimming.
	ErrEmptyTranscript = errors.New("empty transcript")

	// ErrTranscriptionUnavailable is returned after the transcription
	// backend failed on every retry attempt.
	ErrTranscriptionUnavailable = errors.New("transcription unavailable")

	// ErrJournalPersistence is returned when the audio upload or the
	// journal row insert failed.
	ErrJournalPersistence = errors.New("journal persistence failed")

	// ErrInvalidPeriod is returned for report periods longer than one week.
	ErrInvalidPeriod = errors.New("invalid report period")

	// ErrNoMatchingJournals is returned when no journal matched the
	// requested ids or date window.
	ErrNoMatchingJournals = errors.New("no matching journals")

	// ErrNoAuthorizedJournals is returned when the ownership filter
	// dropped every matched journal.
	ErrNoAuthorizedJournals = errors.New("no authorized journals")

	// ErrNoReportsGenerated is returned when every client group in a
	// batch request failed to produce a report.
	ErrNoReportsGenerated = errors.New("no reports generated")

	// ErrDocumentNotFound is returned when a journal or report has no
	// exported document reference yet.
	ErrDocumentNotFound = errors.New("document not found")

	// Generic sentinels for missing resources and ownership violations.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)
