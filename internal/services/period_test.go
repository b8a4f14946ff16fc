package services

import (
	"errors"
	"testing"
	"time"

	"github.com/dolbomcare/carelog-backend/internal/apperr"
)

func kst(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func TestValidatePeriod(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{name: "single day", start: "2026-08-24", end: "2026-08-24"},
		{name: "full week inclusive", start: "2026-08-24", end: "2026-08-30"},
		{name: "eight days rejected", start: "2026-08-24", end: "2026-08-31", wantErr: apperr.ErrInvalidPeriod},
		{name: "end before start", start: "2026-08-28", end: "2026-08-24", wantErr: apperr.ErrInvalidPeriod},
		{name: "malformed date", start: "08/24/2026", end: "2026-08-28", wantErr: apperr.ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePeriod(tc.start, tc.end)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDayBounds_ConvertsReferenceDaysToUTC(t *testing.T) {
	loc := kst(t)
	lower, upper, err := dayBounds(loc, "2026-08-24", "2026-08-28")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Midnight KST is 15:00 UTC the previous day.
	wantLower := time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC)
	if !lower.Equal(wantLower) {
		t.Fatalf("expected lower %v, got %v", wantLower, lower)
	}
	wantUpper := time.Date(2026, 8, 28, 14, 59, 59, 999000000, time.UTC)
	if !upper.Equal(wantUpper) {
		t.Fatalf("expected upper %v, got %v", wantUpper, upper)
	}
}

func TestIsWeekday_UsesReferenceTimezone(t *testing.T) {
	loc := kst(t)
	// 2026-08-22 is a Saturday in KST; 23:00 UTC Friday is already Saturday there.
	fridayUTC := time.Date(2026, 8, 21, 23, 0, 0, 0, time.UTC)
	if isWeekday(fridayUTC, loc) {
		t.Fatalf("expected %v to be a weekend day in the reference timezone", fridayUTC)
	}
	monday := time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)
	if !isWeekday(monday, loc) {
		t.Fatalf("expected %v to be a weekday", monday)
	}
}
