package services

import (
  "fmt"
  "time"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/utils"
)

const dateLayout = "2006-01-02"

// maxPeriodDays is the largest allowed difference between period start and
// end: a 6-day difference spans one inclusive week.
const maxPeriodDays = 6

// LoadReferenceLocation resolves the fixed timezone used for all calendar
// date boundaries, independent of the server's local timezone.
func LoadReferenceLocation(log *logger.Logger) *time.Location {
  name := utils.GetEnv("REFERENCE_TIMEZONE", "Asia/Seoul", log)
  loc, err := time.LoadLocation(name)
  if err != nil {
    log.Warn("Failed to load reference timezone, falling back to KST", "timezone", name, "error", err)
    return time.FixedZone("KST", 9*60*60)
  }
  return loc
}

func parsePeriodDate(s string) (time.Time, error) {
  t, err := time.Parse(dateLayout, s)
  if err != nil {
    return time.Time{}, fmt.Errorf("%w: bad date %q", apperr.ErrInvalidInput, s)
  }
  return t, nil
}

// validatePeriod rejects windows longer than one inclusive week.
func validatePeriod(startStr, endStr string) error {
  start, err := parsePeriodDate(startStr)
  if err != nil {
    return err
  }
  end, err := parsePeriodDate(endStr)
  if err != nil {
    return err
  }
  if end.Before(start) {
    return fmt.Errorf("%w: period end before start", apperr.ErrInvalidPeriod)
  }
  if int(end.Sub(start).Hours()/24) > maxPeriodDays {
    return fmt.Errorf("%w: period exceeds one week", apperr.ErrInvalidPeriod)
  }
  return nil
}

// dayBounds returns [start 00:00:00.000, end 23:59:59.999] of the given
// calendar dates in the reference timezone, converted to UTC for querying.
func dayBounds(loc *time.Location, startStr, endStr string) (time.Time, time.Time, error) {
  start, err := parsePeriodDate(startStr)
  if err != nil {
    return time.Time{}, time.Time{}, err
  }
  end, err := parsePeriodDate(endStr)
  if err != nil {
    return time.Time{}, time.Time{}, err
  }
  lower := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
  upper := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).
    Add(24*time.Hour - time.Millisecond)
  return lower.UTC(), upper.UTC(), nil
}

// isWeekday reports whether t falls on Monday through Friday in the
// reference timezone.
func isWeekday(t time.Time, loc *time.Location) bool {
  day := t.In(loc).Weekday()
  return day >= time.Monday && day <= time.Friday
}

// truncateToDate drops the time of day, keeping the calendar date t falls
// on in the reference timezone.
func truncateToDate(t time.Time, loc *time.Location) time.Time {
  local := t.In(loc)
  return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func formatDate(t time.Time, loc *time.Location) string {
  return t.In(loc).Format(dateLayout)
}
