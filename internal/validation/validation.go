package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/daylap/internal/constants"
	"github.com/julianstephens/daylap/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDate      ConflictType = "invalid_date"
	ConflictUnorderedLaps    ConflictType = "unordered_laps"
	ConflictOverlappingLaps  ConflictType = "overlapping_laps"
	ConflictOpenLap          ConflictType = "open_lap"
	ConflictShortLap         ConflictType = "short_lap"
	ConflictDurationMismatch ConflictType = "duration_mismatch"
	ConflictTotalMismatch    ConflictType = "total_mismatch"
	ConflictStillActive      ConflictType = "still_active"
)

// Conflict represents a detected invariant violation in a day record
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // YYYY-MM-DD format
	LapIndex    int    // Index of the offending lap, -1 for record-level conflicts
	TimeRange   string // Human-readable lap range (if applicable)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator validates archived day records against the tracker's invariants
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateRecord checks an archived day record. A finalized record must not
// be marked active and must not carry an open lap; its laps must be ordered,
// non-overlapping, at least MinLapSeconds long, and consistent with the
// stored durations and total.
func (v *Validator) ValidateRecord(record models.DayRecord) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if _, err := time.Parse(constants.DateFormat, record.Date); err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("Invalid record date: %q", record.Date),
			Date:        record.Date,
			LapIndex:    -1,
		})
	}

	if record.IsActive {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictStillActive,
			Description: fmt.Sprintf("%s: archived record is still marked active", record.Date),
			Date:        record.Date,
			LapIndex:    -1,
		})
	}

	var computedTotal int64
	for i, lap := range record.Laps {
		rangeStr := formatLapRange(lap)

		if lap.Open() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOpenLap,
				Description: fmt.Sprintf("%s: lap %d never ended (%s)", record.Date, i+1, rangeStr),
				Date:        record.Date,
				LapIndex:    i,
				TimeRange:   rangeStr,
			})
			continue
		}

		expected := *lap.EndTime - lap.StartTime
		if expected < 0 {
			expected = 0
		}

		if lap.Duration == nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDurationMismatch,
				Description: fmt.Sprintf("%s: lap %d is closed but has no duration (%s)", record.Date, i+1, rangeStr),
				Date:        record.Date,
				LapIndex:    i,
				TimeRange:   rangeStr,
			})
		} else {
			if *lap.Duration != expected {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictDurationMismatch,
					Description: fmt.Sprintf("%s: lap %d duration %ds does not match its bounds (%s = %ds)",
						record.Date, i+1, *lap.Duration, rangeStr, expected),
					Date:      record.Date,
					LapIndex:  i,
					TimeRange: rangeStr,
				})
			}
			computedTotal += *lap.Duration
		}

		if expected < constants.MinLapSeconds {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictShortLap,
				Description: fmt.Sprintf("%s: lap %d lasted %ds, below the %ds minimum and should have been dropped",
					record.Date, i+1, expected, constants.MinLapSeconds),
				Date:      record.Date,
				LapIndex:  i,
				TimeRange: rangeStr,
			})
		}
	}

	for i := 1; i < len(record.Laps); i++ {
		if record.Laps[i].StartTime < record.Laps[i-1].StartTime {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnorderedLaps,
				Description: fmt.Sprintf("%s: lap %d starts before lap %d", record.Date, i+1, i),
				Date:        record.Date,
				LapIndex:    i,
			})
		}
	}

	// Overlap detection runs over a sorted copy so it still works when the
	// ordering check above has already fired.
	closed := make([]models.Lap, 0, len(record.Laps))
	for _, lap := range record.Laps {
		if !lap.Open() {
			closed = append(closed, lap)
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].StartTime < closed[j].StartTime
	})
	for i := 1; i < len(closed); i++ {
		if closed[i].StartTime < *closed[i-1].EndTime {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingLaps,
				Description: fmt.Sprintf("%s: laps overlap: %s and %s",
					record.Date, formatLapRange(closed[i-1]), formatLapRange(closed[i])),
				Date:      record.Date,
				LapIndex:  -1,
				TimeRange: formatLapRange(closed[i-1]),
			})
		}
	}

	if computedTotal != record.TotalDuration {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type: ConflictTotalMismatch,
			Description: fmt.Sprintf("%s: recorded total %ds does not match the %ds summed from laps",
				record.Date, record.TotalDuration, computedTotal),
			Date:     record.Date,
			LapIndex: -1,
		})
	}

	return result
}

// ValidateAll runs ValidateRecord over every record and merges the findings.
func (v *Validator) ValidateAll(records []models.DayRecord) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	for _, record := range records {
		r := v.ValidateRecord(record)
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}
	return result
}

func formatLapRange(lap models.Lap) string {
	start := time.Unix(lap.StartTime, 0).Format(constants.ClockFormat)
	if lap.EndTime == nil {
		return fmt.Sprintf("%s-", start)
	}
	end := time.Unix(*lap.EndTime, 0).Format(constants.ClockFormat)
	return fmt.Sprintf("%s-%s", start, end)
}
