package validation

import (
	"strings"
	"testing"

	"github.com/julianstephens/daylap/internal/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func closedLap(start, end int64) models.Lap {
	duration := end - start
	return models.Lap{StartTime: start, EndTime: &end, Duration: &duration}
}

func cleanRecord() models.DayRecord {
	return models.DayRecord{
		Date:          "2025-03-10",
		TotalDuration: 180,
		Laps: []models.Lap{
			closedLap(100, 200),
			closedLap(250, 330),
		},
	}
}

func conflictTypes(result ValidationResult) map[ConflictType]int {
	counts := make(map[ConflictType]int)
	for _, c := range result.Conflicts {
		counts[c.Type]++
	}
	return counts
}

func TestValidateRecord_CleanRecordPasses(t *testing.T) {
	validator := New()

	result := validator.ValidateRecord(cleanRecord())

	if result.HasConflicts() {
		t.Errorf("Expected no conflicts, got: %s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("Unexpected report: %q", result.FormatReport())
	}
}

func TestValidateRecord_InvalidDate(t *testing.T) {
	validator := New()

	record := cleanRecord()
	record.Date = "March 10th"

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictInvalidDate] != 1 {
		t.Errorf("Expected ConflictInvalidDate, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_StillActive(t *testing.T) {
	validator := New()

	record := cleanRecord()
	record.IsActive = true

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictStillActive] != 1 {
		t.Errorf("Expected ConflictStillActive, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_OpenLap(t *testing.T) {
	validator := New()

	record := cleanRecord()
	record.Laps = append(record.Laps, models.Lap{StartTime: 400})

	result := validator.ValidateRecord(record)

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictOpenLap {
			found = true
			if conflict.LapIndex != 2 {
				t.Errorf("Expected LapIndex 2, got %d", conflict.LapIndex)
			}
		}
	}
	if !found {
		t.Error("Expected ConflictOpenLap conflict type")
	}
}

func TestValidateRecord_ShortLap(t *testing.T) {
	validator := New()

	record := models.DayRecord{
		Date:          "2025-03-10",
		TotalDuration: 2,
		Laps:          []models.Lap{closedLap(100, 102)},
	}

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictShortLap] != 1 {
		t.Errorf("Expected ConflictShortLap, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_BackwardsLap(t *testing.T) {
	validator := New()

	// End before start clamps the expected duration to zero, so the lap is
	// both short and inconsistent with its stored duration.
	end := int64(50)
	record := models.DayRecord{
		Date:          "2025-03-10",
		TotalDuration: 10,
		Laps:          []models.Lap{{StartTime: 100, EndTime: &end, Duration: int64Ptr(10)}},
	}

	result := validator.ValidateRecord(record)

	counts := conflictTypes(result)
	if counts[ConflictShortLap] != 1 {
		t.Errorf("Expected ConflictShortLap, got: %s", result.FormatReport())
	}
	if counts[ConflictDurationMismatch] != 1 {
		t.Errorf("Expected ConflictDurationMismatch, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_DurationMismatch(t *testing.T) {
	validator := New()

	record := cleanRecord()
	record.Laps[0].Duration = int64Ptr(55)
	record.TotalDuration = 135 // Consistent with the bad duration

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictDurationMismatch] != 1 {
		t.Errorf("Expected ConflictDurationMismatch, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_MissingDuration(t *testing.T) {
	validator := New()

	record := cleanRecord()
	record.Laps[1].Duration = nil
	record.TotalDuration = 100

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictDurationMismatch] != 1 {
		t.Errorf("Expected ConflictDurationMismatch, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_TotalMismatch(t *testing.T) {
	validator := New()

	record := cleanRecord()
	record.TotalDuration = 500

	result := validator.ValidateRecord(record)

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictTotalMismatch {
			found = true
			if !strings.Contains(conflict.Description, "500") || !strings.Contains(conflict.Description, "180") {
				t.Errorf("Expected totals in description, got: %s", conflict.Description)
			}
		}
	}
	if !found {
		t.Error("Expected ConflictTotalMismatch conflict type")
	}
}

func TestValidateRecord_UnorderedLaps(t *testing.T) {
	validator := New()

	record := models.DayRecord{
		Date:          "2025-03-10",
		TotalDuration: 180,
		Laps: []models.Lap{
			closedLap(250, 330),
			closedLap(100, 200),
		},
	}

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictUnorderedLaps] != 1 {
		t.Errorf("Expected ConflictUnorderedLaps, got: %s", result.FormatReport())
	}
	// The laps do not overlap once sorted, so ordering is the only finding.
	if conflictTypes(result)[ConflictOverlappingLaps] != 0 {
		t.Errorf("Did not expect overlap conflicts, got: %s", result.FormatReport())
	}
}

func TestValidateRecord_OverlappingLaps(t *testing.T) {
	validator := New()

	record := models.DayRecord{
		Date:          "2025-03-10",
		TotalDuration: 180,
		Laps: []models.Lap{
			closedLap(100, 200),
			closedLap(150, 230),
		},
	}

	result := validator.ValidateRecord(record)

	if conflictTypes(result)[ConflictOverlappingLaps] != 1 {
		t.Errorf("Expected ConflictOverlappingLaps, got: %s", result.FormatReport())
	}
}

func TestValidateAll_MergesFindings(t *testing.T) {
	validator := New()

	bad := cleanRecord()
	bad.Date = "2025-03-11"
	bad.IsActive = true

	result := validator.ValidateAll([]models.DayRecord{cleanRecord(), bad})

	if len(result.Conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d: %s", len(result.Conflicts), result.FormatReport())
	}
	if result.Conflicts[0].Date != "2025-03-11" {
		t.Errorf("Expected conflict on 2025-03-11, got %s", result.Conflicts[0].Date)
	}
}
