package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daylap/internal/backup"
	"github.com/julianstephens/daylap/internal/detector"
	"github.com/julianstephens/daylap/internal/models"
	"github.com/julianstephens/daylap/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: storage reachable
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		storeReachable = true
	}

	// Check 2: schema version (SQL stores only)
	if storeReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (storage not reachable)\n")
	}

	// Check 3: lock probe (best-effort, warning only)
	if locked, err := detector.NewProbe().Locked(); err != nil {
		fmt.Printf("⚠ Lock probe: WARNING\n")
		fmt.Printf("   Process scan failed on this host: %v\n", err)
		fmt.Printf("   Run 'daylap watch --no-detect' to track without auto-pause.\n")
	} else {
		fmt.Printf("✓ Lock probe: OK\n")
		if locked {
			fmt.Printf("   Note: screen currently reads as locked\n")
		} else {
			fmt.Printf("   Note: screen currently reads as unlocked\n")
		}
	}

	// Check 4: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 5: backups present (warning only; file-backed stores)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 6: archived records honor the lap invariants
	if storeReachable {
		if err := checkValidation(ctx); err != nil {
			fmt.Printf("❌ Record validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Record validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Record validation: SKIPPED (storage not reachable)\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// JSON archive has no schema version
		return nil
	}

	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'daylap migrate'", current, latest)
	}

	return nil
}

func checkClockTimezone() error {
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	// Check if timezone is set
	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		// This might be intentional, so just note it
		fmt.Printf("   Note: timezone is UTC\n")
	}

	return nil
}

func checkBackupsPresent(ctx *Context) error {
	path := ctx.Store.GetConfigPath()
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") || strings.Contains(path, "host=") {
		// Remote database, nothing to snapshot locally
		return nil
	}

	mgr := backup.NewManager(path)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'daylap backup create'")
	}

	return nil
}

func checkValidation(ctx *Context) error {
	dates, err := ctx.Store.ListDates()
	if err != nil {
		return fmt.Errorf("failed to list day records: %w", err)
	}

	records := make([]models.DayRecord, 0, len(dates))
	for _, date := range dates {
		record, err := ctx.Store.GetDay(date)
		if err != nil {
			return fmt.Errorf("failed to get day record %s: %w", date, err)
		}
		records = append(records, record)
	}

	result := validation.New().ValidateAll(records)
	if result.HasConflicts() {
		return fmt.Errorf("%d invariant violation(s) found:\n%s", len(result.Conflicts), result.FormatReport())
	}

	return nil
}
