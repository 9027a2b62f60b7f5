package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/daylap/internal/models"
	"github.com/julianstephens/daylap/internal/storage"
	"github.com/julianstephens/daylap/internal/utils"
	"github.com/julianstephens/daylap/internal/validation"
)

type ValidateCmd struct {
	Date string `arg:"" optional:"" help:"Validate a single date (YYYY-MM-DD or 'today') instead of the whole archive."`
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	var records []models.DayRecord
	if cmd.Date != "" {
		date, err := utils.ResolveDate(cmd.Date)
		if err != nil {
			return err
		}
		record, err := ctx.Store.GetDay(date)
		if err != nil {
			if errors.Is(err, storage.ErrDayNotFound) {
				return fmt.Errorf("no day record found for %s", date)
			}
			return fmt.Errorf("failed to get day record: %w", err)
		}
		records = append(records, record)
		fmt.Printf("Validating %s...\n\n", date)
	} else {
		dates, err := ctx.Store.ListDates()
		if err != nil {
			return fmt.Errorf("failed to list day records: %w", err)
		}
		for _, date := range dates {
			record, err := ctx.Store.GetDay(date)
			if err != nil {
				return fmt.Errorf("failed to get day record %s: %w", date, err)
			}
			records = append(records, record)
		}
		fmt.Printf("Validating %d day record(s)...\n\n", len(records))
	}

	result := validation.New().ValidateAll(records)
	fmt.Println(result.FormatReport())

	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found", len(result.Conflicts))
	}
	return nil
}
