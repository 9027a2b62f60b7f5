package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/daylap/internal/storage"
	"github.com/julianstephens/daylap/internal/utils"
)

type DayCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := utils.ResolveDate(c.Date)
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

	fmt.Printf("Screen time for %s:\n\n", record.Date)

	if len(record.Laps) == 0 {
		fmt.Println("  No laps recorded")
		return nil
	}

	for i, lap := range record.Laps {
		if lap.Open() {
			fmt.Printf("  Lap %-3d %s–          [still running]\n", i+1, utils.FormatClock(lap.StartTime))
			continue
		}
		var duration int64
		if lap.Duration != nil {
			duration = *lap.Duration
		}
		fmt.Printf("  Lap %-3d %s–%s  %s\n", i+1, utils.FormatClock(lap.StartTime), utils.FormatClock(*lap.EndTime), utils.FormatDuration(duration))
	}

	fmt.Printf("\nTotal: %s across %d laps\n", utils.FormatDuration(record.TotalDuration), record.LapCount())
	return nil
}
