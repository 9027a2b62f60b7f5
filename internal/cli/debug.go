package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/daylap/internal/storage"
	"github.com/julianstephens/daylap/internal/utils"
)

type DebugCmd struct {
	DBPath  *DebugDBPathCmd  `cmd:"" help:"Show archive path."`
	DumpDay *DebugDumpDayCmd `cmd:"" help:"Dump a day record as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	path := ctx.Store.GetConfigPath()

	// Output in machine-readable format
	output := map[string]string{
		"path": path,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Date of the record to dump (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}

	date, err := utils.ResolveDate(cmd.Date)
	if err != nil {
		return err
	}

	record, err := ctx.Store.GetDay(date)
	if err != nil {
		if errors.Is(err, storage.ErrDayNotFound) {
			return fmt.Errorf("no day record found for date: %s", date)
		}
		return fmt.Errorf("failed to get day record: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}
