package cli

import (
	"github.com/julianstephens/daylap/internal/logger"
	"github.com/julianstephens/daylap/internal/storage"
)

// Context carries the shared dependencies commands run against.
type Context struct {
	Store storage.Provider
}

// PerformAutomaticBackup snapshots the archive and silently handles errors.
// Remote stores are skipped; there is nothing local to copy.
func (c *Context) PerformAutomaticBackup() {
	mgr, err := backupManager(c)
	if err != nil {
		logger.Debug("automatic backup skipped", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
