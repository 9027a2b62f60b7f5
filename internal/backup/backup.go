package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// MaxBackups is the maximum number of backups to keep
	MaxBackups = 14
	// BackupDirName is the name of the backup directory
	BackupDirName = "backups"
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "daylap-"
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations for a file-backed archive
type Manager struct {
	storePath string
	backupDir string
	suffix    string
}

// NewManager creates a new backup manager for the archive at storePath.
// Backups keep the store's extension: SQLite files are snapshotted with
// VACUUM INTO, JSON archives are plain copies.
func NewManager(storePath string) *Manager {
	configDir := filepath.Dir(storePath)
	suffix := filepath.Ext(storePath)
	if suffix == "" {
		suffix = ".db"
	}
	return &Manager{
		storePath: storePath,
		backupDir: filepath.Join(configDir, BackupDirName),
		suffix:    suffix,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// ensureBackupDir creates the backup directory if it doesn't exist
func (m *Manager) ensureBackupDir() error {
	return os.MkdirAll(m.backupDir, 0700)
}

// CreateBackup creates a new backup of the archive and rotates old ones
func (m *Manager) CreateBackup() (string, error) {
	// Ensure backup directory exists
	if err := m.ensureBackupDir(); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Check if source archive exists
	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("archive does not exist: %s", m.storePath)
	}

	// Generate backup filename with timestamp
	// Try with minute precision first
	timestamp := time.Now().Format("20060102-1504")
	backupName := fmt.Sprintf("%s%s%s", BackupFilePrefix, timestamp, m.suffix)
	backupPath := filepath.Join(m.backupDir, backupName)

	// If a backup with the same name exists, add seconds
	if _, err := os.Stat(backupPath); err == nil {
		timestamp = time.Now().Format("20060102-150405")
		backupName = fmt.Sprintf("%s%s%s", BackupFilePrefix, timestamp, m.suffix)
		backupPath = filepath.Join(m.backupDir, backupName)

		// If still exists, add a counter
		counter := 1
		for {
			if _, err := os.Stat(backupPath); os.IsNotExist(err) {
				break
			}
			backupName = fmt.Sprintf("%s%s-%d%s", BackupFilePrefix, timestamp, counter, m.suffix)
			backupPath = filepath.Join(m.backupDir, backupName)
			counter++
			if counter > 100 {
				return "", fmt.Errorf("failed to generate unique backup filename")
			}
		}
	}

	if m.suffix == ".json" {
		if err := copyFile(m.storePath, backupPath); err != nil {
			return "", fmt.Errorf("failed to backup archive: %w", err)
		}
	} else {
		if err := m.backupDatabase(backupPath); err != nil {
			return "", fmt.Errorf("failed to backup database: %w", err)
		}
	}

	// Rotate old backups
	if err := m.rotateBackups(); err != nil {
		// Log error but don't fail the backup operation
		fmt.Fprintf(os.Stderr, "Warning: failed to rotate old backups: %v\n", err)
	}

	return backupPath, nil
}

// backupDatabase uses SQLite's VACUUM INTO to safely snapshot the database
func (m *Manager) backupDatabase(destPath string) error {
	// Open source database in read-only mode
	srcDB, err := sql.Open("sqlite", m.storePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	// Verify source database is valid
	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	// VACUUM INTO produces a clean copy and requires SQLite 3.27.0 or later
	_, err = srcDB.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		// Fall back to a file copy on servers without VACUUM INTO
		srcDB.Close()
		return copyFile(m.storePath, destPath)
	}

	return nil
}

// ListBackups returns a list of all available backups, sorted by timestamp (newest first)
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	// Check if backup directory exists
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}

		// Parse timestamp from filename
		timestampStr := strings.TrimPrefix(name, BackupFilePrefix)
		timestampStr = strings.TrimSuffix(timestampStr, m.suffix)

		// Remove counter suffix if present (format: YYYYMMDD-HHMM-N or YYYYMMDD-HHMMSS-N)
		// Counter is always after the last hyphen and is all digits
		parts := strings.Split(timestampStr, "-")
		if len(parts) > 2 {
			// Check if last part is a counter (all digits, not 4 or 6 chars which would be time)
			lastPart := parts[len(parts)-1]
			if len(lastPart) != 4 && len(lastPart) != 6 {
				isCounter := true
				for _, c := range lastPart {
					if c < '0' || c > '9' {
						isCounter = false
						break
					}
				}
				if isCounter {
					timestampStr = strings.Join(parts[:len(parts)-1], "-")
				}
			}
		}

		var timestamp time.Time
		// Try different timestamp formats
		timestamp, err := time.Parse("20060102-1504", timestampStr)
		if err != nil {
			timestamp, err = time.Parse("20060102-150405", timestampStr)
			if err != nil {
				// Skip files with invalid timestamp format
				continue
			}
		}

		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	// Sort by timestamp, newest first
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	if len(backups) <= MaxBackups {
		return nil
	}

	// Delete oldest backups
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}

	return nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}

	// Sync to ensure data is written to disk
	return destFile.Sync()
}
