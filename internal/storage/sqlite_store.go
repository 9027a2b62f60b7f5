package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/daylap/internal/migration"
	"github.com/julianstephens/daylap/internal/models"
	"github.com/julianstephens/daylap/migrations"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'daylap init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.newRunner()
	if err != nil {
		return err
	}
	return runner.Validate()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) newRunner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *SQLiteStore) runMigrations() error {
	runner, err := s.newRunner()
	if err != nil {
		return err
	}
	_, err = runner.Apply(func(msg string) {
		fmt.Println(msg)
	})
	return err
}

// Migrate applies pending migrations without requiring an up-to-date schema
// first, returning how many were applied.
func (s *SQLiteStore) Migrate() (int, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	runner, err := s.newRunner()
	if err != nil {
		return 0, err
	}
	return runner.Apply(func(msg string) {
		fmt.Println(msg)
	})
}

// SchemaVersion reports the applied and the latest-known schema versions.
func (s *SQLiteStore) SchemaVersion() (current, latest int, err error) {
	if err := s.open(); err != nil {
		return 0, 0, err
	}
	runner, err := s.newRunner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *SQLiteStore) SaveDay(record models.DayRecord) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO day_records (date, total_duration, is_active)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_duration = excluded.total_duration,
			is_active = excluded.is_active
	`, record.Date, record.TotalDuration, record.IsActive)
	if err != nil {
		return fmt.Errorf("failed to save day record: %w", err)
	}

	// Replace the lap rows wholesale; the record carries the full day.
	if _, err := tx.Exec("DELETE FROM laps WHERE day_date = ?", record.Date); err != nil {
		return fmt.Errorf("failed to clear laps: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO laps (id, day_date, seq, start_time, end_time, duration)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, lap := range record.Laps {
		var endTime, duration sql.NullInt64
		if lap.EndTime != nil {
			endTime = sql.NullInt64{Int64: *lap.EndTime, Valid: true}
		}
		if lap.Duration != nil {
			duration = sql.NullInt64{Int64: *lap.Duration, Valid: true}
		}
		_, err = stmt.Exec(uuid.New().String(), record.Date, i, lap.StartTime, endTime, duration)
		if err != nil {
			return fmt.Errorf("failed to insert lap %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetDay(date string) (models.DayRecord, error) {
	if s.db == nil {
		return models.DayRecord{}, fmt.Errorf("storage not loaded")
	}

	var record models.DayRecord
	err := s.db.QueryRow(
		"SELECT date, total_duration, is_active FROM day_records WHERE date = ?",
		date,
	).Scan(&record.Date, &record.TotalDuration, &record.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DayRecord{}, fmt.Errorf("%w for %s", ErrDayNotFound, date)
		}
		return models.DayRecord{}, fmt.Errorf("failed to get day record: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT start_time, end_time, duration FROM laps WHERE day_date = ? ORDER BY seq",
		date,
	)
	if err != nil {
		return models.DayRecord{}, fmt.Errorf("failed to get laps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lap models.Lap
		var endTime, duration sql.NullInt64
		if err := rows.Scan(&lap.StartTime, &endTime, &duration); err != nil {
			return models.DayRecord{}, fmt.Errorf("failed to scan lap: %w", err)
		}
		if endTime.Valid {
			v := endTime.Int64
			lap.EndTime = &v
		}
		if duration.Valid {
			v := duration.Int64
			lap.Duration = &v
		}
		record.Laps = append(record.Laps, lap)
	}
	if err := rows.Err(); err != nil {
		return models.DayRecord{}, fmt.Errorf("failed to read laps: %w", err)
	}

	return record, nil
}

func (s *SQLiteStore) ListDates() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	rows, err := s.db.Query("SELECT date FROM day_records ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dates: %w", err)
	}

	return dates, nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}
