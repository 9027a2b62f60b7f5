package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/daylap/internal/constants"
	"github.com/julianstephens/daylap/internal/logger"
	"github.com/julianstephens/daylap/internal/migration"
	"github.com/julianstephens/daylap/internal/models"
	"github.com/julianstephens/daylap/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	s := &PostgresStore{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

// ensureSearchPath pins the connection to the application schema unless
// the caller already chose one.
func (s *PostgresStore) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else {
		if !hasSearchPathParam(s.connStr) {
			s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
		}
	}
}

// hasSearchPathParam returns true if the given DSN-style connection string
// contains a search_path parameter key (case-insensitive).
func hasSearchPathParam(connStr string) bool {
	parts := strings.Fields(connStr)
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "search_path") {
			return true
		}
	}
	return false
}

// hasSSLMode checks if the connection string contains an sslmode parameter
// key, in either URL or DSN form.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	parts := strings.Fields(connStr)
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}

	return false
}

// ValidateConnString checks that a connection string parses as a
// PostgreSQL URI or DSN and carries no embedded password; the password
// belongs in the OS keyring.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}

		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}

		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	} else {
		pairs := strings.Fields(connStr)
		for _, pair := range pairs {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
				return false, ErrEmbeddedCredentials
			}
		}
	}

	return true, nil
}

func (s *PostgresStore) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to create schema: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := s.db.Ping(); err != nil {
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() error {
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

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) newRunner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *PostgresStore) runMigrations() error {
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
func (s *PostgresStore) Migrate() (int, error) {
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
func (s *PostgresStore) SchemaVersion() (current, latest int, err error) {
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

func (s *PostgresStore) SaveDay(record models.DayRecord) error {
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
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			total_duration = EXCLUDED.total_duration,
			is_active = EXCLUDED.is_active
	`, record.Date, record.TotalDuration, record.IsActive)
	if err != nil {
		return fmt.Errorf("failed to save day record: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM laps WHERE day_date = $1", record.Date); err != nil {
		return fmt.Errorf("failed to clear laps: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO laps (id, day_date, seq, start_time, end_time, duration)
		VALUES ($1, $2, $3, $4, $5, $6)`)
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

func (s *PostgresStore) GetDay(date string) (models.DayRecord, error) {
	if s.db == nil {
		return models.DayRecord{}, fmt.Errorf("storage not loaded")
	}

	var record models.DayRecord
	err := s.db.QueryRow(
		"SELECT date, total_duration, is_active FROM day_records WHERE date = $1",
		date,
	).Scan(&record.Date, &record.TotalDuration, &record.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DayRecord{}, fmt.Errorf("%w for %s", ErrDayNotFound, date)
		}
		return models.DayRecord{}, fmt.Errorf("failed to get day record: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT start_time, end_time, duration FROM laps WHERE day_date = $1 ORDER BY seq",
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

func (s *PostgresStore) ListDates() ([]string, error) {
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

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}
