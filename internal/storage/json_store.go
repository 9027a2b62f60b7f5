package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/julianstephens/daylap/internal/models"
)

// Store is the on-disk layout of the JSON backend.
type Store struct {
	Version int                         `json:"version"`
	Days    map[string]models.DayRecord `json:"days"`
}

type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version: 1,
		Days:    make(map[string]models.DayRecord),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'daylap init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Days == nil {
		s.store.Days = make(map[string]models.DayRecord)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) SaveDay(record models.DayRecord) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Days[record.Date] = record
	return s.save()
}

func (s *JSONStore) GetDay(date string) (models.DayRecord, error) {
	if s.store == nil {
		return models.DayRecord{}, fmt.Errorf("storage not loaded")
	}

	record, ok := s.store.Days[date]
	if !ok {
		return models.DayRecord{}, fmt.Errorf("%w for %s", ErrDayNotFound, date)
	}

	return record, nil
}

func (s *JSONStore) ListDates() ([]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	dates := make([]string, 0, len(s.store.Days))
	for date := range s.store.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	return dates, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
