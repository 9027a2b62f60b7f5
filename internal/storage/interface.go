package storage

import (
	"errors"

	"github.com/julianstephens/daylap/internal/models"
)

// ErrDayNotFound is returned by GetDay when nothing is archived for a date.
var ErrDayNotFound = errors.New("no day record found")

// Provider persists finalized day records and serves them back for
// display. Live session state never goes through a Provider; the record
// handed over by EndDay is the only write. Saving a date that already
// exists replaces the whole record.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Day records
	SaveDay(models.DayRecord) error
	GetDay(date string) (models.DayRecord, error)
	ListDates() ([]string, error)

	// Utils
	GetConfigPath() string
}
