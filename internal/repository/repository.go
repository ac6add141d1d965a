// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/itsatony/glucohub/internal/models"
)

// ErrNotFound indicates that no record exists for the requested account
var ErrNotFound = errors.New("measurement record not found")

// MeasurementRepository is the persisted backup store for glucose history.
// Records are append-only from this system's point of view: Save overwrites
// only when the timestamp-derived document id collides, which makes recorder
// ticks idempotent.
type MeasurementRepository interface {
	// Save writes the record under (accountID, docID), overwriting any
	// existing record at the same key.
	Save(ctx context.Context, accountID, docID string, rec *models.MeasurementRecord) error
	// Latest returns the most recent record for the account by stored
	// instant, or ErrNotFound.
	Latest(ctx context.Context, accountID string) (*models.MeasurementRecord, error)
	Close() error
}
