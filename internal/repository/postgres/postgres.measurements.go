// FilePath: internal/repository/postgres/postgres.measurements.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/itsatony/glucohub/internal/database"
	"github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
)

// MeasurementRepo is the postgres-backed measurement store. Schema:
//
//	CREATE TABLE glucose_history (
//	    account_id   TEXT        NOT NULL,
//	    doc_id       TEXT        NOT NULL,
//	    glucose      INTEGER     NOT NULL,
//	    trend        TEXT        NOT NULL,
//	    time_display TEXT        NOT NULL,
//	    ts           TIMESTAMPTZ NOT NULL,
//	    saved_at     TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (account_id, doc_id)
//	);
type MeasurementRepo struct {
	db database.DB
}

func NewMeasurementRepository(db database.DB) *MeasurementRepo {
	return &MeasurementRepo{db: db}
}

// Save upserts on (account_id, doc_id) so repeated writes for the same
// instant stay idempotent.
func (r *MeasurementRepo) Save(ctx context.Context, accountID, docID string, rec *models.MeasurementRecord) error {
	query := `
		INSERT INTO glucose_history (
			account_id, doc_id, glucose, trend, time_display, ts, saved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id, doc_id) DO UPDATE SET
			glucose = EXCLUDED.glucose,
			trend = EXCLUDED.trend,
			time_display = EXCLUDED.time_display,
			ts = EXCLUDED.ts,
			saved_at = EXCLUDED.saved_at`

	_, err := r.db.GetDB().ExecContext(ctx, query,
		accountID, docID, rec.Glucose, rec.Trend, rec.Time, rec.Timestamp, rec.SavedAt)
	if err != nil {
		return errors.NewDatabaseError("failed to save measurement record", err)
	}
	return nil
}

// Latest returns the most recent record for the account by reading instant
func (r *MeasurementRepo) Latest(ctx context.Context, accountID string) (*models.MeasurementRecord, error) {
	rec := &models.MeasurementRecord{}
	query := `
		SELECT glucose, trend, time_display, ts, saved_at
		FROM glucose_history
		WHERE account_id = $1
		ORDER BY ts DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, rec, query, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to load measurement record", err)
	}
	return rec, nil
}

func (r *MeasurementRepo) Close() error {
	return r.db.Close()
}
