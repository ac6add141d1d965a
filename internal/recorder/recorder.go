// FilePath: internal/recorder/recorder.go
package recorder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/itsatony/glucohub/internal/config"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
	"github.com/itsatony/glucohub/internal/vendors"
	nuts "github.com/vaudience/go-nuts"
)

// Recorder periodically fetches one live Service-A reading for a fixed
// machine-held account and writes it to the backup store. It never raises to
// its scheduler: a missed interval self-heals on the next tick.
type Recorder struct {
	vendor   vendors.Adapter
	store    repository.MeasurementRepository
	creds    models.Credentials
	interval time.Duration
}

// New creates a Recorder for the configured machine account
func New(vendor vendors.Adapter, store repository.MeasurementRepository, cfg config.RecorderConfig) *Recorder {
	return &Recorder{
		vendor: vendor,
		store:  store,
		creds: models.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
			Region:   cfg.Region,
		},
		interval: cfg.Interval,
	}
}

// Run ticks until the context is cancelled. One record is attempted
// immediately on start so a fresh deployment does not wait a full interval.
func (r *Recorder) Run(ctx context.Context) {
	nuts.L.Infof("[Recorder] Starting history recorder, interval %s", r.interval)
	r.RecordOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[Recorder] Stopping history recorder")
			return
		case <-ticker.C:
			r.RecordOnce(ctx)
		}
	}
}

// RecordOnce performs a single tick. All failures are logged and swallowed.
func (r *Recorder) RecordOnce(ctx context.Context) {
	reading, err := r.vendor.CurrentReading(ctx, r.creds)
	if err != nil {
		if errors.Is(err, vendors.ErrNoReading) {
			nuts.L.Infof("[Recorder] No current reading, skipping tick")
		} else {
			nuts.L.Errorf("[Recorder] Vendor fetch failed: %v", err)
		}
		return
	}

	accountID := models.AccountID(r.creds.Username)
	docID := DocumentID(reading.Timestamp)
	rec := &models.MeasurementRecord{
		Glucose:   reading.Value,
		Trend:     reading.VendorTrend,
		Time:      reading.Timestamp.Format(time.RFC3339),
		Timestamp: reading.Timestamp,
		SavedAt:   time.Now().UTC(),
	}

	if err := r.store.Save(ctx, accountID, docID, rec); err != nil {
		nuts.L.Errorf("[Recorder] Store write failed: %v", err)
		return
	}
	nuts.L.Infof("[Recorder] Recorded %d mg/dL at %s (doc %s)", rec.Glucose, rec.Time, docID)
}

// DocumentID derives a storage-key-safe document id from a reading's instant.
// Colons and dots are replaced so the id stays valid in path-style document
// keys; identical instants therefore always map to the same id, which makes
// repeated writes idempotent.
func DocumentID(ts time.Time) string {
	id := ts.UTC().Format(time.RFC3339)
	id = strings.ReplaceAll(id, ":", "-")
	return strings.ReplaceAll(id, ".", "-")
}
