// FilePath: internal/glucoservice/glucoservice.latest.go
package glucoservice

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
	"github.com/itsatony/glucohub/internal/vendors"
	nuts "github.com/vaudience/go-nuts"
)

// historyWindowMinutes is the trailing window consulted when no live reading
// exists (24 hours).
const historyWindowMinutes = 24 * 60

// CurrentReading is the direct Service-A pass-through: one live reading,
// no fallback. A vendor "no data" answer maps to a not-found error.
func (s *GlucoseService) CurrentReading(ctx context.Context, creds models.Credentials) (*models.GlucoseReading, error) {
	reading, err := s.Vendor.CurrentReading(ctx, creds)
	if err != nil {
		if errors.Is(err, vendors.ErrNoReading) {
			return nil, apierrors.NewNotFoundError("no current glucose reading available", nil)
		}
		return nil, err
	}
	reading.Source = "live_" + s.Vendor.Name()
	return reading, nil
}

// LatestReading walks the three-tier fallback chain, first success wins:
//
//	1. live vendor reading
//	2. most recent entry of the vendor's trailing 24h window
//	3. most recent persisted backup record for the account
//
// Vendor and transport errors in tiers 1-2 are logged and swallowed so an
// outage degrades to the backup tier instead of failing the call.
func (s *GlucoseService) LatestReading(ctx context.Context, creds models.Credentials) (*models.GlucoseReading, error) {
	vendorName := s.Vendor.Name()

	// Tier 1: live reading.
	reading, err := s.Vendor.CurrentReading(ctx, creds)
	if err == nil {
		reading.Source = "live_" + vendorName
		return reading, nil
	}
	if !errors.Is(err, vendors.ErrNoReading) {
		nuts.L.Warnf("[GlucoseService] Live tier failed, falling back: %v", err)
	}

	// Tier 2: trailing window, most recent entry.
	readings, err := s.Vendor.ReadingsInWindow(ctx, creds, historyWindowMinutes)
	if err != nil {
		nuts.L.Warnf("[GlucoseService] History tier failed, falling back: %v", err)
	} else if len(readings) > 0 {
		latest := mostRecent(readings)
		latest.Source = fmt.Sprintf("history_%s_24h", vendorName)
		return latest, nil
	}

	// Tier 3: persisted backup store.
	rec, err := s.Measurements.Latest(ctx, models.AccountID(creds.Username))
	if err == nil {
		return &models.GlucoseReading{
			Value:       rec.Glucose,
			VendorTrend: rec.Trend,
			Trend:       models.TrendUnknown,
			Timestamp:   rec.Timestamp,
			Source:      models.SourcePersistedBackup,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		nuts.L.Warnf("[GlucoseService] Backup tier failed: %v", err)
	}

	return nil, apierrors.NewNotFoundError(
		"no glucose data available (tried live reading, 24h history, persisted backup)", nil)
}

// mostRecent returns a copy of the entry with the maximum timestamp
func mostRecent(readings []models.GlucoseReading) *models.GlucoseReading {
	latest := readings[0]
	for _, r := range readings[1:] {
		if r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	return &latest
}
