// FilePath: internal/vendors/vendors.go
package vendors

import (
	"context"
	"errors"

	"github.com/itsatony/glucohub/internal/models"
)

// ErrNoReading indicates the vendor answered successfully but has no current
// glucose reading for the account. This is an expected outcome, not a failure.
var ErrNoReading = errors.New("no current glucose reading available")

// Adapter is the per-vendor retrieval contract consumed by the orchestrator.
// Every call establishes a fresh vendor session; no tokens are cached across
// invocations.
type Adapter interface {
	Name() string
	// CurrentReading returns the live reading, or ErrNoReading when the vendor
	// reports none.
	CurrentReading(ctx context.Context, creds models.Credentials) (*models.GlucoseReading, error)
	// ReadingsInWindow returns all readings within the trailing window in
	// minutes. The slice may be empty; the caller picks the most recent entry.
	ReadingsInWindow(ctx context.Context, creds models.Credentials, minutes int) ([]models.GlucoseReading, error)
}
