// FilePath: internal/models/models.reading.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Source tags identifying which retrieval tier produced a reading.
const (
	SourceLiveDexcom      = "live_dexcom"
	SourceHistoryDexcom   = "history_dexcom_24h"
	SourcePersistedBackup = "persisted_backup"
	SourceLibreLinkUp     = "librelinkup"
)

// GlucoseReading is a single blood-glucose measurement. Immutable once
// constructed; handlers only re-wrap it into response envelopes.
type GlucoseReading struct {
	Value     int       `json:"value"`
	Trend     Trend     `json:"trend"`
	Timestamp time.Time `json:"time"`
	IsHigh    bool      `json:"is_high,omitempty"`
	IsLow     bool      `json:"is_low,omitempty"`
	Source    string    `json:"source,omitempty"`
	// VendorTrend is the vendor's own descriptive trend label. Persisted
	// backup records keep this instead of the canonical mapping.
	VendorTrend string `json:"-"`
}

// Credentials for a vendor account. Never persisted; lives only for the
// duration of one request or recorder tick.
type Credentials struct {
	Username string
	Password string
	Region   string
}

// PatientConnection is a caregiver-sharing connection exposed by LibreLinkUp.
type PatientConnection struct {
	PatientID  string
	FirstName  string
	LastName   string
	TargetLow  int
	TargetHigh int
	Reading    GlucoseReading
	TrendArrow int
}

// LibreSnapshot is the current measurement of the selected patient connection.
type LibreSnapshot struct {
	Reading     GlucoseReading
	TrendArrow  int
	PatientName string
}

// LibreGraph is the graph-data result for one patient: the current snapshot
// plus the vendor's history sequence.
type LibreGraph struct {
	Current LibreSnapshot
	History []GlucoseReading
}

// MeasurementRecord is the persisted backup-store document. Trend keeps the
// vendor's descriptive label, not the canonical mapping; Timestamp is the
// comparable instant, Time the display string.
type MeasurementRecord struct {
	Glucose   int       `json:"Glucose" db:"glucose"`
	Trend     string    `json:"Trend" db:"trend"`
	Time      string    `json:"Time" db:"time_display"`
	Timestamp time.Time `json:"Timestamp" db:"ts"`
	SavedAt   time.Time `json:"SavedAt" db:"saved_at"`
}

// AccountID derives the storage/account identifier for a set of credentials.
// Hashing keeps raw usernames and emails out of store keys, mirroring the
// hashed account id LibreLinkUp requires in its headers.
func AccountID(username string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(username))))
	return hex.EncodeToString(sum[:])
}
