// FilePath: internal/models/models.trend.go
package models

// Trend is the canonical trend label shared by both vendor integrations.
type Trend string

const (
	TrendFallingQuickly Trend = "falling_quickly"
	TrendFalling        Trend = "falling"
	TrendStable         Trend = "stable"
	TrendRising         Trend = "rising"
	TrendRisingQuickly  Trend = "rising_quickly"
	TrendUnknown        Trend = "unknown"
)

// TrendFromCode maps a vendor trend code (1 = falling fast .. 5 = rising fast,
// 3 = stable) to the canonical label. Codes outside 1..5 map to TrendUnknown;
// this never fails.
func TrendFromCode(code int) Trend {
	switch code {
	case 1:
		return TrendFallingQuickly
	case 2:
		return TrendFalling
	case 3:
		return TrendStable
	case 4:
		return TrendRising
	case 5:
		return TrendRisingQuickly
	default:
		return TrendUnknown
	}
}
