// FilePath: internal/vendors/dexcom/dexcom.go
package dexcom

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/itsatony/glucohub/internal/config"
	"github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/vendors"
	nuts "github.com/vaudience/go-nuts"
)

const (
	servicePath      = "/ShareWebServices/Services"
	authenticatePath = servicePath + "/General/AuthenticatePublisherAccount"
	loginPath        = servicePath + "/General/LoginPublisherAccountById"
	readingsPath     = servicePath + "/Publisher/ReadPublisherLatestGlucoseValues"

	// The Share API reports a value as "current" for up to 10 minutes.
	currentWindowMinutes = 10
	// One reading per 5 minutes, so 288 covers a full 24h window.
	maxWindowCount = 288
)

// regionEndpoints maps a region hint to the Share API base URL.
var regionEndpoints = map[string]string{
	"us":  "https://share2.dexcom.com",
	"ous": "https://shareous1.dexcom.com",
	"jp":  "https://share.dexcom.jp",
}

// trendDescriptions are Dexcom's own labels for the 1..5 trend codes,
// persisted verbatim in backup records.
var trendDescriptions = map[int]string{
	1: "falling quickly",
	2: "falling",
	3: "steady",
	4: "rising",
	5: "rising quickly",
}

// Client is the Service-A (Dexcom Share) session adapter. Every call
// authenticates a fresh session; nothing is cached between invocations.
type Client struct {
	http          *resty.Client
	applicationID string
	defaultRegion string
	endpoints     map[string]string
}

// New creates a Dexcom Share client bounded by the given per-call timeout.
func New(cfg config.DexcomConfig, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:          httpClient,
		applicationID: cfg.ApplicationID,
		defaultRegion: cfg.DefaultRegion,
		endpoints:     regionEndpoints,
	}
}

// Name implements vendors.Adapter.
func (c *Client) Name() string { return "dexcom" }

// CurrentReading fetches the live glucose value. A vendor response with no
// entries maps to vendors.ErrNoReading, not an error.
func (c *Client) CurrentReading(ctx context.Context, creds models.Credentials) (*models.GlucoseReading, error) {
	readings, err := c.latestValues(ctx, creds, currentWindowMinutes, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, vendors.ErrNoReading
	}
	return &readings[0], nil
}

// ReadingsInWindow fetches all readings of the trailing window. The result
// may be empty; the caller selects the most recent entry.
func (c *Client) ReadingsInWindow(ctx context.Context, creds models.Credentials, minutes int) ([]models.GlucoseReading, error) {
	return c.latestValues(ctx, creds, minutes, maxWindowCount)
}

// shareReading is the raw Share API glucose entry.
type shareReading struct {
	WT    string `json:"WT"`
	Value int    `json:"Value"`
	Trend int    `json:"Trend"`
}

// shareAPIError is the Share API error body on non-2xx responses.
type shareAPIError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (c *Client) latestValues(ctx context.Context, creds models.Credentials, minutes, maxCount int) ([]models.GlucoseReading, error) {
	baseURL, err := c.baseURL(creds.Region)
	if err != nil {
		return nil, err
	}

	sessionID, err := c.login(ctx, baseURL, creds)
	if err != nil {
		return nil, err
	}

	var entries []shareReading
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"sessionId": sessionID,
			"minutes":   strconv.Itoa(minutes),
			"maxCount":  strconv.Itoa(maxCount),
		}).
		SetResult(&entries).
		Post(baseURL + readingsPath)
	if err != nil {
		return nil, errors.NewTransportError("failed to reach Dexcom Share", err)
	}
	if resp.IsError() {
		return nil, shareError(resp)
	}

	readings := make([]models.GlucoseReading, 0, len(entries))
	for _, entry := range entries {
		ts, err := parseShareTime(entry.WT)
		if err != nil {
			nuts.L.Warnf("[Dexcom] Skipping entry with unparseable timestamp %q: %v", entry.WT, err)
			continue
		}
		readings = append(readings, models.GlucoseReading{
			Value:       entry.Value,
			Trend:       models.TrendFromCode(entry.Trend),
			VendorTrend: TrendDescription(entry.Trend),
			Timestamp:   ts,
		})
	}
	return readings, nil
}

// login performs the two-step Share handshake: resolve the account id, then
// open a publisher session.
func (c *Client) login(ctx context.Context, baseURL string, creds models.Credentials) (string, error) {
	var accountID string
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"accountName":   creds.Username,
			"password":      creds.Password,
			"applicationId": c.applicationID,
		}).
		SetResult(&accountID).
		Post(baseURL + authenticatePath)
	if err != nil {
		return "", errors.NewTransportError("failed to reach Dexcom Share", err)
	}
	if resp.IsError() {
		return "", shareError(resp)
	}

	var sessionID string
	resp, err = c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"accountId":     accountID,
			"password":      creds.Password,
			"applicationId": c.applicationID,
		}).
		SetResult(&sessionID).
		Post(baseURL + loginPath)
	if err != nil {
		return "", errors.NewTransportError("failed to reach Dexcom Share", err)
	}
	if resp.IsError() {
		return "", shareError(resp)
	}
	return sessionID, nil
}

func (c *Client) baseURL(region string) (string, error) {
	if region == "" {
		region = c.defaultRegion
	}
	url, ok := c.endpoints[strings.ToLower(region)]
	if !ok {
		return "", errors.NewValidationError(fmt.Sprintf("unknown Dexcom region: %s", region), nil)
	}
	return url, nil
}

// shareError maps a non-2xx Share response to an APIError, surfacing the
// vendor's message verbatim.
func shareError(resp *resty.Response) *errors.APIError {
	var apiErr shareAPIError
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Dexcom Share returned status %d", resp.StatusCode())
	}
	if isAuthCode(apiErr.Code) {
		return errors.NewAuthError(apiErr.Message, nil)
	}
	return errors.NewVendorError(apiErr.Message, nil)
}

func isAuthCode(code string) bool {
	return strings.HasPrefix(code, "SSO_Authenticate") ||
		code == "AccountPasswordInvalid" ||
		code == "SessionIdNotFound"
}

// TrendDescription returns Dexcom's descriptive label for a trend code, or
// "unknown" for codes outside the table.
func TrendDescription(code int) string {
	if label, ok := trendDescriptions[code]; ok {
		return label
	}
	return "unknown"
}

// parseShareTime parses the Share API timestamp format "Date(1699110000000)"
// (optionally "/Date(1699110000000-0500)/"). The embedded value is epoch
// milliseconds; a trailing zone offset is informational only.
func parseShareTime(s string) (time.Time, error) {
	open := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if open < 0 || end <= open {
		return time.Time{}, fmt.Errorf("malformed Share timestamp: %q", s)
	}
	body := s[open+1 : end]
	if len(body) > 1 {
		if idx := strings.IndexAny(body[1:], "+-"); idx >= 0 {
			body = body[:idx+1]
		}
	}
	ms, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed Share timestamp: %q", s)
	}
	return time.UnixMilli(ms).UTC(), nil
}
