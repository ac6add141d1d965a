// FilePath: internal/vendors/librelinkup/librelinkup.go
package librelinkup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/itsatony/glucohub/internal/config"
	"github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	loginPath       = "/llu/auth/login"
	connectionsPath = "/llu/connections"

	// Vendor-local measurement timestamp, e.g. "1/19/2024 3:04:05 PM".
	measurementTimeLayout = "1/2/2006 3:04:05 PM"
)

// Client is the Service-B (LibreLinkUp) session client. Sessions are
// ephemeral: Login is performed on every invocation and the resulting token
// is never reused across calls.
type Client struct {
	http    *resty.Client
	baseURL string
	product string
	version string
	// regionOverrides short-circuits regionBaseURL; only set in tests.
	regionOverrides map[string]string
}

// Session is an authenticated LibreLinkUp session: bearer token, hashed
// account id and the base URL resolved by the (possibly redirected) login.
type Session struct {
	client    *Client
	baseURL   string
	token     string
	accountID string
}

// New creates a LibreLinkUp client bounded by the given per-call timeout.
func New(cfg config.LibreLinkUpConfig, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		product: cfg.Product,
		version: cfg.Version,
	}
}

type loginResponse struct {
	Status int `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Data struct {
		Redirect   bool   `json:"redirect"`
		Region     string `json:"region"`
		AuthTicket struct {
			Token string `json:"token"`
		} `json:"authTicket"`
		User struct {
			ID        string `json:"id"`
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"user"`
	} `json:"data"`
}

// libreMeasurement is the vendor's embedded glucose snapshot shape, shared by
// connection listings and graph data.
type libreMeasurement struct {
	Timestamp        string `json:"Timestamp"`
	FactoryTimestamp string `json:"FactoryTimestamp"`
	ValueInMgPerDl   int    `json:"ValueInMgPerDl"`
	TrendArrow       int    `json:"TrendArrow"`
	IsHigh           bool   `json:"isHigh"`
	IsLow            bool   `json:"isLow"`
}

type libreConnection struct {
	PatientID          string           `json:"patientId"`
	FirstName          string           `json:"firstName"`
	LastName           string           `json:"lastName"`
	TargetLow          int              `json:"targetLow"`
	TargetHigh         int              `json:"targetHigh"`
	GlucoseMeasurement libreMeasurement `json:"glucoseMeasurement"`
}

type connectionsResponse struct {
	Status int               `json:"status"`
	Data   []libreConnection `json:"data"`
}

type graphResponse struct {
	Status int `json:"status"`
	Data   struct {
		Connection struct {
			PatientID          string           `json:"patientId"`
			FirstName          string           `json:"firstName"`
			LastName           string           `json:"lastName"`
			GlucoseMeasurement libreMeasurement `json:"glucoseMeasurement"`
		} `json:"connection"`
		GraphData []libreMeasurement `json:"graphData"`
	} `json:"data"`
}

// Login authenticates against LibreLinkUp. A "wrong region" answer (body
// flag, not an HTTP status) is retried exactly once against the indicated
// regional server; a second redirect or any login failure surfaces the
// vendor's message as an authentication error.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*Session, error) {
	baseURL := c.baseURL
	if creds.Region != "" {
		baseURL = c.regionBaseURL(creds.Region)
	}

	sess, redirectRegion, err := c.attemptLogin(ctx, baseURL, creds)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}

	nuts.L.Infof("[LibreLinkUp] Login redirected to region %s, retrying", redirectRegion)
	sess, _, err = c.attemptLogin(ctx, c.regionBaseURL(redirectRegion), creds)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.NewAuthError("LibreLinkUp login redirected more than once", nil)
	}
	return sess, nil
}

// attemptLogin performs a single login call. It returns an established
// session, or the redirect region when the vendor signals one.
func (c *Client) attemptLogin(ctx context.Context, baseURL string, creds models.Credentials) (*Session, string, error) {
	var body loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("product", c.product).
		SetHeader("version", c.version).
		SetBody(map[string]string{
			"email":    creds.Username,
			"password": creds.Password,
		}).
		SetResult(&body).
		Post(baseURL + loginPath)
	if err != nil {
		return nil, "", errors.NewTransportError("failed to reach LibreLinkUp", err)
	}
	if resp.IsError() || body.Status != 0 {
		msg := body.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("LibreLinkUp login failed with status %d", resp.StatusCode())
		}
		return nil, "", errors.NewAuthError(msg, nil)
	}
	if body.Data.Redirect {
		return nil, body.Data.Region, nil
	}
	if body.Data.AuthTicket.Token == "" {
		return nil, "", errors.NewVendorError("LibreLinkUp login response carried no auth ticket", nil)
	}

	return &Session{
		client:    c,
		baseURL:   baseURL,
		token:     body.Data.AuthTicket.Token,
		accountID: hashAccountID(body.Data.User.ID),
	}, "", nil
}

func (c *Client) regionBaseURL(region string) string {
	if url, ok := c.regionOverrides[region]; ok {
		return url
	}
	return fmt.Sprintf("https://api-%s.libreview.io", region)
}

// Connections lists the caregiver-sharing connections of the session's
// account. An empty list is a valid result, not an error.
func (s *Session) Connections(ctx context.Context) ([]models.PatientConnection, error) {
	var body connectionsResponse
	resp, err := s.request(ctx).
		SetResult(&body).
		Get(s.baseURL + connectionsPath)
	if err != nil {
		return nil, errors.NewTransportError("failed to reach LibreLinkUp", err)
	}
	if resp.IsError() || body.Status != 0 {
		return nil, vendorError("connections", resp.StatusCode(), body.Status)
	}

	connections := make([]models.PatientConnection, 0, len(body.Data))
	for _, conn := range body.Data {
		reading, err := toReading(conn.GlucoseMeasurement)
		if err != nil {
			// The connection itself is still useful; its snapshot reads as
			// "no measurement" downstream.
			nuts.L.Warnf("[LibreLinkUp] Connection %s: %v", conn.PatientID, err)
		}
		connections = append(connections, models.PatientConnection{
			PatientID:  conn.PatientID,
			FirstName:  conn.FirstName,
			LastName:   conn.LastName,
			TargetLow:  conn.TargetLow,
			TargetHigh: conn.TargetHigh,
			Reading:    reading,
			TrendArrow: conn.GlucoseMeasurement.TrendArrow,
		})
	}
	return connections, nil
}

// Graph fetches the current snapshot and history sequence for one patient.
func (s *Session) Graph(ctx context.Context, patientID string) (*models.LibreGraph, error) {
	var body graphResponse
	resp, err := s.request(ctx).
		SetResult(&body).
		Get(s.baseURL + connectionsPath + "/" + patientID + "/graph")
	if err != nil {
		return nil, errors.NewTransportError("failed to reach LibreLinkUp", err)
	}
	if resp.IsError() || body.Status != 0 {
		return nil, vendorError("graph", resp.StatusCode(), body.Status)
	}

	history := make([]models.GlucoseReading, 0, len(body.Data.GraphData))
	for _, m := range body.Data.GraphData {
		reading, err := toReading(m)
		if err != nil {
			nuts.L.Warnf("[LibreLinkUp] Skipping graph entry: %v", err)
			continue
		}
		history = append(history, reading)
	}

	conn := body.Data.Connection
	current, err := toReading(conn.GlucoseMeasurement)
	if err != nil {
		nuts.L.Warnf("[LibreLinkUp] Graph for %s: %v", patientID, err)
	}
	return &models.LibreGraph{
		Current: models.LibreSnapshot{
			Reading:     current,
			TrendArrow:  conn.GlucoseMeasurement.TrendArrow,
			PatientName: patientName(conn.FirstName, conn.LastName),
		},
		History: history,
	}, nil
}

// request prepares an authenticated call. The vendor's newer auth scheme
// rejects calls missing the hashed account-id header.
func (s *Session) request(ctx context.Context) *resty.Request {
	return s.client.http.R().
		SetContext(ctx).
		SetHeader("product", s.client.product).
		SetHeader("version", s.client.version).
		SetHeader("account-id", s.accountID).
		SetAuthToken(s.token)
}

func vendorError(call string, httpStatus, bodyStatus int) *errors.APIError {
	return errors.NewVendorError(
		fmt.Sprintf("LibreLinkUp %s call failed (http %d, status %d)", call, httpStatus, bodyStatus), nil)
}

func toReading(m libreMeasurement) (models.GlucoseReading, error) {
	ts, err := time.Parse(measurementTimeLayout, m.Timestamp)
	if err != nil {
		// FactoryTimestamp is the UTC fallback when the local form is absent.
		ts, err = time.Parse(measurementTimeLayout, m.FactoryTimestamp)
		if err != nil {
			return models.GlucoseReading{}, fmt.Errorf(
				"unparseable measurement timestamps %q / %q", m.Timestamp, m.FactoryTimestamp)
		}
	}
	return models.GlucoseReading{
		Value:     m.ValueInMgPerDl,
		Trend:     models.TrendFromCode(m.TrendArrow),
		Timestamp: ts,
		IsHigh:    m.IsHigh,
		IsLow:     m.IsLow,
		Source:    models.SourceLibreLinkUp,
	}, nil
}

func patientName(first, last string) string {
	switch {
	case first == "" && last == "":
		return ""
	case last == "":
		return first
	case first == "":
		return last
	default:
		return first + " " + last
	}
}

// hashAccountID derives the account-id header value: a one-way SHA-256 hash
// of the raw user id returned at login.
func hashAccountID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
