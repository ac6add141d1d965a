// FilePath: api/resources/api.resource.glucose.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/glucoservice"
	"github.com/itsatony/glucohub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// GlucoseHandlers encapsulates the Service-A (Dexcom) HTTP handlers
type GlucoseHandlers struct {
	service *glucoservice.GlucoseService
}

type dexcomRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Region   string `json:"region"`
}

func (req *dexcomRequest) credentials() models.Credentials {
	return models.Credentials{
		Username: req.Username,
		Password: req.Password,
		Region:   req.Region,
	}
}

type readingResponse struct {
	Success bool   `json:"success"`
	Value   int    `json:"value"`
	Trend   string `json:"trend"`
	Time    string `json:"time"`
	Source  string `json:"source,omitempty"`
}

// @Summary Current glucose reading
// @Description Fetch the live Dexcom glucose reading for the supplied account
// @Tags glucose
// @Accept json
// @Produce json
// @Param credentials body dexcomRequest true "Dexcom credentials"
// @Success 200 {object} readingResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /glucose/current [post]
func (h *GlucoseHandlers) CurrentReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	req, apiErr := decodeDexcomRequest(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	reading, err := h.service.CurrentReading(r.Context(), req.credentials())
	if err != nil {
		respondWithError(w, serviceError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readingResponse{
		Success: true,
		Value:   reading.Value,
		Trend:   trendLabel(reading),
		Time:    reading.Timestamp.Format(time.RFC3339),
	})
}

// @Summary Latest glucose reading with fallback
// @Description Fetch the latest reading via the live/history/backup fallback chain
// @Tags glucose
// @Accept json
// @Produce json
// @Param credentials body dexcomRequest true "Dexcom credentials"
// @Success 200 {object} readingResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /glucose/latest [post]
func (h *GlucoseHandlers) LatestReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	req, apiErr := decodeDexcomRequest(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	reading, err := h.service.LatestReading(r.Context(), req.credentials())
	if err != nil {
		respondWithError(w, serviceError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readingResponse{
		Success: true,
		Value:   reading.Value,
		Trend:   trendLabel(reading),
		Time:    reading.Timestamp.Format(time.RFC3339),
		Source:  reading.Source,
	})
}

// decodeDexcomRequest parses and validates the request body. Validation runs
// before any vendor call.
func decodeDexcomRequest(r *http.Request) (*dexcomRequest, *errors.APIError) {
	var req dexcomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.NewValidationError("invalid request body", err)
	}
	if req.Username == "" || req.Password == "" {
		return nil, errors.NewValidationError("username and password are required", nil)
	}
	return &req, nil
}

// trendLabel prefers the canonical label; backup-store records only carry the
// vendor's descriptive label, which is surfaced as-is.
func trendLabel(reading *models.GlucoseReading) string {
	if reading.Trend != models.TrendUnknown {
		return string(reading.Trend)
	}
	if reading.VendorTrend != "" {
		return reading.VendorTrend
	}
	return string(models.TrendUnknown)
}
