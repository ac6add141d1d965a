// FilePath: api/resources/api.resource.libre.go
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

// LibreHandlers encapsulates the Service-B (LibreLinkUp) HTTP handlers
type LibreHandlers struct {
	service *glucoservice.GlucoseService
}

type libreRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Region   string `json:"region"`
}

func (req *libreRequest) credentials() models.Credentials {
	return models.Credentials{
		Username: req.Email,
		Password: req.Password,
		Region:   req.Region,
	}
}

type libreCurrentResponse struct {
	Success     bool   `json:"success"`
	Value       int    `json:"value"`
	Trend       string `json:"trend"`
	TrendArrow  int    `json:"trendArrow"`
	Time        string `json:"time"`
	IsHigh      bool   `json:"isHigh"`
	IsLow       bool   `json:"isLow"`
	PatientName string `json:"patientName"`
	Source      string `json:"source"`
}

type libreGraphPoint struct {
	Value  int    `json:"value"`
	Time   string `json:"time"`
	IsHigh bool   `json:"isHigh"`
	IsLow  bool   `json:"isLow"`
}

type libreGraphCurrent struct {
	Value      int    `json:"value"`
	Trend      string `json:"trend"`
	TrendArrow int    `json:"trendArrow"`
	Time       string `json:"time"`
	IsHigh     bool   `json:"isHigh"`
	IsLow      bool   `json:"isLow"`
}

type libreGraphResponse struct {
	Success      bool              `json:"success"`
	Current      libreGraphCurrent `json:"current"`
	History      []libreGraphPoint `json:"history"`
	HistoryCount int               `json:"historyCount"`
	Source       string            `json:"source"`
}

type libreConnectionView struct {
	PatientID      string `json:"patientId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	TargetLow      int    `json:"targetLow"`
	TargetHigh     int    `json:"targetHigh"`
	CurrentGlucose int    `json:"currentGlucose"`
	Trend          string `json:"trend"`
	Time           string `json:"time"`
	IsHigh         bool   `json:"isHigh"`
	IsLow          bool   `json:"isLow"`
}

type libreConnectionsResponse struct {
	Success     bool                  `json:"success"`
	Connections []libreConnectionView `json:"connections"`
	Count       int                   `json:"count"`
}

// @Summary Current LibreLinkUp reading
// @Description Fetch the selected patient's current glucose snapshot
// @Tags librelinkup
// @Accept json
// @Produce json
// @Param credentials body libreRequest true "LibreLinkUp credentials"
// @Success 200 {object} libreCurrentResponse
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /librelinkup/current [post]
func (h *LibreHandlers) CurrentReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	req, apiErr := decodeLibreRequest(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	snapshot, err := h.service.LibreCurrentReading(r.Context(), req.credentials())
	if err != nil {
		respondWithError(w, serviceError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, libreCurrentResponse{
		Success:     true,
		Value:       snapshot.Reading.Value,
		Trend:       string(snapshot.Reading.Trend),
		TrendArrow:  snapshot.TrendArrow,
		Time:        snapshot.Reading.Timestamp.Format(time.RFC3339),
		IsHigh:      snapshot.Reading.IsHigh,
		IsLow:       snapshot.Reading.IsLow,
		PatientName: snapshot.PatientName,
		Source:      models.SourceLibreLinkUp,
	})
}

// @Summary LibreLinkUp history graph
// @Description Fetch the selected patient's current snapshot and history sequence
// @Tags librelinkup
// @Accept json
// @Produce json
// @Param credentials body libreRequest true "LibreLinkUp credentials"
// @Success 200 {object} libreGraphResponse
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /librelinkup/graph [post]
func (h *LibreHandlers) Graph(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	req, apiErr := decodeLibreRequest(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	graph, err := h.service.LibreGraph(r.Context(), req.credentials())
	if err != nil {
		respondWithError(w, serviceError(err, requestID))
		return
	}

	history := make([]libreGraphPoint, 0, len(graph.History))
	for _, point := range graph.History {
		history = append(history, libreGraphPoint{
			Value:  point.Value,
			Time:   point.Timestamp.Format(time.RFC3339),
			IsHigh: point.IsHigh,
			IsLow:  point.IsLow,
		})
	}

	respondWithJSON(w, http.StatusOK, libreGraphResponse{
		Success: true,
		Current: libreGraphCurrent{
			Value:      graph.Current.Reading.Value,
			Trend:      string(graph.Current.Reading.Trend),
			TrendArrow: graph.Current.TrendArrow,
			Time:       graph.Current.Reading.Timestamp.Format(time.RFC3339),
			IsHigh:     graph.Current.Reading.IsHigh,
			IsLow:      graph.Current.Reading.IsLow,
		},
		History:      history,
		HistoryCount: len(history),
		Source:       models.SourceLibreLinkUp,
	})
}

// @Summary List LibreLinkUp patient connections
// @Description List all caregiver-sharing connections with their latest snapshots
// @Tags librelinkup
// @Accept json
// @Produce json
// @Param credentials body libreRequest true "LibreLinkUp credentials"
// @Success 200 {object} libreConnectionsResponse
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /librelinkup/connections [post]
func (h *LibreHandlers) Connections(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	req, apiErr := decodeLibreRequest(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	connections, err := h.service.LibreConnections(r.Context(), req.credentials())
	if err != nil {
		respondWithError(w, serviceError(err, requestID))
		return
	}

	views := make([]libreConnectionView, 0, len(connections))
	for _, conn := range connections {
		views = append(views, libreConnectionView{
			PatientID:      conn.PatientID,
			FirstName:      conn.FirstName,
			LastName:       conn.LastName,
			TargetLow:      conn.TargetLow,
			TargetHigh:     conn.TargetHigh,
			CurrentGlucose: conn.Reading.Value,
			Trend:          string(conn.Reading.Trend),
			Time:           conn.Reading.Timestamp.Format(time.RFC3339),
			IsHigh:         conn.Reading.IsHigh,
			IsLow:          conn.Reading.IsLow,
		})
	}

	respondWithJSON(w, http.StatusOK, libreConnectionsResponse{
		Success:     true,
		Connections: views,
		Count:       len(views),
	})
}

// decodeLibreRequest parses and validates the request body. Validation runs
// before any vendor call.
func decodeLibreRequest(r *http.Request) (*libreRequest, *errors.APIError) {
	var req libreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.NewValidationError("invalid request body", err)
	}
	if req.Email == "" || req.Password == "" {
		return nil, errors.NewValidationError("email and password are required", nil)
	}
	return &req, nil
}
