// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/glucoservice"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Glucose     *GlucoseHandlers
	Libre       *LibreHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *glucoservice.GlucoseService) *Resources {
	return &Resources{
		Glucose: &GlucoseHandlers{service: svc},
		Libre:   &LibreHandlers{service: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// Helper functions

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// serviceError converts any service error into an APIError for the envelope
func serviceError(err error, requestID string) *errors.APIError {
	if apiErr, ok := err.(*errors.APIError); ok {
		return apiErr.WithRequestID(requestID)
	}
	return errors.NewInternalError("unexpected error", err).WithRequestID(requestID)
}
