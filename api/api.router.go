package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/glucohub/api/middleware"
	"github.com/itsatony/glucohub/api/resources"
	"github.com/itsatony/glucohub/internal/glucoservice"
	nuts "github.com/vaudience/go-nuts"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(svc *glucoservice.GlucoseService) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc),
	}

	r.resources.SetHealthCheck(handleHealth)
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	v1 := r.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Service A (Dexcom)
	glucose := v1.PathPrefix("/glucose").Subrouter()
	glucose.HandleFunc("/current", r.resources.Glucose.CurrentReading).Methods(http.MethodPost)
	glucose.HandleFunc("/latest", r.resources.Glucose.LatestReading).Methods(http.MethodPost)

	// Service B (LibreLinkUp)
	libre := v1.PathPrefix("/librelinkup").Subrouter()
	libre.HandleFunc("/current", r.resources.Libre.CurrentReading).Methods(http.MethodPost)
	libre.HandleFunc("/graph", r.resources.Libre.Graph).Methods(http.MethodPost)
	libre.HandleFunc("/connections", r.resources.Libre.Connections).Methods(http.MethodPost)
}

// ServeHTTP applies CORS first so OPTIONS preflights short-circuit before
// route matching.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	middleware.CORS(r.router).ServeHTTP(w, req)
}

// handleHealth is a simple liveness probe
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}
