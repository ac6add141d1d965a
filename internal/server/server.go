// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/itsatony/glucohub/api"
	"github.com/itsatony/glucohub/internal/config"
	"github.com/itsatony/glucohub/internal/database"
	"github.com/itsatony/glucohub/internal/glucoservice"
	"github.com/itsatony/glucohub/internal/recorder"
	"github.com/itsatony/glucohub/internal/repository"
	"github.com/itsatony/glucohub/internal/repository/postgres"
	"github.com/itsatony/glucohub/internal/repository/redisstore"
	"github.com/itsatony/glucohub/internal/vendors/dexcom"
	"github.com/itsatony/glucohub/internal/vendors/librelinkup"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config   *config.Config
	srv      *http.Server
	service  *glucoservice.GlucoseService
	recorder *recorder.Recorder
	store    repository.MeasurementRepository
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start initializes all collaborators, begins listening for requests and
// blocks until shutdown
func (s *Server) Start() error {
	if err := s.initialize(); err != nil {
		return err
	}

	// Middleware chain: panic recovery outermost, then access logging; CORS
	// is applied inside the router.
	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CombinedLoggingHandler(os.Stdout, api.NewRouter(s.service)),
	)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	// Recorder runs for the whole server lifetime; cancelled on shutdown.
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	if s.recorder != nil {
		go s.recorder.Run(recorderCtx)
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown(stopRecorder)
}

// initialize builds the vendor clients, the measurement store and the
// service. Runs exactly once per process, before any handler executes.
func (s *Server) initialize() error {
	timeout := s.config.Vendors.Timeout

	dexcomClient := dexcom.New(s.config.Dexcom, timeout)
	libreClient := librelinkup.New(s.config.LibreLinkUp, timeout)

	store, err := initMeasurementStore(s.config.Store)
	if err != nil {
		return err
	}
	s.store = store

	s.service = glucoservice.New(
		dexcomClient,
		glucoservice.WrapLibreClient(libreClient),
		store,
		s.config.LibreLinkUp.ConnectionPolicy,
	)
	if err := s.service.Validate(); err != nil {
		return err
	}

	if s.config.Recorder.Enabled {
		s.recorder = recorder.New(dexcomClient, store, s.config.Recorder)
	} else {
		nuts.L.Infof("[Server] History recorder disabled")
	}
	return nil
}

// initMeasurementStore selects the backup-store backend by config
func initMeasurementStore(cfg config.StoreConfig) (repository.MeasurementRepository, error) {
	switch cfg.Driver {
	case "redis":
		return redisstore.NewMeasurementRepository(cfg.Redis)
	case "postgres":
		db, err := database.NewPostgresDB(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return postgres.NewMeasurementRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown(stopRecorder context.CancelFunc) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")
	stopRecorder()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if err := s.store.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing measurement store: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}
