// FilePath: internal/glucoservice/glucoservice.go
package glucoservice

import (
	"context"

	apierrors "github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
	"github.com/itsatony/glucohub/internal/vendors"
	"github.com/itsatony/glucohub/internal/vendors/librelinkup"
)

// ConnectionPolicyFirst selects the first patient connection a login exposes.
// This is the only implemented policy; multi-patient support is future scope.
const ConnectionPolicyFirst = "first"

// LibreSession is an authenticated LibreLinkUp session
type LibreSession interface {
	Connections(ctx context.Context) ([]models.PatientConnection, error)
	Graph(ctx context.Context, patientID string) (*models.LibreGraph, error)
}

// LibreClient opens LibreLinkUp sessions. Implemented by the librelinkup
// vendor client; replaced by stubs in tests.
type LibreClient interface {
	Login(ctx context.Context, creds models.Credentials) (LibreSession, error)
}

// GlucoseService contains the vendor adapters and the backup store
type GlucoseService struct {
	Vendor           vendors.Adapter
	Libre            LibreClient
	Measurements     repository.MeasurementRepository
	ConnectionPolicy string
}

// New creates a new GlucoseService instance
func New(vendor vendors.Adapter, libre LibreClient, measurements repository.MeasurementRepository, connectionPolicy string) *GlucoseService {
	if connectionPolicy == "" {
		connectionPolicy = ConnectionPolicyFirst
	}
	return &GlucoseService{
		Vendor:           vendor,
		Libre:            libre,
		Measurements:     measurements,
		ConnectionPolicy: connectionPolicy,
	}
}

// Validate checks if all required collaborators are initialized
func (s *GlucoseService) Validate() error {
	if s.Vendor == nil {
		return ErrMissingCollaborator("vendor")
	}
	if s.Libre == nil {
		return ErrMissingCollaborator("libre")
	}
	if s.Measurements == nil {
		return ErrMissingCollaborator("measurements")
	}
	return nil
}

func ErrMissingCollaborator(name string) error {
	return apierrors.NewInternalError("missing collaborator: "+name, nil)
}

// WrapLibreClient adapts the concrete vendor client to the LibreClient
// interface used here and in tests.
func WrapLibreClient(c *librelinkup.Client) LibreClient {
	return libreClientWrapper{c: c}
}

type libreClientWrapper struct {
	c *librelinkup.Client
}

func (w libreClientWrapper) Login(ctx context.Context, creds models.Credentials) (LibreSession, error) {
	sess, err := w.c.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
