// FilePath: api/resources/resources_fakes_test.go
package resources

import (
	"context"

	"github.com/itsatony/glucohub/internal/glucoservice"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
)

// stubVendor is a scripted vendors.Adapter; call counters verify that
// validation failures never reach the vendor.
type stubVendor struct {
	reading *models.GlucoseReading
	err     error
	calls   int
}

func (v *stubVendor) Name() string { return "dexcom" }

func (v *stubVendor) CurrentReading(ctx context.Context, creds models.Credentials) (*models.GlucoseReading, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	cp := *v.reading
	return &cp, nil
}

func (v *stubVendor) ReadingsInWindow(ctx context.Context, creds models.Credentials, minutes int) ([]models.GlucoseReading, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return nil, nil
}

type stubLibre struct {
	session  glucoservice.LibreSession
	loginErr error
	calls    int
}

func (l *stubLibre) Login(ctx context.Context, creds models.Credentials) (glucoservice.LibreSession, error) {
	l.calls++
	if l.loginErr != nil {
		return nil, l.loginErr
	}
	return l.session, nil
}

type stubLibreSession struct {
	connections []models.PatientConnection
	graph       *models.LibreGraph
}

func (s *stubLibreSession) Connections(ctx context.Context) ([]models.PatientConnection, error) {
	return s.connections, nil
}

func (s *stubLibreSession) Graph(ctx context.Context, patientID string) (*models.LibreGraph, error) {
	return s.graph, nil
}

type stubStore struct {
	latest *models.MeasurementRecord
}

func (s *stubStore) Save(ctx context.Context, accountID, docID string, rec *models.MeasurementRecord) error {
	return nil
}

func (s *stubStore) Latest(ctx context.Context, accountID string) (*models.MeasurementRecord, error) {
	if s.latest == nil {
		return nil, repository.ErrNotFound
	}
	return s.latest, nil
}

func (s *stubStore) Close() error { return nil }

func stubService(vendor *stubVendor, libre *stubLibre) *glucoservice.GlucoseService {
	if libre == nil {
		libre = &stubLibre{session: &stubLibreSession{}}
	}
	return glucoservice.New(vendor, libre, &stubStore{}, glucoservice.ConnectionPolicyFirst)
}
