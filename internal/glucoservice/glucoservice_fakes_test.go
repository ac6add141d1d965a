// FilePath: internal/glucoservice/glucoservice_fakes_test.go
package glucoservice

import (
	"context"

	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
)

// fakeVendor is a scripted vendors.Adapter. Call counters let tests assert
// which tiers were consulted.
type fakeVendor struct {
	name         string
	current      *models.GlucoseReading
	currentErr   error
	window       []models.GlucoseReading
	windowErr    error
	currentCalls int
	windowCalls  int
}

func (f *fakeVendor) Name() string {
	if f.name == "" {
		return "dexcom"
	}
	return f.name
}

func (f *fakeVendor) CurrentReading(ctx context.Context, creds models.Credentials) (*models.GlucoseReading, error) {
	f.currentCalls++
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	cp := *f.current
	return &cp, nil
}

func (f *fakeVendor) ReadingsInWindow(ctx context.Context, creds models.Credentials, minutes int) ([]models.GlucoseReading, error) {
	f.windowCalls++
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	return f.window, nil
}

// fakeStore is an in-memory repository.MeasurementRepository.
type fakeStore struct {
	latest      *models.MeasurementRecord
	latestErr   error
	saved       map[string]models.MeasurementRecord
	latestCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]models.MeasurementRecord)}
}

func (f *fakeStore) Save(ctx context.Context, accountID, docID string, rec *models.MeasurementRecord) error {
	f.saved[accountID+"/"+docID] = *rec
	return nil
}

func (f *fakeStore) Latest(ctx context.Context, accountID string) (*models.MeasurementRecord, error) {
	f.latestCalls++
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *f.latest
	return &cp, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeLibreClient scripts login results; fakeLibreSession the per-session
// calls behind it.
type fakeLibreClient struct {
	session    *fakeLibreSession
	loginErr   error
	loginCalls int
}

func (f *fakeLibreClient) Login(ctx context.Context, creds models.Credentials) (LibreSession, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session, nil
}

type fakeLibreSession struct {
	connections    []models.PatientConnection
	connectionsErr error
	graph          *models.LibreGraph
	graphErr       error
	graphPatientID string
}

func (f *fakeLibreSession) Connections(ctx context.Context) ([]models.PatientConnection, error) {
	if f.connectionsErr != nil {
		return nil, f.connectionsErr
	}
	return f.connections, nil
}

func (f *fakeLibreSession) Graph(ctx context.Context, patientID string) (*models.LibreGraph, error) {
	f.graphPatientID = patientID
	if f.graphErr != nil {
		return nil, f.graphErr
	}
	return f.graph, nil
}
