// FilePath: internal/glucoservice/glucoservice.libre.go
package glucoservice

import (
	"context"

	apierrors "github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
)

// LibreCurrentReading logs in, lists connections and returns the selected
// patient's embedded glucose snapshot.
func (s *GlucoseService) LibreCurrentReading(ctx context.Context, creds models.Credentials) (*models.LibreSnapshot, error) {
	conn, _, err := s.selectedConnection(ctx, creds)
	if err != nil {
		return nil, err
	}
	if conn.Reading.Value == 0 {
		return nil, apierrors.NewNotFoundError("no glucose measurement available for patient", nil)
	}
	return &models.LibreSnapshot{
		Reading:     conn.Reading,
		TrendArrow:  conn.TrendArrow,
		PatientName: connectionName(conn),
	}, nil
}

// LibreGraph logs in, selects a connection and fetches its graph data.
func (s *GlucoseService) LibreGraph(ctx context.Context, creds models.Credentials) (*models.LibreGraph, error) {
	conn, sess, err := s.selectedConnection(ctx, creds)
	if err != nil {
		return nil, err
	}
	graph, err := sess.Graph(ctx, conn.PatientID)
	if err != nil {
		return nil, err
	}
	if graph.Current.Reading.Value == 0 {
		return nil, apierrors.NewNotFoundError("no glucose measurement available for patient", nil)
	}
	return graph, nil
}

// LibreConnections logs in and lists all patient connections. An empty list
// means no caregiver sharing is configured; that maps to a not-found error at
// this level because the endpoints have nothing to act on.
func (s *GlucoseService) LibreConnections(ctx context.Context, creds models.Credentials) ([]models.PatientConnection, error) {
	sess, err := s.Libre.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return sess.Connections(ctx)
}

// selectedConnection applies the configured connection policy. Only "first"
// exists today.
func (s *GlucoseService) selectedConnection(ctx context.Context, creds models.Credentials) (*models.PatientConnection, LibreSession, error) {
	sess, err := s.Libre.Login(ctx, creds)
	if err != nil {
		return nil, nil, err
	}

	connections, err := sess.Connections(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(connections) == 0 {
		return nil, nil, apierrors.NewNotFoundError("no patient connections configured for this account", nil)
	}

	// ConnectionPolicyFirst is validated at config load; anything else would
	// have been rejected there.
	return &connections[0], sess, nil
}

func connectionName(conn *models.PatientConnection) string {
	switch {
	case conn.FirstName == "" && conn.LastName == "":
		return ""
	case conn.LastName == "":
		return conn.FirstName
	case conn.FirstName == "":
		return conn.LastName
	default:
		return conn.FirstName + " " + conn.LastName
	}
}
