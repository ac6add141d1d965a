// FilePath: internal/vendors/librelinkup/librelinkup_test.go
package librelinkup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itsatony/glucohub/internal/config"
	apierrors "github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var libreCreds = models.Credentials{Username: "carer@example.com", Password: "secret"}

const libreUserID = "user-guid-1"

func libreClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client := New(config.LibreLinkUpConfig{
		BaseURL: baseURL,
		Product: "llu.android",
		Version: "4.7.0",
	}, 5*time.Second)
	return client
}

func loginOKBody() map[string]interface{} {
	return map[string]interface{}{
		"status": 0,
		"data": map[string]interface{}{
			"authTicket": map[string]interface{}{"token": "ticket-token"},
			"user":       map[string]interface{}{"id": libreUserID, "firstName": "Clara", "lastName": "Carer"},
		},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestLoginSendsProductHeaders(t *testing.T) {
	var gotProduct, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, loginPath, r.URL.Path)
		gotProduct = r.Header.Get("product")
		gotVersion = r.Header.Get("version")
		writeJSON(w, loginOKBody())
	}))
	defer srv.Close()

	sess, err := libreClient(t, srv.URL).Login(context.Background(), libreCreds)
	require.NoError(t, err)
	assert.Equal(t, "llu.android", gotProduct)
	assert.Equal(t, "4.7.0", gotVersion)
	assert.Equal(t, "ticket-token", sess.token)
}

func TestLoginFollowsRegionRedirectOnce(t *testing.T) {
	regional := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginOKBody())
	}))
	defer regional.Close()

	var primaryCalls int
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls++
		writeJSON(w, map[string]interface{}{
			"status": 0,
			"data":   map[string]interface{}{"redirect": true, "region": "eu2"},
		})
	}))
	defer primary.Close()

	client := libreClient(t, primary.URL)
	client.regionOverrides = map[string]string{"eu2": regional.URL}

	sess, err := client.Login(context.Background(), libreCreds)
	require.NoError(t, err)
	assert.Equal(t, 1, primaryCalls)
	assert.Equal(t, regional.URL, sess.baseURL, "session must stick to the redirected base URL")
}

func TestLoginSecondRedirectFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": 0,
			"data":   map[string]interface{}{"redirect": true, "region": "eu2"},
		})
	}))
	defer srv.Close()

	client := libreClient(t, srv.URL)
	client.regionOverrides = map[string]string{"eu2": srv.URL}

	_, err := client.Login(context.Background(), libreCreds)
	require.Error(t, err)
	assert.True(t, apierrors.IsAuth(err))
	assert.Contains(t, err.Error(), "redirected more than once")
}

func TestLoginFailureSurfacesVendorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": 2,
			"error":  map[string]interface{}{"message": "notAuthenticated"},
		})
	}))
	defer srv.Close()

	_, err := libreClient(t, srv.URL).Login(context.Background(), libreCreds)
	require.Error(t, err)
	assert.True(t, apierrors.IsAuth(err))
	assert.Contains(t, err.Error(), "notAuthenticated")
}

func TestConnectionsSendsHashedAccountID(t *testing.T) {
	wantSum := sha256.Sum256([]byte(libreUserID))
	wantAccountID := hex.EncodeToString(wantSum[:])

	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginOKBody())
	})
	mux.HandleFunc(connectionsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantAccountID, r.Header.Get("account-id"))
		assert.Equal(t, "Bearer ticket-token", r.Header.Get("Authorization"))
		writeJSON(w, map[string]interface{}{
			"status": 0,
			"data": []map[string]interface{}{
				{
					"patientId":  "patient-1",
					"firstName":  "Ada",
					"lastName":   "Lovelace",
					"targetLow":  70,
					"targetHigh": 180,
					"glucoseMeasurement": map[string]interface{}{
						"Timestamp":      "8/28/2026 10:15:00 AM",
						"ValueInMgPerDl": 121,
						"TrendArrow":     3,
						"isHigh":         false,
						"isLow":          false,
					},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess, err := libreClient(t, srv.URL).Login(context.Background(), libreCreds)
	require.NoError(t, err)

	conns, err := sess.Connections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "patient-1", conns[0].PatientID)
	assert.Equal(t, 121, conns[0].Reading.Value)
	assert.Equal(t, models.TrendStable, conns[0].Reading.Trend)
	assert.Equal(t, models.SourceLibreLinkUp, conns[0].Reading.Source)

	want := time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC)
	assert.True(t, conns[0].Reading.Timestamp.Equal(want))
}

func TestGraph(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginOKBody())
	})
	mux.HandleFunc(connectionsPath+"/patient-1/graph", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": 0,
			"data": map[string]interface{}{
				"connection": map[string]interface{}{
					"patientId": "patient-1",
					"firstName": "Ada",
					"lastName":  "Lovelace",
					"glucoseMeasurement": map[string]interface{}{
						"Timestamp":      "8/28/2026 10:15:00 AM",
						"ValueInMgPerDl": 121,
						"TrendArrow":     4,
					},
				},
				"graphData": []map[string]interface{}{
					{"Timestamp": "8/28/2026 9:15:00 AM", "ValueInMgPerDl": 104, "TrendArrow": 3},
					{"Timestamp": "8/28/2026 9:45:00 AM", "ValueInMgPerDl": 111, "TrendArrow": 4},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess, err := libreClient(t, srv.URL).Login(context.Background(), libreCreds)
	require.NoError(t, err)

	graph, err := sess.Graph(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, 121, graph.Current.Reading.Value)
	assert.Equal(t, models.TrendRising, graph.Current.Reading.Trend)
	assert.Equal(t, "Ada Lovelace", graph.Current.PatientName)
	require.Len(t, graph.History, 2)
	assert.Equal(t, 104, graph.History[0].Value)
}

func TestToReadingFactoryTimestampFallback(t *testing.T) {
	r, err := toReading(libreMeasurement{
		FactoryTimestamp: "8/28/2026 8:15:00 AM",
		ValueInMgPerDl:   99,
		TrendArrow:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TrendFalling, r.Trend)
	assert.False(t, r.Timestamp.IsZero())
}

func TestToReadingBothTimestampsUnparseable(t *testing.T) {
	_, err := toReading(libreMeasurement{
		Timestamp:        "garbage",
		FactoryTimestamp: "also garbage",
		ValueInMgPerDl:   99,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable measurement timestamps")
}

func TestGraphSkipsUnparseableHistoryEntries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginOKBody())
	})
	mux.HandleFunc(connectionsPath+"/patient-1/graph", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": 0,
			"data": map[string]interface{}{
				"connection": map[string]interface{}{
					"patientId": "patient-1",
					"glucoseMeasurement": map[string]interface{}{
						"Timestamp":      "8/28/2026 10:15:00 AM",
						"ValueInMgPerDl": 121,
						"TrendArrow":     3,
					},
				},
				"graphData": []map[string]interface{}{
					{"Timestamp": "8/28/2026 9:15:00 AM", "ValueInMgPerDl": 104, "TrendArrow": 3},
					{"Timestamp": "garbage", "ValueInMgPerDl": 111, "TrendArrow": 4},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess, err := libreClient(t, srv.URL).Login(context.Background(), libreCreds)
	require.NoError(t, err)

	graph, err := sess.Graph(context.Background(), "patient-1")
	require.NoError(t, err)
	require.Len(t, graph.History, 1, "entries without a parseable timestamp are dropped")
	assert.Equal(t, 104, graph.History[0].Value)
}
