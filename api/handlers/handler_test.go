package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/mtr-progress/internal/models"
	"github.com/jusunglee/mtr-progress/internal/store"
)

// MockClient implements mtr.Client on top of a real store
type MockClient struct {
	store      *store.Store
	refreshErr error
	refreshes  int
}

func newMockClient() *MockClient {
	s := store.NewStore()
	s.UpdateTopology(&models.RawTopology{Segments: []models.Segment{{
		Stations: []models.StationDescriptor{
			{ID: "1", Name: "Central", X: 0, Z: 0},
			{ID: "2", Name: "Admiralty", X: 10, Z: 0},
			{ID: "3", Name: "Sheung Wan", X: -10, Z: 0},
		},
		Routes: []models.RouteDescriptor{
			{Name: "港島綫|Island Line", Stations: []string{"3_a", "1_a", "2_a"}},
			{Name: "Shuttle", Stations: []string{"1_b", "2_b"}},
		},
	}}})
	return &MockClient{store: s}
}

func (m *MockClient) GetRouteNames() ([]string, error)  { return m.store.RouteNames() }
func (m *MockClient) GetLinkedRoutes() ([]string, error) { return m.store.LinkedRoutes() }
func (m *MockClient) GetStationNames() ([]string, error) { return m.store.StationNames() }
func (m *MockClient) GetRouteStations() (map[string]models.StationSet, error) {
	return m.store.RouteStations()
}
func (m *MockClient) GetTotalStationCount() (int, error) { return m.store.TotalStationCount() }
func (m *MockClient) SearchStations(query string) ([]string, error) {
	return m.store.SearchStations(query)
}
func (m *MockClient) MarkVisited(ctx context.Context, station string) (models.Progress, error) {
	if _, err := m.store.MarkVisited(station); err != nil {
		return models.Progress{}, err
	}
	return m.store.OverallProgress()
}
func (m *MockClient) GetVisited() []string { return m.store.Visited() }
func (m *MockClient) GetRoute(route string) (models.RouteResponse, error) {
	return m.store.Route(route)
}
func (m *MockClient) GetRouteProgress(route string) (models.Progress, error) {
	return m.store.RouteProgress(route)
}
func (m *MockClient) GetOverallProgress() (models.Progress, error) {
	return m.store.OverallProgress()
}
func (m *MockClient) GetAllRouteProgress() ([]models.Progress, error) {
	return m.store.AllRouteProgress()
}
func (m *MockClient) GetCompletedRoutes() ([]string, error) { return m.store.CompletedRoutes() }
func (m *MockClient) GetProgressReport() (models.ProgressReport, error) {
	return m.store.Report()
}
func (m *MockClient) Refresh(ctx context.Context) error {
	m.refreshes++
	return m.refreshErr
}
func (m *MockClient) GetLastUpdate() time.Time { return m.store.GetLastUpdate() }

func newRouter(client *MockClient) *mux.Router {
	r := mux.NewRouter()
	NewHandler(client).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestIndex(t *testing.T) {
	rec := do(t, newRouter(newMockClient()), "GET", "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "mtr-progress", body["title"])
}

func TestRoutes(t *testing.T) {
	rec := do(t, newRouter(newMockClient()), "GET", "/routes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data    []string `json:"data"`
		Updated string   `json:"updated"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []string{"Island Line", "Shuttle"}, body.Data)
	assert.NotEmpty(t, body.Updated)
}

func TestRoute(t *testing.T) {
	client := newMockClient()
	_, err := client.MarkVisited(context.Background(), "Central")
	require.NoError(t, err)

	rec := do(t, newRouter(client), "GET", "/routes/"+url.PathEscape("Island Line"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.RouteResponse
	decode(t, rec, &body)
	assert.Equal(t, "Island Line", body.Route)
	assert.Equal(t, []string{"Admiralty", "Central", "Sheung Wan"}, body.Stations)
	assert.Equal(t, []string{"Central"}, body.Visited)
	assert.Equal(t, 1, body.Progress.Visited)
	assert.Equal(t, 3, body.Progress.Total)
}

func TestRouteNotFound(t *testing.T) {
	rec := do(t, newRouter(newMockClient()), "GET", "/routes/Tung%20Chung%20Line")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Contains(t, body.Error, "route not found")
}

func TestProgress(t *testing.T) {
	client := newMockClient()
	r := newRouter(client)

	for _, station := range []string{"Central", "Admiralty"} {
		rec := do(t, r, "POST", "/visited/"+station)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, r, "GET", "/progress")
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.ProgressReport
	decode(t, rec, &report)
	assert.Equal(t, 2, report.Overall.Visited)
	assert.Equal(t, 3, report.Overall.Total)
	require.Len(t, report.Routes, 2)
	assert.Equal(t, "Island Line", report.Routes[0].Route)
	assert.Equal(t, []string{"Shuttle"}, report.Completed)
}

func TestStations(t *testing.T) {
	r := newRouter(newMockClient())

	tests := []struct {
		query    string
		expected []string
	}{
		{"", []string{"Central", "Admiralty", "Sheung Wan"}},
		{"wan", []string{"Sheung Wan"}},
		{"kowloon", []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%s", tt.query), func(t *testing.T) {
			rec := do(t, r, "GET", "/stations?q="+url.QueryEscape(tt.query))
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Data []string `json:"data"`
			}
			decode(t, rec, &body)
			assert.Equal(t, tt.expected, body.Data)
		})
	}
}

func TestMarkVisited(t *testing.T) {
	client := newMockClient()
	r := newRouter(client)

	rec := do(t, r, "POST", "/visited/"+url.PathEscape("Sheung Wan"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.Progress `json:"data"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Data.Visited)

	rec = do(t, r, "POST", "/visited/Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, "GET", "/visited")
	require.Equal(t, http.StatusOK, rec.Code)
	var visited struct {
		Data []string `json:"data"`
	}
	decode(t, rec, &visited)
	assert.Equal(t, []string{"Sheung Wan"}, visited.Data)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newRouter(newMockClient()), "GET", "/visited/Central")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRefresh(t *testing.T) {
	client := newMockClient()
	r := newRouter(client)

	rec := do(t, r, "POST", "/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, client.refreshes)

	client.refreshErr = errors.New("HTTP 503 from upstream")
	rec = do(t, r, "POST", "/refresh")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNoTopology(t *testing.T) {
	client := &MockClient{store: store.NewStore()}
	rec := do(t, newRouter(client), "GET", "/progress")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNamesContainingSlash(t *testing.T) {
	s := store.NewStore()
	s.UpdateTopology(&models.RawTopology{Segments: []models.Segment{{
		Stations: []models.StationDescriptor{
			{ID: "1", Name: "Hung Hom/East", X: 0, Z: 0},
			{ID: "2", Name: "Tai Wai", X: 5, Z: 5},
		},
		Routes: []models.RouteDescriptor{
			{Name: "East Rail/Tuen Ma", Stations: []string{"1_a", "2_a"}},
		},
	}}})
	r := newRouter(&MockClient{store: s})

	rec := do(t, r, "POST", "/visited/"+url.PathEscape("Hung Hom/East"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, "GET", "/routes/"+url.PathEscape("East Rail/Tuen Ma"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.RouteResponse
	decode(t, rec, &body)
	assert.Equal(t, "East Rail/Tuen Ma", body.Route)
	assert.Equal(t, []string{"Hung Hom/East"}, body.Visited)

	rec = do(t, r, "GET", "/routes/East/Rail")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
