package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jusunglee/mtr-progress/internal/models"
	"github.com/jusunglee/mtr-progress/internal/progress"
	"github.com/jusunglee/mtr-progress/internal/topology"
)

var (
	ErrNoTopology      = errors.New("topology not loaded")
	ErrRouteNotFound   = errors.New("route not found")
	ErrStationNotFound = errors.New("station not found")
)

// Store manages the current topology and the visited station set
type Store struct {
	mu         sync.RWMutex
	topo       *topology.Topology
	visited    models.StationSet
	lastUpdate time.Time
}

// NewStore creates a new store instance
func NewStore() *Store {
	return &Store{
		visited: make(models.StationSet),
	}
}

// UpdateTopology derives a fresh topology from raw and replaces the current one
func (s *Store) UpdateTopology(raw *models.RawTopology) *topology.Topology {
	topo := topology.Build(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.topo = topo
	s.lastUpdate = time.Now()
	return topo
}

// SetVisited replaces the visited set, e.g. after loading saved state
func (s *Store) SetVisited(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visited = models.NewStationSet(names...)
}

// MarkVisited records a station as visited. It reports whether the name was
// new to the set.
func (s *Store) MarkVisited(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.topo == nil {
		return false, ErrNoTopology
	}
	if !s.topo.HasStation(name) {
		return false, fmt.Errorf("%w: %s", ErrStationNotFound, name)
	}
	return s.visited.Add(name), nil
}

// Visited returns the visited names in lexical order
func (s *Store) Visited() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visited.Sorted()
}

// RouteNames returns one resolved name per route descriptor in source order
func (s *Store) RouteNames() ([]string, error) {
	topo, err := s.current()
	if err != nil {
		return nil, err
	}
	return topo.RouteNames(), nil
}

// LinkedRoutes returns the routes that have stations
func (s *Store) LinkedRoutes() ([]string, error) {
	topo, err := s.current()
	if err != nil {
		return nil, err
	}
	return topo.LinkedRoutes(), nil
}

// StationNames returns station names in source order
func (s *Store) StationNames() ([]string, error) {
	topo, err := s.current()
	if err != nil {
		return nil, err
	}
	return topo.StationNames(), nil
}

// RouteStations returns the route to station-set mapping
func (s *Store) RouteStations() (map[string]models.StationSet, error) {
	topo, err := s.current()
	if err != nil {
		return nil, err
	}
	return topo.RouteStations(), nil
}

// TotalStationCount counts physically distinct stations
func (s *Store) TotalStationCount() (int, error) {
	topo, err := s.current()
	if err != nil {
		return 0, err
	}
	return topo.TotalStationCount(), nil
}

// SearchStations returns station names containing query, ignoring case.
// Results keep source order and list each name once.
func (s *Store) SearchStations(query string) ([]string, error) {
	names, err := s.StationNames()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	seen := make(models.StationSet)
	var result []string
	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		if seen.Add(name) {
			result = append(result, name)
		}
	}
	return result, nil
}

// RouteProgress returns the progress of a single route
func (s *Store) RouteProgress(route string) (models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.topo == nil {
		return models.Progress{}, ErrNoTopology
	}
	stations, ok := s.topo.Stations(route)
	if !ok {
		return models.Progress{}, fmt.Errorf("%w: %s", ErrRouteNotFound, route)
	}
	return progress.RouteProgress(route, stations, s.visited), nil
}

// Route returns the API view of a single route
func (s *Store) Route(route string) (models.RouteResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.topo == nil {
		return models.RouteResponse{}, ErrNoTopology
	}
	stations, ok := s.topo.Stations(route)
	if !ok {
		return models.RouteResponse{}, fmt.Errorf("%w: %s", ErrRouteNotFound, route)
	}
	p := progress.RouteProgress(route, stations, s.visited)
	return models.ConvertToResponse(p, stations, s.visited), nil
}

// OverallProgress compares the visited set with the total station count
func (s *Store) OverallProgress() (models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.topo == nil {
		return models.Progress{}, ErrNoTopology
	}
	return progress.OverallProgress(s.visited, s.topo.TotalStationCount()), nil
}

// AllRouteProgress returns the progress of every linked route
func (s *Store) AllRouteProgress() ([]models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.topo == nil {
		return nil, ErrNoTopology
	}
	return progress.AllRoutes(s.topo.LinkedRoutes(), s.topo.RouteStations(), s.visited), nil
}

// CompletedRoutes lists the routes whose stations have all been visited
func (s *Store) CompletedRoutes() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.topo == nil {
		return nil, ErrNoTopology
	}
	return progress.CompletedRoutes(s.topo.LinkedRoutes(), s.topo.RouteStations(), s.visited), nil
}

// Report bundles overall, per-route and completed progress
func (s *Store) Report() (models.ProgressReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.topo == nil {
		return models.ProgressReport{}, ErrNoTopology
	}
	order, routes := s.topo.LinkedRoutes(), s.topo.RouteStations()
	return models.ProgressReport{
		Overall:    progress.OverallProgress(s.visited, s.topo.TotalStationCount()),
		Routes:     progress.AllRoutes(order, routes, s.visited),
		Completed:  progress.CompletedRoutes(order, routes, s.visited),
		LastUpdate: s.lastUpdate,
	}, nil
}

// GetLastUpdate returns the last topology update time
func (s *Store) GetLastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

func (s *Store) current() (*topology.Topology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.topo == nil {
		return nil, ErrNoTopology
	}
	return s.topo, nil
}
