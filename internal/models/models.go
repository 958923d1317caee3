package models

import (
	"sort"
	"time"
)

// Coordinate is a station's position on the map grid
type Coordinate struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// StationDescriptor is one entry of a segment's station table
type StationDescriptor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Z    int    `json:"z"`
}

// Coordinate returns the station's (x, z) position
func (s StationDescriptor) Coordinate() Coordinate {
	return Coordinate{X: s.X, Z: s.Z}
}

// RouteDescriptor is a route as published in the map data.
// Name may be a single name or "localName|englishName".
// Each station reference is "<id>_<suffix>" or a bare id.
type RouteDescriptor struct {
	Name     string   `json:"name"`
	Stations []string `json:"stations"`
}

// Segment groups a station table with the routes published alongside it.
// Stations keeps the order the ids appear in the source document.
type Segment struct {
	Stations []StationDescriptor `json:"stations"`
	Routes   []RouteDescriptor   `json:"routes"`
}

// RawTopology is the decoded map dataset
type RawTopology struct {
	Segments []Segment `json:"segments"`
}

// StationSet is an unordered set of station names
type StationSet map[string]struct{}

// NewStationSet creates a set holding the given names
func NewStationSet(names ...string) StationSet {
	s := make(StationSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Add inserts name and reports whether it was not already present
func (s StationSet) Add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}

// Has reports whether name is in the set
func (s StationSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set
func (s StationSet) Len() int {
	return len(s)
}

// IntersectCount counts the names present in both sets
func (s StationSet) IntersectCount(other StationSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	n := 0
	for name := range small {
		if large.Has(name) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the set
func (s StationSet) Clone() StationSet {
	c := make(StationSet, len(s))
	for name := range s {
		c[name] = struct{}{}
	}
	return c
}

// Sorted returns the names in lexical order
func (s StationSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Progress is the completion state of a route or of the whole network
type Progress struct {
	Route      string  `json:"route,omitempty"`
	Visited    int     `json:"visited"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Complete reports whether every station has been visited
func (p Progress) Complete() bool {
	return p.Visited == p.Total
}

// RouteResponse is the API response format for a single route
type RouteResponse struct {
	Route      string   `json:"route"`
	Stations   []string `json:"stations"`
	Visited    []string `json:"visited"`
	Progress   Progress `json:"progress"`
	LastUpdate string   `json:"last_update,omitempty"`
}

// ProgressReport is the API response format for the full progress listing
type ProgressReport struct {
	Overall    Progress   `json:"overall"`
	Routes     []Progress `json:"routes"`
	Completed  []string   `json:"completed"`
	LastUpdate time.Time  `json:"last_update"`
}

// ConvertToResponse builds the API view of a route's stations against a visited set
func ConvertToResponse(p Progress, stations, visited StationSet) RouteResponse {
	seen := make([]string, 0, p.Visited)
	for _, name := range stations.Sorted() {
		if visited.Has(name) {
			seen = append(seen, name)
		}
	}

	return RouteResponse{
		Route:    p.Route,
		Stations: stations.Sorted(),
		Visited:  seen,
		Progress: p,
	}
}
