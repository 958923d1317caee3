// Package topology derives stations and routes from the system map dataset.
//
// The dataset is a list of segments. The first segment's station table
// defines station identity: ids placed at the same (x, z) position are one
// physical station. Routes from every segment are grouped by a canonical
// name resolved from their bilingual labels and linked to station names.
package topology

import "github.com/jusunglee/mtr-progress/internal/models"

// Topology is the immutable result of deriving a RawTopology.
type Topology struct {
	routeNames    []string
	stationNames  []string
	linkedOrder   []string
	routeStations map[string]models.StationSet
	total         int
	shadowed      []models.StationDescriptor
}

// Build derives every view of raw in one pass. A nil or empty topology
// yields empty views.
func Build(raw *models.RawTopology) *Topology {
	idNames := StationIDNameMap(raw)
	order, routes := LinkRoutes(raw, idNames)

	return &Topology{
		routeNames:    RouteNames(raw),
		stationNames:  StationNames(raw),
		linkedOrder:   order,
		routeStations: routes,
		total:         TotalStations(raw),
		shadowed:      ShadowedStations(raw),
	}
}

// RouteNames returns one resolved name per route descriptor in source order
func (t *Topology) RouteNames() []string {
	return append([]string(nil), t.routeNames...)
}

// LinkedRoutes returns the routes that have stations, by first appearance
func (t *Topology) LinkedRoutes() []string {
	return append([]string(nil), t.linkedOrder...)
}

// StationNames returns station names in source order
func (t *Topology) StationNames() []string {
	return append([]string(nil), t.stationNames...)
}

// RouteStations returns a copy of the route to station-set mapping
func (t *Topology) RouteStations() map[string]models.StationSet {
	out := make(map[string]models.StationSet, len(t.routeStations))
	for name, set := range t.routeStations {
		out[name] = set.Clone()
	}
	return out
}

// Stations returns the station set of a single route
func (t *Topology) Stations(route string) (models.StationSet, bool) {
	set, ok := t.routeStations[route]
	if !ok {
		return nil, false
	}
	return set.Clone(), true
}

// HasStation reports whether name belongs to any station of the first segment
func (t *Topology) HasStation(name string) bool {
	for _, n := range t.stationNames {
		if n == name {
			return true
		}
	}
	return false
}

// TotalStationCount counts physically distinct stations
func (t *Topology) TotalStationCount() int {
	return t.total
}

// Shadowed lists stations dropped from identity because of an x collision
func (t *Topology) Shadowed() []models.StationDescriptor {
	return append([]models.StationDescriptor(nil), t.shadowed...)
}
