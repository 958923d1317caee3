// Package progress computes completion statistics for a set of visited
// stations against the routes of a topology.
package progress

import (
	"fmt"

	"github.com/jusunglee/mtr-progress/internal/models"
)

// Percentage returns visited/total as a percentage. Callers guarantee
// total > 0; linked routes are never empty.
func Percentage(visited, total int) float64 {
	return float64(visited) / float64(total) * 100
}

// RouteProgress counts how many of a route's stations have been visited
func RouteProgress(route string, stations, visited models.StationSet) models.Progress {
	v := visited.IntersectCount(stations)
	t := stations.Len()
	return models.Progress{
		Route:      route,
		Visited:    v,
		Total:      t,
		Percentage: Percentage(v, t),
	}
}

// OverallProgress compares every visited name with the total station count.
// Visited names are not checked against the topology, so names left over
// from an older dataset still count.
func OverallProgress(visited models.StationSet, total int) models.Progress {
	p := models.Progress{Visited: visited.Len(), Total: total}
	if total > 0 {
		p.Percentage = Percentage(p.Visited, total)
	}
	return p
}

// AllRoutes reports progress for each route in order. Names missing from
// routes are skipped.
func AllRoutes(order []string, routes map[string]models.StationSet, visited models.StationSet) []models.Progress {
	out := make([]models.Progress, 0, len(order))
	for _, name := range order {
		stations, ok := routes[name]
		if !ok {
			continue
		}
		out = append(out, RouteProgress(name, stations, visited))
	}
	return out
}

// CompletedRoutes lists, in order, the routes whose stations have all been visited
func CompletedRoutes(order []string, routes map[string]models.StationSet, visited models.StationSet) []string {
	completed := []string{}
	for _, p := range AllRoutes(order, routes, visited) {
		if p.Complete() {
			completed = append(completed, p.Route)
		}
	}
	return completed
}

// Format renders a progress line the way the CLI prints it
func Format(p models.Progress) string {
	return fmt.Sprintf("%d out of %d stations visited (%.2f%%)", p.Visited, p.Total, p.Percentage)
}
