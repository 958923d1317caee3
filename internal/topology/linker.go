package topology

import (
	"strings"

	"github.com/jusunglee/mtr-progress/internal/models"
)

// stationRefID strips the platform suffix from a route's station reference
func stationRefID(ref string) string {
	id, _, _ := strings.Cut(ref, "_")
	return id
}

// LinkRoutes groups station names by canonical route name across all
// segments. Routes that resolve no stations are dropped. The returned order
// lists the kept routes by first appearance.
func LinkRoutes(raw *models.RawTopology, idNames map[string]string) ([]string, map[string]models.StationSet) {
	var order []string
	buckets := make(map[string]models.StationSet)
	if raw == nil {
		return order, buckets
	}

	for _, seg := range raw.Segments {
		for _, route := range seg.Routes {
			name := ResolveRouteName(route.Name)
			set, ok := buckets[name]
			if !ok {
				set = make(models.StationSet)
				buckets[name] = set
				order = append(order, name)
			}

			for _, ref := range route.Stations {
				if station, ok := idNames[stationRefID(ref)]; ok {
					set.Add(station)
				}
			}
		}
	}

	kept := order[:0]
	for _, name := range order {
		if buckets[name].Len() == 0 {
			delete(buckets, name)
			continue
		}
		kept = append(kept, name)
	}

	return kept, buckets
}

// RouteStations maps each canonical route name to its set of station names
func RouteStations(raw *models.RawTopology) map[string]models.StationSet {
	_, routes := LinkRoutes(raw, StationIDNameMap(raw))
	return routes
}
