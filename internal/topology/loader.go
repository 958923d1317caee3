package topology

import "github.com/jusunglee/mtr-progress/internal/models"

// identityStations returns the first segment's station table, the only one
// consulted for station identity.
func identityStations(raw *models.RawTopology) []models.StationDescriptor {
	if raw == nil || len(raw.Segments) == 0 {
		return nil
	}
	return raw.Segments[0].Stations
}

// StationPosMap maps each x coordinate to a z coordinate. It is keyed on x
// alone, so stations sharing an x with a different z collapse to the last
// one scanned. TotalStations and StationIDNameMap inherit that collapse.
func StationPosMap(raw *models.RawTopology) map[int]int {
	pos := make(map[int]int)
	for _, st := range identityStations(raw) {
		pos[st.X] = st.Z
	}
	return pos
}

// StationIdentity maps every surviving (x, z) position to the name of the
// last station scanned at that position.
func StationIdentity(raw *models.RawTopology) map[models.Coordinate]string {
	identity := make(map[models.Coordinate]string)
	for x, z := range StationPosMap(raw) {
		c := models.Coordinate{X: x, Z: z}
		for _, st := range identityStations(raw) {
			if st.Coordinate() == c {
				identity[c] = st.Name
			}
		}
	}
	return identity
}

// StationIDNameMap resolves raw station ids to their station names. Every id
// at a surviving position keeps its own name, so platforms published under a
// different label link under that label. Ids whose position was dropped by
// StationPosMap have no entry.
func StationIDNameMap(raw *models.RawTopology) map[string]string {
	names := make(map[string]string)
	for x, z := range StationPosMap(raw) {
		c := models.Coordinate{X: x, Z: z}
		for _, st := range identityStations(raw) {
			if st.Coordinate() == c {
				names[st.ID] = st.Name
			}
		}
	}
	return names
}

// TotalStations counts physically distinct stations
func TotalStations(raw *models.RawTopology) int {
	return len(StationPosMap(raw))
}

// StationNames lists the first segment's station names in source order.
// Transfer stations appear once per id.
func StationNames(raw *models.RawTopology) []string {
	stations := identityStations(raw)
	names := make([]string, 0, len(stations))
	for _, st := range stations {
		names = append(names, st.Name)
	}
	return names
}

// ShadowedStations returns the stations left out of StationIDNameMap because
// another station with the same x but a different z was scanned after them.
func ShadowedStations(raw *models.RawTopology) []models.StationDescriptor {
	pos := StationPosMap(raw)
	var shadowed []models.StationDescriptor
	for _, st := range identityStations(raw) {
		if pos[st.X] != st.Z {
			shadowed = append(shadowed, st)
		}
	}
	return shadowed
}
