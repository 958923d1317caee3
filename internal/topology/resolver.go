package topology

import (
	"strings"

	"github.com/jusunglee/mtr-progress/internal/models"
)

// ResolveRouteName picks a display name from a raw route label. Labels of
// the form "local|english" resolve to the first cell when it contains an
// ASCII letter and to the second cell otherwise.
func ResolveRouteName(raw string) string {
	cells := strings.Split(raw, "|")
	if len(cells) == 1 {
		return strings.TrimSpace(cells[0])
	}
	if !hasASCIILetter(cells[0]) {
		return strings.TrimSpace(cells[1])
	}
	return strings.TrimSpace(cells[0])
}

func hasASCIILetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			return true
		}
	}
	return false
}

// RouteNames resolves every route descriptor of every segment, in source
// order. Descriptors that share a name are listed once each.
func RouteNames(raw *models.RawTopology) []string {
	var names []string
	if raw == nil {
		return names
	}
	for _, seg := range raw.Segments {
		for _, route := range seg.Routes {
			names = append(names, ResolveRouteName(route.Name))
		}
	}
	return names
}
