package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStationSet(t *testing.T) {
	s := NewStationSet("Central", "Admiralty")

	assert.True(t, s.Has("Central"))
	assert.False(t, s.Has("Kowloon"))
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Add("Kowloon"), "new name should be added")
	assert.False(t, s.Add("Kowloon"), "duplicate name should not be added")
	assert.Equal(t, []string{"Admiralty", "Central", "Kowloon"}, s.Sorted())
}

func TestStationSetIntersectCount(t *testing.T) {
	tests := []struct {
		name     string
		a, b     StationSet
		expected int
	}{
		{"disjoint", NewStationSet("A"), NewStationSet("B"), 0},
		{"overlap", NewStationSet("A", "B", "C"), NewStationSet("B", "C", "D"), 2},
		{"empty", NewStationSet(), NewStationSet("A"), 0},
		{"same", NewStationSet("A", "B"), NewStationSet("B", "A"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.IntersectCount(tt.b))
			assert.Equal(t, tt.expected, tt.b.IntersectCount(tt.a))
		})
	}
}

func TestStationSetClone(t *testing.T) {
	s := NewStationSet("A")
	c := s.Clone()
	c.Add("B")

	assert.False(t, s.Has("B"))
	assert.True(t, c.Has("A"))
}

func TestConvertToResponse(t *testing.T) {
	p := Progress{Route: "L1", Visited: 1, Total: 2, Percentage: 50}
	resp := ConvertToResponse(p, NewStationSet("B", "A"), NewStationSet("A", "Z"))

	assert.Equal(t, "L1", resp.Route)
	assert.Equal(t, []string{"A", "B"}, resp.Stations)
	assert.Equal(t, []string{"A"}, resp.Visited)
	assert.Equal(t, p, resp.Progress)
}

func TestProgressComplete(t *testing.T) {
	assert.True(t, Progress{Visited: 3, Total: 3}.Complete())
	assert.False(t, Progress{Visited: 2, Total: 3}.Complete())
}
