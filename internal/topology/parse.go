package topology

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jusunglee/mtr-progress/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Pointer fields let the validator tell an absent value from a zero one.
type rawStation struct {
	Name *string `json:"name" validate:"required"`
	X    *int    `json:"x" validate:"required"`
	Z    *int    `json:"z" validate:"required"`
}

type rawRoute struct {
	Name     *string  `json:"name" validate:"required"`
	Stations []string `json:"stations" validate:"required"`
}

type rawSegment struct {
	Stations json.RawMessage `json:"stations"`
	Routes   []rawRoute      `json:"routes" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes a map dataset into typed records. Station tables keep their
// source key order. Only the first segment is required to carry stations.
func Parse(data []byte) (*models.RawTopology, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var segments []json.RawMessage
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, malformed(-1, "", fmt.Errorf("expected a list of segments: %w", err))
	}

	raw := &models.RawTopology{Segments: make([]models.Segment, 0, len(segments))}
	for i, msg := range segments {
		seg, err := parseSegment(i, msg)
		if err != nil {
			return nil, err
		}
		raw.Segments = append(raw.Segments, seg)
	}

	return raw, nil
}

func parseSegment(index int, msg json.RawMessage) (models.Segment, error) {
	var rs rawSegment
	if err := json.Unmarshal(msg, &rs); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return models.Segment{}, malformed(index, typeErr.Field, err)
		}
		return models.Segment{}, malformed(index, "", err)
	}
	if err := validate.Struct(rs); err != nil {
		return models.Segment{}, validationError(index, "", err)
	}

	var seg models.Segment
	if index == 0 || !isNull(rs.Stations) {
		stations, err := parseStations(index, rs.Stations)
		if err != nil {
			return models.Segment{}, err
		}
		seg.Stations = stations
	}

	seg.Routes = make([]models.RouteDescriptor, 0, len(rs.Routes))
	for j, route := range rs.Routes {
		if err := validate.Struct(route); err != nil {
			return models.Segment{}, validationError(index, fmt.Sprintf("routes[%d]", j), err)
		}
		seg.Routes = append(seg.Routes, models.RouteDescriptor{
			Name:     *route.Name,
			Stations: route.Stations,
		})
	}

	return seg, nil
}

// parseStations walks the station object token by token so the ids come out
// in document order. A repeated id keeps its first position and last value.
func parseStations(segment int, msg json.RawMessage) ([]models.StationDescriptor, error) {
	if isNull(msg) {
		return nil, malformed(segment, "stations", errMissingField)
	}

	dec := json.NewDecoder(bytes.NewReader(msg))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(segment, "stations", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, malformed(segment, "stations", errors.New("expected an object keyed by station id"))
	}

	var stations []models.StationDescriptor
	position := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(segment, "stations", err)
		}
		id, _ := tok.(string)
		field := "stations." + id

		var rs rawStation
		if err := dec.Decode(&rs); err != nil {
			return nil, malformed(segment, field, err)
		}
		if err := validate.Struct(rs); err != nil {
			return nil, validationError(segment, field, err)
		}

		station := models.StationDescriptor{ID: id, Name: *rs.Name, X: *rs.X, Z: *rs.Z}
		if i, ok := position[id]; ok {
			stations[i] = station
			continue
		}
		position[id] = len(stations)
		stations = append(stations, station)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(segment, "stations", err)
	}

	return stations, nil
}

func validationError(segment int, prefix string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return malformed(segment, prefix, err)
	}

	field := verrs[0].Field()
	if prefix != "" {
		field = prefix + "." + field
	}
	return malformed(segment, field, errMissingField)
}

func isNull(msg json.RawMessage) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
