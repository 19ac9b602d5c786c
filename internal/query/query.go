// Package query turns user input (a region's coordinates or a free-text
// term) into a provider-agnostic search spec.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultRadiusKm is the search radius used for coordinate queries.
const DefaultRadiusKm = 500

type Mode string

const (
	ModeNone       Mode = ""
	ModeCoordinate Mode = "coordinate"
	ModeText       Mode = "text"
)

type Spec struct {
	Mode      Mode    `json:"mode"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	RadiusKm  int     `json:"radius_km,omitempty"`
	Term      string  `json:"term,omitempty"`
	Hotspot   string  `json:"hotspot,omitempty"`
}

// Empty reports whether the spec carries nothing to search for.
func (s Spec) Empty() bool {
	switch s.Mode {
	case ModeCoordinate:
		return false
	case ModeText:
		return s.Term == ""
	}
	return true
}

// Params returns the generic request parameters for the spec.
// Providers add their own fixed parameters on top.
func (s Spec) Params() url.Values {
	q := url.Values{}
	switch s.Mode {
	case ModeCoordinate:
		radius := s.RadiusKm
		if radius <= 0 {
			radius = DefaultRadiusKm
		}
		q.Set("lat", strconv.FormatFloat(s.Latitude, 'f', -1, 64))
		q.Set("lng", strconv.FormatFloat(s.Longitude, 'f', -1, 64))
		q.Set("radius", strconv.Itoa(radius))
	case ModeText:
		if s.Term != "" {
			q.Set("q", s.Term)
		}
	}
	return q
}

func (s Spec) String() string {
	switch s.Mode {
	case ModeCoordinate:
		return "coords(" + s.Params().Encode() + ")"
	case ModeText:
		return "text(" + s.Term + ")"
	}
	return "none"
}

type Builder struct {
	RadiusKm int
}

func NewBuilder(radiusKm int) Builder {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return Builder{RadiusKm: radiusKm}
}

// Coordinates builds a coordinate spec. Ranges are not validated; the
// provider decides what to do with out-of-range values.
func (b Builder) Coordinates(lat, lon float64) Spec {
	radius := b.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	return Spec{
		Mode:      ModeCoordinate,
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
	}
}

// Text builds a free-text spec. Surrounding whitespace is trimmed; an empty
// term yields an empty spec.
func (b Builder) Text(term string) Spec {
	term = strings.TrimSpace(term)
	if term == "" {
		return Spec{}
	}
	return Spec{Mode: ModeText, Term: term}
}

// Hotspot builds a coordinate spec for a named hotspot.
func (b Builder) Hotspot(name string) (Spec, bool) {
	h, ok := LookupHotspot(name)
	if !ok {
		return Spec{}, false
	}
	s := b.Coordinates(h.Latitude, h.Longitude)
	s.Hotspot = h.Name
	return s, true
}

func FromCoordinates(lat, lon float64) Spec { return NewBuilder(DefaultRadiusKm).Coordinates(lat, lon) }

func FromTerm(term string) Spec { return NewBuilder(DefaultRadiusKm).Text(term) }

// FromHotspot resolves a hotspot name or slug with the default radius.
func FromHotspot(name string) (Spec, bool) { return NewBuilder(DefaultRadiusKm).Hotspot(name) }
