package weather

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownLocation is returned when no device location has been reported.
var ErrUnknownLocation = errors.New("device location unknown")

// ErrInvalidLocation is returned for out-of-range coordinates.
var ErrInvalidLocation = errors.New("invalid coordinates")

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidLocation, l.Lat, l.Lon)
	}
	return nil
}

// LocationProvider supplies the last known device location.
type LocationProvider interface {
	Location() (Location, error)
}

// StaticLocation holds a location that can be replaced at runtime.
type StaticLocation struct {
	mu  sync.RWMutex
	loc *Location
}

// NewStaticLocation creates a provider. A nil loc starts unknown.
func NewStaticLocation(loc *Location) *StaticLocation {
	s := &StaticLocation{}
	if loc != nil {
		l := *loc
		s.loc = &l
	}
	return s
}

// Location returns the held location or ErrUnknownLocation.
func (s *StaticLocation) Location() (Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loc == nil {
		return Location{}, ErrUnknownLocation
	}
	return *s.loc, nil
}

// Update replaces the held location after validating it.
func (s *StaticLocation) Update(loc Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.loc = &loc
	s.mu.Unlock()
	return nil
}

var _ LocationProvider = (*StaticLocation)(nil)
