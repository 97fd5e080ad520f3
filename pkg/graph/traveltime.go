package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrZeroSpeed is returned when an arc's way has a speed of 0 km/h.
	ErrZeroSpeed = errors.New("way speed is zero")
	// ErrWayOutOfRange is returned when an arc references a way outside the speed table.
	ErrWayOutOfRange = errors.New("way index out of range")
)

const (
	// MaxTravelTimeSeconds is the cutoff above which an arc gets TravelTimeSentinel.
	MaxTravelTimeSeconds = 86400

	// TravelTimeSentinel marks arcs whose travel time exceeds one day.
	// It is a marker, not a millisecond count.
	TravelTimeSentinel = 86400000
)

// TravelTimeMode selects how the stored travel_time value is scaled.
type TravelTimeMode int

const (
	// TravelTimeCompat reproduces the legacy exporter byte for byte: after the
	// millisecond value is clamped it is scaled by 18/(speed*5) a second time.
	// Stored values are therefore NOT milliseconds.
	TravelTimeCompat TravelTimeMode = iota

	// TravelTimeMilliseconds stores the clamped millisecond value.
	TravelTimeMilliseconds
)

func (m TravelTimeMode) String() string {
	switch m {
	case TravelTimeCompat:
		return "compat"
	case TravelTimeMilliseconds:
		return "milliseconds"
	default:
		return fmt.Sprintf("TravelTimeMode(%d)", int(m))
	}
}

// ParseTravelTimeMode parses "compat" or "milliseconds".
func ParseTravelTimeMode(s string) (TravelTimeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compat", "":
		return TravelTimeCompat, nil
	case "milliseconds", "ms":
		return TravelTimeMilliseconds, nil
	}
	return 0, fmt.Errorf("unknown travel time mode %q (want compat or milliseconds)", s)
}

// TravelTimeStats counts arcs affected by the clamp policy.
type TravelTimeStats struct {
	Sentinel int // raw seconds exceeded MaxTravelTimeSeconds
	Floored  int // raw seconds were 0 and were raised to 1
}

// ArcTravelTime computes one arc's stored travel time from its length in
// meters and its way speed in km/h. speed must be positive.
//
// All arithmetic is uint32, wrapping exactly like the legacy exporter.
func ArcTravelTime(distance, speed uint32, mode TravelTimeMode) uint32 {
	tt := clampedMillis(distance * 18 / (speed * 5))
	if mode == TravelTimeCompat {
		tt *= 18
		tt /= speed
		tt /= 5
	}
	return tt
}

func clampedMillis(seconds uint32) uint32 {
	switch {
	case seconds > MaxTravelTimeSeconds:
		return TravelTimeSentinel
	case seconds == 0:
		return 1
	default:
		return seconds * 1000
	}
}

// DeriveTravelTime computes travel_time for every arc from geoDistance (meters)
// and waySpeed[way[i]] (km/h). A zero speed or an unknown way aborts the
// derivation.
func DeriveTravelTime(geoDistance, way, waySpeed []uint32, mode TravelTimeMode) ([]uint32, TravelTimeStats, error) {
	var stats TravelTimeStats
	if len(geoDistance) != len(way) {
		return nil, stats, fmt.Errorf("%w: geo_distance has %d arcs, way has %d", ErrLengthMismatch, len(geoDistance), len(way))
	}

	travelTime := make([]uint32, len(geoDistance))
	for i, dist := range geoDistance {
		w := way[i]
		if int(w) >= len(waySpeed) {
			return nil, stats, fmt.Errorf("arc %d: %w: way %d, %d ways", i, ErrWayOutOfRange, w, len(waySpeed))
		}
		speed := waySpeed[w]
		if speed == 0 {
			return nil, stats, fmt.Errorf("arc %d: %w (way %d)", i, ErrZeroSpeed, w)
		}

		switch seconds := dist * 18 / (speed * 5); {
		case seconds > MaxTravelTimeSeconds:
			stats.Sentinel++
		case seconds == 0:
			stats.Floored++
		}
		travelTime[i] = ArcTravelTime(dist, speed, mode)
	}
	return travelTime, stats, nil
}
