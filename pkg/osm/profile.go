package osm

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Direction is the set of travel directions a way is open for, relative to
// the order of its nodes.
type Direction uint8

const (
	DirectionClosed Direction = iota
	DirectionForward
	DirectionBackward
	DirectionBoth
)

// Forward reports whether the way can be driven in node order.
func (d Direction) Forward() bool { return d == DirectionForward || d == DirectionBoth }

// Backward reports whether the way can be driven against node order.
func (d Direction) Backward() bool { return d == DirectionBackward || d == DirectionBoth }

func (d Direction) String() string {
	switch d {
	case DirectionClosed:
		return "closed"
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	case DirectionBoth:
		return "both"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// carHighways lists highway tag values accessible by car, with the speed in
// km/h assumed when no maxspeed is tagged.
var carHighways = map[string]uint32{
	"motorway":          90,
	"motorway_link":     45,
	"motorway_junction": 45,
	"trunk":             85,
	"trunk_link":        40,
	"primary":           65,
	"primary_link":      30,
	"secondary":         55,
	"secondary_link":    25,
	"tertiary":          40,
	"tertiary_link":     20,
	"unclassified":      25,
	"residential":       25,
	"living_street":     10,
	"service":           8,
	"track":             8,
	"road":              25,
}

// nonCarHighways are highway values known to be closed to cars. Unknown
// values are rejected too but logged.
var nonCarHighways = map[string]bool{
	"footway":        true,
	"cycleway":       true,
	"path":           true,
	"pedestrian":     true,
	"steps":          true,
	"bridleway":      true,
	"construction":   true,
	"proposed":       true,
	"abandoned":      true,
	"platform":       true,
	"corridor":       true,
	"elevator":       true,
	"bus_guideway":   true,
	"busway":         true,
	"raceway":        true,
	"escape":         true,
	"conveying":      true,
	"rest_area":      true,
	"services":       true,
	"bus_stop":       true,
	"traffic_island": true,
}

// carAccess lists access values that still allow cars.
var carAccess = map[string]bool{
	"yes":         true,
	"permissive":  true,
	"delivery":    true,
	"designated":  true,
	"destination": true,
}

// IsWayUsedByCars returns true if the way is drivable by car.
func IsWayUsedByCars(id osm.WayID, tags osm.Tags, log logrus.FieldLogger) bool {
	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	if access := tags.Find("access"); access != "" && !carAccess[access] {
		return false
	}
	if tags.Find("motor_vehicle") == "no" || tags.Find("motorcar") == "no" {
		return false
	}

	// Time-dependent direction cannot be modelled.
	switch tags.Find("oneway") {
	case "reversible", "alternating":
		return false
	}
	if tags.Find("maxspeed") == "0" {
		return false
	}

	if tags.Find("route") == "ferry" {
		return true
	}

	hw := tags.Find("highway")
	if hw == "" {
		return tags.Find("junction") != ""
	}
	if _, ok := carHighways[hw]; ok {
		return true
	}
	if !nonCarHighways[hw] {
		log.WithField("way", int64(id)).Debugf("unknown highway tag %q, way ignored", hw)
	}
	return false
}

// CarDirection returns the directions in which cars may use the way.
func CarDirection(id osm.WayID, tags osm.Tags, log logrus.FieldLogger) Direction {
	// Explicit oneway tag overrides implied values.
	switch oneway := tags.Find("oneway"); oneway {
	case "yes", "true", "1":
		return DirectionForward
	case "-1", "reverse":
		return DirectionBackward
	case "no", "false", "0":
		return DirectionBoth
	case "reversible", "alternating":
		return DirectionClosed
	case "":
	default:
		log.WithField("way", int64(id)).Debugf("unknown oneway tag %q, assuming implied direction", oneway)
	}

	// Implied oneway for motorways and roundabouts.
	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		return DirectionForward
	}
	return DirectionBoth
}

const (
	ferrySpeed   = 5
	defaultSpeed = 50
)

// WaySpeed returns the car speed for the way in km/h. The result is always
// positive: a tagged maxspeed wins, then the highway default, then 50.
func WaySpeed(id osm.WayID, tags osm.Tags, log logrus.FieldLogger) uint32 {
	if v := tags.Find("maxspeed"); v != "" {
		if speed, ok := parseMaxSpeed(v); ok {
			return speed
		}
		log.WithField("way", int64(id)).Debugf("unusable maxspeed %q, using highway default", v)
	}

	if tags.Find("route") == "ferry" {
		return ferrySpeed
	}
	if speed, ok := carHighways[tags.Find("highway")]; ok {
		return speed
	}
	if tags.Find("junction") != "" {
		return 20
	}
	return defaultSpeed
}

// zoneSpeeds maps the suffix of "<country>:<zone>" maxspeed values to km/h.
var zoneSpeeds = map[string]float64{
	"urban":         40,
	"rural":         100,
	"trunk":         100,
	"motorway":      120,
	"living_street": 10,
	"walk":          5,
}

// parseMaxSpeed parses an OSM maxspeed value into km/h. Multiple values
// separated by ';' yield the smallest.
func parseMaxSpeed(v string) (uint32, bool) {
	var speeds []float64
	for _, part := range strings.Split(v, ";") {
		if s, ok := parseSingleMaxSpeed(strings.ToLower(strings.TrimSpace(part))); ok {
			speeds = append(speeds, s)
		}
	}
	if len(speeds) == 0 {
		return 0, false
	}
	kmh := math.Round(lo.Min(speeds))
	if kmh < 1 {
		return 0, false
	}
	return uint32(lo.Clamp(kmh, 1, 300)), true
}

func parseSingleMaxSpeed(v string) (float64, bool) {
	switch v {
	case "none", "unlimited":
		return 130, true
	case "walk", "foot":
		return 5, true
	case "signals", "variable", "":
		return 0, false
	}
	if _, zone, ok := strings.Cut(v, ":"); ok {
		s, known := zoneSpeeds[zone]
		return s, known
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(v, "mph"):
		v, factor = strings.TrimSuffix(v, "mph"), 1.609344
	case strings.HasSuffix(v, "knots"):
		v, factor = strings.TrimSuffix(v, "knots"), 1.852
	case strings.HasSuffix(v, "km/h"):
		v = strings.TrimSuffix(v, "km/h")
	case strings.HasSuffix(v, "kmh"):
		v = strings.TrimSuffix(v, "kmh")
	case strings.HasSuffix(v, "kph"):
		v = strings.TrimSuffix(v, "kph")
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || s <= 0 {
		return 0, false
	}
	return s * factor, true
}

// laneCapacity is the assumed flow per lane in vehicles per hour.
var laneCapacity = map[string]uint32{
	"motorway":       2000,
	"motorway_link":  1500,
	"trunk":          1800,
	"trunk_link":     1400,
	"primary":        1500,
	"primary_link":   1200,
	"secondary":      1200,
	"secondary_link": 1000,
	"tertiary":       1000,
	"tertiary_link":  800,
	"unclassified":   800,
	"residential":    600,
	"living_street":  300,
	"service":        300,
	"track":          200,
}

const defaultLaneCapacity = 600

// ArcCapacity returns the capacity in vehicles per hour of one travel
// direction of the way: lanes in that direction times the per-lane flow of
// its highway class. forward selects node order.
func ArcCapacity(tags osm.Tags, dir Direction, forward bool) uint32 {
	perLane, ok := laneCapacity[tags.Find("highway")]
	if !ok {
		perLane = defaultLaneCapacity
	}
	return directedLanes(tags, dir, forward) * perLane
}

func directedLanes(tags osm.Tags, dir Direction, forward bool) uint32 {
	key := "lanes:backward"
	if forward {
		key = "lanes:forward"
	}
	if n, ok := parseLanes(tags.Find(key)); ok {
		return n
	}

	total, ok := parseLanes(tags.Find("lanes"))
	if !ok {
		return 1
	}
	if dir == DirectionBoth {
		return max(total/2, 1)
	}
	return total
}

func parseLanes(v string) (uint32, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint32(lo.Clamp(n, 1, 16)), true
}
