package osm

import (
	"strings"

	"github.com/paulmach/osm"
	"github.com/sirupsen/logrus"
)

// RestrictionCategory tells whether a turn restriction forbids or forces a turn.
type RestrictionCategory uint8

const (
	RestrictionProhibitive RestrictionCategory = iota // no_*
	RestrictionMandatory                              // only_*
)

// TurnDirection is the manoeuvre a restriction applies to.
type TurnDirection uint8

const (
	TurnLeft TurnDirection = iota
	TurnRight
	TurnStraight
	TurnU
)

var turnDirections = map[string]TurnDirection{
	"left_turn":   TurnLeft,
	"right_turn":  TurnRight,
	"straight_on": TurnStraight,
	"u_turn":      TurnU,
}

// TurnRestriction is a decoded OSM restriction relation: leaving FromWay at
// ViaNode onto ToWay is forbidden (prohibitive) or the only option (mandatory).
type TurnRestriction struct {
	RelationID osm.RelationID
	Category   RestrictionCategory
	Direction  TurnDirection
	FromWay    osm.WayID
	ViaNode    osm.NodeID
	ToWay      osm.WayID
}

// DecodeCarTurnRestriction decodes a restriction relation that applies to
// cars and passes it to emit. Relations that are not restrictions, exempt
// cars, or use unsupported shapes (via ways, several from/to members) are
// skipped; the unsupported ones are logged.
func DecodeCarTurnRestriction(id osm.RelationID, members osm.Members, tags osm.Tags, emit func(TurnRestriction), log logrus.FieldLogger) {
	if tags.Find("type") != "restriction" {
		return
	}
	value := tags.Find("restriction:motorcar")
	if value == "" {
		value = tags.Find("restriction")
	}
	if value == "" {
		return
	}
	for _, v := range strings.Split(tags.Find("except"), ";") {
		switch strings.TrimSpace(v) {
		case "motorcar", "motor_vehicle":
			return
		}
	}

	log = log.WithField("relation", int64(id))

	r := TurnRestriction{RelationID: id}
	var manoeuvre string
	switch {
	case strings.HasPrefix(value, "no_"):
		r.Category, manoeuvre = RestrictionProhibitive, strings.TrimPrefix(value, "no_")
	case strings.HasPrefix(value, "only_"):
		r.Category, manoeuvre = RestrictionMandatory, strings.TrimPrefix(value, "only_")
	default:
		log.Debugf("unknown restriction %q", value)
		return
	}
	dir, ok := turnDirections[manoeuvre]
	if !ok {
		log.Debugf("unsupported restriction %q", value)
		return
	}
	r.Direction = dir

	var from, via, to int
	for _, m := range members {
		switch m.Role {
		case "from":
			if m.Type != osm.TypeWay {
				log.Debugf("from member is a %s, not a way", m.Type)
				return
			}
			r.FromWay = osm.WayID(m.Ref)
			from++
		case "via":
			if m.Type != osm.TypeNode {
				log.Debugf("via member is a %s, only via nodes are supported", m.Type)
				return
			}
			r.ViaNode = osm.NodeID(m.Ref)
			via++
		case "to":
			if m.Type != osm.TypeWay {
				log.Debugf("to member is a %s, not a way", m.Type)
				return
			}
			r.ToWay = osm.WayID(m.Ref)
			to++
		}
	}
	if from != 1 || via != 1 || to != 1 {
		log.Debugf("restriction needs exactly one from, via and to member, has %d/%d/%d", from, via, to)
		return
	}
	emit(r)
}
