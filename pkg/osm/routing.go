package osm

import (
	"context"
	"fmt"
	"sort"

	"github.com/paulmach/osm"
	"github.com/sirupsen/logrus"

	"osm_export_graph/pkg/geo"
	"osm_export_graph/pkg/graph"
)

// WayClassifier is called once per routing way, in file order, and returns
// the directions the way is open for. Implementations may record per-way
// attributes (such as speed) indexed by routingWay.
type WayClassifier func(id osm.WayID, routingWay uint32, tags osm.Tags) Direction

// RestrictionDecoder is called for every relation and passes each turn
// restriction it finds to emit.
type RestrictionDecoder func(id osm.RelationID, members osm.Members, tags osm.Tags, emit func(TurnRestriction))

// RoutingGraph is the arc-level graph extracted from an OSM file. Arcs are
// sorted by tail; FirstOut indexes them per tail node.
type RoutingGraph struct {
	FirstOut []uint32 // len: nodes + 1
	Head     []uint32 // len: arcs

	Latitude  []float32 // len: nodes
	Longitude []float32 // len: nodes

	GeoDistance []uint32 // len: arcs; meters along the way geometry
	Capacity    []uint32 // len: arcs; vehicles per hour
	Way         []uint32 // len: arcs; routing way ID

	TurnRestrictions []TurnRestriction
}

type latLon struct {
	lat, lon float64
}

type rawArc struct {
	tail, head uint32
	distance   uint32
	capacity   uint32
	way        uint32
}

// LoadRoutingGraph builds the routing graph for the ways and nodes of m.
// Each way is cut at its routing nodes; the arcs between consecutive routing
// nodes get the great-circle length of the path through the modelling nodes
// in between. Segments touching a node without coordinates are skipped.
func LoadRoutingGraph(ctx context.Context, path string, m *IDMapping, classify WayClassifier, decode RestrictionDecoder, log logrus.FieldLogger, opts ...LoadOptions) (*RoutingGraph, error) {
	opt := loadOptions(opts)

	// Pass 1: Scan nodes to collect coordinates for referenced nodes only.
	coords := make(map[osm.NodeID]latLon, m.NodeCount()+m.ModellingNodeCount())
	err := scanFile(ctx, path, objectKinds{nodes: true}, opt, func(o osm.Object) {
		n, ok := o.(*osm.Node)
		if !ok || !m.references(n.ID) {
			return
		}
		coords[n.ID] = latLon{lat: n.Lat, lon: n.Lon}
	})
	if err != nil {
		return nil, fmt.Errorf("pass 1 (nodes): %w", err)
	}
	log.WithField("pass", "nodes").Infof("Pass 1 complete: %d node coordinates collected", len(coords))

	numNodes := uint32(m.NodeCount())
	rg := &RoutingGraph{
		Latitude:  make([]float32, numNodes),
		Longitude: make([]float32, numNodes),
	}
	var missing int
	for id, v := range m.nodes {
		c, ok := coords[id]
		if !ok {
			missing++
			continue
		}
		rg.Latitude[v] = float32(c.lat)
		rg.Longitude[v] = float32(c.lon)
	}
	if missing > 0 {
		log.Warnf("%d routing nodes have no coordinates", missing)
	}

	// Pass 2: Scan ways into arcs and relations into turn restrictions.
	b := &arcBuilder{mapping: m, coords: coords}
	emit := func(r TurnRestriction) {
		rg.TurnRestrictions = append(rg.TurnRestrictions, r)
	}
	err = scanFile(ctx, path, objectKinds{ways: true, relations: true}, opt, func(o osm.Object) {
		switch obj := o.(type) {
		case *osm.Way:
			routingWay, ok := m.RoutingWay(obj.ID)
			if !ok {
				return
			}
			if dir := classify(obj.ID, routingWay, obj.Tags); dir != DirectionClosed {
				b.addWay(obj, routingWay, dir)
			}
		case *osm.Relation:
			if decode != nil {
				decode(obj.ID, obj.Members, obj.Tags, emit)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("pass 2 (ways, relations): %w", err)
	}

	if b.skipped > 0 {
		log.Warnf("skipped %d way segments due to missing node coordinates", b.skipped)
	}
	if b.loops > 0 {
		log.Debugf("dropped %d loop segments", b.loops)
	}
	log.WithField("pass", "ways").Infof("Pass 2 complete: %d arcs, %d turn restrictions", len(b.arcs), len(rg.TurnRestrictions))

	// Sort arcs by tail; ties keep file order.
	arcs := b.arcs
	sort.SliceStable(arcs, func(i, j int) bool { return arcs[i].tail < arcs[j].tail })

	tail := make([]uint32, len(arcs))
	rg.Head = make([]uint32, len(arcs))
	rg.GeoDistance = make([]uint32, len(arcs))
	rg.Capacity = make([]uint32, len(arcs))
	rg.Way = make([]uint32, len(arcs))
	for i, a := range arcs {
		tail[i] = a.tail
		rg.Head[i] = a.head
		rg.GeoDistance[i] = a.distance
		rg.Capacity[i] = a.capacity
		rg.Way[i] = a.way
	}
	rg.FirstOut = graph.FirstOutFromTails(tail, numNodes)

	return rg, nil
}

type arcBuilder struct {
	mapping *IDMapping
	coords  map[osm.NodeID]latLon
	arcs    []rawArc
	skipped int
	loops   int
}

func (b *arcBuilder) addWay(w *osm.Way, routingWay uint32, dir Direction) {
	fwdCapacity := ArcCapacity(w.Tags, dir, true)
	bwdCapacity := ArcCapacity(w.Tags, dir, false)

	var (
		line   geo.Polyline
		from   uint32
		broken bool
	)
	for i, wn := range w.Nodes {
		c, ok := b.coords[wn.ID]
		if ok {
			line.Add(c.lat, c.lon)
		} else {
			broken = true
		}

		node, isRouting := b.mapping.RoutingNode(wn.ID)
		if !isRouting {
			continue
		}
		if i > 0 {
			switch {
			case broken:
				b.skipped++
			case from == node:
				b.loops++
			default:
				dist := line.Meters()
				if dir.Forward() {
					b.arcs = append(b.arcs, rawArc{tail: from, head: node, distance: dist, capacity: fwdCapacity, way: routingWay})
				}
				if dir.Backward() {
					b.arcs = append(b.arcs, rawArc{tail: node, head: from, distance: dist, capacity: bwdCapacity, way: routingWay})
				}
			}
		}

		from, broken = node, !ok
		if ok {
			line.Reset(c.lat, c.lon)
		}
	}
}
