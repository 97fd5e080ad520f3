package osm

import (
	"context"
	"fmt"
	"slices"

	"github.com/paulmach/osm"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// WayFilter decides whether a way belongs to the routing graph.
type WayFilter func(id osm.WayID, tags osm.Tags) bool

// IDMapping maps the OSM IDs of routing ways and routing nodes onto dense
// IDs assigned in ascending OSM ID order.
//
// A routing node is an endpoint of a routing way or a node referenced more
// than once across routing ways (an intersection or a loop). The remaining
// nodes of routing ways are modelling nodes: they shape the geometry but do
// not become graph nodes.
type IDMapping struct {
	nodes     map[osm.NodeID]uint32
	modelling map[osm.NodeID]struct{}
	ways      map[osm.WayID]uint32
}

// RoutingNode returns the dense ID of a routing node.
func (m *IDMapping) RoutingNode(id osm.NodeID) (uint32, bool) {
	v, ok := m.nodes[id]
	return v, ok
}

// RoutingWay returns the dense ID of a routing way.
func (m *IDMapping) RoutingWay(id osm.WayID) (uint32, bool) {
	v, ok := m.ways[id]
	return v, ok
}

// IsModellingNode reports whether id is a non-routing node of a routing way.
func (m *IDMapping) IsModellingNode(id osm.NodeID) bool {
	_, ok := m.modelling[id]
	return ok
}

// NodeCount returns the number of routing nodes.
func (m *IDMapping) NodeCount() int { return len(m.nodes) }

// WayCount returns the number of routing ways.
func (m *IDMapping) WayCount() int { return len(m.ways) }

// ModellingNodeCount returns the number of modelling nodes.
func (m *IDMapping) ModellingNodeCount() int { return len(m.modelling) }

// references reports whether any routing way uses id.
func (m *IDMapping) references(id osm.NodeID) bool {
	if _, ok := m.nodes[id]; ok {
		return true
	}
	return m.IsModellingNode(id)
}

// LoadIDMapping scans the ways of an OSM file and builds the mapping for
// every way accepted by isUsed that has at least two nodes.
func LoadIDMapping(ctx context.Context, path string, isUsed WayFilter, log logrus.FieldLogger, opts ...LoadOptions) (*IDMapping, error) {
	b := newMappingBuilder()
	err := scanFile(ctx, path, objectKinds{ways: true}, loadOptions(opts), func(o osm.Object) {
		w, ok := o.(*osm.Way)
		if !ok || len(w.Nodes) < 2 {
			return
		}
		if isUsed(w.ID, w.Tags) {
			b.addWay(w)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("id mapping (ways): %w", err)
	}

	m := b.build()
	log.WithField("pass", "id-mapping").Infof("%d routing ways, %d routing nodes, %d modelling nodes",
		m.WayCount(), m.NodeCount(), m.ModellingNodeCount())
	return m, nil
}

type mappingBuilder struct {
	ways []osm.WayID
	// isRouting holds every node of a routing way; true once it qualifies
	// as a routing node.
	isRouting map[osm.NodeID]bool
}

func newMappingBuilder() *mappingBuilder {
	return &mappingBuilder{isRouting: make(map[osm.NodeID]bool)}
}

func (b *mappingBuilder) addWay(w *osm.Way) {
	b.ways = append(b.ways, w.ID)
	last := len(w.Nodes) - 1
	for i, wn := range w.Nodes {
		routing, seen := b.isRouting[wn.ID]
		b.isRouting[wn.ID] = routing || seen || i == 0 || i == last
	}
}

func (b *mappingBuilder) build() *IDMapping {
	routingIDs := lo.Keys(lo.PickBy(b.isRouting, func(_ osm.NodeID, routing bool) bool { return routing }))
	slices.Sort(routingIDs)

	m := &IDMapping{
		nodes:     make(map[osm.NodeID]uint32, len(routingIDs)),
		modelling: make(map[osm.NodeID]struct{}, len(b.isRouting)-len(routingIDs)),
	}
	for i, id := range routingIDs {
		m.nodes[id] = uint32(i)
	}
	for id, routing := range b.isRouting {
		if !routing {
			m.modelling[id] = struct{}{}
		}
	}

	slices.Sort(b.ways)
	b.ways = slices.Compact(b.ways)
	m.ways = make(map[osm.WayID]uint32, len(b.ways))
	for i, id := range b.ways {
		m.ways[id] = uint32(i)
	}
	return m
}
