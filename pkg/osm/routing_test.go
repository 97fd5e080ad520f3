package osm

import (
	"context"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadNetwork(t *testing.T, doc string) (*RoutingGraph, []uint32) {
	t.Helper()
	path := writeOSM(t, doc)
	log := quietLogger()

	m, err := LoadIDMapping(context.Background(), path, carFilter(), log)
	require.NoError(t, err)

	speeds := make([]uint32, m.WayCount())
	rg, err := LoadRoutingGraph(context.Background(), path, m,
		func(id osm.WayID, routingWay uint32, tags osm.Tags) Direction {
			speeds[routingWay] = WaySpeed(id, tags, log)
			return CarDirection(id, tags, log)
		},
		func(id osm.RelationID, members osm.Members, tags osm.Tags, emit func(TurnRestriction)) {
			DecodeCarTurnRestriction(id, members, tags, emit, log)
		},
		log,
	)
	require.NoError(t, err)
	return rg, speeds
}

func TestLoadRoutingGraph(t *testing.T) {
	rg, speeds := loadNetwork(t, network)

	// Arcs: 1<->3 (222 m), 3<->4 (111 m) on way 10, 3->6 (222 m) on way 11.
	assert.Equal(t, []uint32{0, 1, 4, 5, 5}, rg.FirstOut)
	assert.Equal(t, []uint32{1, 0, 2, 3, 1}, rg.Head)
	assert.Equal(t, []uint32{222, 222, 111, 222, 111}, rg.GeoDistance)
	assert.Equal(t, []uint32{0, 0, 0, 1, 0}, rg.Way)
	assert.Equal(t, []uint32{600, 600, 600, 3000, 600}, rg.Capacity)

	assert.Equal(t, []float32{0, 0, 0, 0.002}, rg.Latitude)
	assert.Equal(t, []float32{0, 0.002, 0.003, 0.002}, rg.Longitude)

	assert.Equal(t, []uint32{25, 30}, speeds)

	require.Len(t, rg.TurnRestrictions, 1)
	assert.Equal(t, TurnRestriction{
		RelationID: 100,
		Category:   RestrictionProhibitive,
		Direction:  TurnLeft,
		FromWay:    10,
		ViaNode:    3,
		ToWay:      11,
	}, rg.TurnRestrictions[0])
}

func TestLoadRoutingGraphBackwardOneway(t *testing.T) {
	rg, _ := loadNetwork(t, `<osm>
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.001"/>
  <way id="1"><nd ref="1"/><nd ref="2"/><tag k="highway" v="tertiary"/><tag k="oneway" v="-1"/></way>
</osm>`)

	assert.Equal(t, []uint32{0, 0, 1}, rg.FirstOut)
	assert.Equal(t, []uint32{0}, rg.Head)
	assert.Equal(t, []uint32{111}, rg.GeoDistance)
}

func TestLoadRoutingGraphMissingCoordinates(t *testing.T) {
	// Node 9 is referenced but absent: the segment 2-9-3 is dropped.
	rg, _ := loadNetwork(t, `<osm>
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.001"/>
  <node id="3" lat="0" lon="0.003"/>
  <way id="1"><nd ref="1"/><nd ref="2"/><tag k="highway" v="residential"/></way>
  <way id="2"><nd ref="2"/><nd ref="9"/><nd ref="3"/><tag k="highway" v="residential"/></way>
</osm>`)

	assert.Equal(t, []uint32{0, 1, 2, 2}, rg.FirstOut)
	assert.Equal(t, []uint32{1, 0}, rg.Head)
	assert.Len(t, rg.GeoDistance, 2)
	assert.Len(t, rg.Latitude, 3)
}

func TestLoadRoutingGraphClosedWay(t *testing.T) {
	// A ring whose only routing node is its start yields no arcs.
	rg, _ := loadNetwork(t, `<osm>
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.001"/>
  <node id="3" lat="0.001" lon="0.001"/>
  <way id="1"><nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="1"/><tag k="highway" v="service"/></way>
</osm>`)

	assert.Equal(t, []uint32{0, 0}, rg.FirstOut)
	assert.Empty(t, rg.Head)
}

func TestLoadRoutingGraphNilDecoder(t *testing.T) {
	path := writeOSM(t, network)
	log := quietLogger()
	m, err := LoadIDMapping(context.Background(), path, carFilter(), log)
	require.NoError(t, err)

	rg, err := LoadRoutingGraph(context.Background(), path, m,
		func(osm.WayID, uint32, osm.Tags) Direction { return DirectionBoth },
		nil, log, LoadOptions{Procs: 2})
	require.NoError(t, err)
	assert.Empty(t, rg.TurnRestrictions)
	assert.Len(t, rg.Head, 6, "way 11 opened in both directions")
}
