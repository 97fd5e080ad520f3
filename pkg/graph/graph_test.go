package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangle returns 0 -> 1 -> 2 -> 0 plus a dangling arc 2 -> 3.
func triangle() *Graph {
	return &Graph{
		FirstOut:    []uint32{0, 1, 2, 4, 4},
		Head:        []uint32{1, 2, 0, 3},
		GeoDistance: []uint32{100, 200, 300, 400},
		Capacity:    []uint32{1800, 1800, 1800, 600},
		Latitude:    []float32{49.0, 49.1, 49.2, 49.3},
		Longitude:   []float32{8.4, 8.5, 8.6, 8.7},
	}
}

func TestGraphCounts(t *testing.T) {
	g := triangle()
	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.NumArcs())

	start, end := g.ArcsFrom(2)
	assert.Equal(t, uint32(2), start)
	assert.Equal(t, uint32(4), end)

	assert.Equal(t, 0, (&Graph{}).NumNodes())
}

func TestValidate(t *testing.T) {
	require.NoError(t, triangle().Validate())

	g := triangle()
	g.Tail = InvertInverse(g.FirstOut)
	g.TravelTime = []uint32{1, 2, 3, 4}
	g.LargestSCC = []uint32{1, 1, 1, 0}
	require.NoError(t, g.Validate())

	empty := &Graph{FirstOut: []uint32{0}}
	require.NoError(t, empty.Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
		want   error
	}{
		{"empty first_out", func(g *Graph) { g.FirstOut = nil }, ErrInvalidCSR},
		{"first_out not starting at zero", func(g *Graph) { g.FirstOut[0] = 1 }, ErrInvalidCSR},
		{"first_out decreasing", func(g *Graph) { g.FirstOut[2] = 0 }, ErrInvalidCSR},
		{"head shorter than arc count", func(g *Graph) { g.Head = g.Head[:3] }, ErrInvalidCSR},
		{"head out of range", func(g *Graph) { g.Head[0] = 4 }, ErrInvalidCSR},
		{"short geo_distance", func(g *Graph) { g.GeoDistance = g.GeoDistance[:2] }, ErrLengthMismatch},
		{"long capacity", func(g *Graph) { g.Capacity = append(g.Capacity, 1) }, ErrLengthMismatch},
		{"short travel_time", func(g *Graph) { g.TravelTime = []uint32{1} }, ErrLengthMismatch},
		{"short latitude", func(g *Graph) { g.Latitude = g.Latitude[:1] }, ErrLengthMismatch},
		{"short largest_scc", func(g *Graph) { g.LargestSCC = []uint32{1} }, ErrLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := triangle()
			tt.mutate(g)
			assert.ErrorIs(t, g.Validate(), tt.want)
		})
	}
}

func TestValidateRejectsNonFlagSCC(t *testing.T) {
	g := triangle()
	g.LargestSCC = []uint32{1, 1, 2, 0}
	assert.Error(t, g.Validate())
}
