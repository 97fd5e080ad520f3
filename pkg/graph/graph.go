package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCSR is returned when FirstOut/Head violate the adjacency invariants.
	ErrInvalidCSR = errors.New("invalid CSR adjacency")
	// ErrLengthMismatch is returned when parallel arrays disagree in length.
	ErrLengthMismatch = errors.New("array length mismatch")
)

// Graph represents a directed road network in CSR (Compressed Sparse Row) format
// together with its per-arc and per-node attributes. Every arc array is
// index-aligned with Head, every node array with the node order of FirstOut.
type Graph struct {
	FirstOut []uint32 // len: NumNodes + 1; FirstOut[v]..FirstOut[v+1] are arcs leaving v
	Tail     []uint32 // len: NumArcs; source node of each arc, not persisted
	Head     []uint32 // len: NumArcs; target node of each arc

	TravelTime  []uint32 // len: NumArcs; see DeriveTravelTime for the unit
	GeoDistance []uint32 // len: NumArcs; meters
	Capacity    []uint32 // len: NumArcs; vehicles per hour

	Latitude   []float32 // len: NumNodes
	Longitude  []float32 // len: NumNodes
	LargestSCC []uint32  // len: NumNodes; 1 if the node is in the largest SCC
}

// NumNodes returns the node count implied by FirstOut.
func (g *Graph) NumNodes() int {
	if len(g.FirstOut) == 0 {
		return 0
	}
	return len(g.FirstOut) - 1
}

// NumArcs returns the arc count.
func (g *Graph) NumArcs() int {
	return len(g.Head)
}

// ArcsFrom returns the range of arc indices for arcs leaving node v.
func (g *Graph) ArcsFrom(v uint32) (start, end uint32) {
	return g.FirstOut[v], g.FirstOut[v+1]
}

// Validate checks the adjacency invariants and that every attribute array
// has the length its index space requires. Nil Tail, TravelTime and
// LargestSCC are accepted so the check can run before those are derived.
func (g *Graph) Validate() error {
	if len(g.FirstOut) == 0 {
		return fmt.Errorf("%w: FirstOut is empty", ErrInvalidCSR)
	}
	if err := validateCSR(g.FirstOut, g.Head); err != nil {
		return err
	}

	numNodes, numArcs := g.NumNodes(), g.NumArcs()
	arcArrays := []struct {
		name     string
		n        int
		optional bool
	}{
		{"tail", len(g.Tail), true},
		{"travel_time", len(g.TravelTime), true},
		{"geo_distance", len(g.GeoDistance), false},
		{"capacity", len(g.Capacity), false},
	}
	for _, a := range arcArrays {
		if a.optional && a.n == 0 {
			continue
		}
		if a.n != numArcs {
			return fmt.Errorf("%w: %s has %d elements, want %d arcs", ErrLengthMismatch, a.name, a.n, numArcs)
		}
	}
	if len(g.Latitude) != numNodes || len(g.Longitude) != numNodes {
		return fmt.Errorf("%w: latitude/longitude have %d/%d elements, want %d nodes",
			ErrLengthMismatch, len(g.Latitude), len(g.Longitude), numNodes)
	}
	if g.LargestSCC != nil {
		if len(g.LargestSCC) != numNodes {
			return fmt.Errorf("%w: largest_scc has %d elements, want %d nodes", ErrLengthMismatch, len(g.LargestSCC), numNodes)
		}
		for v, flag := range g.LargestSCC {
			if flag > 1 {
				return fmt.Errorf("largest_scc[%d]=%d is not a 0/1 flag", v, flag)
			}
		}
	}
	return nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32) error {
	numNodes := uint32(len(firstOut) - 1)
	if firstOut[0] != 0 {
		return fmt.Errorf("%w: FirstOut[0]=%d != 0", ErrInvalidCSR, firstOut[0])
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("%w: FirstOut not monotonic at %d: %d < %d", ErrInvalidCSR, i, firstOut[i], firstOut[i-1])
		}
	}
	if numArcs := firstOut[numNodes]; uint32(len(head)) != numArcs {
		return fmt.Errorf("%w: Head length %d != FirstOut[NumNodes] %d", ErrInvalidCSR, len(head), numArcs)
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("%w: Head[%d]=%d >= NumNodes=%d", ErrInvalidCSR, i, h, numNodes)
		}
	}
	return nil
}
