package graph

import "math/bits"

// Membership reports whether a node belongs to a node set.
type Membership interface {
	Contains(v uint32) bool
}

// SCCFunc computes the largest strongly connected component of a CSR graph.
type SCCFunc func(firstOut, head []uint32) Membership

// NodeSet is a fixed-size bitset over node indices.
type NodeSet struct {
	words []uint64
	n     uint32
}

// NewNodeSet creates an empty NodeSet for n nodes.
func NewNodeSet(n uint32) *NodeSet {
	return &NodeSet{words: make([]uint64, (n+63)/64), n: n}
}

// Add inserts v.
func (s *NodeSet) Add(v uint32) {
	s.words[v/64] |= 1 << (v % 64)
}

// Remove deletes v.
func (s *NodeSet) Remove(v uint32) {
	s.words[v/64] &^= 1 << (v % 64)
}

// Contains reports whether v is in the set. Indices past the set size are not.
func (s *NodeSet) Contains(v uint32) bool {
	if v >= s.n {
		return false
	}
	return s.words[v/64]&(1<<(v%64)) != 0
}

// Count returns the number of members.
func (s *NodeSet) Count() int {
	c := 0
	for _, w := range s.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// StronglyConnected returns the node set of the largest strongly connected
// component, computed with an iterative Tarjan search. On ties the component
// completed first wins.
func StronglyConnected(firstOut, head []uint32) Membership {
	if len(firstOut) < 2 {
		return NewNodeSet(0)
	}
	n := uint32(len(firstOut) - 1)

	const unvisited = ^uint32(0)
	index := make([]uint32, n)
	low := make([]uint32, n)
	for i := range index {
		index[i] = unvisited
	}
	onStack := NewNodeSet(n)
	comp := make([]uint32, n)

	type frame struct {
		v    uint32
		next uint32 // next arc of v to explore
	}
	var (
		stack    []uint32
		calls    []frame
		counter  uint32
		numComps uint32
		bestComp uint32
		bestSize uint32
	)

	visit := func(v uint32) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack.Add(v)
		calls = append(calls, frame{v: v, next: firstOut[v]})
	}

	for s := uint32(0); s < n; s++ {
		if index[s] != unvisited {
			continue
		}
		visit(s)

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.v
			if top.next < firstOut[v+1] {
				w := head[top.next]
				top.next++
				if index[w] == unvisited {
					visit(w)
				} else if onStack.Contains(w) {
					low[v] = min(low[v], index[w])
				}
				continue
			}

			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				p := calls[len(calls)-1].v
				low[p] = min(low[p], low[v])
			}
			if low[v] != index[v] {
				continue
			}

			// v is the root of a component: pop it off the stack.
			var size uint32
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack.Remove(w)
				comp[w] = numComps
				size++
				if w == v {
					break
				}
			}
			if size > bestSize {
				bestSize = size
				bestComp = numComps
			}
			numComps++
		}
	}

	largest := NewNodeSet(n)
	for v := uint32(0); v < n; v++ {
		if comp[v] == bestComp {
			largest.Add(v)
		}
	}
	return largest
}

// LargestSCCFlags runs scc on the graph and materializes its membership
// predicate as a dense 0/1 array aligned with node order.
func LargestSCCFlags(firstOut, head []uint32, scc SCCFunc) []uint32 {
	numNodes := 0
	if len(firstOut) > 0 {
		numNodes = len(firstOut) - 1
	}
	members := scc(firstOut, head)

	flags := make([]uint32, numNodes)
	for v := range flags {
		if members.Contains(uint32(v)) {
			flags[v] = 1
		}
	}
	return flags
}

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestWeakComponentSize returns the node count of the largest weakly
// connected component (arcs treated as undirected). Comparing it with the
// strongly connected size shows how much one-way modelling cuts off.
func LargestWeakComponentSize(firstOut, head []uint32) int {
	if len(firstOut) < 2 {
		return 0
	}
	n := uint32(len(firstOut) - 1)
	uf := NewUnionFind(n)
	for u := uint32(0); u < n; u++ {
		for e := firstOut[u]; e < firstOut[u+1]; e++ {
			uf.Union(u, head[e])
		}
	}

	var best uint32
	for i := uint32(0); i < n; i++ {
		if root := uf.Find(i); uf.size[root] > best {
			best = uf.size[root]
		}
	}
	return int(best)
}
