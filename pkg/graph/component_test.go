package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	// Initially all separate.
	for i := uint32(0); i < 5; i++ {
		assert.Equal(t, i, uf.Find(i))
	}

	assert.True(t, uf.Union(0, 1))
	assert.Equal(t, uf.Find(0), uf.Find(1))

	assert.True(t, uf.Union(2, 3))
	assert.NotEqual(t, uf.Find(0), uf.Find(2))

	assert.True(t, uf.Union(1, 3))
	assert.Equal(t, uf.Find(0), uf.Find(3))
	assert.False(t, uf.Union(0, 2), "already merged")
}

func members(m Membership, n uint32) []uint32 {
	var out []uint32
	for v := uint32(0); v < n; v++ {
		if m.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

func TestStronglyConnected(t *testing.T) {
	tests := []struct {
		name     string
		firstOut []uint32
		head     []uint32
		want     []uint32
	}{
		{
			// 0 -> 1 -> 2 -> 0, 2 -> 3: the sink is reachable but cannot return.
			name:     "triangle with sink",
			firstOut: []uint32{0, 1, 2, 4, 4},
			head:     []uint32{1, 2, 0, 3},
			want:     []uint32{0, 1, 2},
		},
		{
			// {0,1} two-way pair, {2,3,4} cycle, joined by one-way 1 -> 2.
			name:     "two components joined one way",
			firstOut: []uint32{0, 1, 3, 4, 5, 6},
			head:     []uint32{1, 0, 2, 3, 4, 2},
			want:     []uint32{2, 3, 4},
		},
		{
			name:     "path has only singleton components",
			firstOut: []uint32{0, 1, 2, 2},
			head:     []uint32{1, 2},
			want:     []uint32{2},
		},
		{
			name:     "self loop",
			firstOut: []uint32{0, 1},
			head:     []uint32{0},
			want:     []uint32{0},
		},
		{
			// Tie between {0,1} and {2,3}: Tarjan completes {0,1} first.
			name:     "tie",
			firstOut: []uint32{0, 1, 2, 3, 4},
			head:     []uint32{1, 0, 3, 2},
			want:     []uint32{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := uint32(len(tt.firstOut) - 1)
			assert.Equal(t, tt.want, members(StronglyConnected(tt.firstOut, tt.head), n))
		})
	}
}

func TestStronglyConnectedLongCycle(t *testing.T) {
	// One DFS chain 200k nodes deep.
	const n = 200_000
	firstOut := make([]uint32, n+1)
	head := make([]uint32, n)
	for v := uint32(0); v < n; v++ {
		firstOut[v+1] = v + 1
		head[v] = (v + 1) % n
	}

	set := StronglyConnected(firstOut, head).(*NodeSet)
	assert.Equal(t, n, set.Count())
}

func TestStronglyConnectedEmpty(t *testing.T) {
	m := StronglyConnected([]uint32{0}, nil)
	assert.False(t, m.Contains(0))
	assert.False(t, StronglyConnected(nil, nil).Contains(0))
}

func TestLargestSCCFlags(t *testing.T) {
	firstOut := []uint32{0, 1, 2, 4, 4}
	head := []uint32{1, 2, 0, 3}

	flags := LargestSCCFlags(firstOut, head, StronglyConnected)
	assert.Equal(t, []uint32{1, 1, 1, 0}, flags)

	// The collaborator is treated as an opaque predicate.
	var gotFirstOut, gotHead []uint32
	only3 := func(fo, h []uint32) Membership {
		gotFirstOut, gotHead = fo, h
		s := NewNodeSet(4)
		s.Add(3)
		return s
	}
	assert.Equal(t, []uint32{0, 0, 0, 1}, LargestSCCFlags(firstOut, head, only3))
	assert.Equal(t, firstOut, gotFirstOut)
	assert.Equal(t, head, gotHead)

	assert.Empty(t, LargestSCCFlags([]uint32{0}, nil, StronglyConnected))
}

func TestLargestWeakComponentSize(t *testing.T) {
	// Two components: {0,1,2} via one-way arcs and {3,4}.
	firstOut := []uint32{0, 1, 2, 2, 3, 3}
	head := []uint32{1, 2, 4}
	assert.Equal(t, 3, LargestWeakComponentSize(firstOut, head))
	assert.Equal(t, 0, LargestWeakComponentSize([]uint32{0}, nil))
}

func TestNodeSet(t *testing.T) {
	s := NewNodeSet(130)
	s.Add(0)
	s.Add(64)
	s.Add(129)
	assert.True(t, s.Contains(64))
	assert.False(t, s.Contains(65))
	assert.False(t, s.Contains(1000))
	assert.Equal(t, 3, s.Count())

	s.Remove(64)
	assert.False(t, s.Contains(64))
	assert.Equal(t, 2, s.Count())
}
