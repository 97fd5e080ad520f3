package graph

// InvertInverse derives the tail array from firstOut: tail[i] is the node v
// with firstOut[v] <= i < firstOut[v+1]. firstOut must be monotone; this is
// not checked here.
func InvertInverse(firstOut []uint32) []uint32 {
	if len(firstOut) == 0 {
		return nil
	}
	numNodes := uint32(len(firstOut) - 1)
	tail := make([]uint32, firstOut[numNodes])
	for v := uint32(0); v < numNodes; v++ {
		for i := firstOut[v]; i < firstOut[v+1]; i++ {
			tail[i] = v
		}
	}
	return tail
}

// FirstOutFromTails builds the CSR offset array for arcs sorted by tail.
// It is the inverse of InvertInverse.
func FirstOutFromTails(tail []uint32, numNodes uint32) []uint32 {
	firstOut := make([]uint32, numNodes+1)

	// Count arcs per node.
	for _, v := range tail {
		firstOut[v+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}
	return firstOut
}
