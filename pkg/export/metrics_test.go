package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm_export_graph/pkg/graph"
)

func TestMetricsTextfile(t *testing.T) {
	m := NewMetrics()
	m.Observe(&Summary{
		Nodes:            10,
		Arcs:             24,
		LargestSCCNodes:  9,
		TurnRestrictions: 3,
		TravelTime:       graph.TravelTimeStats{Sentinel: 2, Floored: 5},
		Duration:         1500 * time.Millisecond,
		Finished:         time.Unix(1_700_000_000, 0),
	})

	n, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 1.5, testutil.ToFloat64(m.Duration))

	path := filepath.Join(t.TempDir(), "osm_export.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	for _, line := range []string{
		"osm_export_graph_nodes 10",
		"osm_export_graph_arcs 24",
		"osm_export_graph_largest_scc_nodes 9",
		"osm_export_graph_sentinel_arcs 2",
		"osm_export_graph_floored_arcs 5",
		"osm_export_graph_turn_restrictions 3",
		"osm_export_graph_last_success_timestamp_seconds 1.7e+09",
	} {
		assert.True(t, strings.Contains(text, line+"\n"), "missing %q in\n%s", line, text)
	}
}

func TestMetricsTextfileBadPath(t *testing.T) {
	m := NewMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "osm_export.prom"))
	assert.Error(t, err)
}
