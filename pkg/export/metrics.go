package export

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the statistics of one export run in a private registry.
// The registry is written once, after the arrays, in the Prometheus text
// format so a node_exporter textfile collector can pick it up.
type Metrics struct {
	reg *prometheus.Registry

	Nodes            prometheus.Gauge
	Arcs             prometheus.Gauge
	LargestSCCNodes  prometheus.Gauge
	SentinelArcs     prometheus.Gauge
	FlooredArcs      prometheus.Gauge
	TurnRestrictions prometheus.Gauge
	Duration         prometheus.Gauge // seconds
	LastSuccess      prometheus.Gauge // unix seconds
}

// NewMetrics creates and registers the run gauges.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_nodes",
			Help: "Number of routing nodes written.",
		}),
		Arcs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_arcs",
			Help: "Number of arcs written.",
		}),
		LargestSCCNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_largest_scc_nodes",
			Help: "Number of nodes in the largest strongly connected component.",
		}),
		SentinelArcs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_sentinel_arcs",
			Help: "Arcs whose travel time exceeded one day and were set to the sentinel.",
		}),
		FlooredArcs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_floored_arcs",
			Help: "Arcs whose travel time rounded to zero seconds and were raised to 1.",
		}),
		TurnRestrictions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_turn_restrictions",
			Help: "Turn restrictions decoded from the input.",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_duration_seconds",
			Help: "Wall time of the export run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osm_export_graph_last_success_timestamp_seconds",
			Help: "Unix time the last export finished writing.",
		}),
	}

	reg.MustRegister(
		m.Nodes, m.Arcs, m.LargestSCCNodes,
		m.SentinelArcs, m.FlooredArcs, m.TurnRestrictions,
		m.Duration, m.LastSuccess,
	)
	return m
}

// Observe records the summary of a finished run.
func (m *Metrics) Observe(s *Summary) {
	m.Nodes.Set(float64(s.Nodes))
	m.Arcs.Set(float64(s.Arcs))
	m.LargestSCCNodes.Set(float64(s.LargestSCCNodes))
	m.SentinelArcs.Set(float64(s.TravelTime.Sentinel))
	m.FlooredArcs.Set(float64(s.TravelTime.Floored))
	m.TurnRestrictions.Set(float64(s.TurnRestrictions))
	m.Duration.Set(s.Duration.Seconds())
	m.LastSuccess.Set(float64(s.Finished.Unix()))
}

// WriteTextfile writes the registry to path. The file is written to a
// temporary name and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
