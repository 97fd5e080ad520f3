package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/osm"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"osm_export_graph/pkg/graph"
	osmparser "osm_export_graph/pkg/osm"
)

// ErrNotDirectory is returned when the output path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Input is the routing graph handed to the pipeline by a Source. Arc arrays
// are index-aligned with Head; node arrays with FirstOut.
type Input struct {
	FirstOut []uint32
	Head     []uint32

	Latitude  []float32
	Longitude []float32

	GeoDistance []uint32 // meters
	Capacity    []uint32 // vehicles per hour
	Way         []uint32 // routing way of each arc, indexes WaySpeed

	WaySpeed []uint32 // km/h per routing way

	TurnRestrictions int
}

// Source produces the routing graph of a run.
type Source interface {
	Load(ctx context.Context, log logrus.FieldLogger) (*Input, error)
}

// OSMSource loads a car routing graph from an OSM file (PBF, or XML for
// .osm/.xml names).
type OSMSource struct {
	Path  string
	Procs int // osmpbf decoder goroutines
}

// Load builds the ID mapping and then the routing graph. The mapping is only
// needed while the routing graph is built and is dropped before returning.
func (s OSMSource) Load(ctx context.Context, log logrus.FieldLogger) (*Input, error) {
	opt := osmparser.LoadOptions{Procs: s.Procs}

	log.Infof("Loading ID mapping from %s", s.Path)
	mapping, err := osmparser.LoadIDMapping(ctx, s.Path, func(id osm.WayID, tags osm.Tags) bool {
		return osmparser.IsWayUsedByCars(id, tags, log)
	}, log, opt)
	if err != nil {
		return nil, err
	}

	speeds := make([]uint32, mapping.WayCount())
	classify := func(id osm.WayID, routingWay uint32, tags osm.Tags) osmparser.Direction {
		speeds[routingWay] = osmparser.WaySpeed(id, tags, log)
		return osmparser.CarDirection(id, tags, log)
	}
	decode := func(id osm.RelationID, members osm.Members, tags osm.Tags, emit func(osmparser.TurnRestriction)) {
		osmparser.DecodeCarTurnRestriction(id, members, tags, emit, log)
	}

	log.Info("Loading routing graph")
	rg, err := osmparser.LoadRoutingGraph(ctx, s.Path, mapping, classify, decode, log, opt)
	if err != nil {
		return nil, err
	}

	return &Input{
		FirstOut:         rg.FirstOut,
		Head:             rg.Head,
		Latitude:         rg.Latitude,
		Longitude:        rg.Longitude,
		GeoDistance:      rg.GeoDistance,
		Capacity:         rg.Capacity,
		Way:              rg.Way,
		WaySpeed:         speeds,
		TurnRestrictions: len(rg.TurnRestrictions),
	}, nil
}

// Summary describes a finished run.
type Summary struct {
	Nodes              int
	Arcs               int
	LargestSCCNodes    int
	WeakComponentNodes int
	TurnRestrictions   int
	TravelTimeMode     graph.TravelTimeMode
	TravelTime         graph.TravelTimeStats
	Duration           time.Duration
	Finished           time.Time
}

// Pipeline turns the routing graph of a Source into the array files of a
// graph directory.
type Pipeline struct {
	Source     Source
	SCC        graph.SCCFunc // nil means graph.StronglyConnected
	TravelTime graph.TravelTimeMode
	Log        logrus.FieldLogger
	Metrics    *Metrics // optional
}

// Run loads the graph, derives tail, largest_scc and travel_time, and writes
// all arrays into dir. dir must already exist; files in it are overwritten.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Summary, error) {
	start := time.Now()
	log := p.Log

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output directory %s: %w", dir, ErrNotDirectory)
	}

	log.WithField("mode", p.TravelTime).Debug("Travel time encoding")

	in, err := p.Source.Load(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	g := &graph.Graph{
		FirstOut:    in.FirstOut,
		Head:        in.Head,
		GeoDistance: in.GeoDistance,
		Capacity:    in.Capacity,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("routing graph: %w", err)
	}

	g.Tail = graph.InvertInverse(g.FirstOut)

	scc := p.SCC
	if scc == nil {
		scc = graph.StronglyConnected
	}
	g.LargestSCC = graph.LargestSCCFlags(g.FirstOut, g.Head, scc)

	var stats graph.TravelTimeStats
	g.TravelTime, stats, err = graph.DeriveTravelTime(in.GeoDistance, in.Way, in.WaySpeed, p.TravelTime)
	if err != nil {
		return nil, fmt.Errorf("travel time: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	s := &Summary{
		Nodes:              g.NumNodes(),
		Arcs:               g.NumArcs(),
		LargestSCCNodes:    lo.Count(g.LargestSCC, 1),
		WeakComponentNodes: graph.LargestWeakComponentSize(g.FirstOut, g.Head),
		TurnRestrictions:   in.TurnRestrictions,
		TravelTimeMode:     p.TravelTime,
		TravelTime:         stats,
	}

	log.Infof("Graph properties: %d vertices, %d edges", s.Nodes, s.Arcs)
	log.WithFields(logrus.Fields{
		"largest_scc":    s.LargestSCCNodes,
		"largest_weak":   s.WeakComponentNodes,
		"sentinel_arcs":  stats.Sentinel,
		"floored_arcs":   stats.Floored,
		"restrictions":   s.TurnRestrictions,
		"travel_time_as": p.TravelTime,
	}).Debug("Graph statistics")
	if stats.Sentinel > 0 {
		log.Warnf("%d arcs take longer than a day and carry the sentinel travel time", stats.Sentinel)
	}

	log.Info("Writing results..")
	if err := graph.WriteArrays(dir, g); err != nil {
		return nil, err
	}

	s.Finished = time.Now()
	s.Duration = s.Finished.Sub(start)
	if p.Metrics != nil {
		p.Metrics.Observe(s)
	}
	return s, nil
}
