package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"osm_export_graph/pkg/config"
	"osm_export_graph/pkg/export"
)

func main() {
	os.Exit(run(os.Args, os.Stdout))
}

// run executes the export and returns the process exit code.
func run(args []string, stdout io.Writer) int {
	if len(args) != 3 {
		name := "osm_export_graph"
		if len(args) > 0 {
			name = filepath.Base(args[0])
		}
		fmt.Fprintf(stdout, "Usage: %s <directory> <pbf-file-name>\n", name)
		fmt.Fprintln(stdout, "Reads <directory>/<pbf-file-name> and writes first_out, head, travel_time,")
		fmt.Fprintln(stdout, "geo_distance, capacity, latitude, longitude and largest_scc into <directory>.")
		return 1
	}
	dir, pbf := args[1], args[2]

	log := logrus.New()
	log.SetOutput(stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		return 1
	}
	log.SetLevel(cfg.LogLevel)

	var metrics *export.Metrics
	if cfg.MetricsFile != "" {
		metrics = export.NewMetrics()
	}

	p := &export.Pipeline{
		Source:     export.OSMSource{Path: filepath.Join(dir, pbf), Procs: cfg.PBFProcs},
		TravelTime: cfg.TravelTime,
		Log:        log,
		Metrics:    metrics,
	}
	s, err := p.Run(context.Background(), dir)
	if err != nil {
		log.Errorf("Export failed: %v", err)
		return 1
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Errorf("Failed to write metrics: %v", err)
			return 1
		}
	}
	log.Infof("Done in %s", s.Duration.Round(time.Millisecond))
	return 0
}
