package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"osm_export_graph/pkg/graph"
)

// Config holds the run settings that are not part of the command line.
type Config struct {
	LogLevel    logrus.Level
	PBFProcs    int
	TravelTime  graph.TravelTimeMode
	MetricsFile string // empty disables the metrics textfile
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	level, err := logrus.ParseLevel(getenvDefault("OSM_EXPORT_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid OSM_EXPORT_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	// Decoder goroutines for PBF input
	if v := os.Getenv("OSM_EXPORT_PBF_PROCS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid OSM_EXPORT_PBF_PROCS: %q", v)
		}
		cfg.PBFProcs = n
	} else {
		cfg.PBFProcs = 1
	}

	mode, err := graph.ParseTravelTimeMode(os.Getenv("OSM_EXPORT_TRAVEL_TIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid OSM_EXPORT_TRAVEL_TIME: %w", err)
	}
	cfg.TravelTime = mode

	cfg.MetricsFile = os.Getenv("OSM_EXPORT_METRICS_FILE")

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
