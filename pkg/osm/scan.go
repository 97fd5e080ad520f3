package osm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// LoadOptions configures how OSM files are read.
type LoadOptions struct {
	Procs int // osmpbf decoder goroutines; values below 1 mean 1
}

func loadOptions(opts []LoadOptions) LoadOptions {
	var opt LoadOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt.Procs = max(opt.Procs, 1)
	return opt
}

// objectScanner is the contract shared by osmpbf.Scanner and osmxml.Scanner.
type objectScanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// objectKinds selects the object types a pass needs. The PBF decoder skips
// the rest without decoding them.
type objectKinds struct {
	nodes, ways, relations bool
}

// scanFile runs visit over every object of the requested kinds in path.
// Files ending in .osm or .xml are read as OSM XML, everything else as PBF.
func scanFile(ctx context.Context, path string, kinds objectKinds, opt LoadOptions, visit func(osm.Object)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var scanner objectScanner
	if isXML(path) {
		scanner = osmxml.New(ctx, f)
	} else {
		s := osmpbf.New(ctx, f, opt.Procs)
		s.SkipNodes = !kinds.nodes
		s.SkipWays = !kinds.ways
		s.SkipRelations = !kinds.relations
		scanner = s
	}
	defer scanner.Close()

	for scanner.Scan() {
		visit(scanner.Object())
	}
	return scanner.Err()
}

func isXML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return true
	}
	return false
}
