package osm

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// network is a small car network on the equator:
//
//	way 10 (residential, two-way):  1 - 2 - 3 - 4
//	way 11 (primary, oneway, 30):           3 - 5 - 6
//	way 12 (footway):                           4 - 7
//
// Routing nodes are 1, 3, 4 and 6; nodes 2 and 5 only shape the ways.
const network = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.001"/>
  <node id="3" lat="0" lon="0.002"/>
  <node id="4" lat="0" lon="0.003"/>
  <node id="5" lat="0.001" lon="0.002"/>
  <node id="6" lat="0.002" lon="0.002"/>
  <node id="7" lat="0.003" lon="0"/>
  <way id="10">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="4"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="11">
    <nd ref="3"/><nd ref="5"/><nd ref="6"/>
    <tag k="highway" v="primary"/>
    <tag k="oneway" v="yes"/>
    <tag k="lanes" v="2"/>
    <tag k="maxspeed" v="30"/>
  </way>
  <way id="12">
    <nd ref="4"/><nd ref="7"/>
    <tag k="highway" v="footway"/>
  </way>
  <relation id="100">
    <member type="way" ref="10" role="from"/>
    <member type="node" ref="3" role="via"/>
    <member type="way" ref="11" role="to"/>
    <tag k="type" v="restriction"/>
    <tag k="restriction" v="no_left_turn"/>
  </relation>
  <relation id="101">
    <member type="way" ref="12" role="outer"/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>
`

// writeOSM writes an OSM XML document to a temp file and returns its path.
func writeOSM(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.osm")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
