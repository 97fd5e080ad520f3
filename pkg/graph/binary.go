package graph

// Output format
//
// A graph directory holds one file per array. Each file is the raw array
// dump: elements in index order, fixed width, host byte order, no header,
// no length prefix and no checksum. Lengths are implied by file size.
//
//	first_out     uint32   NumNodes+1
//	head          uint32   NumArcs
//	travel_time   uint32   NumArcs
//	geo_distance  uint32   NumArcs   meters
//	capacity      uint32   NumArcs   vehicles per hour
//	latitude      float32  NumNodes  degrees
//	longitude     float32  NumNodes  degrees
//	largest_scc   uint32   NumNodes  0 or 1
//
// travel_time depends on the TravelTimeMode of the run. In the default
// TravelTimeCompat mode the value is ms*18/speed/5 (integer steps, speed in
// km/h), as the legacy exporter wrote it; consumers that want milliseconds
// must export with TravelTimeMilliseconds. TravelTimeSentinel (86400000,
// before the compat rescale) marks arcs slower than one day.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

// Array file names.
const (
	FileFirstOut    = "first_out"
	FileHead        = "head"
	FileTravelTime  = "travel_time"
	FileGeoDistance = "geo_distance"
	FileCapacity    = "capacity"
	FileLatitude    = "latitude"
	FileLongitude   = "longitude"
	FileLargestSCC  = "largest_scc"
)

// ErrBadFileSize is returned when a file's size is not a multiple of its element width.
var ErrBadFileSize = errors.New("file size is not a multiple of the element width")

// WriteArrays writes every persisted array of g into dir, one raw file per
// array, replacing existing files. dir must exist. A failure leaves the files
// written so far in place.
func WriteArrays(dir string, g *Graph) error {
	uint32Arrays := []struct {
		name string
		data []uint32
	}{
		{FileFirstOut, g.FirstOut},
		{FileHead, g.Head},
		{FileTravelTime, g.TravelTime},
		{FileGeoDistance, g.GeoDistance},
		{FileCapacity, g.Capacity},
	}
	for _, a := range uint32Arrays {
		if err := WriteUint32File(filepath.Join(dir, a.name), a.data); err != nil {
			return err
		}
	}
	if err := WriteFloat32File(filepath.Join(dir, FileLatitude), g.Latitude); err != nil {
		return err
	}
	if err := WriteFloat32File(filepath.Join(dir, FileLongitude), g.Longitude); err != nil {
		return err
	}
	return WriteUint32File(filepath.Join(dir, FileLargestSCC), g.LargestSCC)
}

// ReadArrays loads a graph directory written by WriteArrays and validates it.
// Tail is rebuilt from FirstOut.
func ReadArrays(dir string) (*Graph, error) {
	g := &Graph{}
	var err error

	uint32Arrays := []struct {
		name string
		dst  *[]uint32
	}{
		{FileFirstOut, &g.FirstOut},
		{FileHead, &g.Head},
		{FileTravelTime, &g.TravelTime},
		{FileGeoDistance, &g.GeoDistance},
		{FileCapacity, &g.Capacity},
		{FileLargestSCC, &g.LargestSCC},
	}
	for _, a := range uint32Arrays {
		if *a.dst, err = ReadUint32File(filepath.Join(dir, a.name)); err != nil {
			return nil, err
		}
	}
	if g.Latitude, err = ReadFloat32File(filepath.Join(dir, FileLatitude)); err != nil {
		return nil, err
	}
	if g.Longitude, err = ReadFloat32File(filepath.Join(dir, FileLongitude)); err != nil {
		return nil, err
	}

	// Empty dumps read back as nil; Validate needs non-nil for the 0/1 check.
	if g.LargestSCC == nil {
		g.LargestSCC = []uint32{}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(g.TravelTime) != g.NumArcs() {
		return nil, fmt.Errorf("%s: %w: travel_time has %d elements, want %d arcs",
			dir, ErrLengthMismatch, len(g.TravelTime), g.NumArcs())
	}
	g.Tail = InvertInverse(g.FirstOut)
	return g, nil
}

// WriteUint32File dumps s to path as raw host-order uint32 values.
func WriteUint32File(path string, s []uint32) error {
	return writeFile(path, func(w io.Writer) error { return writeUint32Slice(w, s) })
}

// WriteFloat32File dumps s to path as raw host-order IEEE-754 float32 values.
func WriteFloat32File(path string, s []float32) error {
	return writeFile(path, func(w io.Writer) error { return writeFloat32Slice(w, s) })
}

// ReadUint32File reads a raw uint32 dump. The element count is the file size / 4.
func ReadUint32File(path string) ([]uint32, error) {
	var s []uint32
	err := readFile(path, 4, func(r io.Reader, n int) (err error) {
		s, err = readUint32Slice(r, n)
		return err
	})
	return s, err
}

// ReadFloat32File reads a raw float32 dump. The element count is the file size / 4.
func ReadFloat32File(path string) ([]float32, error) {
	var s []float32
	err := readFile(path, 4, func(r io.Reader, n int) (err error) {
		s, err = readFloat32Slice(r, n)
		return err
	})
	return s, err
}

// writeFile creates (or truncates) path, runs write through a buffered
// writer, and flushes and closes the file before returning.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func readFile(path string, width int64, read func(r io.Reader, n int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size()%width != 0 {
		return fmt.Errorf("%s: %w (%d bytes, width %d)", path, ErrBadFileSize, info.Size(), width)
	}
	if err := read(bufio.NewReaderSize(f, 1<<20), int(info.Size()/width)); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice. Byte order is the host's.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat32Slice(w io.Writer, s []float32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat32Slice(r io.Reader, n int) ([]float32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}
