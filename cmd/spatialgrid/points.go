package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/spatialgrid/grid"
)

// loadPoints reads a flat point cloud from a CSV file: one "x,y,z" triple
// per line, optionally transparently gzip-compressed (".gz" suffix).
// Blank lines and lines starting with "#" are skipped. This loader is a
// domain-stack convenience around the library, not part of grid's contract
// — grid.Build only ever sees an in-memory []grid.Point.
func loadPoints(path string) ([]grid.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("spatialgrid: opening gzip point file %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var points []grid.Point
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePointLine(line)
		if err != nil {
			return nil, fmt.Errorf("spatialgrid: %s:%d: %w", path, lineNo, err)
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

func parsePointLine(line string) (grid.Point, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return grid.Point{}, fmt.Errorf("expected 3 comma-separated fields, got %d", len(fields))
	}
	var coords [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return grid.Point{}, fmt.Errorf("field %d: %w", i, err)
		}
		coords[i] = v
	}
	return grid.Point{X: float32(coords[0]), Y: float32(coords[1]), Z: float32(coords[2])}, nil
}
