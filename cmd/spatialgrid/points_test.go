package main

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/spatialgrid/grid"
)

func TestLoadPointsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n0,0,0\n1.5, 2.5 ,3.5\n\n10,10,10\n"), 0644))

	points, err := loadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []grid.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 1.5, Y: 2.5, Z: 3.5},
		{X: 10, Y: 10, Z: 10},
	}, points)
}

func TestLoadPointsGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("1,2,3\n4,5,6\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	points, err := loadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []grid.Point{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, points)
}

func TestLoadPointsRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2\n"), 0644))

	_, err := loadPoints(path)
	assert.Error(t, err)
}
