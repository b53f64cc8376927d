package scifi

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	sqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const layersSchema = `
CREATE TABLE SciFiLayers (
	LayerID INTEGER NOT NULL,
	LayerType TEXT NOT NULL,
	Radius REAL NOT NULL,
	Pitch REAL NOT NULL,
	FirstChannel INTEGER NOT NULL,
	LastChannel INTEGER NOT NULL,
	IsSecond INTEGER NOT NULL,
	MinRun INTEGER NOT NULL,
	MaxRun INTEGER NOT NULL
)`

const groupsSchema = `
CREATE TABLE SciFiGroups (
	GroupID INTEGER NOT NULL,
	LayerID INTEGER NOT NULL,
	MinRun INTEGER NOT NULL,
	MaxRun INTEGER NOT NULL
)`

func openRunDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	db, err := OpenDatabase("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, schema := range []string{layersSchema, groupsSchema} {
		_, err = db.Exec(schema)
		require.NoError(t, err)
	}

	pitch := math.Atan(100 / (2 * math.Pi * 50))
	layers := []struct {
		id             int
		family         string
		radius, pitch  float64
		first, last    int
		second         int
		minRun, maxRun int
	}{
		// runs 1-100: a single L/R/T group
		{0, "LHelical", 50, pitch, 0, 99, 0, 1, 100},
		{1, "RHelical", 50, -pitch, 100, 199, 0, 1, 100},
		{2, "Transverse", 50, 0, 200, 299, 0, 1, 100},
		// runs 101-200: two transverse layers in two groups
		{0, "Transverse", 40, 0, 0, 49, 0, 101, 200},
		{1, "Transverse", 42, 0, 50, 99, 1, 101, 200},
	}
	for _, l := range layers {
		_, err := db.Exec(`INSERT INTO SciFiLayers VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.id, l.family, l.radius, l.pitch, l.first, l.last, l.second, l.minRun, l.maxRun)
		require.NoError(t, err)
	}

	groups := [][4]int{
		{0, 0, 1, 100}, {0, 1, 1, 100}, {0, 2, 1, 100},
		{0, 0, 101, 200}, {1, 1, 101, 200},
	}
	for _, g := range groups {
		_, err := db.Exec(`INSERT INTO SciFiGroups VALUES (?, ?, ?, ?)`, g[0], g[1], g[2], g[3])
		require.NoError(t, err)
	}
	return db
}

func TestLoadCatalogFromDB(t *testing.T) {
	t.Parallel()
	db := openRunDB(t)

	cat, err := LoadCatalogFromDB(db, 50)
	require.NoError(t, err)
	want := testCatalog(t)
	require.Len(t, cat.Layers, len(want.Layers))
	for i := range want.Layers {
		assert.Equal(t, want.Layers[i].Family, cat.Layers[i].Family)
		assert.Equal(t, want.Layers[i].FirstChannel, cat.Layers[i].FirstChannel)
		assert.Equal(t, want.Layers[i].LastChannel, cat.Layers[i].LastChannel)
		assert.InDelta(t, want.Layers[i].Pitch, cat.Layers[i].Pitch, 1e-12)
	}
	require.Len(t, cat.Groups, 1)
	assert.Equal(t, []int{0, 1, 2}, cat.Groups[0].Layers)
	assert.InDelta(t, 100, cat.Groups[0].Lead, 1e-9)

	cat, err = LoadCatalogFromDB(db, 150)
	require.NoError(t, err)
	require.Len(t, cat.Layers, 2)
	require.Len(t, cat.Groups, 2)
	assert.True(t, cat.Layers[1].IsSecond)
	assert.InDelta(t, 42, cat.Groups[1].Radius, 1e-12)
}

func TestLoadCatalogFromDBUnknownRun(t *testing.T) {
	t.Parallel()
	db := openRunDB(t)

	_, err := LoadCatalogFromDB(db, 500)
	var invalid *ErrInvalidCatalog
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestLoadCatalogFromDBMissingTables(t *testing.T) {
	t.Parallel()
	db, err := OpenDatabase("sqlite", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = LoadCatalogFromDB(db, 1)
	var queryErr *ErrQueryDatabase
	require.True(t, errors.As(err, &queryErr), "got %v", err)
	assert.Equal(t, "SciFiLayers", queryErr.Table)
}
