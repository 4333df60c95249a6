package table

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	b := NewBuilder()
	b.Append([]Cell{{Col: "total_heu", Val: 12.5}, {Col: "swu_used", Val: 3200}})
	b.Append([]Cell{{Col: "total_heu", Val: 0}, {Col: "enrichment_feed_kg", Val: 88.25}})
	b.Append([]Cell{{Col: "swu_used", Val: 0.125}})
	return b.Table()
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.bin")
	want := sampleTable()
	id := uuid.New()

	require.NoError(t, Write(path, "runs", id, want))

	got, gotID, err := Read(path, "runs")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	requireEqualTables(t, want, got)

	// No temp file survives a successful write.
	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCacheRoundTripEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.bin")
	require.NoError(t, Write(path, "runs", uuid.Nil, NewBuilder().Table()))

	got, gotID, err := Read(path, "runs")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, gotID)
	assert.Zero(t, got.NumRows())
	assert.Empty(t, got.Columns())
}

func TestReadRejectsWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.bin")
	require.NoError(t, Write(path, "runs", uuid.New(), sampleTable()))

	_, _, err := Read(path, "other")
	require.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorContains(t, err, `container holds "runs"`)
}

func TestReadDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.bin")
	require.NoError(t, Write(path, "runs", uuid.New(), sampleTable()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// Flip one payload byte: the CRC must catch it.
	flipped := bytes.Clone(raw)
	flipped[len(flipped)/2] ^= 0xFF
	bad := filepath.Join(dir, "flipped.bin")
	require.NoError(t, os.WriteFile(bad, flipped, 0o600))
	_, _, err = Read(bad, "runs")
	assert.ErrorIs(t, err, ErrCorrupt)

	// Truncation is corruption too.
	short := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(short, raw[:len(raw)/2], 0o600))
	_, _, err = Read(short, "runs")
	assert.ErrorIs(t, err, ErrCorrupt)

	// A missing file is not corruption; the os error surfaces.
	_, _, err = Read(filepath.Join(dir, "absent.bin"), "runs")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestWriteCreatesCacheDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "results.bin")
	require.NoError(t, Write(path, "runs", uuid.New(), sampleTable()))

	_, _, err := Read(path, "runs")
	require.NoError(t, err)
}

func TestWriteRejectsBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.bin")
	assert.Error(t, Write(path, "", uuid.New(), sampleTable()))
}

func TestWriteCSV(t *testing.T) {
	b := NewBuilder()
	b.Append([]Cell{{Col: "a", Val: 1}, {Col: "b", Val: 2.5}})
	b.Append([]Cell{{Col: "a", Val: 3}, {Col: "c", Val: 4}})
	tbl := b.Table()

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	assert.Equal(t, "a,b,c\n1,2.5,NaN\n3,NaN,4\n", buf.String())
}
