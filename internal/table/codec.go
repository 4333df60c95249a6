package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Cache container format constants. One container holds exactly one table
// under a caller-chosen key:
//
//	[magic(4) | version(2) | reserved(2) | batchID(16) | keyLen(2) | key |
//	 ncols(4) | nrows(8) | ncols×(nameLen(2)+name) | ncols×nrows×float64 |
//	 CRC32C(4)]
//
// All integers are big-endian; floats are IEEE 754 bit patterns. The CRC
// covers every byte before the trailer.
const (
	cacheMagic   = 0x43595442 // "CYTB"
	cacheVersion = 1
	cacheFixed   = 4 + 2 + 2 + 16 // bytes before the key length
	cacheCRCSize = 4

	maxNameLen = 1 << 12
	maxColumns = 1 << 20
	maxRows    = 1 << 40
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

var (
	// ErrCorrupt reports a cache container whose framing or checksum does
	// not hold. Callers treat it as "no usable cache", not as a bug.
	ErrCorrupt = errors.New("table: corrupt cache container")

	// ErrKeyNotFound reports a structurally valid container that stores its
	// table under a different key than requested.
	ErrKeyNotFound = errors.New("table: no table stored under key")
)

// Write stores t under key at path, stamped with the batch id that produced
// it. The container is written to a temp file, synced, and renamed into
// place so a crash never leaves a half-written cache behind.
func Write(path, key string, batchID uuid.UUID, t *Table) error {
	if len(key) == 0 || len(key) > maxNameLen {
		return fmt.Errorf("table: invalid table key length %d", len(key))
	}
	for _, col := range t.cols {
		if len(col) == 0 || len(col) > maxNameLen {
			return fmt.Errorf("table: invalid column name length %d", len(col))
		}
	}
	if len(t.cols) > maxColumns {
		return fmt.Errorf("table: too many columns (%d, max %d)", len(t.cols), maxColumns)
	}

	size := cacheFixed + 2 + len(key) + 4 + 8 + cacheCRCSize
	for _, col := range t.cols {
		size += 2 + len(col) + 8*t.rows
	}
	dst := make([]byte, 0, size)

	dst = binary.BigEndian.AppendUint32(dst, cacheMagic)
	dst = binary.BigEndian.AppendUint16(dst, cacheVersion)
	dst = binary.BigEndian.AppendUint16(dst, 0) // reserved
	dst = append(dst, batchID[:]...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(key)))
	dst = append(dst, key...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(t.cols)))
	dst = binary.BigEndian.AppendUint64(dst, uint64(t.rows))
	for _, col := range t.cols {
		dst = binary.BigEndian.AppendUint16(dst, uint16(len(col)))
		dst = append(dst, col...)
	}
	for _, col := range t.cols {
		for _, v := range t.data[col] {
			dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}
	dst = binary.BigEndian.AppendUint32(dst, crc32.Checksum(dst, crc32cTable))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("table: create cache directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, dst, 0o600); err != nil {
		return fmt.Errorf("table: write cache tmp: %w", err)
	}

	// Sync the temp file before rename for crash safety.
	f, err := os.Open(tmp) //nolint:gosec // path is constructed from the configured cache path
	if err != nil {
		return fmt.Errorf("table: open cache tmp for sync: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("table: sync cache tmp: %w", err)
	}
	_ = f.Close()

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("table: rename cache into place: %w", err)
	}
	return nil
}

// Read loads the table stored under key at path, returning it together with
// the batch id stamped by the writer.
func Read(path, key string) (*Table, uuid.UUID, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is constructed from the configured cache path
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("table: read cache: %w", err)
	}
	if len(raw) < cacheFixed+2+cacheCRCSize {
		return nil, uuid.Nil, fmt.Errorf("%w: %d bytes is shorter than any valid container", ErrCorrupt, len(raw))
	}

	body, trailer := raw[:len(raw)-cacheCRCSize], raw[len(raw)-cacheCRCSize:]
	want := binary.BigEndian.Uint32(trailer)
	if got := crc32.Checksum(body, crc32cTable); got != want {
		return nil, uuid.Nil, fmt.Errorf("%w: CRC mismatch (stored 0x%08X, computed 0x%08X)", ErrCorrupt, want, got)
	}

	magic := binary.BigEndian.Uint32(body[0:4])
	if magic != cacheMagic {
		return nil, uuid.Nil, fmt.Errorf("%w: bad magic 0x%08X (expected 0x%08X)", ErrCorrupt, magic, cacheMagic)
	}
	version := binary.BigEndian.Uint16(body[4:6])
	if version != cacheVersion {
		return nil, uuid.Nil, fmt.Errorf("table: unsupported container version %d", version)
	}
	var batchID uuid.UUID
	copy(batchID[:], body[8:24])

	cur := cursor{buf: body, off: cacheFixed}
	storedKey, ok := cur.str()
	if !ok {
		return nil, uuid.Nil, fmt.Errorf("%w: truncated key", ErrCorrupt)
	}
	if storedKey != key {
		return nil, uuid.Nil, fmt.Errorf("%w %q: container holds %q", ErrKeyNotFound, key, storedKey)
	}

	ncols, okC := cur.u32()
	nrows, okR := cur.u64()
	if !okC || !okR {
		return nil, uuid.Nil, fmt.Errorf("%w: truncated shape", ErrCorrupt)
	}
	if ncols > maxColumns {
		return nil, uuid.Nil, fmt.Errorf("%w: %d columns exceeds limit %d", ErrCorrupt, ncols, maxColumns)
	}
	if nrows > maxRows {
		return nil, uuid.Nil, fmt.Errorf("%w: %d rows exceeds limit %d", ErrCorrupt, nrows, maxRows)
	}

	cols := make([]string, ncols)
	for i := range cols {
		name, ok := cur.str()
		if !ok {
			return nil, uuid.Nil, fmt.Errorf("%w: truncated column name %d", ErrCorrupt, i)
		}
		cols[i] = name
	}

	if need := uint64(ncols) * nrows * 8; uint64(cur.remain()) != need {
		return nil, uuid.Nil, fmt.Errorf("%w: payload is %d bytes, shape needs %d", ErrCorrupt, cur.remain(), need)
	}
	data := make(map[string][]float64, ncols)
	for _, col := range cols {
		vals := make([]float64, nrows)
		for i := range vals {
			bits, _ := cur.u64()
			vals[i] = math.Float64frombits(bits)
		}
		if _, dup := data[col]; dup {
			return nil, uuid.Nil, fmt.Errorf("%w: duplicate column %q", ErrCorrupt, col)
		}
		data[col] = vals
	}

	return &Table{cols: cols, data: data, rows: int(nrows)}, batchID, nil
}

// cursor walks a byte slice with bounds checking. All reads are big-endian.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remain() int { return len(c.buf) - c.off }

func (c *cursor) take(n int) ([]byte, bool) {
	if n < 0 || c.remain() < n {
		return nil, false
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, true
}

func (c *cursor) u16() (uint16, bool) {
	b, ok := c.take(2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

func (c *cursor) u32() (uint32, bool) {
	b, ok := c.take(4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

func (c *cursor) u64() (uint64, bool) {
	b, ok := c.take(8)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

func (c *cursor) str() (string, bool) {
	n, ok := c.u16()
	if !ok {
		return "", false
	}
	b, ok := c.take(int(n))
	if !ok {
		return "", false
	}
	return string(b), true
}
