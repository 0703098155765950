// Package magiccache persists the board package's precomputed fancy-magic
// sliding-attack tables to a local BadgerDB store, verified by an xxhash
// checksum and a version header. Recomputing the tables at process start
// is cheap (board.init does it unconditionally regardless of this
// package), so this is a consistency/inspection tool — a way to snapshot
// a known-good table and later confirm a freshly computed one still
// matches bit-for-bit — rather than a startup-latency optimization.
package magiccache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// ErrMissing is returned by Load when no record exists for the given key.
var ErrMissing = errors.New("magiccache: no cached table for key")

// ErrStale is returned by Load when a cached record exists but its
// version or checksum doesn't match what the caller expects — the record
// predates a table-layout change, or the on-disk file was corrupted.
var ErrStale = errors.New("magiccache: cached table is stale or corrupt")

// Cache wraps a BadgerDB handle scoped to one directory of cached tables.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) a Cache rooted at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("magiccache: open %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// record layout on disk: 4-byte version, 8-byte xxhash checksum of the
// payload, then the payload itself as little-endian uint64 words.
const headerBytes = 4 + 8

// Store saves table under key, stamped with version and an xxhash
// checksum of its contents.
func (c *Cache) Store(key string, version uint32, table []uint64) error {
	payload := make([]byte, len(table)*8)
	for i, v := range table {
		binary.LittleEndian.PutUint64(payload[i*8:], v)
	}
	checksum := xxhash.Sum64(payload)

	record := make([]byte, headerBytes+len(payload))
	binary.LittleEndian.PutUint32(record[0:4], version)
	binary.LittleEndian.PutUint64(record[4:12], checksum)
	copy(record[headerBytes:], payload)

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), record)
	})
}

// Load retrieves the table stored under key and verifies it was stamped
// with wantVersion and that its checksum still matches its payload.
// Returns ErrMissing if key was never stored, ErrStale if the stored
// record's version or checksum doesn't check out.
func (c *Cache) Load(key string, wantVersion uint32) ([]uint64, error) {
	var record []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return ErrMissing
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(record) < headerBytes {
		return nil, ErrStale
	}
	version := binary.LittleEndian.Uint32(record[0:4])
	checksum := binary.LittleEndian.Uint64(record[4:12])
	payload := record[headerBytes:]

	if version != wantVersion {
		return nil, ErrStale
	}
	if xxhash.Sum64(payload) != checksum {
		return nil, ErrStale
	}
	if len(payload)%8 != 0 {
		return nil, ErrStale
	}

	table := make([]uint64, len(payload)/8)
	for i := range table {
		table[i] = binary.LittleEndian.Uint64(payload[i*8:])
	}
	return table, nil
}
