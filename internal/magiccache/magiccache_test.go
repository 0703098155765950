package magiccache

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/ekmadsen/chesscore/internal/board"
)

func TestStoreAndLoadRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chesscore-magiccache-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	c, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	table := board.ExportBishopAttackTable()
	if err := c.Store("bishop", board.MagicTableVersion, table); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := c.Load("bishop", board.MagicTableVersion)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(table) {
		t.Fatalf("round-tripped table has %d entries, want %d", len(got), len(table))
	}
	for i := range table {
		if got[i] != table[i] {
			t.Fatalf("entry %d: got %#x, want %#x", i, got[i], table[i])
		}
	}
}

func TestLoadMissingKey(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chesscore-magiccache-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	c, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Load("nonexistent", board.MagicTableVersion); err != ErrMissing {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chesscore-magiccache-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	c, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.Store("rook", 1, []uint64{1, 2, 3}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := c.Load("rook", 2); err != ErrStale {
		t.Fatalf("expected ErrStale for a version mismatch, got %v", err)
	}
}

func TestLoadRejectsCorruptPayload(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chesscore-magiccache-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	c, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.Store("rook", 1, []uint64{1, 2, 3}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Overwrite with a record whose checksum no longer matches its payload.
	if err := c.db.Update(func(txn *badger.Txn) error {
		record := make([]byte, headerBytes+24)
		binary.LittleEndian.PutUint32(record[0:4], 1)
		binary.LittleEndian.PutUint64(record[4:12], 0xdeadbeef)
		return txn.Set([]byte("rook"), record)
	}); err != nil {
		t.Fatalf("corrupt write: %v", err)
	}

	if _, err := c.Load("rook", 1); err != ErrStale {
		t.Fatalf("expected ErrStale for a corrupt checksum, got %v", err)
	}
}

func TestReopenPersistsAcrossSessions(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chesscore-magiccache-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	c, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := board.ExportRookAttackTable()
	if err := c.Store("rook", board.MagicTableVersion, want); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load("rook", board.MagicTableVersion)
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("reopened table has %d entries, want %d", len(got), len(want))
	}
}
