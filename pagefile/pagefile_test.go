package pagefile

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.idx")
	pf, err := Open(path, ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pf.Close()

	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	if err := pf.Write(3, buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := make([]byte, PageSize)
	if err := pf.Read(3, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(buf, got) {
		t.Fatalf("round trip mismatch")
	}
}

func TestEndPidGrowsWithWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.idx")
	pf, err := Open(path, ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pf.Close()

	end, err := pf.EndPid()
	if err != nil {
		t.Fatalf("EndPid: %v", err)
	}
	if end != 0 {
		t.Fatalf("fresh file EndPid = %d, want 0", end)
	}

	buf := make([]byte, PageSize)
	if err := pf.Write(0, buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := pf.Write(4, buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	end, err = pf.EndPid()
	if err != nil {
		t.Fatalf("EndPid: %v", err)
	}
	if end != 5 {
		t.Fatalf("EndPid after writing page 4 = %d, want 5", end)
	}
}

func TestReadPastEndReturnsZeroed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.idx")
	pf, err := Open(path, ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pf.Close()

	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = 0xAB
	}
	if err := pf.Read(10, buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %x, want 0 (zero-filled past EOF)", i, b)
		}
	}
}
