package xmss

import (
	"path/filepath"
	"testing"
)

func TestInMemoryContainerBorrowsSequentially(t *testing.T) {
	c := newInMemoryContainer()
	for want := uint64(0); want < 5; want++ {
		got, err := c.BorrowIndex()
		if err != nil {
			t.Fatalf("BorrowIndex: %s", err)
		}
		if got != want {
			t.Fatalf("BorrowIndex() = %d, want %d", got, want)
		}
	}
}

func TestFileContainerPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.idx")

	c1, err := OpenFileContainer(path)
	if err != nil {
		t.Fatalf("OpenFileContainer: %s", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := c1.BorrowIndex(); err != nil {
			t.Fatalf("BorrowIndex: %s", err)
		}
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}

	c2, err := OpenFileContainer(path)
	if err != nil {
		t.Fatalf("reopening OpenFileContainer: %s", err)
	}
	defer c2.Close()

	idx, err := c2.Index()
	if err != nil {
		t.Fatalf("Index: %s", err)
	}
	if idx != 3 {
		t.Fatalf("Index() after reopen = %d, want 3", idx)
	}
}

func TestFileContainerRefusesSecondLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.idx")

	c1, err := OpenFileContainer(path)
	if err != nil {
		t.Fatalf("OpenFileContainer: %s", err)
	}
	defer c1.Close()

	_, err2 := OpenFileContainer(path)
	if err2 == nil {
		t.Fatalf("expected the second OpenFileContainer to fail while the first holds the lock")
	}
	if !err2.Locked() {
		t.Fatalf("expected a Locked() error for a contended lock")
	}
}
