package xmss

import (
	"encoding/binary"
	"os"

	"github.com/bwesterb/byteswriter"
	"github.com/cespare/xxhash"
	"github.com/edsrzf/mmap-go"
	"github.com/hashicorp/go-multierror"
	"github.com/nightlyone/lockfile"
)

// PrivateKeyContainer owns the one piece of mutable state a private key
// has: its next-unused leaf index. spec.md §9 notes that a production
// implementer MUST persist this index across process restarts, on pain
// of reusing a WOTS+ leaf -- the single worst failure mode in a
// stateful signature scheme. BorrowIndex is the only method that
// matters for that guarantee; everything else exists to make a
// filesystem-backed container usable from a CLI.
//
// Grounded on the teacher's container.go PrivateKeyContainer interface,
// cut down from per-subtree caching (an XMSS^MT concern this single-tree
// core has no use for) to the one counter a plain XMSS key needs.
type PrivateKeyContainer interface {
	// BorrowIndex persists idx+1 before returning idx, so a crash
	// between persisting and the caller actually using idx burns one
	// signature instead of risking reuse.
	BorrowIndex() (uint64, Error)

	// Index reports the next index that would be borrowed, without
	// consuming it.
	Index() (uint64, Error)

	Close() Error
}

// inMemoryContainer is the zero-setup PrivateKeyContainer GenerateKeyPair
// falls back to when the caller supplies none. It offers no crash safety
// at all; it exists for tests and for callers who persist the whole
// PrivateKey some other way.
type inMemoryContainer struct {
	idx uint64
}

func newInMemoryContainer() *inMemoryContainer { return &inMemoryContainer{} }

func (c *inMemoryContainer) BorrowIndex() (uint64, Error) {
	idx := c.idx
	c.idx++
	return idx, nil
}

func (c *inMemoryContainer) Index() (uint64, Error) { return c.idx, nil }
func (c *inMemoryContainer) Close() Error           { return nil }

// fsContainer persists the index counter to a small file, guarded by an
// advisory lock so two processes never borrow the same index from the
// same key. Grounded on the teacher's fsContainer: a lockfile.Lockfile
// held for the container's lifetime, an mmap-go working buffer instead
// of repeated read/write syscalls, and -- unlike the teacher, which
// never actually wires this up -- an xxhash64 trailer that lets Open
// detect a torn write from a crash mid-flush.
//
// Layout: 8 bytes big-endian index, 8 bytes big-endian xxhash64 of the
// index bytes.
type fsContainer struct {
	path string
	lock lockfile.Lockfile
	file *os.File
	mm   mmap.MMap
}

const fsContainerSize = 16

// OpenFileContainer opens or creates the index-counter file at path,
// taking an advisory lock that is held until Close.
func OpenFileContainer(path string) (PrivateKeyContainer, Error) {
	lock, lockErr := lockfile.New(path + ".lock")
	if lockErr != nil {
		return nil, wrapErrorf(lockErr, KindIO, "creating lockfile handle for %s", path)
	}
	if err := lock.TryLock(); err != nil {
		return nil, lockedErrorf("private key %s is locked by another process: %s", path, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		_ = lock.Unlock()
		return nil, wrapErrorf(err, KindIO, "opening container file %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, wrapErrorf(err, KindIO, "statting container file %s", path)
	}
	if info.Size() == 0 {
		if err := f.Truncate(fsContainerSize); err != nil {
			_ = f.Close()
			_ = lock.Unlock()
			return nil, wrapErrorf(err, KindIO, "truncating new container file %s", path)
		}
		var initial [fsContainerSize]byte
		if err := writeContainerRecord(initial[:], 0); err != nil {
			_ = f.Close()
			_ = lock.Unlock()
			return nil, err
		}
		if _, err := f.WriteAt(initial[:], 0); err != nil {
			_ = f.Close()
			_ = lock.Unlock()
			return nil, wrapErrorf(err, KindIO, "writing new container file %s", path)
		}
	}

	mm, mmErr := mmap.Map(f, mmap.RDWR, 0)
	if mmErr != nil {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, wrapErrorf(mmErr, KindIO, "mmapping container file %s", path)
	}

	c := &fsContainer{path: path, lock: lock, file: f, mm: mm}
	if _, vErr := c.readIndex(); vErr != nil {
		_ = c.Close()
		return nil, vErr
	}
	pkgLogger.Logf("opened container %s", path)
	return c, nil
}

func (c *fsContainer) readIndex() (uint64, Error) {
	if len(c.mm) < fsContainerSize {
		return 0, errorf(KindIO, "container file %s is truncated", c.path)
	}
	idxBytes := c.mm[:8]
	sum := binary.BigEndian.Uint64(c.mm[8:16])
	if xxhash.Sum64(idxBytes) != sum {
		return 0, errorf(KindIO, "container file %s failed its checksum (torn write?)", c.path)
	}
	return binary.BigEndian.Uint64(idxBytes), nil
}

// containerRecord is the fixed-size record written to a container file:
// the next-unused index and an xxhash64 of its big-endian encoding.
type containerRecord struct {
	Index    uint64
	Checksum uint64
}

// writeContainerRecord serializes idx's record into buf (which must be
// at least fsContainerSize bytes) through a byteswriter.Writer, the same
// bounded-buffer-as-io.Writer adapter the teacher's container.go uses to
// hand a plain mmap'd []byte to encoding/binary.
func writeContainerRecord(buf []byte, idx uint64) Error {
	var idxBytes [8]byte
	binary.BigEndian.PutUint64(idxBytes[:], idx)
	rec := containerRecord{Index: idx, Checksum: xxhash.Sum64(idxBytes[:])}

	w := byteswriter.NewWriter(buf)
	if err := binary.Write(w, binary.BigEndian, &rec); err != nil {
		return wrapErrorf(err, KindIO, "writing container record")
	}
	return nil
}

func (c *fsContainer) BorrowIndex() (uint64, Error) {
	idx, err := c.readIndex()
	if err != nil {
		return 0, err
	}
	if err := writeContainerRecord(c.mm, idx+1); err != nil {
		return 0, err
	}
	if err := c.mm.Flush(); err != nil {
		return 0, wrapErrorf(err, KindIO, "flushing container file %s", c.path)
	}
	return idx, nil
}

func (c *fsContainer) Index() (uint64, Error) {
	return c.readIndex()
}

func (c *fsContainer) Close() Error {
	var result *multierror.Error
	if c.mm != nil {
		if err := c.mm.Unmap(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.file != nil {
		if err := c.file.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := c.lock.Unlock(); err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return wrapErrorf(result, KindIO, "closing container %s", c.path)
	}
	pkgLogger.Logf("closed container %s", c.path)
	return nil
}
