package xmss

import "testing"

func TestOTSAddressRoundTrip(t *testing.T) {
	for _, idx := range []uint32{0, 1, 255, 256, 1 << 20, (1 << 28) - 1} {
		a := toOTSAddress(zeroPrefix, idx)
		if a[9]&2 == 0 {
			t.Fatalf("idx=%d: OTS bit not set", idx)
		}
		if a[9]&1 != 0 {
			t.Fatalf("idx=%d: L-tree bit unexpectedly set", idx)
		}
		got := (uint32(a[9]&1) << 23) | (uint32(a[10]) << 15) | (uint32(a[11]) << 7) | (uint32(a[12]) >> 1)
		if got != idx {
			t.Fatalf("idx=%d: decoded %d from packed address", idx, got)
		}
	}
}

func TestZeroiseOTSAddrPreservesIndex(t *testing.T) {
	a := toOTSAddress(zeroPrefix, 0xABCDEF)
	a.setChain(3)
	a.setHash(7)
	a.setKeyAndMask(1)
	a.zeroiseOTSAddr()
	if a[13] != 0 || a[14] != 0 || a[15] != 0 {
		t.Fatalf("zeroiseOTSAddr left chain/hash/keyAndMask nonzero: %v", a[13:16])
	}
	if a[9]&2 == 0 {
		t.Fatalf("zeroiseOTSAddr cleared the OTS mode bit")
	}
}

func TestLTreeAndNodeAddressesAreDistinctModes(t *testing.T) {
	ots := toOTSAddress(zeroPrefix, 5)
	lt := toLTreeAddress(zeroPrefix, 5)
	node := toNodeAddress(zeroPrefix)

	if ots[9]&3 != 2 {
		t.Fatalf("OTS mode bits = %02b, want 10", ots[9]&3)
	}
	if lt[9]&3 != 1 {
		t.Fatalf("L-tree mode bits = %02b, want 01", lt[9]&3)
	}
	if node[9]&3 != 0 {
		t.Fatalf("node mode bits = %02b, want 00", node[9]&3)
	}
}

func TestNodeTreeIndexRoundTrip(t *testing.T) {
	var a address
	for _, idx := range []uint32{0, 1, 1023, 1 << 16, (1 << 24) - 1} {
		a.setNodeTreeIndex(idx)
		got := (uint32(a[12]&3) << 22) | (uint32(a[13]) << 14) | (uint32(a[14]) << 6) | (uint32(a[15]) >> 2)
		if got != idx {
			t.Fatalf("idx=%d: decoded %d from packed node tree index", idx, got)
		}
	}
}
