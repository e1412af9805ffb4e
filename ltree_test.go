package xmss

import "testing"

func TestLTreeProducesSingleNode(t *testing.T) {
	ctx := testContext(t, SHA2, 32)
	pad := ctx.newScratchPad()
	pubSeed := make([]byte, 32)

	pk := make([]byte, int(ctx.wotsLen)*32)
	for i := range pk {
		pk[i] = byte(i)
	}
	addr := toLTreeAddress(zeroPrefix, 0)
	leaf := ctx.lTree(pad, pk, pubSeed, addr)
	if len(leaf) != 32 {
		t.Fatalf("lTree returned %d bytes, want 32", len(leaf))
	}
}

func TestLTreeIsDeterministic(t *testing.T) {
	ctx := testContext(t, SHA2, 32)
	pad := ctx.newScratchPad()
	pubSeed := make([]byte, 32)
	pk := make([]byte, int(ctx.wotsLen)*32)
	for i := range pk {
		pk[i] = byte(i * 3)
	}
	addr := toLTreeAddress(zeroPrefix, 2)
	a := ctx.lTree(pad, pk, pubSeed, addr)
	b := ctx.lTree(pad, pk, pubSeed, addr)
	if string(a) != string(b) {
		t.Fatalf("lTree is not deterministic for identical inputs")
	}
}

func TestLTreeDiffersByLeafIndex(t *testing.T) {
	ctx := testContext(t, SHA2, 32)
	pad := ctx.newScratchPad()
	pubSeed := make([]byte, 32)
	pk := make([]byte, int(ctx.wotsLen)*32)
	for i := range pk {
		pk[i] = byte(i * 5)
	}
	a := ctx.lTree(pad, pk, pubSeed, toLTreeAddress(zeroPrefix, 0))
	b := ctx.lTree(pad, pk, pubSeed, toLTreeAddress(zeroPrefix, 1))
	if string(a) == string(b) {
		t.Fatalf("lTree produced the same leaf for two different leaf indices")
	}
}
