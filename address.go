package xmss

// The 16-byte hash address (ADRS) that domain-separates every keyed hash
// call made by the WOTS+ engine, the L-tree and the Merkle tree builder.
//
// The bit layout below is bit-exact with the reference implementation's
// SET_OTS_BIT / SET_OTS_ADDRESS / ... macros (see original_source/xmss.c):
// byte 9 carries the two mode bits, and depending on the mode the
// remaining bytes are sliced up differently. Rather than exposing those
// macros directly, address is a value type with named setters; the three
// mutually exclusive modes are reached through toOTSAddress, toLTreeAddress
// and toNodeAddress, which also zero or preserve the fields the reference
// implementation zeroes or preserves when switching modes.
type address [16]byte

// Bytes 0-8 are a layer/tree identifier supplied by the caller and are
// untouched by every setter below; XMSS proper always uses the all-zero
// prefix since it has a single layer and a single tree.

// setOTSBit sets (without disturbing the l-tree bit) the bit that marks
// this address as an OTS-chain address.
func (a *address) setOTSBit(b byte) {
	a[9] = (a[9] & 253) | (b << 1)
}

// setLTreeBit sets (without disturbing the OTS bit) the bit that marks
// this address as an L-tree address.
func (a *address) setLTreeBit(b byte) {
	a[9] = (a[9] & 254) | b
}

// setOTSAddress packs the OTS index (a leaf index in [0, 2^h)). Only bits
// 0-23 of v are stored: bits 0-6 in bits 7..1 of byte 12, bits 7-22 in
// bytes 11 and 10, and bit 23 in bit 0 of byte 9, the same bit setLTreeBit
// writes. Higher bits are dropped.
func (a *address) setOTSAddress(v uint32) {
	a[12] = (a[12] & 1) | byte((v<<1)&255)
	a[11] = byte((v >> 7) & 255)
	a[10] = byte((v >> 15) & 255)
	a[9] = (a[9] & 254) | byte((v>>23)&1)
}

// zeroiseOTSAddr clears the chain index, hash-step index and key/bitmask
// selector, preserving everything else. Called before deriving the
// per-leaf WOTS+ seed, so that the seed only depends on (SK_SEED, leaf).
func (a *address) zeroiseOTSAddr() {
	a[12] = a[12] & 254
	a[13] = 0
	a[14] = 0
	a[15] = 0
}

// setChain sets the WOTS+ chain index (one of the `len` chains).
func (a *address) setChain(v byte) {
	a[13] = v
}

// setHash sets the hash-step index within a WOTS+ chain.
func (a *address) setHash(v byte) {
	a[14] = v
}

// setKeyAndMask distinguishes the key-derivation call from the bitmask
// call at a given chain step. The core's F/H constructions only ever use
// 0 here (see hash.go) but the field is preserved by zeroiseOTSAddr so a
// richer hash construction could make use of it without an address
// layout change.
func (a *address) setKeyAndMask(v byte) {
	a[15] = v
}

// setLTreeAddress packs the 24-bit L-tree index, i.e. the leaf index
// this L-tree computes the leaf for. Shares byte range with
// setOTSAddress; the two are never set on the same address value.
func (a *address) setLTreeAddress(v uint32) {
	a[12] = byte(v & 255)
	a[11] = byte((v >> 8) & 255)
	a[10] = byte((v >> 16) & 255)
}

// setLTreeTreeHeight packs the 6-bit level within the L-tree.
func (a *address) setLTreeTreeHeight(v uint32) {
	a[13] = (a[13] & 3) | byte((v<<2)&255)
}

// setLTreeTreeIndex packs the node index within an L-tree level. Only bits
// 0-15 of v are stored: bits 0-5 in bits 7..2 of byte 15, bits 6-13 in
// byte 14 and bits 14-15 in bits 1..0 of byte 13.
func (a *address) setLTreeTreeIndex(v uint32) {
	a[15] = (a[15] & 3) | byte((v<<2)&255)
	a[14] = byte((v >> 6) & 255)
	a[13] = (a[13] & 252) | byte((v>>14)&3)
}

// setNodePadding zeroes the fields that distinguish an OTS or L-tree
// address from a node address, preserving the two low bits of byte 11
// (which, for a node address, are the high bits of the tree height).
func (a *address) setNodePadding() {
	a[10] = 0
	a[11] = a[11] & 3
}

// setNodeTreeHeight packs the 8-bit Merkle tree level.
func (a *address) setNodeTreeHeight(v uint32) {
	a[12] = (a[12] & 3) | byte((v<<2)&255)
	a[11] = (a[11] & 252) | byte((v>>6)&3)
}

// setNodeTreeIndex packs the 24-bit node index within a Merkle tree level.
func (a *address) setNodeTreeIndex(v uint32) {
	a[15] = (a[15] & 3) | byte((v<<2)&255)
	a[14] = byte((v >> 6) & 255)
	a[13] = byte((v >> 14) & 255)
	a[12] = (a[12] & 252) | byte((v>>22)&3)
}

// bytes returns the 16 raw bytes, for use as hash input. Everywhere else
// the address is manipulated through the typed setters above.
func (a *address) bytes() []byte {
	return a[:]
}

// toOTSAddress derives the OTS-mode address for leaf idx from a shared
// layer/tree prefix, mirroring the reference's
// "memcpy(ots_addr, addr, 10); SET_OTS_BIT(ots_addr, 1)" idiom.
func toOTSAddress(prefix address, idx uint32) address {
	a := prefix
	a.setOTSBit(1)
	a.setLTreeBit(0)
	a.setOTSAddress(idx)
	return a
}

// toLTreeAddress derives the L-tree-mode address for leaf idx.
func toLTreeAddress(prefix address, idx uint32) address {
	a := prefix
	a.setOTSBit(0)
	a.setLTreeBit(1)
	a.setLTreeAddress(idx)
	return a
}

// toNodeAddress derives the node-mode address (both mode bits clear),
// padded as the reference's SET_NODE_PADDING requires.
func toNodeAddress(prefix address) address {
	a := prefix
	a.setOTSBit(0)
	a.setLTreeBit(0)
	a.setNodePadding()
	return a
}
