package xmss

// lTree compresses a WOTS+ public key (len n-byte chain ends) down to a
// single n-byte Merkle leaf by repeatedly hashing adjacent pairs with H,
// promoting any odd node left over at a level unchanged to the next
// level. Grounded on original_source/xmss.c's l_tree, restructured to
// operate in place on a private copy of pk (the caller's slice is not
// modified) instead of l_tree's leaf-count bookkeeping via pointer
// arithmetic.
//
// addr must already be in L-tree mode (see toLTreeAddress) and carries
// the leaf index the resulting node belongs to; its height field is
// updated as the compression proceeds.
func (ctx *Context) lTree(pad scratchPad, pk []byte, pubSeed []byte, addr address) []byte {
	n := int(ctx.p.N)
	nodes := make([]byte, len(pk))
	copy(nodes, pk)
	l := uint32(len(pk) / n)

	var height uint32
	for l > 1 {
		addr.setLTreeTreeHeight(height)
		parent := 0
		var i uint32
		for i = 0; i+1 < l; i += 2 {
			addr.setLTreeTreeIndex(i / 2)
			left := nodes[i*uint32(n) : i*uint32(n)+uint32(n)]
			right := nodes[(i+1)*uint32(n) : (i+1)*uint32(n)+uint32(n)]
			copy(nodes[parent*n:], ctx.h(pad, left, right, pubSeed, addr))
			parent++
		}
		if l&1 == 1 {
			// Odd node out: carried forward to the next level untouched,
			// per l_tree's "memcpy(pk+...)" promotion.
			copy(nodes[parent*n:], nodes[i*uint32(n):i*uint32(n)+uint32(n)])
			parent++
		}
		l = (l + 1) / 2
		height++
	}
	return nodes[:n]
}
