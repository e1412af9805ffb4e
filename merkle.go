package xmss

// The Merkle tree half of the core: turning WOTS+ public keys into
// leaves (genLeaf), computing just the root in O(h) working memory
// (treeHashRoot, the stack-based algorithm) and materializing the whole
// tree so an authentication path can be read off directly (buildTree,
// which key generation and key loading use, taking the root from it).
//
// Grounded on original_source/xmss.c's treehash (stack-based root-only
// computation) and compute_authpath_wots/validate_authpath (full
// materialized tree), kept as two separate code paths rather than
// unified behind one "insert and maybe cache" function, matching the
// reference's own separation of concerns between keygen and signing.

// genLeaf derives the Merkle leaf for index idx: a WOTS+ keypair seeded
// from (skSeed, idx), compressed through an L-tree.
func (ctx *Context) genLeaf(pad scratchPad, skSeed, pubSeed []byte, idx uint32, addrPrefix address) []byte {
	otsAddr := toOTSAddress(addrPrefix, idx)
	seedAddr := otsAddr
	seedAddr.zeroiseOTSAddr()
	seed := ctx.prg(pad, skSeed, seedAddr)
	pk := ctx.wotsPkGen(pad, seed, pubSeed, otsAddr)
	ltreeAddr := toLTreeAddress(addrPrefix, idx)
	return ctx.lTree(pad, pk, pubSeed, ltreeAddr)
}

// stackNode is one entry of treeHashRoot's working stack: a node and the
// tree height it sits at.
type stackNode struct {
	height uint32
	node   []byte
}

// treeHashRoot computes the Merkle root over all 2^FullHeight leaves
// using the stack-based algorithm: the stack never holds more than
// FullHeight+1 nodes, so memory stays O(h) regardless of tree size. It
// yields the same root as buildTree; GenerateKeyPair does not call it and
// builds the full tree instead.
func (ctx *Context) treeHashRoot(skSeed, pubSeed []byte, addrPrefix address) []byte {
	pad := ctx.newScratchPad()
	h := ctx.p.FullHeight
	numLeaves := uint32(1) << h
	stack := make([]stackNode, 0, h+1)
	nodeAddr := toNodeAddress(addrPrefix)

	for i := uint32(0); i < numLeaves; i++ {
		node := stackNode{height: 0, node: ctx.genLeaf(pad, skSeed, pubSeed, i, addrPrefix)}
		for len(stack) > 0 && stack[len(stack)-1].height == node.height {
			left := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			nodeAddr.setNodeTreeHeight(node.height)
			nodeAddr.setNodeTreeIndex(i >> (node.height + 1))
			node = stackNode{
				height: node.height + 1,
				node:   ctx.h(pad, left.node, node.node, pubSeed, nodeAddr),
			}
		}
		stack = append(stack, node)
	}
	return stack[0].node
}

// merkleTree is a fully materialized Merkle tree: nodes[0] holds the
// 2^FullHeight leaves concatenated, nodes[FullHeight] holds the single
// root. Building one costs O(2^h) hash calls and O(2^h * n) memory, in
// exchange for O(h) authentication-path lookups against every leaf
// instead of recomputing from scratch per signature.
type merkleTree struct {
	nodes [][]byte
}

// buildTree materializes the whole tree. GenerateKeyPair and
// LoadPrivateKey build it once; Sign reads authentication paths from it.
// addrPrefix
// supplies the layer/tree bytes shared by every address derived inside;
// for this single-tree core that prefix is always the all-zero address.
func (ctx *Context) buildTree(skSeed, pubSeed []byte, addrPrefix address) *merkleTree {
	pad := ctx.newScratchPad()
	h := ctx.p.FullHeight
	n := int(ctx.p.N)
	numLeaves := uint32(1) << h

	tree := &merkleTree{nodes: make([][]byte, h+1)}
	tree.nodes[0] = make([]byte, int(numLeaves)*n)
	for i := uint32(0); i < numLeaves; i++ {
		copy(tree.nodes[0][int(i)*n:], ctx.genLeaf(pad, skSeed, pubSeed, i, addrPrefix))
	}

	for level := uint32(1); level <= h; level++ {
		count := numLeaves >> level
		tree.nodes[level] = make([]byte, int(count)*n)
		nodeAddr := toNodeAddress(addrPrefix)
		nodeAddr.setNodeTreeHeight(level - 1)
		for i := uint32(0); i < count; i++ {
			nodeAddr.setNodeTreeIndex(i)
			left := tree.nodes[level-1][int(2*i)*n : int(2*i)*n+n]
			right := tree.nodes[level-1][int(2*i+1)*n : int(2*i+1)*n+n]
			copy(tree.nodes[level][int(i)*n:], ctx.h(pad, left, right, pubSeed, nodeAddr))
		}
	}
	return tree
}

// root returns the tree's single root node.
func (t *merkleTree) root() []byte {
	return t.nodes[len(t.nodes)-1]
}

// authPath reads off the authentication path for leaf idx: the sibling
// of idx at each level from the leaves up to (but not including) the
// root, concatenated.
func (ctx *Context) authPath(t *merkleTree, idx uint32) []byte {
	n := int(ctx.p.N)
	h := len(t.nodes) - 1
	path := make([]byte, h*n)
	for level := 0; level < h; level++ {
		sibling := idx ^ 1
		copy(path[level*n:], t.nodes[level][int(sibling)*n:int(sibling)*n+n])
		idx >>= 1
	}
	return path
}

// rootFromAuthPath recomputes a candidate root from a leaf and its
// authentication path, per original_source/xmss.c's validate_authpath.
// Used by Verify, which never needs a materialized tree.
func (ctx *Context) rootFromAuthPath(pad scratchPad, leaf []byte, idx uint32, authPath, pubSeed []byte, addrPrefix address) []byte {
	n := int(ctx.p.N)
	h := len(authPath) / n
	nodeAddr := toNodeAddress(addrPrefix)
	node := leaf
	for level := 0; level < h; level++ {
		sibling := authPath[level*n : level*n+n]
		nodeAddr.setNodeTreeHeight(uint32(level))
		nodeAddr.setNodeTreeIndex(idx >> 1)
		if idx&1 == 0 {
			node = ctx.h(pad, node, sibling, pubSeed, nodeAddr)
		} else {
			node = ctx.h(pad, sibling, node, pubSeed, nodeAddr)
		}
		idx >>= 1
	}
	return node
}
