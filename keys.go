package xmss

import (
	"bytes"
	"crypto/rand"
	"io"
	"os"
)

// PrivateKey is a loaded, ready-to-sign XMSS key. Its only mutable state
// lives in its container (see container.go); the key material itself
// (skSeed, skPrf, pubSeed) and the materialized tree never change after
// GenerateKeyPair builds them.
type PrivateKey struct {
	ctx       *Context
	skSeed    []byte
	skPrf     []byte
	pubSeed   []byte
	root      []byte
	tree      *merkleTree
	container PrivateKeyContainer
}

// PublicKey is the pair (root, pubSeed) a verifier needs; it carries no
// secret material and is safe to publish.
type PublicKey struct {
	ctx     *Context
	root    []byte
	pubSeed []byte
}

// Signature is one XMSS signature: the leaf index it was produced under,
// the message randomizer, the WOTS+ signature over the resulting digest,
// and the authentication path proving the WOTS+ leaf is in the tree
// rooted at the signer's public key.
type Signature struct {
	Index    uint64
	R        []byte
	WotsSig  []byte
	AuthPath []byte
}

// zeroPrefix is the shared layer/tree address prefix every address in
// this single-tree core uses; a multi-tree core would vary it per layer.
var zeroPrefix address

// GenerateKeyPair draws fresh key material from rnd (typically
// crypto/rand.Reader) and builds the full Merkle tree eagerly, so every
// subsequent Sign call only has to read an authentication path rather
// than recompute one. If container is nil, an in-memory counter is used
// -- fine for tests, unsafe for anything that must survive a restart.
func GenerateKeyPair(ctx *Context, rnd io.Reader, container PrivateKeyContainer) (*PrivateKey, *PublicKey, Error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	if container == nil {
		container = newInMemoryContainer()
	}

	skSeed := make([]byte, ctx.p.N)
	skPrf := make([]byte, ctx.p.N)
	pubSeed := make([]byte, ctx.p.N)
	for _, buf := range [][]byte{skSeed, skPrf, pubSeed} {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return nil, nil, wrapErrorf(err, KindEntropyFailure, "drawing XMSS key material")
		}
	}

	tree := ctx.buildTree(skSeed, pubSeed, zeroPrefix)
	root := append([]byte(nil), tree.root()...)

	sk := &PrivateKey{
		ctx: ctx, skSeed: skSeed, skPrf: skPrf, pubSeed: pubSeed,
		root: root, tree: tree, container: container,
	}
	pk := &PublicKey{ctx: ctx, root: root, pubSeed: pubSeed}
	pkgLogger.Logf("generated XMSS keypair, height=%d", ctx.p.FullHeight)
	return sk, pk, nil
}

// Public returns the public key matching sk.
func (sk *PrivateKey) Public() *PublicKey {
	return &PublicKey{ctx: sk.ctx, root: sk.root, pubSeed: sk.pubSeed}
}

// RemainingSignatures reports how many signatures sk can still produce
// before its index space (2^FullHeight) is exhausted.
func (sk *PrivateKey) RemainingSignatures() (uint64, Error) {
	idx, err := sk.container.Index()
	if err != nil {
		return 0, err
	}
	max := sk.ctx.MaxSignatureSeqNo()
	if idx >= max {
		return 0, nil
	}
	return max - idx, nil
}

// Close releases sk's container (its advisory lock and any open file or
// mapping). sk must not be used afterwards.
func (sk *PrivateKey) Close() Error {
	return sk.container.Close()
}

// Context returns the public key's underlying Context, so a caller that
// only has a *PublicKey (e.g. after UnmarshalPublicKey) can decode a
// signature sized for the right parameter set.
func (pk *PublicKey) Context() *Context { return pk.ctx }

// MarshalBinary encodes sk's immutable key material (not its index --
// see container.go).
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return marshalPrivateKeyMaterial(sk)
}

// LoadPrivateKey reads key material from skPath and opens (or creates)
// an index-counter container at containerPath, rebuilding the Merkle
// tree the key material implies.
func LoadPrivateKey(skPath, containerPath string) (*PrivateKey, Error) {
	data, err := os.ReadFile(skPath)
	if err != nil {
		return nil, wrapErrorf(err, KindIO, "reading private key file %s", skPath)
	}
	container, cerr := OpenFileContainer(containerPath)
	if cerr != nil {
		return nil, cerr
	}
	sk, uerr := unmarshalPrivateKeyMaterial(data, container)
	if uerr != nil {
		_ = container.Close()
		return nil, uerr
	}
	return sk, nil
}

// Sign produces a signature over msg and irreversibly advances sk's
// index. The index is borrowed from the container before the signature
// is computed, so a crash between borrowing and returning burns one
// signature rather than risking the same leaf being used twice -- see
// PrivateKeyContainer.BorrowIndex. An exhausted key fails with
// KindIndexExhausted and its index is left unchanged.
func (sk *PrivateKey) Sign(msg []byte) (*Signature, Error) {
	next, err := sk.container.Index()
	if err != nil {
		return nil, err
	}
	if next >= sk.ctx.MaxSignatureSeqNo() {
		return nil, errorf(KindIndexExhausted, "private key has signed its maximum of %d messages", sk.ctx.MaxSignatureSeqNo())
	}
	idx, err := sk.container.BorrowIndex()
	if err != nil {
		return nil, err
	}
	if idx >= sk.ctx.MaxSignatureSeqNo() {
		return nil, errorf(KindIndexExhausted, "private key has signed its maximum of %d messages", sk.ctx.MaxSignatureSeqNo())
	}

	ctx := sk.ctx
	pad := ctx.newScratchPad()
	leafIdx := uint32(idx)

	R := ctx.prf(sk.skPrf, msg)
	digest := ctx.msgHash(R, msg)

	otsAddr := toOTSAddress(zeroPrefix, leafIdx)
	seedAddr := otsAddr
	seedAddr.zeroiseOTSAddr()
	seed := ctx.prg(pad, sk.skSeed, seedAddr)
	wotsSig := ctx.wotsSign(pad, digest, seed, sk.pubSeed, otsAddr)
	authPath := ctx.authPath(sk.tree, leafIdx)

	return &Signature{Index: idx, R: R, WotsSig: wotsSig, AuthPath: authPath}, nil
}

// Verify reports whether sig is a valid signature over msg under pk,
// returning a KindVerifyFailed Error if not.
func (pk *PublicKey) Verify(msg []byte, sig *Signature) Error {
	ctx := pk.ctx
	if sig.Index >= ctx.MaxSignatureSeqNo() {
		return errorf(KindVerifyFailed, "signature index %d is out of range for this parameter set", sig.Index)
	}
	if uint32(len(sig.WotsSig)) != ctx.WotsSignatureSize() {
		return errorf(KindVerifyFailed, "WOTS+ signature has wrong length")
	}
	if uint32(len(sig.AuthPath)) != ctx.p.FullHeight*ctx.p.N {
		return errorf(KindVerifyFailed, "authentication path has wrong length")
	}

	pad := ctx.newScratchPad()
	leafIdx := uint32(sig.Index)
	digest := ctx.msgHash(sig.R, msg)

	otsAddr := toOTSAddress(zeroPrefix, leafIdx)
	recoveredPk := ctx.wotsPkFromSig(pad, sig.WotsSig, digest, pk.pubSeed, otsAddr)

	ltreeAddr := toLTreeAddress(zeroPrefix, leafIdx)
	leaf := ctx.lTree(pad, recoveredPk, pk.pubSeed, ltreeAddr)

	root := ctx.rootFromAuthPath(pad, leaf, leafIdx, sig.AuthPath, pk.pubSeed, zeroPrefix)
	if !bytes.Equal(root, pk.root) {
		return errorf(KindVerifyFailed, "signature does not verify against this public key")
	}
	return nil
}
