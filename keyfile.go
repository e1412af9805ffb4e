package xmss

import "encoding/binary"

// Wire and file formats: the public and private key blobs this package
// produces open with a 4-byte big-endian OID identifying the parameter
// set, so a reader never has to be told out of band which Context to
// build. A signature blob carries no OID; it is decoded under the Context
// of the public key it is checked against.
// Grounded on the teacher's MarshalBinary/UnmarshalBinary pattern on
// Params/PublicKey/Signature.

// MarshalBinary encodes pk as oid || root || pubSeed.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	oid, err := OidFromParams(pk.ctx.p)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4+pk.ctx.PublicKeySize())
	binary.BigEndian.PutUint32(buf, oid)
	off := 4
	off += copy(buf[off:], pk.root)
	copy(buf[off:], pk.pubSeed)
	return buf, nil
}

// UnmarshalPublicKey decodes a public key previously produced by
// PublicKey.MarshalBinary.
func UnmarshalPublicKey(data []byte) (*PublicKey, Error) {
	if len(data) < 4 {
		return nil, errorf(KindShortBuffer, "public key blob too short to contain an OID")
	}
	p, err := ParamsFromOid(binary.BigEndian.Uint32(data))
	if err != nil {
		return nil, err
	}
	ctx, err := NewContext(p)
	if err != nil {
		return nil, err
	}
	want := 4 + int(ctx.PublicKeySize())
	if len(data) < want {
		return nil, errorf(KindShortBuffer, "public key blob is %d bytes, want %d", len(data), want)
	}
	n := int(ctx.p.N)
	return &PublicKey{
		ctx:     ctx,
		root:    append([]byte(nil), data[4:4+n]...),
		pubSeed: append([]byte(nil), data[4+n:4+2*n]...),
	}, nil
}

// MarshalBinary encodes sig over msg as
// idx(4) || R || wotsSig || authPath || msg, per spec.md §3/§6. The
// message is embedded (rather than left for the caller to keep track of
// separately) so a signature blob is self-contained: UnmarshalSignature
// hands the message straight back out alongside the decoded Signature.
func (sig *Signature) MarshalBinary(msg []byte) ([]byte, error) {
	buf := make([]byte, 4+len(sig.R)+len(sig.WotsSig)+len(sig.AuthPath)+len(msg))
	encodeUint64Into(sig.Index, buf[:4])
	off := 4
	off += copy(buf[off:], sig.R)
	off += copy(buf[off:], sig.WotsSig)
	off += copy(buf[off:], sig.AuthPath)
	copy(buf[off:], msg)
	return buf, nil
}

// UnmarshalSignature decodes a signature (and the message it was
// produced over) under the instantiation ctx describes, from a blob
// previously produced by Signature.MarshalBinary.
func UnmarshalSignature(ctx *Context, data []byte) (*Signature, []byte, Error) {
	fixed := 4 + int(ctx.p.N) + int(ctx.WotsSignatureSize()) + int(ctx.p.FullHeight*ctx.p.N)
	if len(data) < fixed {
		return nil, nil, errorf(KindShortBuffer, "signature blob is %d bytes, want at least %d", len(data), fixed)
	}
	idx := decodeUint64(data[:4])
	off := 4
	n := int(ctx.p.N)
	R := append([]byte(nil), data[off:off+n]...)
	off += n
	wotsLen := int(ctx.WotsSignatureSize())
	wotsSig := append([]byte(nil), data[off:off+wotsLen]...)
	off += wotsLen
	pathLen := int(ctx.p.FullHeight * ctx.p.N)
	authPath := append([]byte(nil), data[off:off+pathLen]...)
	off += pathLen
	msg := append([]byte(nil), data[off:]...)
	return &Signature{Index: idx, R: R, WotsSig: wotsSig, AuthPath: authPath}, msg, nil
}

// marshalPrivateKeyMaterial encodes the fixed-size on-disk private key
// file: its OID, followed by skSeed, skPrf and pubSeed. The evolving
// index lives in a separate container file (see container.go), never in
// this one, so that rewriting the index on every Sign never risks
// corrupting the (immutable) key material alongside it.
func marshalPrivateKeyMaterial(sk *PrivateKey) ([]byte, Error) {
	oid, err := OidFromParams(sk.ctx.p)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4+3*int(sk.ctx.p.N))
	binary.BigEndian.PutUint32(buf, oid)
	off := 4
	off += copy(buf[off:], sk.skSeed)
	off += copy(buf[off:], sk.skPrf)
	copy(buf[off:], sk.pubSeed)
	return buf, nil
}

// unmarshalPrivateKeyMaterial decodes the fixed key material written by
// marshalPrivateKeyMaterial and rebuilds the Merkle tree it implies --
// the one step in loading a private key that is not a simple byte copy.
func unmarshalPrivateKeyMaterial(data []byte, container PrivateKeyContainer) (*PrivateKey, Error) {
	if len(data) < 4 {
		return nil, errorf(KindShortBuffer, "private key blob too short to contain an OID")
	}
	p, err := ParamsFromOid(binary.BigEndian.Uint32(data))
	if err != nil {
		return nil, err
	}
	ctx, err := NewContext(p)
	if err != nil {
		return nil, err
	}
	n := int(ctx.p.N)
	want := 4 + 3*n
	if len(data) < want {
		return nil, errorf(KindShortBuffer, "private key blob is %d bytes, want %d", len(data), want)
	}
	skSeed := append([]byte(nil), data[4:4+n]...)
	skPrf := append([]byte(nil), data[4+n:4+2*n]...)
	pubSeed := append([]byte(nil), data[4+2*n:4+3*n]...)

	tree := ctx.buildTree(skSeed, pubSeed, zeroPrefix)
	root := append([]byte(nil), tree.root()...)

	return &PrivateKey{
		ctx: ctx, skSeed: skSeed, skPrf: skPrf, pubSeed: pubSeed,
		root: root, tree: tree, container: container,
	}, nil
}
