package xmss

// The four keyed hash constructions used throughout the core: F (single
// block, WOTS+ chain step), H (two blocks, tree node combination), PRG
// (secret-seed expansion) and PRF (message randomization) together with
// MsgHash, the final message digest. All five share one underlying
// primitive -- a domain-separated keyed hash, distinguished only by a
// one-byte padding constant -- mirroring the way the reference
// implementation's hash.c funnels F, H, PRF and PRG through a single
// "core_hash" routine (see original_source/xmss.c's get_seed/prf_m/hash_m
// call sites, which all forward to the same primitive under different
// keys).
//
// Byte-exactness matters here: two implementations that disagree on
// padding order or constants will never interoperate, even though both
// are "a hash of the same things" in a loose sense.

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/sha3"
)

const (
	paddingF       = 0
	paddingH       = 1
	paddingHashMsg = 2
	paddingPRF     = 3
)

// HashFunc selects the hash primitive backing F, H, PRG, PRF and MsgHash.
type HashFunc uint8

const (
	// SHA2 uses SHA-256 for N<=32 and SHA-512 otherwise.
	SHA2 HashFunc = iota
	// SHAKE uses SHAKE128 for N<=32 and SHAKE256 otherwise.
	SHAKE
)

func (hf HashFunc) String() string {
	switch hf {
	case SHA2:
		return "SHA2"
	case SHAKE:
		return "SHAKE"
	default:
		return "unknown"
	}
}

// scratchPad holds a reusable buffer so a goroutine driving many Sign or
// Verify calls does not allocate a fresh hash-input slice on every
// F/H/PRF call. A scratchPad must never be shared between goroutines.
type scratchPad struct {
	buf []byte
}

func (ctx *Context) newScratchPad() scratchPad {
	// Largest hash input the core builds is H's: 1 (padding) + 3n (key,
	// left, right).
	return scratchPad{buf: make([]byte, 1+3*int(ctx.p.N))}
}

// domainHash computes Hash(toByte(padding, 1) || parts...) into out,
// reusing pad's buffer when the total input fits.
func (ctx *Context) domainHash(pad scratchPad, padding byte, out []byte, parts ...[]byte) {
	total := 1
	for _, p := range parts {
		total += len(p)
	}
	var buf []byte
	if cap(pad.buf) >= total {
		buf = pad.buf[:total]
	} else {
		buf = make([]byte, total)
	}
	buf[0] = padding
	off := 1
	for _, p := range parts {
		copy(buf[off:], p)
		off += len(p)
	}
	ctx.hashInto(buf, out)
}

// hashInto computes Hash(in) into out, where out must have capacity for
// ctx.p.N bytes (or however many the caller asked be written).
func (ctx *Context) hashInto(in, out []byte) {
	switch ctx.p.Func {
	case SHA2:
		var h hash.Hash
		if len(out) <= 32 {
			h = sha256.New()
		} else {
			h = sha512.New()
		}
		h.Write(in)
		copy(out, h.Sum(nil))
	case SHAKE:
		var h sha3.ShakeHash
		if len(out) <= 32 {
			h = sha3.NewShake128()
		} else {
			h = sha3.NewShake256()
		}
		h.Write(in)
		h.Read(out)
	default:
		panic("xmss: unknown HashFunc")
	}
}

// prfAddr computes PRF(key, addr) -> len(out) bytes, used both to derive
// the per-hash-call key inside F/H (keyed on PUB_SEED) and to derive the
// per-leaf WOTS+ seed (keyed on SK_SEED); see get_seed in
// original_source/xmss.c.
func (ctx *Context) prfAddr(pad scratchPad, key []byte, addr address, out []byte) {
	a := addr
	ctx.domainHash(pad, paddingPRF, out, key, a.bytes())
}

// prg expands (skSeed, addr) into a 32-byte WOTS+ secret seed.
func (ctx *Context) prg(pad scratchPad, skSeed []byte, addr address) []byte {
	out := make([]byte, 32)
	ctx.prfAddr(pad, skSeed, addr, out)
	return out
}

// prf computes the per-message randomizer R = PRF(skPrf, msg).
func (ctx *Context) prf(skPrf, msg []byte) []byte {
	out := make([]byte, ctx.p.M)
	ctx.domainHash(scratchPad{}, paddingPRF, out, skPrf, msg)
	return out
}

// msgHash computes the message digest d = Hash(R, msg) consumed by WOTS+.
func (ctx *Context) msgHash(R, msg []byte) []byte {
	out := make([]byte, ctx.p.M)
	ctx.domainHash(scratchPad{}, paddingHashMsg, out, R, msg)
	return out
}

// f computes F(key, in) where key is derived from (pubSeed, addr).
func (ctx *Context) f(pad scratchPad, in, pubSeed []byte, addr address) []byte {
	out := make([]byte, ctx.p.N)
	ctx.fInto(pad, in, pubSeed, addr, out)
	return out
}

func (ctx *Context) fInto(pad scratchPad, in, pubSeed []byte, addr address, out []byte) {
	key := make([]byte, ctx.p.N)
	a := addr
	a.setKeyAndMask(0)
	ctx.prfAddr(pad, pubSeed, a, key)
	ctx.domainHash(pad, paddingF, out, key, in)
}

// h computes H(left||right) where the key is derived from (pubSeed, addr).
// This is the combine step used by every tree in the core (L-tree and
// Merkle).
func (ctx *Context) h(pad scratchPad, left, right, pubSeed []byte, addr address) []byte {
	out := make([]byte, ctx.p.N)
	ctx.hInto(pad, left, right, pubSeed, addr, out)
	return out
}

func (ctx *Context) hInto(pad scratchPad, left, right, pubSeed []byte, addr address, out []byte) {
	key := make([]byte, ctx.p.N)
	a := addr
	a.setKeyAndMask(0)
	ctx.prfAddr(pad, pubSeed, a, key)
	ctx.domainHash(pad, paddingH, out, key, left, right)
}
