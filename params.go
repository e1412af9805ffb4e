package xmss

import (
	"fmt"
	"strconv"
	"strings"
)

// Params fixes one XMSS instantiation: the hash backend, the security
// parameter n (in bytes), the message-digest length m, the tree height h
// and the Winternitz parameter w. Every other derived quantity (the WOTS+
// chain count, its checksum-digit count, logW) is computed from these
// four by NewContext and cached on the Context, never recomputed per call.
//
// Params is always copied by value. The reference implementation keeps a
// pointer to a stack-local params struct past the life of the call that
// declared it (see xmss_set_params in original_source/xmss.c); storing
// Params by value inside Context avoids that class of bug entirely.
type Params struct {
	Func       HashFunc
	N          uint32
	M          uint32
	FullHeight uint32
	W          uint16
}

// Context carries a Params plus every value derived from it, and is the
// receiver for every hash, WOTS+ and tree operation in this package. A
// Context has no mutable state of its own (scratchPad supplies the
// per-call working buffer), so a single Context can be shared across
// goroutines.
type Context struct {
	p        Params
	logW     uint8
	wotsLen1 uint32
	wotsLen2 uint32
	wotsLen  uint32
}

// Params returns the instantiation this Context was built for.
func (ctx *Context) Params() Params { return ctx.p }

// NewContext validates p and derives the WOTS+ length parameters.
func NewContext(p Params) (*Context, Error) {
	var logW uint8
	switch p.W {
	case 4:
		logW = 2
	case 16:
		logW = 4
	case 256:
		logW = 8
	default:
		return nil, errorf(KindUnknownOID, "unsupported Winternitz parameter w=%d (must be 4, 16 or 256)", p.W)
	}
	if p.N == 0 {
		return nil, errorf(KindUnknownOID, "N must be nonzero")
	}
	if p.FullHeight == 0 || p.FullHeight > 32 {
		// The signature wire format (keyfile.go) packs the leaf index
		// into 4 bytes, so a tree taller than 32 could produce indices
		// that don't fit.
		return nil, errorf(KindUnknownOID, "FullHeight %d out of supported range", p.FullHeight)
	}

	len1 := (8*p.N + uint32(logW) - 1) / uint32(logW)
	maxChecksum := len1 * (uint32(p.W) - 1)
	len2 := uint32(1)
	for t := maxChecksum >> logW; t > 0; t >>= logW {
		len2++
	}

	return &Context{
		p:        p,
		logW:     logW,
		wotsLen1: len1,
		wotsLen2: len2,
		wotsLen:  len1 + len2,
	}, nil
}

// WotsSignatureSize returns the byte length of a WOTS+ signature under
// this Context, len*n.
func (ctx *Context) WotsSignatureSize() uint32 {
	return ctx.wotsLen * ctx.p.N
}

// SignatureSize returns the byte length of a full XMSS signature: the
// leaf index, the message randomizer R, the WOTS+ signature and the
// authentication path.
func (ctx *Context) SignatureSize() uint32 {
	idxBytes := uint32(4)
	return idxBytes + ctx.p.N + ctx.WotsSignatureSize() + ctx.p.FullHeight*ctx.p.N
}

// PublicKeySize returns the byte length of an encoded public key: the
// Merkle root followed by the public seed.
func (ctx *Context) PublicKeySize() uint32 {
	return 2 * ctx.p.N
}

// MaxSignatureSeqNo returns the number of leaves (and thus the number of
// signatures) this Context's tree height supports, 2^FullHeight.
func (ctx *Context) MaxSignatureSeqNo() uint64 {
	return uint64(1) << ctx.p.FullHeight
}

// regEntry binds a human name and an RFC 8391 OID to a concrete Params.
type regEntry struct {
	name   string
	oid    uint32
	params Params
}

// registry lists the single-tree XMSS parameter sets this core supports,
// cut down from the teacher's XMSS^MT registry (which also lists
// multi-tree OIDs this core has no use for) to the plain-XMSS OIDs from
// RFC 8391 section 5.3.
var registry = []regEntry{
	{"XMSS-SHA2_10_256", 0x00000001, Params{SHA2, 32, 32, 10, 16}},
	{"XMSS-SHA2_16_256", 0x00000002, Params{SHA2, 32, 32, 16, 16}},
	{"XMSS-SHA2_20_256", 0x00000003, Params{SHA2, 32, 32, 20, 16}},
	{"XMSS-SHA2_10_192", 0x00000004, Params{SHA2, 24, 24, 10, 16}},
	{"XMSS-SHA2_16_192", 0x00000005, Params{SHA2, 24, 24, 16, 16}},
	{"XMSS-SHA2_20_192", 0x00000006, Params{SHA2, 24, 24, 20, 16}},
	{"XMSS-SHAKE_10_256", 0x00000007, Params{SHAKE, 32, 32, 10, 16}},
	{"XMSS-SHAKE_16_256", 0x00000008, Params{SHAKE, 32, 32, 16, 16}},
	{"XMSS-SHAKE_20_256", 0x00000009, Params{SHAKE, 32, 32, 20, 16}},
	{"XMSS-SHAKE_10_192", 0x0000000a, Params{SHAKE, 24, 24, 10, 16}},
	{"XMSS-SHAKE_16_192", 0x0000000b, Params{SHAKE, 24, 24, 16, 16}},
	{"XMSS-SHAKE_20_192", 0x0000000c, Params{SHAKE, 24, 24, 20, 16}},
}

var registryNameLut = func() map[string]*regEntry {
	lut := make(map[string]*regEntry, len(registry))
	for i := range registry {
		lut[registry[i].name] = &registry[i]
	}
	return lut
}()

var registryOidLut = func() map[uint32]*regEntry {
	lut := make(map[uint32]*regEntry, len(registry))
	for i := range registry {
		lut[registry[i].oid] = &registry[i]
	}
	return lut
}()

// ParamsFromName looks up a registered parameter set by its canonical
// name, e.g. "XMSS-SHA2_10_256".
func ParamsFromName(name string) (Params, Error) {
	entry, ok := registryNameLut[strings.ToUpper(name)]
	if !ok {
		return Params{}, errorf(KindUnknownOID, "no registered XMSS parameter set named %q", name)
	}
	return entry.params, nil
}

// ParamsFromOid looks up a registered parameter set by its RFC 8391 OID.
func ParamsFromOid(oid uint32) (Params, Error) {
	entry, ok := registryOidLut[oid]
	if !ok {
		return Params{}, errorf(KindUnknownOID, "no registered XMSS parameter set with OID %#x", oid)
	}
	return entry.params, nil
}

// OidFromParams returns the registered OID for p, if p exactly matches a
// registry entry.
func OidFromParams(p Params) (uint32, Error) {
	for i := range registry {
		if registry[i].params == p {
			return registry[i].oid, nil
		}
	}
	return 0, errorf(KindUnknownOID, "%s is not a registered parameter set", describeParams(p))
}

// ListNames returns the canonical names of every registered parameter
// set, in registry order.
func ListNames() []string {
	names := make([]string, len(registry))
	for i := range registry {
		names[i] = registry[i].name
	}
	return names
}

func describeParams(p Params) string {
	return fmt.Sprintf("{Func:%s N:%d M:%d FullHeight:%d W:%d}",
		p.Func, p.N, p.M, p.FullHeight, p.W)
}

// parseParamsFromName accepts ad hoc "xmss-shake-h20-n32" style names in
// addition to registered canonical names, mirroring the teacher's own
// parseParamsFromName fallback. The CLI's --alg flag does not use it: it
// goes through ParamsFromName and accepts registered names only.
func parseParamsFromName(name string) (Params, Error) {
	if p, err := ParamsFromName(name); err == nil {
		return p, nil
	}
	parts := strings.Split(strings.ToLower(name), "-")
	var p Params
	p.W = 16
	for _, part := range parts {
		switch {
		case part == "sha2":
			p.Func = SHA2
		case part == "shake":
			p.Func = SHAKE
		case strings.HasPrefix(part, "h"):
			v, err := strconv.Atoi(part[1:])
			if err != nil {
				return Params{}, errorf(KindUnknownOID, "bad tree height in name %q", name)
			}
			p.FullHeight = uint32(v)
		case strings.HasPrefix(part, "n"):
			v, err := strconv.Atoi(part[1:])
			if err != nil {
				return Params{}, errorf(KindUnknownOID, "bad N in name %q", name)
			}
			p.N = uint32(v)
			p.M = uint32(v)
		}
	}
	if p.N == 0 || p.FullHeight == 0 {
		return Params{}, errorf(KindUnknownOID, "unrecognized parameter set name %q", name)
	}
	return p, nil
}
