package xmss

// encodeUint64Into writes v as a big-endian integer into the last
// len(out) bytes of out, zeroing any leading bytes len(out) can't use to
// hold v. Used to turn a leaf index into hash input and into the
// on-disk/wire index field.
func encodeUint64Into(v uint64, out []byte) {
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
}

func encodeUint64(v uint64, size int) []byte {
	out := make([]byte, size)
	encodeUint64Into(v, out)
	return out
}

// decodeUint64 reads a big-endian integer out of in. Uses bitwise OR
// (|) to combine shifted bytes, not logical OR (||) -- the reference
// implementation's original decoder used ||, which short-circuits after
// the first nonzero byte and silently truncates every index above 255.
// spec.md calls this out explicitly as a bug to fix, not replicate.
func decodeUint64(in []byte) uint64 {
	var v uint64
	for _, b := range in {
		v = (v << 8) | uint64(b)
	}
	return v
}
