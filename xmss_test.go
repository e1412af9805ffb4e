package xmss

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// smallTestParams keeps the tree height low enough that building the
// full tree (and the test run as a whole) stays fast; the signing
// protocol itself does not depend on the height beyond bounding the
// index space.
var smallTestParams = Params{Func: SHA2, N: 32, M: 32, FullHeight: 4, W: 16}

func mustContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(smallTestParams)
	if err != nil {
		t.Fatalf("NewContext: %s", err)
	}
	return ctx
}

func TestGenerateSignVerifyRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	sk, pk, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	msg := []byte("the rain in spain falls mainly on the plain")
	sig, err := sk.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	if err := pk.Verify(msg, sig); err != nil {
		t.Fatalf("Verify: %s", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	ctx := mustContext(t)
	sk, pk, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	msg := []byte("original message")
	sig, err := sk.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	if err := pk.Verify([]byte("tampered message"), sig); err == nil {
		t.Fatalf("Verify accepted a signature over a different message")
	}
}

func TestVerifyRejectsBitFlippedSignature(t *testing.T) {
	ctx := mustContext(t)
	sk, pk, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	msg := []byte("flip a bit in this signature")
	sig, err := sk.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	sig.WotsSig[0] ^= 0x01
	if err := pk.Verify(msg, sig); err == nil {
		t.Fatalf("Verify accepted a signature with a single bit flipped")
	}
}

func TestSuccessiveSignaturesUseDistinctIndices(t *testing.T) {
	ctx := mustContext(t)
	sk, pk, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	seen := map[uint64]bool{}
	for i := 0; i < 4; i++ {
		sig, err := sk.Sign([]byte{byte(i)})
		if err != nil {
			t.Fatalf("Sign #%d: %s", i, err)
		}
		if seen[sig.Index] {
			t.Fatalf("index %d reused across signatures", sig.Index)
		}
		seen[sig.Index] = true
		if err := pk.Verify([]byte{byte(i)}, sig); err != nil {
			t.Fatalf("Verify #%d: %s", i, err)
		}
	}
}

func TestIndexExhaustion(t *testing.T) {
	ctx := mustContext(t)
	sk, _, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	max := ctx.MaxSignatureSeqNo()
	for i := uint64(0); i < max; i++ {
		if _, err := sk.Sign([]byte("msg")); err != nil {
			t.Fatalf("Sign #%d: %s", i, err)
		}
	}
	if _, err := sk.Sign([]byte("one too many")); err == nil {
		t.Fatalf("expected index exhaustion error after signing 2^h messages")
	} else if err.Kind() != KindIndexExhausted {
		t.Fatalf("err.Kind() = %s, want KindIndexExhausted", err.Kind())
	}
}

func TestPublicKeyMarshalRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	sk, pk, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	blob, merr := pk.MarshalBinary()
	if merr != nil {
		t.Fatalf("MarshalBinary: %s", merr)
	}
	pk2, uerr := UnmarshalPublicKey(blob)
	if uerr != nil {
		t.Fatalf("UnmarshalPublicKey: %s", uerr)
	}

	msg := []byte("round trip through a serialized public key")
	sig, err := sk.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	if err := pk2.Verify(msg, sig); err != nil {
		t.Fatalf("Verify against unmarshaled public key: %s", err)
	}
}

func TestSignatureMarshalRoundTrip(t *testing.T) {
	ctx := mustContext(t)
	sk, pk, err := GenerateKeyPair(ctx, rand.Reader, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %s", err)
	}
	defer sk.Close()

	msg := []byte("serialize the signature, not just the keys")
	sig, err := sk.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	blob, merr := sig.MarshalBinary(msg)
	if merr != nil {
		t.Fatalf("MarshalBinary: %s", merr)
	}
	sig2, msg2, uerr := UnmarshalSignature(ctx, blob)
	if uerr != nil {
		t.Fatalf("UnmarshalSignature: %s", uerr)
	}
	if sig2.Index != sig.Index || !bytes.Equal(sig2.R, sig.R) {
		t.Fatalf("unmarshaled signature does not match the original")
	}
	if !bytes.Equal(msg2, msg) {
		t.Fatalf("unmarshaled message does not match the original")
	}
	if err := pk.Verify(msg2, sig2); err != nil {
		t.Fatalf("Verify on unmarshaled signature: %s", err)
	}
}

func TestUnmarshalSignatureRejectsShortBuffer(t *testing.T) {
	ctx := mustContext(t)
	_, _, err := UnmarshalSignature(ctx, []byte{1, 2, 3})
	if err == nil {
		t.Fatalf("expected a short-buffer error")
	}
	if err.Kind() != KindShortBuffer {
		t.Fatalf("err.Kind() = %s, want KindShortBuffer", err.Kind())
	}
}
