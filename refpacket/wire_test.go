package refpacket

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/skeeto/pgpkey/enums"
)

func TestMPIRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x01},
		{0xff, 0x00, 0x01},
		{0x00, 0x00, 0x7f},
		bytes.Repeat([]byte{0xab}, 32),
	}
	for _, want := range cases {
		encoded := mpi(want)
		got, rest := mpiDecode(encoded, 0)
		trimmed := want
		for len(trimmed) > 1 && trimmed[0] == 0 {
			trimmed = trimmed[1:]
		}
		if !bytes.Equal(got, trimmed) {
			t.Errorf("mpiDecode(mpi(%x)) = %x, want %x", want, got, trimmed)
		}
		if len(rest) != 0 {
			t.Errorf("mpiDecode left %d trailing bytes", len(rest))
		}
	}
}

func TestMPIBigRoundTrip(t *testing.T) {
	n := big.NewInt(0).SetBytes(bytes.Repeat([]byte{0x9c}, 16))
	encoded := mpiBig(n)
	got, _ := mpiDecode(encoded, 0)
	if new(big.Int).SetBytes(got).Cmp(n) != 0 {
		t.Errorf("mpiBig round trip mismatch: got %x, want %x", got, n.Bytes())
	}
}

func TestMPIDecodePadsToByteLen(t *testing.T) {
	encoded := mpi([]byte{0x01})
	got, _ := mpiDecode(encoded, 4)
	if len(got) != 4 || got[3] != 0x01 {
		t.Errorf("mpiDecode with byteLen=4 = %x, want zero-padded [0 0 0 1]", got)
	}
}

func TestChecksum(t *testing.T) {
	if checksum(nil) != 0 {
		t.Error("checksum of empty input should be 0")
	}
	if got := checksum([]byte{0x01, 0x02, 0xff}); got != 0x01+0x02+0xff {
		t.Errorf("checksum = %d, want %d", got, 0x01+0x02+0xff)
	}
}

func TestPacketHeaderLengthEncoding(t *testing.T) {
	cases := []int{0, 1, 191, 192, 8383, 8384, 70000}
	for _, n := range cases {
		hdr := packetHeader(enums.TagSignature, n)
		if hdr[0]&0xc0 != 0xc0 {
			t.Fatalf("packetHeader(%d)[0] = %#x, want new-format+tag bits set", n, hdr[0])
		}
		if enums.Tag(hdr[0]&0x3f) != enums.TagSignature {
			t.Fatalf("packetHeader(%d) encoded tag %d, want %d", n, hdr[0]&0x3f, enums.TagSignature)
		}
		tag, body, err := readHeaderBytes(append(hdr, make([]byte, n)...))
		if err != nil || tag != enums.TagSignature || len(body) != n {
			t.Errorf("packetHeader(%d) decodes to tag %d, body length %d, err %v", n, tag, len(body), err)
		}
	}
}

func TestS2KDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x11}, 8)
	a := s2k([]byte("correct horse battery staple"), salt, decodeS2KCount(s2kCountEncoded))
	b := s2k([]byte("correct horse battery staple"), salt, decodeS2KCount(s2kCountEncoded))
	if !bytes.Equal(a, b) {
		t.Error("s2k is not deterministic for identical inputs")
	}
	c := s2k([]byte("different passphrase"), salt, decodeS2KCount(s2kCountEncoded))
	if bytes.Equal(a, c) {
		t.Error("s2k produced the same output for different passphrases")
	}
	if len(a) != 32 {
		t.Errorf("s2k output length = %d, want 32 (SHA-256)", len(a))
	}
}

func TestWrapUnwrapSecretRoundTrip(t *testing.T) {
	secret := bytes.Repeat([]byte{0x77}, 32)
	passphrase := []byte("hunter2")

	wrapped := wrapSecret(secret, passphrase)
	got, ok := unwrapSecret(wrapped, passphrase)
	if !ok {
		t.Fatal("unwrapSecret failed to unwrap its own wrapSecret output")
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("unwrapSecret = %x, want %x", got, secret)
	}
}

func TestUnwrapSecretRejectsWrongPassphrase(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, 32)
	wrapped := wrapSecret(secret, []byte("correct"))
	if _, ok := unwrapSecret(wrapped, []byte("wrong")); ok {
		t.Error("unwrapSecret succeeded with the wrong passphrase")
	}
}

func TestUnwrapSecretRejectsTruncatedInput(t *testing.T) {
	if _, ok := unwrapSecret([]byte{254, 9, 3, 8}, []byte("x")); ok {
		t.Error("unwrapSecret should reject a truncated wrapped blob")
	}
}
