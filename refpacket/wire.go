// Package refpacket is a reference collaborator implementation of the
// pgpkey interfaces (KeyPacket, SignaturePacket, UserPacket,
// PacketList, Factory): the byte-level packet encoder/decoder, MPI
// arithmetic, and passphrase-based secret-key wrapping that package
// pgpkey deliberately leaves external. Its packet layout and
// passphrase S2K scheme are adapted directly from the new-format
// packet construction in passphrase2pgp's openpgp package.
package refpacket

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"math/big"

	"github.com/skeeto/pgpkey/enums"
)

// mpi encodes b as an OpenPGP multi-precision integer: a two-byte
// bit-length header followed by the big-endian magnitude.
func mpi(b []byte) []byte {
	// strip leading zero bytes so the bit count is exact
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	bits := len(b) * 8
	if len(b) > 0 {
		for lead := b[0]; lead&0x80 == 0; lead <<= 1 {
			bits--
		}
	}
	out := make([]byte, 2+len(b))
	binary.BigEndian.PutUint16(out, uint16(bits))
	copy(out[2:], b)
	return out
}

func mpiBig(n *big.Int) []byte {
	return mpi(n.Bytes())
}

// mpiDecode reads one MPI from b, returning its raw bytes (left-padded
// to byteLen when byteLen is non-zero) and the remainder of b.
func mpiDecode(b []byte, byteLen int) (value, rest []byte) {
	if len(b) < 2 {
		return nil, b
	}
	bits := binary.BigEndian.Uint16(b)
	n := int((bits + 7) / 8)
	if len(b) < 2+n {
		return nil, b
	}
	raw := b[2 : 2+n]
	if byteLen > 0 && len(raw) < byteLen {
		padded := make([]byte, byteLen)
		copy(padded[byteLen-len(raw):], raw)
		raw = padded
	}
	return raw, b[2+n:]
}

// checksum is the simple 16-bit sum OpenPGP uses to self-check an
// unencrypted secret-key MPI string.
func checksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return sum
}

// packetHeader builds a new-format packet header for the given tag
// and body length.
func packetHeader(tag enums.Tag, bodyLen int) []byte {
	switch {
	case bodyLen < 192:
		return []byte{0xc0 | byte(tag), byte(bodyLen)}
	case bodyLen < 8384:
		v := bodyLen - 192
		return []byte{0xc0 | byte(tag), byte((v >> 8) + 192), byte(v)}
	default:
		hdr := make([]byte, 6)
		hdr[0] = 0xc0 | byte(tag)
		hdr[1] = 0xff
		binary.BigEndian.PutUint32(hdr[2:], uint32(bodyLen))
		return hdr
	}
}

// s2k derives a symmetric key from passphrase using the iterated and
// salted string-to-key function, matching the encoding GnuPG and PGP
// actually use in practice.
func s2k(passphrase, salt []byte, count int) []byte {
	h := sha256.New()
	full := make([]byte, 8+len(passphrase))
	copy(full, salt)
	copy(full[8:], passphrase)
	iterations := count / len(full)
	for i := 0; i < iterations; i++ {
		h.Write(full)
	}
	tail := count - iterations*len(full)
	h.Write(full[:tail])
	return h.Sum(nil)
}

const s2kCountEncoded = 0xff // maximum iteration strength

func decodeS2KCount(c byte) int {
	return (16 + int(c&15)) << (uint(c>>4) + 6)
}

// wrapSecret encrypts secret under an S2K-derived key from passphrase,
// returning the encoded {usage=254, cipher, s2k, salt, iv, data||mac}
// tail that follows a secret-key packet's public portion.
func wrapSecret(secret, passphrase []byte) []byte {
	var saltIV [24]byte
	if _, err := rand.Read(saltIV[:]); err != nil {
		panic(err)
	}
	salt := saltIV[:8]
	iv := saltIV[8:]

	key := s2k(passphrase, salt, decodeS2KCount(s2kCountEncoded))

	mac := sha1.New()
	mac.Write(secret)
	blob := mac.Sum(append([]byte{}, secret...))

	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(blob, blob)

	out := make([]byte, 0, 4+8+1+16+len(blob))
	out = append(out, 254, 9 /* AES-256 */, 3 /* iterated+salted */, 8 /* SHA-256 */)
	out = append(out, salt...)
	out = append(out, s2kCountEncoded)
	out = append(out, iv...)
	out = append(out, blob...)
	return out
}

// unwrapSecret reverses wrapSecret, verifying the trailing SHA-1 check
// bytes. The plaintext secret's length is the ciphertext length minus
// the trailing 20-byte check (CFB is a stream cipher, so plaintext and
// ciphertext are the same length) — the caller need not know it ahead
// of decryption, which matters since it is only known by re-parsing
// the very secret material this function is about to recover.
func unwrapSecret(wrapped, passphrase []byte) ([]byte, bool) {
	if len(wrapped) < 4+8+1+16+20 {
		return nil, false
	}
	if wrapped[0] != 254 || wrapped[1] != 9 || wrapped[2] != 3 || wrapped[3] != 8 {
		return nil, false
	}
	salt := wrapped[4:12]
	count := decodeS2KCount(wrapped[12])
	iv := wrapped[13:29]
	data := append([]byte{}, wrapped[29:]...)

	key := s2k(passphrase, salt, count)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, false
	}
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(data, data)

	secretLen := len(data) - 20
	secret := data[:secretLen]
	check := data[secretLen:]
	mac := sha1.New()
	mac.Write(secret)
	if subtle.ConstantTimeCompare(mac.Sum(nil), check) == 0 {
		return nil, false
	}
	return secret, true
}
