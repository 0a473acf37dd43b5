package refpacket

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"errors"
	"math/big"
	"time"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/ed25519"

	"github.com/skeeto/pgpkey/curve"
	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
)

// ErrUnsupportedCurve is returned by Generate for a curve this
// collaborator has no asymmetric-primitive backing for (secp256k1 and
// the Brainpool curves require a third-party elliptic-curve
// implementation outside this module's dependency set).
var ErrUnsupportedCurve = errors.New("refpacket: curve has no backing primitive in this collaborator")

// keyPacket is the concrete pgpkey.KeyPacket used by this collaborator.
// Exactly one of the rsa* or ec* (ecPoint/ecSecret) field groups is
// populated, selected by algo.
type keyPacket struct {
	tag     enums.Tag
	version int
	algo    enums.PubKeyAlgo
	created time.Time

	expirationV3 int

	curveOID []byte // ECDSA/EdDSA/ECDH only
	kdfHash  enums.HashAlgo
	kdfSym   enums.SymAlgo

	rsaN, rsaE *big.Int
	ecPoint    []byte // EC public point/seed, curve-convention encoded

	rsaD, rsaP, rsaQ, rsaU *big.Int
	ecSecret               []byte // scalar (ECDSA), seed (EdDSA), or clamped scalar (ECDH)

	hasSecret bool
	decrypted bool
	wrapped   []byte // wrapped secret tail, present when !decrypted
}

func (k *keyPacket) Tag() enums.Tag            { return k.tag }
func (k *keyPacket) Version() int              { return k.version }
func (k *keyPacket) Algorithm() enums.PubKeyAlgo { return k.algo }
func (k *keyPacket) Created() time.Time        { return k.created }
func (k *keyPacket) ExpirationTimeV3() int      { return k.expirationV3 }

func (k *keyPacket) CurveOID() pgpkey.OID { return pgpkey.OID(k.curveOID) }

// publicBody renders the packet's public-key portion per RFC 4880
// §5.5.2, independent of the enclosing packet header.
func (k *keyPacket) publicBody() []byte {
	body := make([]byte, 0, 64)
	body = append(body, byte(k.version))
	var created [4]byte
	t := uint32(k.created.Unix())
	created[0] = byte(t >> 24)
	created[1] = byte(t >> 16)
	created[2] = byte(t >> 8)
	created[3] = byte(t)
	body = append(body, created[:]...)
	body = append(body, byte(k.algo))

	switch k.algo {
	case enums.RSAEncryptSign, enums.RSAEncryptOnly, enums.RSASignOnly:
		body = append(body, mpiBig(k.rsaN)...)
		body = append(body, mpiBig(k.rsaE)...)
	case enums.ECDSA, enums.EdDSA:
		body = append(body, byte(len(k.curveOID)))
		body = append(body, k.curveOID...)
		body = append(body, mpi(k.ecPoint)...)
	case enums.ECDH:
		body = append(body, byte(len(k.curveOID)))
		body = append(body, k.curveOID...)
		body = append(body, mpi(k.ecPoint)...)
		body = append(body, 3, 1, byte(k.kdfHash), byte(k.kdfSym))
	}
	return body
}

// WritePublicKey returns the full packet bytes (header + body) for the
// public portion of this key, using the appropriate public/public-
// subkey tag.
func (k *keyPacket) WritePublicKey() []byte {
	pubTag := enums.TagPublicKey
	if k.tag == enums.TagSecretSubkey || k.tag == enums.TagPublicSubkey {
		pubTag = enums.TagPublicSubkey
	}
	body := k.publicBody()
	return append(packetHeader(pubTag, len(body)), body...)
}

// Raw implements pgpkey.Packet: the full packet, including the
// (wrapped or plaintext) secret portion when this is a secret-key or
// secret-subkey packet.
func (k *keyPacket) Raw() []byte {
	if k.tag == enums.TagPublicKey || k.tag == enums.TagPublicSubkey {
		return k.WritePublicKey()
	}
	body := k.publicBody()
	if k.decrypted {
		body = append(body, 0) // string-to-key usage octet: unencrypted
		plain := k.secretPlain()
		body = append(body, plain...)
		body = append(body, byte(checksum(plain)>>8), byte(checksum(plain)))
	} else {
		body = append(body, k.wrapped...)
	}
	return append(packetHeader(k.tag, len(body)), body...)
}

func (k *keyPacket) AsPublic() pgpkey.KeyPacket {
	if k.tag == enums.TagPublicKey || k.tag == enums.TagPublicSubkey {
		return k
	}
	pub := *k
	if pub.tag == enums.TagSecretKey {
		pub.tag = enums.TagPublicKey
	} else {
		pub.tag = enums.TagPublicSubkey
	}
	pub.rsaD, pub.rsaP, pub.rsaQ, pub.rsaU = nil, nil, nil, nil
	pub.ecSecret = nil
	pub.hasSecret = false
	pub.decrypted = false
	pub.wrapped = nil
	return &pub
}

func (k *keyPacket) IsSecret() bool    { return k.hasSecret }
func (k *keyPacket) IsDecrypted() bool { return k.hasSecret && k.decrypted }

// secretPlain renders the unencrypted secret-key MPI string (no
// usage-octet or checksum), used both to build the unencrypted packet
// tail and as the plaintext wrapSecret/unwrapSecret operate on.
func (k *keyPacket) secretPlain() []byte {
	switch k.algo {
	case enums.RSAEncryptSign, enums.RSAEncryptOnly, enums.RSASignOnly:
		out := append([]byte{}, mpiBig(k.rsaD)...)
		out = append(out, mpiBig(k.rsaP)...)
		out = append(out, mpiBig(k.rsaQ)...)
		out = append(out, mpiBig(k.rsaU)...)
		return out
	default: // ECDSA, EdDSA, ECDH
		return mpi(k.ecSecret)
	}
}

// Generate implements pgpkey.KeyPacket.Generate for RSA, EdDSA, ECDSA
// (NIST curves only), and ECDH (curve25519 only).
func (k *keyPacket) Generate(numBits int, curveName enums.CurveName) error {
	k.version = 4
	switch k.algo {
	case enums.RSAEncryptSign, enums.RSAEncryptOnly, enums.RSASignOnly:
		if numBits == 0 {
			numBits = 3072
		}
		priv, err := rsa.GenerateKey(rand.Reader, numBits)
		if err != nil {
			return err
		}
		priv.Precompute()
		k.rsaN = priv.N
		k.rsaE = big.NewInt(int64(priv.E))
		k.rsaD = priv.D
		k.rsaP = priv.Primes[0]
		k.rsaQ = priv.Primes[1]
		k.rsaU = new(big.Int).ModInverse(k.rsaP, k.rsaQ)

	case enums.EdDSA:
		info, err := curve.Find(curveName)
		if err != nil {
			return err
		}
		k.curveOID = info.OID
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return err
		}
		k.ecPoint = append([]byte{0x40}, pub...)
		k.ecSecret = append([]byte{}, priv.Seed()...)

	case enums.ECDH:
		info, err := curve.Find(curveName)
		if err != nil {
			return err
		}
		if curveName != enums.Curve25519 {
			return ErrUnsupportedCurve
		}
		k.curveOID = info.OID
		k.kdfHash = info.PreferredHash
		k.kdfSym = info.PreferredSym

		var scalar [32]byte
		if _, err := rand.Read(scalar[:]); err != nil {
			return err
		}
		clampCurve25519(&scalar)
		point, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
		if err != nil {
			return err
		}
		k.ecPoint = append([]byte{0x40}, point...)
		k.ecSecret = scalar[:]

	case enums.ECDSA:
		info, err := curve.Find(curveName)
		if err != nil {
			return err
		}
		ell, ok := nistCurve(curveName)
		if !ok {
			return ErrUnsupportedCurve
		}
		k.curveOID = info.OID
		priv, err := ecdsa.GenerateKey(ell, rand.Reader)
		if err != nil {
			return err
		}
		k.ecPoint = elliptic.Marshal(ell, priv.X, priv.Y)
		k.ecSecret = priv.D.Bytes()

	default:
		return pgpkey.ErrUnsupportedKeyType
	}

	k.hasSecret = true
	k.decrypted = true
	return nil
}

func nistCurve(name enums.CurveName) (elliptic.Curve, bool) {
	switch name {
	case enums.P256:
		return elliptic.P256(), true
	case enums.P384:
		return elliptic.P384(), true
	case enums.P521:
		return elliptic.P521(), true
	default:
		return nil, false
	}
}

// clampCurve25519 applies the RFC 7748 clamping rule to a raw scalar.
func clampCurve25519(scalar *[32]byte) {
	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64
}

// Encrypt implements pgpkey.KeyPacket.Encrypt: it wraps the current
// secret material under passphrase. The plaintext stays in memory, and
// Raw keeps emitting it, until ClearPrivateParams discards it.
func (k *keyPacket) Encrypt(passphrase []byte) error {
	if !k.hasSecret {
		return pgpkey.ErrNothingToEncrypt
	}
	if !k.decrypted {
		return pgpkey.ErrNotDecrypted
	}
	k.wrapped = wrapSecret(k.secretPlain(), passphrase)
	return nil
}

func (k *keyPacket) Decrypt(passphrase []byte) error {
	if !k.hasSecret {
		return pgpkey.ErrNothingToDecrypt
	}
	if k.decrypted {
		return nil
	}
	if k.wrapped == nil {
		return pgpkey.ErrNotDecrypted
	}
	plain, ok := unwrapSecret(k.wrapped, passphrase)
	if !ok {
		return pgpkey.ErrNotDecrypted
	}
	if err := k.loadSecretPlain(plain); err != nil {
		return err
	}
	k.decrypted = true
	return nil
}

func (k *keyPacket) loadSecretPlain(plain []byte) error {
	switch k.algo {
	case enums.RSAEncryptSign, enums.RSAEncryptOnly, enums.RSASignOnly:
		d, rest := mpiDecode(plain, 0)
		p, rest := mpiDecode(rest, 0)
		q, rest := mpiDecode(rest, 0)
		u, _ := mpiDecode(rest, 0)
		k.rsaD = new(big.Int).SetBytes(d)
		k.rsaP = new(big.Int).SetBytes(p)
		k.rsaQ = new(big.Int).SetBytes(q)
		k.rsaU = new(big.Int).SetBytes(u)
	default:
		byteLen := 0
		if info, err := curve.FindByOID(k.curveOID); err == nil {
			byteLen = info.PayloadSize
		}
		secret, _ := mpiDecode(plain, byteLen)
		k.ecSecret = secret
	}
	return nil
}

func (k *keyPacket) ClearPrivateParams() {
	k.rsaD, k.rsaP, k.rsaQ, k.rsaU = nil, nil, nil, nil
	k.ecSecret = nil
	k.decrypted = false
}

// ParamVector renders the packet's parameter vector for the public
// portion followed by, when decrypted, the private portion — the
// concatenation of the MPI/OID/KDF shapes package params declares for
// this algorithm.
func (k *keyPacket) ParamVector() []byte {
	var out []byte
	switch k.algo {
	case enums.RSAEncryptSign, enums.RSAEncryptOnly, enums.RSASignOnly:
		out = append(out, mpiBig(k.rsaN)...)
		out = append(out, mpiBig(k.rsaE)...)
	default:
		out = append(out, k.curveOID...)
		out = append(out, mpi(k.ecPoint)...)
		if k.algo == enums.ECDH {
			out = append(out, 3, 1, byte(k.kdfHash), byte(k.kdfSym))
		}
	}
	if k.decrypted {
		out = append(out, k.secretPlain()...)
	}
	return out
}

// KeyID returns the low 8 bytes of the v4 fingerprint.
func (k *keyPacket) KeyID() pgpkey.KeyID {
	fp := k.fingerprint()
	var id pgpkey.KeyID
	copy(id[:], fp[len(fp)-8:])
	return id
}

func (k *keyPacket) fingerprint() []byte {
	body := k.publicBody()
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	return h.Sum(nil)
}

func (k *keyPacket) Fingerprint() pgpkey.Fingerprint {
	return pgpkey.Fingerprint(k.fingerprint())
}
