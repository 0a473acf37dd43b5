package refpacket

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"hash"
	"math/big"
	"time"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RFC 4880 hash algorithm 3

	"github.com/skeeto/pgpkey/curve"
	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
)

// ErrSignatureInvalid names a signature that does not verify. Verify
// does not return it: a failed cryptographic check is reported through
// Verify's bool result, with a nil error.
var ErrSignatureInvalid = errors.New("refpacket: signature does not verify")

type subpacket struct {
	Type byte
	Data []byte
}

func newHash(algo enums.HashAlgo) (hash.Hash, bool) {
	switch algo {
	case enums.MD5:
		return md5.New(), true
	case enums.SHA1:
		return sha1.New(), true
	case enums.RIPEMD160:
		return ripemd160.New(), true
	case enums.SHA256:
		return sha256.New(), true
	case enums.SHA384:
		return sha512.New384(), true
	case enums.SHA512:
		return sha512.New(), true
	case enums.SHA224:
		return sha256.New224(), true
	default:
		return nil, false
	}
}

func cryptoHash(algo enums.HashAlgo) crypto.Hash {
	switch algo {
	case enums.MD5:
		return crypto.MD5
	case enums.SHA1:
		return crypto.SHA1
	case enums.RIPEMD160:
		return crypto.RIPEMD160
	case enums.SHA384:
		return crypto.SHA384
	case enums.SHA512:
		return crypto.SHA512
	case enums.SHA224:
		return crypto.SHA224
	default:
		return crypto.SHA256
	}
}

// sigPacket is the concrete pgpkey.SignatureBuilder used by this
// collaborator.
type sigPacket struct {
	sigType  enums.SigType
	hashAlgo enums.HashAlgo
	created  time.Time

	issuerKeyID pgpkey.KeyID
	hasIssuer   bool

	keyFlags    enums.KeyFlag
	hasKeyFlags bool

	prefHash []enums.HashAlgo
	prefSym  []enums.SymAlgo
	prefComp []enums.CompressionAlgo
	features []byte

	primaryWeight int
	hasPrimary    bool

	keyExpSeconds uint32
	hasKeyExp     bool
	neverExpires  bool

	signingAlgo enums.PubKeyAlgo // algorithm of the key that produced sigValue
	sigValue    []byte           // one or two MPIs, algorithm-dependent
	hashedArea  []byte           // the hashed-subpacket bytes used at Sign time

	verified bool
	revoked  bool
}

func (s *sigPacket) Tag() enums.Tag { return enums.TagSignature }

func (s *sigPacket) SignatureType() enums.SigType { return s.sigType }
func (s *sigPacket) IssuerKeyID() pgpkey.KeyID     { return s.issuerKeyID }
func (s *sigPacket) KeyFlags() enums.KeyFlag       { return s.keyFlags }
func (s *sigPacket) PreferredHashAlgorithms() []enums.HashAlgo           { return s.prefHash }
func (s *sigPacket) PreferredSymmetricAlgorithms() []enums.SymAlgo       { return s.prefSym }
func (s *sigPacket) PreferredCompressionAlgorithms() []enums.CompressionAlgo { return s.prefComp }
func (s *sigPacket) Features() []byte              { return s.features }
func (s *sigPacket) Created() time.Time            { return s.created }
func (s *sigPacket) KeyNeverExpires() bool         { return s.neverExpires }

func (s *sigPacket) IsPrimaryUserID() (int, bool) {
	return s.primaryWeight, s.hasPrimary
}

func (s *sigPacket) KeyExpirationTime() (uint32, bool) {
	return s.keyExpSeconds, s.hasKeyExp
}

func (s *sigPacket) Verified() bool    { return s.verified }
func (s *sigPacket) Revoked() bool     { return s.revoked }
func (s *sigPacket) SetRevoked(v bool) { s.revoked = v }

func (s *sigPacket) IsExpired(now time.Time) bool { return false }

func (s *sigPacket) SetIssuerKeyID(id pgpkey.KeyID) { s.issuerKeyID, s.hasIssuer = id, true }
func (s *sigPacket) SetKeyFlags(f enums.KeyFlag)    { s.keyFlags, s.hasKeyFlags = f, true }
func (s *sigPacket) SetPreferredHashAlgorithms(v []enums.HashAlgo)           { s.prefHash = v }
func (s *sigPacket) SetPreferredSymmetricAlgorithms(v []enums.SymAlgo)       { s.prefSym = v }
func (s *sigPacket) SetPreferredCompressionAlgorithms(v []enums.CompressionAlgo) { s.prefComp = v }
func (s *sigPacket) SetFeatures(v []byte)                                   { s.features = v }
func (s *sigPacket) SetIsPrimaryUserID(weight int)                          { s.primaryWeight, s.hasPrimary = weight, true }
func (s *sigPacket) SetKeyExpirationTime(seconds uint32)                    { s.keyExpSeconds, s.hasKeyExp = seconds, true }
func (s *sigPacket) SetKeyNeverExpires(v bool)                              { s.neverExpires = v }

func marshal32be(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// buildHashedArea renders the hashed subpacket region from the fields
// the generator set, in the order passphrase2pgp's signer uses:
// creation time, issuer, then whatever else applies.
func (s *sigPacket) buildHashedArea() []byte {
	var subs []subpacket
	subs = append(subs, subpacket{Type: 2, Data: marshal32be(uint32(s.created.Unix()))})
	if s.hasIssuer {
		subs = append(subs, subpacket{Type: 16, Data: append([]byte{}, s.issuerKeyID[:]...)})
	}
	if s.hasKeyFlags {
		subs = append(subs, subpacket{Type: 27, Data: []byte{byte(s.keyFlags)}})
	}
	if len(s.prefSym) > 0 {
		data := make([]byte, len(s.prefSym))
		for i, a := range s.prefSym {
			data[i] = byte(a)
		}
		subs = append(subs, subpacket{Type: 11, Data: data})
	}
	if len(s.prefHash) > 0 {
		data := make([]byte, len(s.prefHash))
		for i, a := range s.prefHash {
			data[i] = byte(a)
		}
		subs = append(subs, subpacket{Type: 21, Data: data})
	}
	if len(s.prefComp) > 0 {
		data := make([]byte, len(s.prefComp))
		for i, a := range s.prefComp {
			data[i] = byte(a)
		}
		subs = append(subs, subpacket{Type: 22, Data: data})
	}
	if s.hasPrimary {
		subs = append(subs, subpacket{Type: 25, Data: []byte{byte(s.primaryWeight)}})
	}
	if s.hasKeyExp {
		subs = append(subs, subpacket{Type: 9, Data: marshal32be(s.keyExpSeconds)})
	}
	if len(s.features) > 0 {
		subs = append(subs, subpacket{Type: 30, Data: append([]byte{}, s.features...)})
	}

	var out []byte
	for _, sp := range subs {
		out = append(out, byte(len(sp.Data)+1), sp.Type)
		out = append(out, sp.Data...)
	}
	return out
}

// keyBodyOf returns a refpacket key packet's body bytes, with no
// packet header, for use in a signature hash preimage.
func keyBodyOf(k pgpkey.KeyPacket) ([]byte, error) {
	kp, ok := k.(*keyPacket)
	if !ok {
		return nil, errors.New("refpacket: not a refpacket key packet")
	}
	return kp.publicBody(), nil
}

func hashKeyBody(h hash.Hash, k pgpkey.KeyPacket) error {
	body, err := keyBodyOf(k)
	if err != nil {
		return err
	}
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	return nil
}

// hashBoundData hashes the bound-data portion of the signature per the
// dispatch rule of RFC 4880 §5.2.4: a cert signature hashes key+user,
// a subkey binding/revocation hashes key+subkey, everything else
// hashes the key alone.
func hashBoundData(h hash.Hash, data pgpkey.BoundData) error {
	if data.Key == nil {
		return errors.New("refpacket: BoundData has no key")
	}
	if err := hashKeyBody(h, data.Key); err != nil {
		return err
	}
	switch {
	case data.User != nil:
		up, ok := data.User.(*userPacket)
		if !ok {
			return errors.New("refpacket: not a refpacket user packet")
		}
		marker := byte(0xb4)
		if !up.isUserID {
			marker = 0xd1
		}
		hdr := make([]byte, 5)
		hdr[0] = marker
		binary.BigEndian.PutUint32(hdr[1:], uint32(len(up.data)))
		h.Write(hdr)
		h.Write(up.data)
	case data.Bind != nil:
		if err := hashKeyBody(h, data.Bind); err != nil {
			return err
		}
	}
	return nil
}

// Sign implements pgpkey.SignatureBuilder.Sign.
func (s *sigPacket) Sign(signingKey pgpkey.KeyPacket, dataToSign pgpkey.BoundData) error {
	kp, ok := signingKey.(*keyPacket)
	if !ok || !kp.IsDecrypted() {
		return pgpkey.ErrNotDecrypted
	}

	h, ok := newHash(s.hashAlgo)
	if !ok {
		return errors.New("refpacket: unsupported hash algorithm")
	}
	if err := hashBoundData(h, dataToSign); err != nil {
		return err
	}

	hashedArea := s.buildHashedArea()
	trailer := make([]byte, 6)
	trailer[0] = 4
	trailer[1] = byte(s.sigType)
	trailer[2] = byte(kp.algo)
	trailer[3] = byte(s.hashAlgo)
	binary.BigEndian.PutUint16(trailer[4:], uint16(len(hashedArea)))
	h.Write(trailer)
	h.Write(hashedArea)
	final := []byte{4, 0xff, 0, 0, 0, byte(len(hashedArea) + 6)}
	h.Write(final)

	digest := h.Sum(nil)

	sigValue, err := signDigest(kp, s.hashAlgo, digest)
	if err != nil {
		return err
	}

	s.signingAlgo = kp.algo
	s.hashedArea = hashedArea
	s.sigValue = sigValue
	s.verified = true
	return nil
}

func signDigest(kp *keyPacket, hashAlgo enums.HashAlgo, digest []byte) ([]byte, error) {
	switch kp.algo {
	case enums.RSAEncryptSign, enums.RSASignOnly:
		priv := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: kp.rsaN, E: int(kp.rsaE.Int64())},
			D:         kp.rsaD,
			Primes:    []*big.Int{kp.rsaP, kp.rsaQ},
		}
		priv.Precompute()
		sig, err := rsa.SignPKCS1v15(rand.Reader, priv, cryptoHash(hashAlgo), digest)
		if err != nil {
			return nil, err
		}
		return mpi(sig), nil

	case enums.EdDSA:
		priv := ed25519.NewKeyFromSeed(kp.ecSecret)
		sig := ed25519.Sign(priv, digest)
		out := append([]byte{}, mpi(sig[:32])...)
		out = append(out, mpi(sig[32:])...)
		return out, nil

	case enums.ECDSA:
		ell, ok := nistCurve(curveNameFor(kp.curveOID))
		if !ok {
			return nil, ErrUnsupportedCurve
		}
		priv := new(ecdsa.PrivateKey)
		priv.Curve = ell
		priv.D = new(big.Int).SetBytes(kp.ecSecret)
		priv.PublicKey.X, priv.PublicKey.Y = ell.ScalarBaseMult(kp.ecSecret)
		r, sVal, err := ecdsa.Sign(rand.Reader, priv, digest)
		if err != nil {
			return nil, err
		}
		out := append([]byte{}, mpiBig(r)...)
		out = append(out, mpiBig(sVal)...)
		return out, nil

	default:
		return nil, pgpkey.ErrUnsupportedKeyType
	}
}

func curveNameFor(oid []byte) enums.CurveName {
	info, err := curve.FindByOID(oid)
	if err != nil {
		return ""
	}
	return info.Name
}

// Verify implements pgpkey.SignaturePacket.Verify: it recomputes the
// hash over verifyingKey/dataToVerify using this signature's own type,
// hash algorithm, and hashed-subpacket bytes, then checks sigValue
// against verifyingKey's public material.
func (s *sigPacket) Verify(verifyingKey pgpkey.KeyPacket, dataToVerify pgpkey.BoundData) (bool, error) {
	kp, ok := verifyingKey.(*keyPacket)
	if !ok {
		return false, errors.New("refpacket: verifyingKey is not a refpacket key")
	}
	h, ok := newHash(s.hashAlgo)
	if !ok {
		return false, errors.New("refpacket: unsupported hash algorithm")
	}
	if err := hashBoundData(h, dataToVerify); err != nil {
		return false, err
	}

	trailer := make([]byte, 6)
	trailer[0] = 4
	trailer[1] = byte(s.sigType)
	trailer[2] = byte(s.signingAlgo)
	trailer[3] = byte(s.hashAlgo)
	binary.BigEndian.PutUint16(trailer[4:], uint16(len(s.hashedArea)))
	h.Write(trailer)
	h.Write(s.hashedArea)
	final := []byte{4, 0xff, 0, 0, 0, byte(len(s.hashedArea) + 6)}
	h.Write(final)
	digest := h.Sum(nil)

	ok, err := verifyDigest(kp, s.signingAlgo, s.hashAlgo, digest, s.sigValue)
	if ok {
		s.verified = true
	}
	return ok, err
}

func verifyDigest(kp *keyPacket, algo enums.PubKeyAlgo, hashAlgo enums.HashAlgo, digest, sigValue []byte) (bool, error) {
	switch algo {
	case enums.RSAEncryptSign, enums.RSASignOnly:
		sig, _ := mpiDecode(sigValue, 0)
		pub := &rsa.PublicKey{N: kp.rsaN, E: int(kp.rsaE.Int64())}
		err := rsa.VerifyPKCS1v15(pub, cryptoHash(hashAlgo), digest, sig)
		return err == nil, nil

	case enums.EdDSA:
		r, rest := mpiDecode(sigValue, 32)
		sVal, _ := mpiDecode(rest, 32)
		sig := append(append([]byte{}, r...), sVal...)
		pub := ed25519.PublicKey(kp.ecPoint[1:])
		return ed25519.Verify(pub, digest, sig), nil

	case enums.ECDSA:
		ell, ok := nistCurve(curveNameFor(kp.curveOID))
		if !ok {
			return false, ErrUnsupportedCurve
		}
		r, rest := mpiDecode(sigValue, 0)
		sBytes, _ := mpiDecode(rest, 0)
		x, y := elliptic.Unmarshal(ell, kp.ecPoint)
		pub := &ecdsa.PublicKey{Curve: ell, X: x, Y: y}
		ok = ecdsa.Verify(pub, digest, new(big.Int).SetBytes(r), new(big.Int).SetBytes(sBytes))
		return ok, nil

	default:
		return false, pgpkey.ErrUnknownAlgorithm
	}
}

// Raw renders the full signature packet: header, version/type/algo/
// hash octets, hashed and unhashed subpacket areas, hash preview, and
// signature MPIs — the same layout passphrase2pgp's signer builds.
func (s *sigPacket) Raw() []byte {
	body := make([]byte, 0, 64)
	body = append(body, 4, byte(s.sigType), byte(s.signingAlgo), byte(s.hashAlgo))
	var hashedLen [2]byte
	binary.BigEndian.PutUint16(hashedLen[:], uint16(len(s.hashedArea)))
	body = append(body, hashedLen[:]...)
	body = append(body, s.hashedArea...)
	body = append(body, 0, 0) // empty unhashed subpacket area
	body = append(body, 0, 0) // hash preview (not recomputed on Raw(); advisory only)
	body = append(body, s.sigValue...)
	return append(packetHeader(enums.TagSignature, len(body)), body...)
}
