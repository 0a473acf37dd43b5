// Package pgpkey implements the OpenPGP transferable key object
// model: reading a packet sequence into a structured Key, verifying
// the trust relationships between its components, selecting key
// material for a cryptographic operation, merging updates from
// another copy of the same key, and generating or reformatting keys.
//
// The underlying MPI arithmetic, symmetric ciphers, armored-text
// codec, packet encoder/decoder, random-byte source, passphrase-based
// secret-key wrapping, and any hardware acceleration are external
// collaborators: this package operates entirely against the
// interfaces declared here (KeyPacket, SignaturePacket, PacketList)
// and never serializes a packet itself.
package pgpkey

import (
	"time"

	"github.com/skeeto/pgpkey/enums"
)

// KeyID is a truncated fingerprint used for lookup.
type KeyID [8]byte

// wildcard is the all-zero short-ID form that Equal treats as a
// match-anything hint, per spec.md §6 ("Key-ID / fingerprint: ...
// optional wildcard mode for the short-id form").
var wildcard KeyID

// Equal compares two key IDs. If either id is the all-zero wildcard,
// they are considered equal.
func (id KeyID) Equal(other KeyID) bool {
	if id == wildcard || other == wildcard {
		return true
	}
	return id == other
}

func (id KeyID) Hex() string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i, b := range id {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0xf]
	}
	return string(buf)
}

// Fingerprint is the canonical cryptographic identifier of a key
// packet, equality-tested as raw bytes.
type Fingerprint []byte

func (f Fingerprint) Equal(other Fingerprint) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

func (f Fingerprint) Hex() string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, len(f)*2)
	for i, b := range f {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0xf]
	}
	return string(buf)
}

// OID is a DER-encoded ASN.1 object identifier, as carried in ECC
// public-key parameters.
type OID []byte

func (o OID) Hex() string {
	return Fingerprint(o).Hex()
}

// DER returns the object identifier's DER byte encoding, which for the
// curve registry's OID type is simply the stored bytes.
func (o OID) DER() []byte {
	return []byte(o)
}

// KeyPacket is the required capability set of a primary key or subkey
// packet (§6). Implementations live outside the core: a reference one
// is provided by package refpacket for tests and the CLI.
type KeyPacket interface {
	Tag() enums.Tag
	Version() int
	Algorithm() enums.PubKeyAlgo
	Created() time.Time

	// ExpirationTimeV3 is the v3-only expiration-in-days field; 0 if
	// the key never expires or is a v4 key (v4 expiration lives on the
	// governing signature instead, per spec.md §4.4).
	ExpirationTimeV3() int

	KeyID() KeyID
	Fingerprint() Fingerprint

	// WritePublicKey returns the packet's bytes with any secret
	// material stripped, for toPublic() projection.
	WritePublicKey() []byte

	// AsPublic returns a KeyPacket object equivalent to this one but
	// carrying only public material (tag PublicKey/PublicSubkey). If
	// the packet is already public it may return itself. The core's
	// toPublic() projection uses this rather than re-parsing
	// WritePublicKey()'s bytes, since the core never parses packets.
	AsPublic() KeyPacket

	// IsSecret reports whether this packet carries a secret-key
	// portion (possibly still encrypted under a passphrase).
	IsSecret() bool

	// IsDecrypted reports whether secret material, if present, is
	// currently usable (not wrapped under a passphrase).
	IsDecrypted() bool

	// Generate populates the packet with freshly generated secret
	// material. numBits applies to RSA algorithms; curveName applies
	// to ECDSA/EdDSA/ECDH algorithms. Exactly one is meaningful for a
	// given packet's Algorithm().
	Generate(numBits int, curveName enums.CurveName) error

	// Encrypt wraps the packet's secret material under passphrase.
	Encrypt(passphrase []byte) error
	// Decrypt unwraps the packet's secret material under passphrase.
	Decrypt(passphrase []byte) error
	// ClearPrivateParams discards in-memory secret material, leaving
	// the packet in its encrypted-on-disk state.
	ClearPrivateParams()

	// ParamVector exposes the raw parameter-shape vector described by
	// package params — MPIs, OID, KDF params, as applicable.
	ParamVector() []byte
}

// SignaturePacket is the required capability set of a signature
// packet (§6).
type SignaturePacket interface {
	SignatureType() enums.SigType
	IssuerKeyID() KeyID
	KeyFlags() enums.KeyFlag
	PreferredHashAlgorithms() []enums.HashAlgo
	PreferredSymmetricAlgorithms() []enums.SymAlgo
	PreferredCompressionAlgorithms() []enums.CompressionAlgo
	Features() []byte

	// IsPrimaryUserID reports whether the signer asserted primary-user
	// status for the certified User, and at what weight; ok is false
	// if the subpacket is absent.
	IsPrimaryUserID() (weight int, ok bool)

	Created() time.Time
	// KeyExpirationTime returns the asserted key-expiration in
	// seconds since Created of the *governing key*, and whether the
	// signature carries a key-expiration value at all. Non-expiry is
	// reported separately by KeyNeverExpires.
	KeyExpirationTime() (seconds uint32, ok bool)
	KeyNeverExpires() bool

	Raw() []byte

	// Verified reports the signature's cached verification result.
	// The cache is monotonic: false until a successful Verify call,
	// then permanently true.
	Verified() bool
	// Revoked reports the signature's cached revocation result.
	Revoked() bool
	SetRevoked(bool)

	// Verify checks the signature against the verifying key packet and
	// the bound data, caching success in Verified(). It is safe to call
	// redundantly; repeated successful calls are idempotent.
	Verify(verifyingKey KeyPacket, dataToVerify BoundData) (bool, error)
	// Sign produces a new raw signature over dataToSign using
	// signingKey, populating Raw().
	Sign(signingKey KeyPacket, dataToSign BoundData) error

	// IsExpired reports whether the signature itself (as opposed to
	// the key it governs) has expired by time now.
	IsExpired(now time.Time) bool
}

// SignatureBuilder is the mutable view of a freshly allocated
// SignaturePacket that the generator populates before calling Sign.
// A collaborator's concrete signature type implements both this and
// SignaturePacket.
type SignatureBuilder interface {
	SignaturePacket

	SetIssuerKeyID(KeyID)
	SetKeyFlags(enums.KeyFlag)
	SetPreferredHashAlgorithms([]enums.HashAlgo)
	SetPreferredSymmetricAlgorithms([]enums.SymAlgo)
	SetPreferredCompressionAlgorithms([]enums.CompressionAlgo)
	SetFeatures([]byte)
	SetIsPrimaryUserID(weight int)
	SetKeyExpirationTime(seconds uint32)
	SetKeyNeverExpires(bool)
}

// BoundData names what a signature is computed over: a user packet
// bound to a key, a subkey bound to a primary key, or a bare key
// (direct/key-revocation signatures).
type BoundData struct {
	Key  KeyPacket
	User UserPacket   // nil for key/key_revocation signatures
	Bind KeyPacket    // non-nil subkey, for subkey binding/revocation
}

// UserPacket is a UserID or UserAttribute packet.
type UserPacket interface {
	// IsUserID reports whether this is a textual User ID packet as
	// opposed to an opaque User Attribute packet.
	IsUserID() bool
	// Bytes returns the UserID text bytes, or the UserAttribute's
	// opaque bytes.
	Bytes() []byte
	Raw() []byte
}

// Factory constructs fresh, empty packets of each kind the generator
// needs. A collaborator outside the core provides this (see package
// refpacket); the core's generator never allocates wire
// representations itself.
type Factory interface {
	// NewKeyPacket allocates an unpopulated secret key/subkey packet
	// of the given tag and algorithm, ready for Generate.
	NewKeyPacket(tag enums.Tag, algo enums.PubKeyAlgo, created time.Time) KeyPacket
	// NewSignaturePacket allocates an unpopulated signature packet of
	// the given type, ready to have its fields set and Sign called.
	NewSignaturePacket(sigType enums.SigType, hash enums.HashAlgo, created time.Time) SignatureBuilder
	// NewUserIDPacket allocates a UserID packet wrapping id.
	NewUserIDPacket(id []byte) UserPacket
}

// PacketList is an ordered container of typed packets (§6). Packet is
// an opaque handle; collaborators decide its concrete representation.
type PacketList interface {
	Len() int
	At(i int) Packet
	Append(Packet) PacketList
	Concat(PacketList) PacketList
	Slice(i, j int) PacketList
	// IndexOfTag returns the positions of every packet whose tag is
	// one of tags, in order.
	IndexOfTag(tags ...enums.Tag) []int
}

// Packet is one entry in a PacketList: a primary/sub key packet, a
// user/user-attribute packet, or a signature packet.
type Packet interface {
	Tag() enums.Tag
	Raw() []byte
}
