// Package enums holds the stable numeric constants of the OpenPGP
// transferable key object model: algorithm identifiers, packet tags,
// signature types, key flags, and the status codes the validation
// engine reports. Nothing here touches wire bytes; these are the
// symbolic values the rest of the model is built from.
package enums

// PubKeyAlgo identifies an OpenPGP public-key algorithm.
type PubKeyAlgo int

const (
	RSAEncryptSign PubKeyAlgo = 1
	RSAEncryptOnly PubKeyAlgo = 2
	RSASignOnly    PubKeyAlgo = 3
	Elgamal        PubKeyAlgo = 16
	DSA            PubKeyAlgo = 17
	ECDH           PubKeyAlgo = 18
	ECDSA          PubKeyAlgo = 19
	EdDSA          PubKeyAlgo = 22
)

var pubKeyAlgoNames = map[PubKeyAlgo]string{
	RSAEncryptSign: "rsa_encrypt_sign",
	RSAEncryptOnly: "rsa_encrypt_only",
	RSASignOnly:    "rsa_sign_only",
	Elgamal:        "elgamal",
	DSA:            "dsa",
	ECDH:           "ecdh",
	ECDSA:          "ecdsa",
	EdDSA:          "eddsa",
}

var pubKeyAlgoByName = func() map[string]PubKeyAlgo {
	m := make(map[string]PubKeyAlgo, len(pubKeyAlgoNames))
	for id, name := range pubKeyAlgoNames {
		m[name] = id
	}
	return m
}()

func (a PubKeyAlgo) String() string {
	if name, ok := pubKeyAlgoNames[a]; ok {
		return name
	}
	return "unknown_pubkey_algo"
}

// PubKeyAlgoByName resolves a symbolic algorithm name to its numeric ID.
func PubKeyAlgoByName(name string) (PubKeyAlgo, bool) {
	a, ok := pubKeyAlgoByName[name]
	return a, ok
}

// HashAlgo identifies an OpenPGP hash algorithm.
type HashAlgo int

const (
	MD5       HashAlgo = 1
	SHA1      HashAlgo = 2
	RIPEMD160 HashAlgo = 3
	SHA256    HashAlgo = 8
	SHA384    HashAlgo = 9
	SHA512    HashAlgo = 10
	SHA224    HashAlgo = 11
)

// hashLen is the output size in bytes, used by the "hash-length >="
// preference negotiation rules in the validation engine.
var hashLen = map[HashAlgo]int{
	MD5:       16,
	SHA1:      20,
	RIPEMD160: 20,
	SHA256:    32,
	SHA384:    48,
	SHA512:    64,
	SHA224:    28,
}

// Len returns the digest length in bytes, or 0 if unknown.
func (h HashAlgo) Len() int {
	return hashLen[h]
}

var hashNames = map[HashAlgo]string{
	MD5: "md5", SHA1: "sha1", RIPEMD160: "ripemd160",
	SHA256: "sha256", SHA384: "sha384", SHA512: "sha512", SHA224: "sha224",
}

func (h HashAlgo) String() string {
	if name, ok := hashNames[h]; ok {
		return name
	}
	return "unknown_hash_algo"
}

// SymAlgo identifies an OpenPGP symmetric cipher.
type SymAlgo int

const (
	Plaintext SymAlgo = 0
	IDEA      SymAlgo = 1
	TripleDES SymAlgo = 2
	CAST5     SymAlgo = 3
	Blowfish  SymAlgo = 4
	AES128    SymAlgo = 7
	AES192    SymAlgo = 8
	AES256    SymAlgo = 9
	Twofish   SymAlgo = 10
)

var symNames = map[SymAlgo]string{
	Plaintext: "plaintext", IDEA: "idea", TripleDES: "tripledes",
	CAST5: "cast5", Blowfish: "blowfish", AES128: "aes128",
	AES192: "aes192", AES256: "aes256", Twofish: "twofish",
}

func (s SymAlgo) String() string {
	if name, ok := symNames[s]; ok {
		return name
	}
	return "unknown_sym_algo"
}

// IsKnownSymAlgo reports whether s is a recognized symmetric cipher
// identifier, used by the preferred-symmetric negotiator (spec.md
// §4.10) to reject unrecognized algorithm IDs from a peer's
// preference list.
func IsKnownSymAlgo(s SymAlgo) bool {
	_, ok := symNames[s]
	return ok
}

// CompressionAlgo identifies an OpenPGP compression algorithm.
type CompressionAlgo int

const (
	CompressionNone CompressionAlgo = 0
	CompressionZIP  CompressionAlgo = 1
	CompressionZLIB CompressionAlgo = 2
	CompressionBZIP CompressionAlgo = 3
)

// SigType identifies an OpenPGP signature type.
type SigType int

const (
	SigBinary           SigType = 0x00
	SigText             SigType = 0x01
	SigCertGeneric      SigType = 0x10
	SigCertPersona      SigType = 0x11
	SigCertCasual       SigType = 0x12
	SigCertPositive     SigType = 0x13
	SigSubkeyBinding    SigType = 0x18
	SigPrimaryKeyBind   SigType = 0x19
	SigKey              SigType = 0x1f
	SigKeyRevocation    SigType = 0x20
	SigSubkeyRevocation SigType = 0x28
	SigCertRevocation   SigType = 0x30
)

// IsCertification reports whether t is one of the cert_* signature
// types bound to a User.
func (t SigType) IsCertification() bool {
	switch t {
	case SigCertGeneric, SigCertPersona, SigCertCasual, SigCertPositive:
		return true
	}
	return false
}

// Tag identifies an OpenPGP packet type relevant to the key object model.
type Tag int

const (
	TagSignature     Tag = 2
	TagSecretKey     Tag = 5
	TagPublicKey     Tag = 6
	TagSecretSubkey  Tag = 7
	TagUserID        Tag = 13
	TagUserAttribute Tag = 17
	TagPublicSubkey  Tag = 14
)

// KeyFlag is a bitmask of the Key Flags subpacket (RFC 4880 5.2.3.21).
type KeyFlag byte

const (
	FlagCertifyKeys          KeyFlag = 0x01
	FlagSignData             KeyFlag = 0x02
	FlagEncryptCommunication KeyFlag = 0x04
	FlagEncryptStorage       KeyFlag = 0x08
)

// KeyStatus is the outcome of validating a primary key or subkey.
type KeyStatus int

const (
	StatusValid KeyStatus = iota
	StatusRevoked
	StatusNoSelfCert
	StatusInvalid
	StatusExpired
)

var keyStatusNames = map[KeyStatus]string{
	StatusValid:      "valid",
	StatusRevoked:    "revoked",
	StatusNoSelfCert: "no_self_cert",
	StatusInvalid:    "invalid",
	StatusExpired:    "expired",
}

func (s KeyStatus) String() string {
	if name, ok := keyStatusNames[s]; ok {
		return name
	}
	return "unknown_status"
}

// ArmorType identifies the block type of ASCII-armored OpenPGP text.
// The core never frames armor itself (see Non-goals); this exists so
// collaborators outside the core can agree on the same symbolic set.
type ArmorType int

const (
	ArmorMessage ArmorType = iota
	ArmorPublicKey
	ArmorPrivateKey
	ArmorSignature
)

// CurveName is a symbolic elliptic-curve identifier.
type CurveName string

const (
	P256            CurveName = "p256"
	P384            CurveName = "p384"
	P521            CurveName = "p521"
	Secp256k1       CurveName = "secp256k1"
	Ed25519         CurveName = "ed25519"
	Curve25519      CurveName = "curve25519"
	Brainpool256r1  CurveName = "brainpoolP256r1"
	Brainpool384r1  CurveName = "brainpoolP384r1"
	Brainpool512r1  CurveName = "brainpoolP512r1"
)
