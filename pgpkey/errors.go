package pgpkey

import "errors"

// Sentinel error kinds (§7). Individual signature-verification
// failures are local — they downgrade a KeyStatus, they never surface
// as one of these. These are reserved for the structural failures
// spec.md §7 calls out explicitly.
var (
	ErrInvalidKey            = errors.New("pgpkey: packet sequence has no primary key or no users")
	ErrMalformedArmor        = errors.New("pgpkey: decoded armor is neither public_key nor private_key")
	ErrUnknownAlgorithm      = errors.New("pgpkey: unrecognized public-key algorithm")
	ErrUnsupportedKeyType    = errors.New("pgpkey: unsupported or deprecated primary key type")
	ErrUnsupportedSubkeyType = errors.New("pgpkey: unsupported or deprecated subkey type")
	ErrUnknownCurve          = errors.New("pgpkey: curve name not in registry")
	ErrNotDecrypted          = errors.New("pgpkey: secret key has encrypted private parameters")
	ErrFingerprintMismatch   = errors.New("pgpkey: primary key fingerprints do not match")
	ErrSubkeyMismatch        = errors.New("pgpkey: subkey sets are not equal by fingerprint")
	ErrNothingToEncrypt      = errors.New("pgpkey: key has no secret material to encrypt")
	ErrNothingToDecrypt      = errors.New("pgpkey: key has no secret material to decrypt")
	ErrSigningKeyNotFound    = errors.New("pgpkey: no eligible signing key packet")
	ErrEncryptionKeyNotFound = errors.New("pgpkey: no eligible encryption key packet")
	ErrPrimaryUserNotFound   = errors.New("pgpkey: no valid primary user")
)
