package pgpkey

import "github.com/skeeto/pgpkey/enums"

// Config is the process-wide immutable configuration record (§6,
// §9 "Global configuration object"). It is established once at
// startup and never mutated by the core; every engine entry point
// that needs a policy default takes one of these by value.
type Config struct {
	PreferredHashAlgorithm enums.HashAlgo
	EncryptionCipher       enums.SymAlgo
	RevocationsExpire      bool
	IntegrityProtect       bool
	UseNative              bool
}

// DefaultConfig mirrors the conservative defaults used throughout the
// retrieved pack's OpenPGP-adjacent code (SHA-256 / AES-256, modification
// detection on, revocations durable).
func DefaultConfig() Config {
	return Config{
		PreferredHashAlgorithm: enums.SHA256,
		EncryptionCipher:       enums.AES256,
		RevocationsExpire:      false,
		IntegrityProtect:       true,
		UseNative:              false,
	}
}
