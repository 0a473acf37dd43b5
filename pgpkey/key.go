package pgpkey

import "github.com/skeeto/pgpkey/enums"

// User is exactly one of a UserID or UserAttribute packet, plus the
// three ordered signature containers spec.md §3 assigns it.
type User struct {
	Packet UserPacket

	// SelfCertifications are certifications issued by the enclosing
	// Key's primary key over this user.
	SelfCertifications []SignaturePacket
	// OtherCertifications are certifications from third-party keys.
	OtherCertifications []SignaturePacket
	// RevocationSignatures revoke certifications on this user.
	RevocationSignatures []SignaturePacket
}

// SubKey owns exactly one subkey packet, plus its ordered binding and
// revocation signatures. Every binding signature's issuer must be the
// primary key of the enclosing Key.
type SubKey struct {
	Packet             KeyPacket
	BindingSignatures  []SignaturePacket
	RevocationSignatures []SignaturePacket
}

// Key is the canonical tree: primary key → users → certifications;
// primary key → subkeys → binding signatures.
type Key struct {
	PrimaryKey KeyPacket

	// RevocationSignatures are key-revocation signatures over the
	// primary key.
	RevocationSignatures []SignaturePacket
	// DirectSignatures are key signatures over the primary without a
	// user binding.
	DirectSignatures []SignaturePacket

	Users   []*User
	SubKeys []*SubKey
}

// IsPublic reports whether the primary key packet is a public-key
// packet (tag PublicKey).
func (k *Key) IsPublic() bool {
	return k.PrimaryKey != nil && k.PrimaryKey.Tag() == enums.TagPublicKey
}

// IsPrivate reports whether the primary key packet is a secret-key
// packet (tag SecretKey).
func (k *Key) IsPrivate() bool {
	return k.PrimaryKey != nil && k.PrimaryKey.Tag() == enums.TagSecretKey
}
