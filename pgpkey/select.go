package pgpkey

import (
	"time"

	"github.com/skeeto/pgpkey/enums"
)

var signExcluded = map[enums.PubKeyAlgo]bool{
	enums.RSAEncryptOnly: true,
	enums.Elgamal:        true,
	enums.ECDH:           true,
}

var encryptExcluded = map[enums.PubKeyAlgo]bool{
	enums.DSA:        true,
	enums.RSASignOnly: true,
	enums.ECDSA:       true,
	enums.EdDSA:       true,
}

func keyIDMatches(hint *KeyID, packet KeyPacket) bool {
	if hint == nil {
		return true
	}
	return packet.KeyID().Equal(*hint)
}

// GetSigningKeyPacket implements spec.md §4.7. keyIDHint may be nil to
// mean "no preference". It returns the primary key packet if eligible,
// otherwise the first eligible subkey in declaration order, or
// ErrSigningKeyNotFound if none qualify.
func GetSigningKeyPacket(key *Key, keyIDHint *KeyID, at time.Time, cfg Config) (KeyPacket, error) {
	if !signExcluded[key.PrimaryKey.Algorithm()] && keyIDMatches(keyIDHint, key.PrimaryKey) {
		if _, _, cert, ok := GetPrimaryUser(key, at, cfg); ok {
			flags := cert.KeyFlags()
			eligible := flags == 0 || flags&enums.FlagSignData != 0
			if eligible && cert.Verified() && !IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey}, key.RevocationSignatures, nil, at, cfg) &&
				!IsDataExpired(cert, key.PrimaryKey, at) &&
				VerifyPrimaryKey(key, at, cfg) == enums.StatusValid {
				return key.PrimaryKey, nil
			}
		}
	}

	for _, sub := range key.SubKeys {
		if !keyIDMatches(keyIDHint, sub.Packet) {
			continue
		}
		if signExcluded[sub.Packet.Algorithm()] {
			continue
		}
		verifyAll(key.PrimaryKey, BoundData{Key: key.PrimaryKey, Bind: sub.Packet}, sub.BindingSignatures)
		for _, binding := range sub.BindingSignatures {
			flags := binding.KeyFlags()
			eligible := flags == 0 || flags&enums.FlagSignData != 0
			if !eligible || !binding.Verified() {
				continue
			}
			if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey, Bind: sub.Packet}, sub.RevocationSignatures, nil, at, cfg) {
				continue
			}
			if IsDataExpired(binding, sub.Packet, at) {
				continue
			}
			return sub.Packet, nil
		}
	}
	return nil, ErrSigningKeyNotFound
}

// GetEncryptionKeyPacket implements spec.md §4.7: subkey-first, then
// falls back to the primary key.
func GetEncryptionKeyPacket(key *Key, keyIDHint *KeyID, at time.Time, cfg Config) (KeyPacket, error) {
	for _, sub := range key.SubKeys {
		if !keyIDMatches(keyIDHint, sub.Packet) {
			continue
		}
		if encryptExcluded[sub.Packet.Algorithm()] {
			continue
		}
		verifyAll(key.PrimaryKey, BoundData{Key: key.PrimaryKey, Bind: sub.Packet}, sub.BindingSignatures)
		for _, binding := range sub.BindingSignatures {
			flags := binding.KeyFlags()
			if flags&(enums.FlagEncryptCommunication|enums.FlagEncryptStorage) == 0 {
				continue
			}
			if !binding.Verified() {
				continue
			}
			if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey, Bind: sub.Packet}, sub.RevocationSignatures, nil, at, cfg) {
				continue
			}
			if IsDataExpired(binding, sub.Packet, at) {
				continue
			}
			return sub.Packet, nil
		}
	}

	if !encryptExcluded[key.PrimaryKey.Algorithm()] && keyIDMatches(keyIDHint, key.PrimaryKey) {
		if _, _, cert, ok := GetPrimaryUser(key, at, cfg); ok {
			flags := cert.KeyFlags()
			if flags&(enums.FlagEncryptCommunication|enums.FlagEncryptStorage) != 0 && cert.Verified() &&
				!IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey}, key.RevocationSignatures, nil, at, cfg) &&
				!IsDataExpired(cert, key.PrimaryKey, at) &&
				VerifyPrimaryKey(key, at, cfg) == enums.StatusValid {
				return key.PrimaryKey, nil
			}
		}
	}
	return nil, ErrEncryptionKeyNotFound
}
