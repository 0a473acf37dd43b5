package pgpkey

import (
	"time"

	"github.com/skeeto/pgpkey/curve"
	"github.com/skeeto/pgpkey/enums"
)

// GenerateOptions carries the generation parameters of spec.md §4.9.
// KeyType defaults to RSAEncryptSign when Curve is empty, and to the
// curve-implied algorithm otherwise; SubkeyType resolves the same way
// but only when Subkey is set.
type GenerateOptions struct {
	KeyType    enums.PubKeyAlgo
	SubkeyType enums.PubKeyAlgo
	NumBits    int
	Curve      enums.CurveName

	// Subkey requests that an encryption subkey be generated alongside
	// the primary (spec.md §4.9 step 3: "and (optionally) the secret
	// subkey"). SubkeyType, if set, overrides the curve-implied default
	// algorithm; it has no effect when Subkey is false.
	Subkey bool

	UserIDs    [][]byte // non-empty; the first becomes primary
	Passphrase []byte
	Unlocked   bool

	KeyExpirationTime uint32 // seconds; 0 means no expiration requested

	Created time.Time
}

var validPrimaryAlgos = map[enums.PubKeyAlgo]bool{
	enums.RSAEncryptSign: true,
	enums.ECDSA:          true,
	enums.EdDSA:          true,
}

var validSubkeyAlgos = map[enums.PubKeyAlgo]bool{
	enums.RSAEncryptSign: true,
	enums.ECDH:           true,
}

// resolveAlgorithms implements spec.md §4.9 step 1: when Curve is set,
// an unset KeyType/SubkeyType is inferred from it (ed25519/curve25519
// imply EdDSA+ECDH; any other curve implies ECDSA+ECDH); otherwise an
// unset KeyType/SubkeyType defaults to RSA. A caller-supplied KeyType
// or SubkeyType is never overridden.
func resolveAlgorithms(opts *GenerateOptions) {
	if opts.Curve == "" {
		if opts.KeyType == 0 {
			opts.KeyType = enums.RSAEncryptSign
		}
		if opts.Subkey && opts.SubkeyType == 0 {
			opts.SubkeyType = enums.RSAEncryptSign
		}
		return
	}
	if opts.KeyType == 0 {
		if curve.IsEdDSA(opts.Curve) {
			opts.KeyType = enums.EdDSA
		} else {
			opts.KeyType = enums.ECDSA
		}
	}
	if opts.Subkey && opts.SubkeyType == 0 {
		opts.SubkeyType = enums.ECDH
	}
}

// Generate implements spec.md §4.9: it produces a fresh private Key
// from opts, using factory to allocate and generate the underlying
// key/signature/user-id packets.
func Generate(opts GenerateOptions, factory Factory, cfg Config) (*Key, error) {
	if len(opts.UserIDs) == 0 {
		return nil, ErrInvalidKey
	}
	resolveAlgorithms(&opts)

	if !validPrimaryAlgos[opts.KeyType] {
		return nil, ErrUnsupportedKeyType
	}
	if opts.Subkey && !validSubkeyAlgos[opts.SubkeyType] {
		return nil, ErrUnsupportedSubkeyType
	}

	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}

	primaryCurve := opts.Curve
	primary := factory.NewKeyPacket(enums.TagSecretKey, opts.KeyType, created)
	if opts.KeyType == enums.RSAEncryptSign {
		if err := primary.Generate(opts.NumBits, ""); err != nil {
			return nil, err
		}
	} else {
		if err := primary.Generate(0, primaryCurve); err != nil {
			return nil, err
		}
	}

	var subPacket KeyPacket
	if opts.Subkey {
		subCurve := curve.ECDHCounterpart(primaryCurve)
		subPacket = factory.NewKeyPacket(enums.TagSecretSubkey, opts.SubkeyType, created)
		if opts.SubkeyType == enums.RSAEncryptSign {
			if err := subPacket.Generate(opts.NumBits, ""); err != nil {
				return nil, err
			}
		} else {
			if err := subPacket.Generate(0, subCurve); err != nil {
				return nil, err
			}
		}
	}

	key := &Key{PrimaryKey: primary}
	if err := signUserIDs(key, opts, factory, created, cfg); err != nil {
		return nil, err
	}

	if subPacket != nil {
		sub := &SubKey{Packet: subPacket}
		binding := factory.NewSignaturePacket(enums.SigSubkeyBinding, PreferredHashAlgo(cfg, nil, primary, created), created)
		binding.SetIssuerKeyID(primary.KeyID())
		binding.SetKeyFlags(enums.FlagEncryptCommunication | enums.FlagEncryptStorage)
		if err := binding.Sign(primary, BoundData{Key: primary, Bind: subPacket}); err != nil {
			return nil, err
		}
		sub.BindingSignatures = append(sub.BindingSignatures, binding)
		key.SubKeys = append(key.SubKeys, sub)
	}

	if len(opts.Passphrase) > 0 {
		if err := primary.Encrypt(opts.Passphrase); err != nil {
			return nil, err
		}
		if subPacket != nil {
			if err := subPacket.Encrypt(opts.Passphrase); err != nil {
				return nil, err
			}
		}
		if !opts.Unlocked {
			primary.ClearPrivateParams()
			if subPacket != nil {
				subPacket.ClearPrivateParams()
			}
		}
	}

	return key, nil
}

func signUserIDs(key *Key, opts GenerateOptions, factory Factory, created time.Time, cfg Config) error {
	primary := key.PrimaryKey
	hash := PreferredHashAlgo(cfg, nil, primary, created)

	for i, id := range opts.UserIDs {
		userPacket := factory.NewUserIDPacket(id)
		user := &User{Packet: userPacket}

		cert := factory.NewSignaturePacket(enums.SigCertGeneric, hash, created)
		cert.SetIssuerKeyID(primary.KeyID())
		cert.SetKeyFlags(enums.FlagCertifyKeys | enums.FlagSignData)
		cert.SetPreferredSymmetricAlgorithms([]enums.SymAlgo{
			enums.AES256, enums.AES128, enums.AES192, enums.CAST5, enums.TripleDES,
		})
		cert.SetPreferredHashAlgorithms([]enums.HashAlgo{enums.SHA256, enums.SHA512, enums.SHA1})
		cert.SetPreferredCompressionAlgorithms([]enums.CompressionAlgo{enums.CompressionZLIB, enums.CompressionZIP})
		if i == 0 {
			cert.SetIsPrimaryUserID(1)
		}
		if cfg.IntegrityProtect {
			cert.SetFeatures([]byte{1})
		}
		if opts.KeyExpirationTime != 0 {
			cert.SetKeyExpirationTime(opts.KeyExpirationTime)
			cert.SetKeyNeverExpires(false)
		}

		if err := cert.Sign(primary, BoundData{Key: primary, User: userPacket}); err != nil {
			return err
		}
		user.SelfCertifications = append(user.SelfCertifications, cert)
		key.Users = append(key.Users, user)
	}
	return nil
}

// ReformatOptions carries the parameters of spec.md §4.9's reformat:
// an existing decrypted private Key is re-signed with a new set of
// user IDs. Only RSA primary/subkey material is reused, matching the
// source behavior the spec calls out.
type ReformatOptions struct {
	UserIDs           [][]byte
	KeyExpirationTime uint32
	Created           time.Time
}

// Reformat implements spec.md §4.9's reformat(opts): it reuses key's
// existing primary and (if present) subkey packets, discarding the
// old Users, and reruns the self-certification/binding steps with the
// new user IDs.
func Reformat(key *Key, opts ReformatOptions, factory Factory, cfg Config) (*Key, error) {
	if key.PrimaryKey.Algorithm() != enums.RSAEncryptSign {
		return nil, ErrUnsupportedKeyType
	}
	if !key.PrimaryKey.IsDecrypted() {
		return nil, ErrNotDecrypted
	}
	if len(opts.UserIDs) == 0 {
		return nil, ErrInvalidKey
	}

	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}

	out := &Key{PrimaryKey: key.PrimaryKey}
	genOpts := GenerateOptions{UserIDs: opts.UserIDs, KeyExpirationTime: opts.KeyExpirationTime, Created: created}
	if err := signUserIDs(out, genOpts, factory, created, cfg); err != nil {
		return nil, err
	}

	for _, sub := range key.SubKeys {
		if !sub.Packet.IsDecrypted() {
			return nil, ErrNotDecrypted
		}
		binding := factory.NewSignaturePacket(enums.SigSubkeyBinding, PreferredHashAlgo(cfg, nil, out.PrimaryKey, created), created)
		binding.SetIssuerKeyID(out.PrimaryKey.KeyID())
		binding.SetKeyFlags(enums.FlagEncryptCommunication | enums.FlagEncryptStorage)
		if err := binding.Sign(out.PrimaryKey, BoundData{Key: out.PrimaryKey, Bind: sub.Packet}); err != nil {
			return nil, err
		}
		out.SubKeys = append(out.SubKeys, &SubKey{
			Packet:            sub.Packet,
			BindingSignatures: []SignaturePacket{binding},
		})
	}

	return out, nil
}
