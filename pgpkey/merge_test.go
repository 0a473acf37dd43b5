package pgpkey_test

import (
	"testing"
	"time"

	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
	"github.com/skeeto/pgpkey/refpacket"
)

func TestUpdateMergesNewSubkey(t *testing.T) {
	base := generateTestKey(t, false)

	// src is the same primary/user material plus a freshly bound
	// encryption subkey, simulating a later export of the same key
	// after the owner added a subkey.
	factory := refpacket.Factory{}
	sub, err := sign(base, factory)
	if err != nil {
		t.Fatal(err)
	}

	if err := pgpkey.Update(base, sub, fixedTime().Add(time.Hour), pgpkey.DefaultConfig()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(base.SubKeys) != 1 {
		t.Fatalf("after merge, len(SubKeys) = %d, want 1", len(base.SubKeys))
	}
}

// sign builds a copy of base's Key tree with one additional encryption
// subkey bound by the same primary, modeling an updated export of the
// same key.
func sign(base *pgpkey.Key, factory refpacket.Factory) (*pgpkey.Key, error) {
	subPacket := factory.NewKeyPacket(enums.TagSecretSubkey, enums.ECDH, fixedTime())
	if err := subPacket.Generate(0, enums.Curve25519); err != nil {
		return nil, err
	}
	binding := factory.NewSignaturePacket(enums.SigSubkeyBinding, enums.SHA256, fixedTime())
	binding.SetIssuerKeyID(base.PrimaryKey.KeyID())
	binding.SetKeyFlags(enums.FlagEncryptCommunication | enums.FlagEncryptStorage)
	if err := binding.Sign(base.PrimaryKey, pgpkey.BoundData{Key: base.PrimaryKey, Bind: subPacket}); err != nil {
		return nil, err
	}

	return &pgpkey.Key{
		PrimaryKey: base.PrimaryKey,
		Users:      base.Users,
		SubKeys: []*pgpkey.SubKey{{
			Packet:            subPacket,
			BindingSignatures: []pgpkey.SignaturePacket{binding},
		}},
	}, nil
}

func TestUpdateRejectsFingerprintMismatch(t *testing.T) {
	a := generateTestKey(t, false)
	b := generateTestKey(t, false)
	if err := pgpkey.Update(a, b, fixedTime().Add(time.Hour), pgpkey.DefaultConfig()); err != pgpkey.ErrFingerprintMismatch {
		t.Errorf("Update(unrelated keys) = %v, want ErrFingerprintMismatch", err)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	base := generateTestKey(t, true)
	snapshot := generateSnapshotCopy(base)

	cfg := pgpkey.DefaultConfig()
	if err := pgpkey.Update(base, snapshot, fixedTime().Add(time.Hour), cfg); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	usersAfterFirst := len(base.Users[0].SelfCertifications)

	if err := pgpkey.Update(base, snapshot, fixedTime().Add(time.Hour), cfg); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if len(base.Users[0].SelfCertifications) != usersAfterFirst {
		t.Error("merging the same source twice should not duplicate signatures")
	}
}

// generateSnapshotCopy makes a shallow structural copy of key, as if it
// had been re-exported and re-parsed — the same underlying packets,
// a fresh Key/User/SubKey tree around them.
func generateSnapshotCopy(key *pgpkey.Key) *pgpkey.Key {
	out := &pgpkey.Key{PrimaryKey: key.PrimaryKey}
	for _, u := range key.Users {
		out.Users = append(out.Users, &pgpkey.User{
			Packet:             u.Packet,
			SelfCertifications: append([]pgpkey.SignaturePacket{}, u.SelfCertifications...),
		})
	}
	for _, sk := range key.SubKeys {
		out.SubKeys = append(out.SubKeys, &pgpkey.SubKey{
			Packet:            sk.Packet,
			BindingSignatures: append([]pgpkey.SignaturePacket{}, sk.BindingSignatures...),
		})
	}
	return out
}
