package refpacket

import (
	"testing"

	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
)

func genEdDSAKey(t *testing.T) *keyPacket {
	t.Helper()
	k := &keyPacket{tag: enums.TagSecretKey, algo: enums.EdDSA, created: fixedTime()}
	if err := k.Generate(0, enums.Ed25519); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return k
}

func TestSignVerifyKeySignature(t *testing.T) {
	key := genEdDSAKey(t)
	sig := &sigPacket{sigType: enums.SigKey, hashAlgo: enums.SHA512, created: fixedTime()}
	sig.SetIssuerKeyID(key.KeyID())

	if err := sig.Sign(key, pgpkey.BoundData{Key: key}); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !sig.Verified() {
		t.Fatal("Sign should cache a verified result")
	}

	// a fresh sigPacket carrying the same fields, but not the Sign-time
	// cache, must verify independently of that cache.
	fresh := &sigPacket{sigType: sig.sigType, hashAlgo: sig.hashAlgo, created: sig.created,
		signingAlgo: sig.signingAlgo, sigValue: sig.sigValue, hashedArea: sig.hashedArea}
	ok, err := fresh.Verify(key, pgpkey.BoundData{Key: key})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify of a legitimate signature should succeed")
	}
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	key := genEdDSAKey(t)
	other := genEdDSAKey(t)

	sig := &sigPacket{sigType: enums.SigKey, hashAlgo: enums.SHA512, created: fixedTime()}
	if err := sig.Sign(key, pgpkey.BoundData{Key: key}); err != nil {
		t.Fatal(err)
	}

	ok, err := sig.Verify(other, pgpkey.BoundData{Key: other})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("a signature made by one key should not verify against a different key's public material")
	}
}

func TestSignRequiresDecryptedKey(t *testing.T) {
	key := genEdDSAKey(t)
	if err := key.Encrypt([]byte("pw")); err != nil {
		t.Fatal(err)
	}
	key.ClearPrivateParams()

	sig := &sigPacket{sigType: enums.SigKey, hashAlgo: enums.SHA512, created: fixedTime()}
	if err := sig.Sign(key, pgpkey.BoundData{Key: key}); err != pgpkey.ErrNotDecrypted {
		t.Errorf("Sign on an encrypted key = %v, want ErrNotDecrypted", err)
	}
}

func TestSignSubkeyBinding(t *testing.T) {
	primary := genEdDSAKey(t)
	sub := &keyPacket{tag: enums.TagSecretSubkey, algo: enums.ECDH, created: fixedTime()}
	if err := sub.Generate(0, enums.Curve25519); err != nil {
		t.Fatal(err)
	}

	binding := &sigPacket{sigType: enums.SigSubkeyBinding, hashAlgo: enums.SHA256, created: fixedTime()}
	binding.SetIssuerKeyID(primary.KeyID())
	binding.SetKeyFlags(enums.FlagEncryptCommunication | enums.FlagEncryptStorage)

	if err := binding.Sign(primary, pgpkey.BoundData{Key: primary, Bind: sub}); err != nil {
		t.Fatalf("Sign(subkey binding): %v", err)
	}
	ok, err := binding.Verify(primary, pgpkey.BoundData{Key: primary, Bind: sub})
	if err != nil || !ok {
		t.Fatalf("Verify(subkey binding) = %v, %v; want true, nil", ok, err)
	}
}

func TestBuildHashedAreaOmitsUnsetFields(t *testing.T) {
	sig := &sigPacket{sigType: enums.SigKey, hashAlgo: enums.SHA256, created: fixedTime()}
	area := sig.buildHashedArea()
	// Only the creation-time subpacket (type 2) should be present.
	if len(area) == 0 {
		t.Fatal("hashed area should always carry a creation-time subpacket")
	}
	if area[1] != 2 {
		t.Errorf("first subpacket type = %d, want 2 (signature creation time)", area[1])
	}
	if len(area) != int(area[0])+1 {
		t.Errorf("unexpected trailing bytes in hashed area with no optional fields set: %x", area)
	}
}
