package refpacket

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/skeeto/pgpkey/enums"
)

func fixedTime() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestGenerateRSA(t *testing.T) {
	k := &keyPacket{tag: enums.TagSecretKey, algo: enums.RSAEncryptSign, created: fixedTime()}
	if err := k.Generate(1024, ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !k.IsSecret() || !k.IsDecrypted() {
		t.Fatal("freshly generated RSA key should be secret and decrypted")
	}
	if k.Version() != 4 {
		t.Errorf("Version() = %d, want 4", k.Version())
	}
	id := k.KeyID()
	fp := k.Fingerprint()
	if !bytes.Equal(id[:], fp[len(fp)-8:]) {
		t.Error("KeyID should be the low 8 bytes of the fingerprint")
	}
}

func TestGenerateEdDSAAndECDH(t *testing.T) {
	sign := &keyPacket{tag: enums.TagSecretKey, algo: enums.EdDSA, created: fixedTime()}
	if err := sign.Generate(0, enums.Ed25519); err != nil {
		t.Fatalf("Generate(EdDSA): %v", err)
	}
	if len(sign.ecSecret) != 32 {
		t.Errorf("EdDSA seed length = %d, want 32", len(sign.ecSecret))
	}

	enc := &keyPacket{tag: enums.TagSecretSubkey, algo: enums.ECDH, created: fixedTime()}
	if err := enc.Generate(0, enums.Curve25519); err != nil {
		t.Fatalf("Generate(ECDH): %v", err)
	}
	if enc.kdfHash == 0 || enc.kdfSym == 0 {
		t.Error("ECDH generation should populate KDF hash/cipher from the curve registry")
	}
}

func TestGenerateECDHRejectsNonCurve25519(t *testing.T) {
	k := &keyPacket{tag: enums.TagSecretSubkey, algo: enums.ECDH, created: fixedTime()}
	if err := k.Generate(0, enums.P256); err != ErrUnsupportedCurve {
		t.Errorf("Generate(ECDH, p256) = %v, want ErrUnsupportedCurve", err)
	}
}

func TestGenerateECDSARejectsUnbackedCurve(t *testing.T) {
	k := &keyPacket{tag: enums.TagSecretKey, algo: enums.ECDSA, created: fixedTime()}
	if err := k.Generate(0, enums.Secp256k1); err != ErrUnsupportedCurve {
		t.Errorf("Generate(ECDSA, secp256k1) = %v, want ErrUnsupportedCurve", err)
	}
}

func TestRawRoundTripsThroughDecode(t *testing.T) {
	for _, tc := range []struct {
		name string
		algo enums.PubKeyAlgo
		tag  enums.Tag
	}{
		{"rsa", enums.RSAEncryptSign, enums.TagSecretKey},
		{"eddsa", enums.EdDSA, enums.TagSecretKey},
	} {
		t.Run(tc.name, func(t *testing.T) {
			k := &keyPacket{tag: tc.tag, algo: tc.algo, created: fixedTime()}
			var err error
			if tc.algo == enums.RSAEncryptSign {
				err = k.Generate(1024, "")
			} else {
				err = k.Generate(0, enums.Ed25519)
			}
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			raw := k.Raw()
			decoded, rest, derr := readHeaderBytes(raw)
			if derr != nil {
				t.Fatalf("readHeaderBytes: %v", derr)
			}
			got, err := decodeKeyPacket(decoded, rest)
			if err != nil {
				t.Fatalf("decodeKeyPacket: %v", err)
			}
			if got.Algorithm() != k.Algorithm() {
				t.Errorf("decoded algorithm = %s, want %s", got.Algorithm(), k.Algorithm())
			}
			if !got.Fingerprint().Equal(k.Fingerprint()) {
				t.Error("decoded fingerprint does not match original")
			}
			if !got.IsDecrypted() {
				t.Error("decoded plaintext secret key should report decrypted")
			}
		})
	}
}

// readHeaderBytes parses a single packet's header from a fully rendered
// Raw() buffer, for tests that want to feed decodeKeyPacket/decodeSignaturePacket
// directly without going through ParsePacketList.
func readHeaderBytes(raw []byte) (enums.Tag, []byte, error) {
	return readHeader(bufio.NewReader(bytes.NewReader(raw)))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	k := &keyPacket{tag: enums.TagSecretKey, algo: enums.EdDSA, created: fixedTime()}
	if err := k.Generate(0, enums.Ed25519); err != nil {
		t.Fatal(err)
	}
	secretBefore := append([]byte{}, k.ecSecret...)

	if err := k.Encrypt([]byte("a strong passphrase")); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	k.ClearPrivateParams()
	if k.IsDecrypted() {
		t.Fatal("ClearPrivateParams should leave the packet not-decrypted")
	}

	if err := k.Decrypt([]byte("a strong passphrase")); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(k.ecSecret, secretBefore) {
		t.Error("Decrypt did not restore the original secret scalar")
	}
}

func TestDecryptRejectsWrongPassphrase(t *testing.T) {
	k := &keyPacket{tag: enums.TagSecretKey, algo: enums.EdDSA, created: fixedTime()}
	if err := k.Generate(0, enums.Ed25519); err != nil {
		t.Fatal(err)
	}
	if err := k.Encrypt([]byte("right")); err != nil {
		t.Fatal(err)
	}
	k.ClearPrivateParams()
	if err := k.Decrypt([]byte("wrong")); err == nil {
		t.Error("Decrypt should fail with the wrong passphrase")
	}
}

func TestAsPublicStripsSecretMaterial(t *testing.T) {
	k := &keyPacket{tag: enums.TagSecretKey, algo: enums.EdDSA, created: fixedTime()}
	if err := k.Generate(0, enums.Ed25519); err != nil {
		t.Fatal(err)
	}
	pub := k.AsPublic()
	if pub.Tag() != enums.TagPublicKey {
		t.Errorf("AsPublic().Tag() = %v, want TagPublicKey", pub.Tag())
	}
	if pub.IsSecret() {
		t.Error("AsPublic() result should not report IsSecret")
	}
	if !pub.Fingerprint().Equal(k.Fingerprint()) {
		t.Error("AsPublic() must preserve the fingerprint")
	}
}
