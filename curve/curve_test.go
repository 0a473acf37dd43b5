package curve

import "github.com/skeeto/pgpkey/enums"
import "testing"

var allCurves = []enums.CurveName{
	enums.P256, enums.P384, enums.P521, enums.Secp256k1,
	enums.Ed25519, enums.Curve25519,
	enums.Brainpool256r1, enums.Brainpool384r1, enums.Brainpool512r1,
}

func TestFindAndFindByOIDRoundTrip(t *testing.T) {
	for _, name := range allCurves {
		info, err := Find(name)
		if err != nil {
			t.Fatalf("Find(%s): %v", name, err)
		}
		if info.Name != name {
			t.Errorf("Find(%s).Name = %s", name, info.Name)
		}
		back, err := FindByOID(info.OID)
		if err != nil {
			t.Fatalf("FindByOID(%s's OID): %v", name, err)
		}
		if back.Name != name {
			t.Errorf("FindByOID round trip got %s, want %s", back.Name, name)
		}
	}
}

func TestFindUnknownCurve(t *testing.T) {
	if _, err := Find("not-a-curve"); err == nil {
		t.Error("Find on an unregistered curve name should fail")
	}
	if _, err := FindByOID([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("FindByOID on unregistered bytes should fail")
	}
}

func TestIsEdDSA(t *testing.T) {
	if !IsEdDSA(enums.Ed25519) {
		t.Error("ed25519 should be EdDSA-categorized")
	}
	if !IsEdDSA(enums.Curve25519) {
		t.Error("curve25519 should be EdDSA-categorized (shares the generation branch)")
	}
	if IsEdDSA(enums.P256) {
		t.Error("p256 should not be EdDSA-categorized")
	}
}

func TestECDHCounterpart(t *testing.T) {
	if got := ECDHCounterpart(enums.Ed25519); got != enums.Curve25519 {
		t.Errorf("ECDHCounterpart(ed25519) = %s, want curve25519", got)
	}
	if got := ECDHCounterpart(enums.Curve25519); got != enums.Ed25519 {
		t.Errorf("ECDHCounterpart(curve25519) = %s, want ed25519", got)
	}
	if got := ECDHCounterpart(enums.P256); got != enums.P256 {
		t.Errorf("ECDHCounterpart(p256) = %s, want p256 (self-paired)", got)
	}
}

func TestRegistryOIDsAreUnique(t *testing.T) {
	seen := make(map[string]enums.CurveName)
	for _, name := range allCurves {
		info, err := Find(name)
		if err != nil {
			t.Fatal(err)
		}
		key := string(info.OID)
		if other, ok := seen[key]; ok {
			t.Errorf("curves %s and %s share an OID", name, other)
		}
		seen[key] = name
	}
}
