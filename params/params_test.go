package params

import (
	"testing"

	"github.com/skeeto/pgpkey/enums"
)

func TestForKnownAlgorithms(t *testing.T) {
	cases := []struct {
		algo           enums.PubKeyAlgo
		public         int
		private        int
		hasSessionKey  bool
	}{
		{enums.RSAEncryptSign, 2, 4, true},
		{enums.RSASignOnly, 2, 4, false},
		{enums.DSA, 4, 1, false},
		{enums.ECDSA, 2, 1, false},
		{enums.EdDSA, 2, 1, false},
		{enums.ECDH, 3, 1, true},
	}
	for _, c := range cases {
		table, err := For(c.algo)
		if err != nil {
			t.Fatalf("For(%s): %v", c.algo, err)
		}
		if len(table.Public) != c.public {
			t.Errorf("%s: len(Public) = %d, want %d", c.algo, len(table.Public), c.public)
		}
		if len(table.Private) != c.private {
			t.Errorf("%s: len(Private) = %d, want %d", c.algo, len(table.Private), c.private)
		}
		if (len(table.SessionKey) > 0) != c.hasSessionKey {
			t.Errorf("%s: has session-key shapes = %v, want %v", c.algo, len(table.SessionKey) > 0, c.hasSessionKey)
		}
	}
}

func TestForUnknownAlgorithm(t *testing.T) {
	if _, err := For(enums.PubKeyAlgo(250)); err == nil {
		t.Fatal("For on an unregistered algorithm should fail")
	}
	if _, err := PublicShapes(enums.PubKeyAlgo(250)); err == nil {
		t.Error("PublicShapes on an unregistered algorithm should fail")
	}
	if _, err := PrivateShapes(enums.PubKeyAlgo(250)); err == nil {
		t.Error("PrivateShapes on an unregistered algorithm should fail")
	}
	if _, err := SessionKeyShapes(enums.PubKeyAlgo(250)); err == nil {
		t.Error("SessionKeyShapes on an unregistered algorithm should fail")
	}
}

func TestECDHShapeKinds(t *testing.T) {
	table, err := For(enums.ECDH)
	if err != nil {
		t.Fatal(err)
	}
	if table.Public[0].Kind != ShapeOID {
		t.Errorf("ECDH public shape[0].Kind = %v, want ShapeOID", table.Public[0].Kind)
	}
	if table.Public[2].Kind != ShapeKDFParams {
		t.Errorf("ECDH public shape[2].Kind = %v, want ShapeKDFParams", table.Public[2].Kind)
	}
	if table.SessionKey[1].Kind != ShapeECDHSymKey {
		t.Errorf("ECDH session-key shape[1].Kind = %v, want ShapeECDHSymKey", table.SessionKey[1].Kind)
	}
}

func TestSignOnlyAlgorithmsHaveNoSessionKeyShape(t *testing.T) {
	for _, algo := range []enums.PubKeyAlgo{enums.RSASignOnly, enums.DSA, enums.ECDSA, enums.EdDSA} {
		shapes, err := SessionKeyShapes(algo)
		if err != nil {
			t.Fatalf("SessionKeyShapes(%s): %v", algo, err)
		}
		if shapes != nil {
			t.Errorf("%s: SessionKeyShapes = %v, want nil", algo, shapes)
		}
	}
}
