// Package curve is the elliptic-curve registry: for each named curve
// it publishes the DER-encoded OID, the key category that curve
// belongs to, its preferred hash/cipher pairing, and the payload size
// of its scalars and points. Key generation and ECDH/ECDSA/EdDSA
// operations are driven entirely from this table.
package curve

import "github.com/skeeto/pgpkey/enums"

// Category distinguishes the two families of elliptic-curve key that
// an OpenPGP packet can carry.
type Category int

const (
	CategoryECDSAECDH Category = iota
	CategoryEdDSA
)

// Info describes one registered curve.
type Info struct {
	Name          enums.CurveName
	OID           []byte // DER-encoded object identifier
	Category      Category
	PreferredHash enums.HashAlgo
	PreferredSym  enums.SymAlgo
	PayloadSize   int  // scalar/point size in bytes
	Accelerated   bool // hint: a native/OS crypto backend can accelerate this curve
}

// byName is keyed by symbolic curve name. byOID, below, indexes the
// same entries by their DER OID bytes, which per spec.md §4.10 double
// as the on-wire representation and the canonical lookup key in the
// enum map.
var byName = map[enums.CurveName]*Info{
	enums.P256: {
		Name: enums.P256, OID: []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA256, PreferredSym: enums.AES128,
		PayloadSize: 32, Accelerated: true,
	},
	enums.P384: {
		Name: enums.P384, OID: []byte{0x2b, 0x81, 0x04, 0x00, 0x22},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA384, PreferredSym: enums.AES192,
		PayloadSize: 48, Accelerated: true,
	},
	enums.P521: {
		Name: enums.P521, OID: []byte{0x2b, 0x81, 0x04, 0x00, 0x23},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA512, PreferredSym: enums.AES256,
		PayloadSize: 66, Accelerated: true,
	},
	enums.Secp256k1: {
		Name: enums.Secp256k1, OID: []byte{0x2b, 0x81, 0x04, 0x00, 0x0a},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA256, PreferredSym: enums.AES128,
		PayloadSize: 32, Accelerated: false,
	},
	enums.Ed25519: {
		Name: enums.Ed25519, OID: []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0xda, 0x47, 0x0f, 0x01},
		Category: CategoryEdDSA, PreferredHash: enums.SHA512, PreferredSym: enums.AES256,
		PayloadSize: 32, Accelerated: true,
	},
	enums.Curve25519: {
		Name: enums.Curve25519, OID: []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA256, PreferredSym: enums.AES128,
		PayloadSize: 32, Accelerated: true,
	},
	enums.Brainpool256r1: {
		Name: enums.Brainpool256r1, OID: []byte{0x2b, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x07},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA256, PreferredSym: enums.AES128,
		PayloadSize: 32, Accelerated: false,
	},
	enums.Brainpool384r1: {
		Name: enums.Brainpool384r1, OID: []byte{0x2b, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0b},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA384, PreferredSym: enums.AES192,
		PayloadSize: 48, Accelerated: false,
	},
	enums.Brainpool512r1: {
		Name: enums.Brainpool512r1, OID: []byte{0x2b, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0d},
		Category: CategoryECDSAECDH, PreferredHash: enums.SHA512, PreferredSym: enums.AES256,
		PayloadSize: 64, Accelerated: false,
	},
}

var byOID = func() map[string]*Info {
	m := make(map[string]*Info, len(byName))
	for _, info := range byName {
		m[string(info.OID)] = info
	}
	return m
}()

// ErrUnknownCurve is returned by Find/FindByOID when the curve name or
// OID bytes are not in the registry.
type ErrUnknownCurve struct{ What string }

func (e ErrUnknownCurve) Error() string { return "unknown curve: " + e.What }

// Find resolves a symbolic curve name to its registry entry.
func Find(name enums.CurveName) (*Info, error) {
	info, ok := byName[name]
	if !ok {
		return nil, ErrUnknownCurve{What: string(name)}
	}
	return info, nil
}

// FindByOID resolves DER-encoded OID bytes back to a registry entry.
func FindByOID(oid []byte) (*Info, error) {
	info, ok := byOID[string(oid)]
	if !ok {
		return nil, ErrUnknownCurve{What: "oid"}
	}
	return info, nil
}

// IsEdDSA reports whether name is ed25519 or curve25519, the two
// curves whose primary/subkey algorithm is implied rather than
// explicit during generation (spec.md §4.9 step 1).
func IsEdDSA(name enums.CurveName) bool {
	return name == enums.Ed25519 || name == enums.Curve25519
}

// ECDHCounterpart returns the curve that the generator must pass to the
// encryption subkey given the curve used for the primary key: ed25519
// implies curve25519 and vice versa; every other curve pairs with
// itself (spec.md §4.9 step 3).
func ECDHCounterpart(primary enums.CurveName) enums.CurveName {
	switch primary {
	case enums.Ed25519:
		return enums.Curve25519
	case enums.Curve25519:
		return enums.Ed25519
	default:
		return primary
	}
}
