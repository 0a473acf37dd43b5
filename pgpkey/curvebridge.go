package pgpkey

import (
	"github.com/skeeto/pgpkey/curve"
	"github.com/skeeto/pgpkey/enums"
)

// ECCKeyPacket is an optional capability a KeyPacket may implement
// when its algorithm is ECDH/ECDSA/EdDSA: it exposes the curve OID so
// the preferred-hash negotiator (spec.md §4.10) can use that curve's
// preferred hash as a floor.
type ECCKeyPacket interface {
	KeyPacket
	CurveOID() OID
}

// curveInfoFor resolves packet's curve registry entry, if any.
func curveInfoFor(packet KeyPacket) (*curve.Info, bool) {
	if packet == nil {
		return nil, false
	}
	switch packet.Algorithm() {
	case enums.ECDH, enums.ECDSA, enums.EdDSA:
	default:
		return nil, false
	}
	ecc, ok := packet.(ECCKeyPacket)
	if !ok {
		return nil, false
	}
	info, err := curve.FindByOID(ecc.CurveOID().DER())
	if err != nil {
		return nil, false
	}
	return info, true
}
