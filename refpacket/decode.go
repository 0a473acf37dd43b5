package refpacket

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"time"

	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
)

// ErrMalformedPacket is returned by ParsePacketList when a packet
// header or body does not match the layout this collaborator reads
// (old- or new-format header, version-4 keys and signatures).
var ErrMalformedPacket = errors.New("refpacket: malformed packet")

// readHeader reads one packet header per RFC 4880 §4.2, returning the
// packet's tag and its body. Both old-format and new-format headers are
// accepted on read (passphrase2pgp and this collaborator only emit
// new-format, but other producers in the wild still use old-format).
func readHeader(r *bufio.Reader) (enums.Tag, []byte, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	if first&0x80 == 0 {
		return 0, nil, ErrMalformedPacket
	}

	var tag enums.Tag
	var bodyLen int
	if first&0x40 != 0 {
		// new format
		tag = enums.Tag(first & 0x3f)
		l1, err := r.ReadByte()
		if err != nil {
			return 0, nil, err
		}
		switch {
		case l1 < 192:
			bodyLen = int(l1)
		case l1 < 224:
			l2, err := r.ReadByte()
			if err != nil {
				return 0, nil, err
			}
			bodyLen = (int(l1)-192)<<8 + int(l2) + 192
		case l1 == 255:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, nil, err
			}
			bodyLen = int(binary.BigEndian.Uint32(buf[:]))
		default:
			// partial body lengths are not produced by this collaborator
			return 0, nil, ErrMalformedPacket
		}
	} else {
		// old format
		tag = enums.Tag((first >> 2) & 0xf)
		lengthType := first & 0x3
		switch lengthType {
		case 0:
			b, err := r.ReadByte()
			if err != nil {
				return 0, nil, err
			}
			bodyLen = int(b)
		case 1:
			var buf [2]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, nil, err
			}
			bodyLen = int(binary.BigEndian.Uint16(buf[:]))
		case 2:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, nil, err
			}
			bodyLen = int(binary.BigEndian.Uint32(buf[:]))
		default:
			return 0, nil, ErrMalformedPacket
		}
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return tag, body, nil
}

// ParsePacketList reads a full OpenPGP packet sequence from r (old- or
// new-format headers, packet bodies in the layout this collaborator's
// Raw() methods produce) and returns it as a pgpkey.PacketList ready
// for pgpkey.Build.
func ParsePacketList(r io.Reader) (pgpkey.PacketList, error) {
	br := bufio.NewReader(r)
	var out packetList
	for {
		tag, body, err := readHeader(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		pk, err := decodePacket(tag, body)
		if err != nil {
			return nil, err
		}
		out = append(out, pk)
	}
	return out, nil
}

func decodePacket(tag enums.Tag, body []byte) (pgpkey.Packet, error) {
	switch tag {
	case enums.TagPublicKey, enums.TagSecretKey, enums.TagPublicSubkey, enums.TagSecretSubkey:
		return decodeKeyPacket(tag, body)
	case enums.TagUserID:
		return &userPacket{isUserID: true, data: append([]byte{}, body...)}, nil
	case enums.TagUserAttribute:
		return &userPacket{isUserID: false, data: append([]byte{}, body...)}, nil
	case enums.TagSignature:
		return decodeSignaturePacket(body)
	default:
		return nil, ErrMalformedPacket
	}
}

func decodeKeyPacket(tag enums.Tag, body []byte) (*keyPacket, error) {
	if len(body) < 6 || body[0] != 4 {
		return nil, ErrMalformedPacket
	}
	k := &keyPacket{tag: tag, version: 4}
	k.created = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0).UTC()
	k.algo = enums.PubKeyAlgo(body[5])
	rest := body[6:]

	var err error
	switch k.algo {
	case enums.RSAEncryptSign, enums.RSAEncryptOnly, enums.RSASignOnly:
		var n, e []byte
		n, rest = mpiDecode(rest, 0)
		e, rest = mpiDecode(rest, 0)
		if n == nil || e == nil {
			return nil, ErrMalformedPacket
		}
		k.rsaN = new(big.Int).SetBytes(n)
		k.rsaE = new(big.Int).SetBytes(e)

	case enums.ECDSA, enums.EdDSA:
		k.curveOID, rest, err = decodeOID(rest)
		if err != nil {
			return nil, err
		}
		var point []byte
		point, rest = mpiDecode(rest, 0)
		if point == nil {
			return nil, ErrMalformedPacket
		}
		k.ecPoint = point

	case enums.ECDH:
		k.curveOID, rest, err = decodeOID(rest)
		if err != nil {
			return nil, err
		}
		var point []byte
		point, rest = mpiDecode(rest, 0)
		if point == nil {
			return nil, ErrMalformedPacket
		}
		k.ecPoint = point
		if len(rest) < 4 || rest[0] != 3 || rest[1] != 1 {
			return nil, ErrMalformedPacket
		}
		k.kdfHash = enums.HashAlgo(rest[2])
		k.kdfSym = enums.SymAlgo(rest[3])
		rest = rest[4:]

	default:
		return nil, pgpkey.ErrUnknownAlgorithm
	}

	if tag == enums.TagPublicKey || tag == enums.TagPublicSubkey {
		return k, nil
	}

	k.hasSecret = true
	if len(rest) == 0 {
		return nil, ErrMalformedPacket
	}
	switch rest[0] {
	case 0:
		if len(rest) < 3 {
			return nil, ErrMalformedPacket
		}
		plain := rest[1 : len(rest)-2]
		want := uint16(rest[len(rest)-2])<<8 | uint16(rest[len(rest)-1])
		if checksum(plain) != want {
			return nil, ErrMalformedPacket
		}
		if err := k.loadSecretPlain(plain); err != nil {
			return nil, err
		}
		k.decrypted = true
	case 254:
		k.wrapped = append([]byte{}, rest...)
		k.decrypted = false
	default:
		return nil, ErrMalformedPacket
	}
	return k, nil
}

// decodeOID reads the one-byte-length-prefixed curve OID this
// collaborator writes for ECDSA/EdDSA/ECDH public parameters.
func decodeOID(b []byte) (oid, rest []byte, err error) {
	if len(b) < 1 || len(b) < 1+int(b[0]) {
		return nil, nil, ErrMalformedPacket
	}
	n := int(b[0])
	return append([]byte{}, b[1:1+n]...), b[1+n:], nil
}

func decodeSignaturePacket(body []byte) (*sigPacket, error) {
	if len(body) < 6 || body[0] != 4 {
		return nil, ErrMalformedPacket
	}
	s := &sigPacket{}
	s.sigType = enums.SigType(body[1])
	s.signingAlgo = enums.PubKeyAlgo(body[2])
	s.hashAlgo = enums.HashAlgo(body[3])
	hashedLen := int(binary.BigEndian.Uint16(body[4:6]))
	if len(body) < 6+hashedLen+2 {
		return nil, ErrMalformedPacket
	}
	s.hashedArea = append([]byte{}, body[6:6+hashedLen]...)
	rest := body[6+hashedLen:]

	unhashedLen := int(binary.BigEndian.Uint16(rest[:2]))
	if len(rest) < 2+unhashedLen+2 {
		return nil, ErrMalformedPacket
	}
	rest = rest[2+unhashedLen:]
	rest = rest[2:] // hash preview, advisory only
	s.sigValue = append([]byte{}, rest...)

	if err := parseHashedArea(s, s.hashedArea); err != nil {
		return nil, err
	}
	return s, nil
}

// parseHashedArea reverses buildHashedArea, populating s's fields from
// the subpacket area of a decoded signature.
func parseHashedArea(s *sigPacket, area []byte) error {
	for len(area) > 0 {
		n := int(area[0])
		if n == 0 || len(area) < 1+n {
			return ErrMalformedPacket
		}
		spType := area[1]
		data := area[2 : 1+n]
		area = area[1+n:]

		switch spType {
		case 2:
			if len(data) != 4 {
				return ErrMalformedPacket
			}
			s.created = time.Unix(int64(binary.BigEndian.Uint32(data)), 0).UTC()
		case 16:
			if len(data) != 8 {
				return ErrMalformedPacket
			}
			copy(s.issuerKeyID[:], data)
			s.hasIssuer = true
		case 27:
			if len(data) != 1 {
				return ErrMalformedPacket
			}
			s.keyFlags = enums.KeyFlag(data[0])
			s.hasKeyFlags = true
		case 11:
			for _, b := range data {
				s.prefSym = append(s.prefSym, enums.SymAlgo(b))
			}
		case 21:
			for _, b := range data {
				s.prefHash = append(s.prefHash, enums.HashAlgo(b))
			}
		case 22:
			for _, b := range data {
				s.prefComp = append(s.prefComp, enums.CompressionAlgo(b))
			}
		case 25:
			if len(data) != 1 {
				return ErrMalformedPacket
			}
			s.primaryWeight = int(data[0])
			s.hasPrimary = true
		case 9:
			if len(data) != 4 {
				return ErrMalformedPacket
			}
			s.keyExpSeconds = binary.BigEndian.Uint32(data)
			s.hasKeyExp = true
		case 30:
			s.features = append([]byte{}, data...)
		}
	}
	return nil
}
