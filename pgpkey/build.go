package pgpkey

import (
	"log"

	"github.com/skeeto/pgpkey/enums"
)

// Logger receives the "drop and log" diagnostics of the structure
// builder (§4.1: a certification with no current user, or a binding/
// revocation with no current subkey, is dropped rather than failing
// the whole read). Replace it to capture or silence these; nil
// disables logging. Matches the teacher's direct stderr-logging style
// rather than pulling in a structured logging package.
var Logger = log.Default()

func logf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Printf(format, args...)
	}
}

// Build turns an ordered packet sequence into the canonical Key tree,
// per spec.md §4.1. Packets are consumed in their original order.
func Build(list PacketList) (*Key, error) {
	key := &Key{}

	var primarySet bool
	var currentUser *User
	var currentSubKey *SubKey

	for i := 0; i < list.Len(); i++ {
		p := list.At(i)
		switch p.Tag() {
		case enums.TagPublicKey, enums.TagSecretKey:
			if primarySet {
				return nil, ErrInvalidKey
			}
			kp, ok := p.(KeyPacket)
			if !ok {
				return nil, ErrInvalidKey
			}
			key.PrimaryKey = kp
			primarySet = true
			currentUser = nil
			currentSubKey = nil

		case enums.TagUserID, enums.TagUserAttribute:
			up, ok := p.(UserPacket)
			if !ok {
				continue
			}
			currentUser = &User{Packet: up}
			key.Users = append(key.Users, currentUser)
			currentSubKey = nil

		case enums.TagPublicSubkey, enums.TagSecretSubkey:
			kp, ok := p.(KeyPacket)
			if !ok {
				continue
			}
			currentSubKey = &SubKey{Packet: kp}
			key.SubKeys = append(key.SubKeys, currentSubKey)
			currentUser = nil

		case enums.TagSignature:
			sig, ok := p.(SignaturePacket)
			if !ok {
				continue
			}
			dispatchSignature(key, &currentUser, &currentSubKey, sig)
		}
	}

	if key.PrimaryKey == nil || len(key.Users) == 0 {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func dispatchSignature(key *Key, currentUser **User, currentSubKey **SubKey, sig SignaturePacket) {
	t := sig.SignatureType()
	switch {
	case t.IsCertification():
		if *currentUser == nil {
			logf("pgpkey: dropping certification signature with no current user")
			return
		}
		u := *currentUser
		if key.PrimaryKey != nil && sig.IssuerKeyID().Equal(key.PrimaryKey.KeyID()) {
			u.SelfCertifications = append(u.SelfCertifications, sig)
		} else {
			u.OtherCertifications = append(u.OtherCertifications, sig)
		}

	case t == enums.SigCertRevocation:
		if *currentUser != nil {
			(*currentUser).RevocationSignatures = append((*currentUser).RevocationSignatures, sig)
		} else {
			key.DirectSignatures = append(key.DirectSignatures, sig)
		}

	case t == enums.SigKey:
		key.DirectSignatures = append(key.DirectSignatures, sig)

	case t == enums.SigSubkeyBinding:
		if *currentSubKey == nil {
			logf("pgpkey: dropping subkey binding signature with no current subkey")
			return
		}
		(*currentSubKey).BindingSignatures = append((*currentSubKey).BindingSignatures, sig)

	case t == enums.SigKeyRevocation:
		key.RevocationSignatures = append(key.RevocationSignatures, sig)

	case t == enums.SigSubkeyRevocation:
		if *currentSubKey == nil {
			logf("pgpkey: dropping subkey revocation signature with no current subkey")
			return
		}
		(*currentSubKey).RevocationSignatures = append((*currentSubKey).RevocationSignatures, sig)
	}
}

// The core hands back plain Packet values for
// KeyPacket/UserPacket/SignaturePacket without an adapter type or a
// wire representation of its own: collaborators' concrete types already implement
// Packet (Tag/Raw), so any KeyPacket/UserPacket/SignaturePacket value
// a collaborator constructs can appear directly in a PacketList.

// ToPacketList emits the packets of key in the canonical order of
// spec.md §4.1: primary key, key-revocations, direct signatures, then
// per-User (UserID/Attribute, revocations, self-certs, other-certs),
// then per-SubKey (subkey packet, revocations, bindings). dst is an
// empty PacketList of the collaborator's concrete type; packets are
// appended to it so that toPacketlist(build(p)) == p holds whenever p
// was well-formed.
func ToPacketList(key *Key, dst PacketList) PacketList {
	out := dst.Append(key.PrimaryKey.(Packet))
	for _, sig := range key.RevocationSignatures {
		out = out.Append(sig.(Packet))
	}
	for _, sig := range key.DirectSignatures {
		out = out.Append(sig.(Packet))
	}
	for _, u := range key.Users {
		out = out.Append(u.Packet.(Packet))
		for _, sig := range u.RevocationSignatures {
			out = out.Append(sig.(Packet))
		}
		for _, sig := range u.SelfCertifications {
			out = out.Append(sig.(Packet))
		}
		for _, sig := range u.OtherCertifications {
			out = out.Append(sig.(Packet))
		}
	}
	for _, sk := range key.SubKeys {
		out = out.Append(sk.Packet.(Packet))
		for _, sig := range sk.RevocationSignatures {
			out = out.Append(sig.(Packet))
		}
		for _, sig := range sk.BindingSignatures {
			out = out.Append(sig.(Packet))
		}
	}
	return out
}

// ToPublic produces a new Key whose every key packet is public,
// stripping secret material from the primary key and every subkey.
// toPublic is idempotent: applying it to an already-public Key
// returns an equivalent public Key.
func ToPublic(key *Key) *Key {
	pub := &Key{
		PrimaryKey:           key.PrimaryKey.AsPublic(),
		RevocationSignatures: key.RevocationSignatures,
		DirectSignatures:     key.DirectSignatures,
	}
	pub.Users = make([]*User, len(key.Users))
	for i, u := range key.Users {
		pub.Users[i] = &User{
			Packet:               u.Packet,
			SelfCertifications:   u.SelfCertifications,
			OtherCertifications:  u.OtherCertifications,
			RevocationSignatures: u.RevocationSignatures,
		}
	}
	pub.SubKeys = make([]*SubKey, len(key.SubKeys))
	for i, sk := range key.SubKeys {
		pub.SubKeys[i] = &SubKey{
			Packet:                sk.Packet.AsPublic(),
			BindingSignatures:     sk.BindingSignatures,
			RevocationSignatures:  sk.RevocationSignatures,
		}
	}
	return pub
}
