package refpacket

import "github.com/skeeto/pgpkey/enums"

// userPacket is the concrete pgpkey.UserPacket used by this
// collaborator: either a UserID packet (plain text) or an opaque
// UserAttribute packet.
type userPacket struct {
	isUserID bool
	data     []byte
}

func (u *userPacket) IsUserID() bool { return u.isUserID }
func (u *userPacket) Bytes() []byte  { return u.data }

func (u *userPacket) Tag() enums.Tag {
	if u.isUserID {
		return enums.TagUserID
	}
	return enums.TagUserAttribute
}

func (u *userPacket) Raw() []byte {
	return append(packetHeader(u.Tag(), len(u.data)), u.data...)
}
