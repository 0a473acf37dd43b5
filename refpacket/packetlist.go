package refpacket

import (
	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
)

// packetList is the concrete pgpkey.PacketList used by this
// collaborator: a plain slice of pgpkey.Packet, copy-on-write for the
// mutating methods so callers can share a backing array safely.
type packetList []pgpkey.Packet

func NewPacketList() pgpkey.PacketList { return packetList(nil) }

func (p packetList) Len() int           { return len(p) }
func (p packetList) At(i int) pgpkey.Packet { return p[i] }

func (p packetList) Append(pk pgpkey.Packet) pgpkey.PacketList {
	out := make(packetList, len(p), len(p)+1)
	copy(out, p)
	return append(out, pk)
}

func (p packetList) Concat(other pgpkey.PacketList) pgpkey.PacketList {
	out := make(packetList, len(p), len(p)+other.Len())
	copy(out, p)
	for i := 0; i < other.Len(); i++ {
		out = append(out, other.At(i))
	}
	return out
}

func (p packetList) Slice(i, j int) pgpkey.PacketList {
	return append(packetList(nil), p[i:j]...)
}

func (p packetList) IndexOfTag(tags ...enums.Tag) []int {
	want := make(map[enums.Tag]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []int
	for i, pk := range p {
		if want[pk.Tag()] {
			out = append(out, i)
		}
	}
	return out
}
