package refpacket

import (
	"time"

	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
)

// Factory is the pgpkey.Factory used throughout this collaborator: the
// CLI and tests construct keys by handing this to pgpkey.Generate,
// pgpkey.Reformat, and the Build decoder's counterparts.
type Factory struct{}

func (Factory) NewKeyPacket(tag enums.Tag, algo enums.PubKeyAlgo, created time.Time) pgpkey.KeyPacket {
	return &keyPacket{tag: tag, algo: algo, created: created, version: 4}
}

func (Factory) NewSignaturePacket(sigType enums.SigType, hash enums.HashAlgo, created time.Time) pgpkey.SignatureBuilder {
	return &sigPacket{sigType: sigType, hashAlgo: hash, created: created}
}

func (Factory) NewUserIDPacket(id []byte) pgpkey.UserPacket {
	return &userPacket{isUserID: true, data: append([]byte{}, id...)}
}
