package pgpkey_test

import (
	"testing"
	"time"

	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
	"github.com/skeeto/pgpkey/refpacket"
)

func fixedTime() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func generateTestKey(t *testing.T, subkey bool) *pgpkey.Key {
	t.Helper()
	opts := pgpkey.GenerateOptions{
		Curve:   enums.Ed25519,
		Subkey:  subkey,
		UserIDs: [][]byte{[]byte("Alice <alice@example.com>")},
		Created: fixedTime(),
	}
	key, err := pgpkey.Generate(opts, refpacket.Factory{}, pgpkey.DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return key
}

func TestBuildRoundTripsGeneratedKey(t *testing.T) {
	key := generateTestKey(t, true)

	list := refpacket.NewPacketList()
	list = pgpkey.ToPacketList(key, list)

	rebuilt, err := pgpkey.Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !rebuilt.PrimaryKey.Fingerprint().Equal(key.PrimaryKey.Fingerprint()) {
		t.Error("rebuilt key has a different primary fingerprint")
	}
	if len(rebuilt.Users) != 1 {
		t.Fatalf("rebuilt.Users = %d, want 1", len(rebuilt.Users))
	}
	if len(rebuilt.SubKeys) != 1 {
		t.Fatalf("rebuilt.SubKeys = %d, want 1", len(rebuilt.SubKeys))
	}
	if len(rebuilt.Users[0].SelfCertifications) != 1 {
		t.Errorf("rebuilt primary user self-certifications = %d, want 1", len(rebuilt.Users[0].SelfCertifications))
	}
	if len(rebuilt.SubKeys[0].BindingSignatures) != 1 {
		t.Errorf("rebuilt subkey bindings = %d, want 1", len(rebuilt.SubKeys[0].BindingSignatures))
	}
}

func TestToPacketListCanonicalOrder(t *testing.T) {
	key := generateTestKey(t, true)
	list := refpacket.NewPacketList()
	list = pgpkey.ToPacketList(key, list)

	tags := make([]enums.Tag, list.Len())
	for i := 0; i < list.Len(); i++ {
		tags[i] = list.At(i).Tag()
	}
	want := []enums.Tag{
		enums.TagSecretKey,
		enums.TagUserID, enums.TagSignature,
		enums.TagSecretSubkey, enums.TagSignature,
	}
	if len(tags) != len(want) {
		t.Fatalf("tag sequence = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag[%d] = %v, want %v", i, tags[i], want[i])
		}
	}
}

func TestToPublicStripsSecretMaterial(t *testing.T) {
	key := generateTestKey(t, true)
	pub := pgpkey.ToPublic(key)

	if pub.PrimaryKey.IsSecret() {
		t.Error("ToPublic primary key should not carry secret material")
	}
	if pub.SubKeys[0].Packet.IsSecret() {
		t.Error("ToPublic subkey should not carry secret material")
	}
	if !pub.PrimaryKey.Fingerprint().Equal(key.PrimaryKey.Fingerprint()) {
		t.Error("ToPublic must preserve the primary key's fingerprint")
	}
}

func TestToPublicIsIdempotent(t *testing.T) {
	key := generateTestKey(t, false)
	once := pgpkey.ToPublic(key)
	twice := pgpkey.ToPublic(once)
	if !once.PrimaryKey.Fingerprint().Equal(twice.PrimaryKey.Fingerprint()) {
		t.Error("ToPublic applied twice should yield an equivalent key")
	}
	if twice.PrimaryKey.IsSecret() {
		t.Error("ToPublic of an already-public key should remain public")
	}
}

func TestBuildRejectsPacketListWithNoPrimaryKey(t *testing.T) {
	list := refpacket.NewPacketList()
	if _, err := pgpkey.Build(list); err != pgpkey.ErrInvalidKey {
		t.Errorf("Build(empty list) = %v, want ErrInvalidKey", err)
	}
}

func TestBuildDropsCertificationWithNoCurrentUser(t *testing.T) {
	key := generateTestKey(t, false)
	list := refpacket.NewPacketList()
	list = list.Append(key.PrimaryKey.(pgpkey.Packet))
	// a certification signature appearing before any user packet has no
	// current user to attach to and must be dropped, not attributed to
	// whatever user happens to follow.
	list = list.Append(key.Users[0].SelfCertifications[0].(pgpkey.Packet))
	list = list.Append(key.Users[0].Packet.(pgpkey.Packet))

	rebuilt, err := pgpkey.Build(list)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(rebuilt.Users) != 1 {
		t.Fatalf("rebuilt.Users = %d, want 1", len(rebuilt.Users))
	}
	if len(rebuilt.Users[0].SelfCertifications) != 0 {
		t.Error("the dangling certification should have been dropped, not attached to the later user")
	}
}
