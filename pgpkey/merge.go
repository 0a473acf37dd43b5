package pgpkey

import (
	"bytes"
	"time"

	"github.com/skeeto/pgpkey/enums"
)

// Update implements spec.md §4.8: merging src into dst, in place.
// dst is updated to include the signatures from src that are new (by
// raw signature bytes): self-certifications and revocations only if
// they verify, direct signatures and third-party certifications
// unconditionally, bindings under the per-issuer keep-newer rule of
// mergeBindings; a matching User/SubKey in both
// keys has its signature collections unioned; an unmatched User/
// SubKey from src is appended.
func Update(dst *Key, src *Key, at time.Time, cfg Config) error {
	if VerifyPrimaryKey(src, at, cfg) == enums.StatusInvalid {
		return nil
	}
	if !dst.PrimaryKey.Fingerprint().Equal(src.PrimaryKey.Fingerprint()) {
		return ErrFingerprintMismatch
	}

	if dst.IsPublic() && src.IsPrivate() {
		if !subkeySetsEqual(dst.SubKeys, src.SubKeys) {
			return ErrSubkeyMismatch
		}
		dst.PrimaryKey = src.PrimaryKey
	}

	dst.RevocationSignatures = mergeRevocations(dst.PrimaryKey, BoundData{Key: dst.PrimaryKey}, dst.RevocationSignatures, src.RevocationSignatures)
	dst.DirectSignatures = mergeUnconditional(dst.DirectSignatures, src.DirectSignatures)

	for _, su := range src.Users {
		match := findMatchingUser(dst.Users, su)
		if match == nil {
			dst.Users = append(dst.Users, su)
			continue
		}
		mergeUser(dst.PrimaryKey, match, su)
	}

	for _, ss := range src.SubKeys {
		match := findMatchingSubKey(dst.SubKeys, ss)
		if match == nil {
			dst.SubKeys = append(dst.SubKeys, ss)
			continue
		}
		mergeSubKey(dst.PrimaryKey, match, ss)
	}

	return nil
}

func subkeySetsEqual(a, b []*SubKey) bool {
	if len(a) != len(b) {
		return false
	}
	for _, sa := range a {
		found := false
		for _, sb := range b {
			if sa.Packet.Fingerprint().Equal(sb.Packet.Fingerprint()) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func findMatchingUser(users []*User, u *User) *User {
	for _, d := range users {
		if userMatches(d, u) {
			return d
		}
	}
	return nil
}

// userMatches compares Users by UserID text or UserAttribute byte
// equality, as spec.md §9 ("Known limitations") describes: no
// Unicode normalization is applied.
func userMatches(a, b *User) bool {
	if a.Packet.IsUserID() != b.Packet.IsUserID() {
		return false
	}
	return bytes.Equal(a.Packet.Bytes(), b.Packet.Bytes())
}

func findMatchingSubKey(subs []*SubKey, s *SubKey) *SubKey {
	for _, d := range subs {
		if d.Packet.Fingerprint().Equal(s.Packet.Fingerprint()) {
			return d
		}
	}
	return nil
}

// sigBytesSeen builds a dedup set over a signature slice's raw bytes.
func sigBytesSeen(sigs []SignaturePacket) map[string]bool {
	seen := make(map[string]bool, len(sigs))
	for _, s := range sigs {
		seen[string(s.Raw())] = true
	}
	return seen
}

func mergeUnconditional(dst, src []SignaturePacket) []SignaturePacket {
	seen := sigBytesSeen(dst)
	for _, s := range src {
		if !seen[string(s.Raw())] {
			dst = append(dst, s)
			seen[string(s.Raw())] = true
		}
	}
	return dst
}

// mergeRevocations includes a source revocation only if it verifies
// against verifyingKey/data (spec.md §4.8 step 4, revocationSignatures
// rule). Revocation expiration is intentionally not checked here: the
// merge rule only requires the signature to currently verify, unlike
// IsDataRevoked's caller-supplied expiry policy.
func mergeRevocations(verifyingKey KeyPacket, data BoundData, dst, src []SignaturePacket) []SignaturePacket {
	seen := sigBytesSeen(dst)
	for _, s := range src {
		if seen[string(s.Raw())] {
			continue
		}
		if !s.Verified() {
			if ok, err := s.Verify(verifyingKey, data); err != nil || !ok {
				continue
			}
		}
		dst = append(dst, s)
		seen[string(s.Raw())] = true
	}
	return dst
}

func mergeUser(primary KeyPacket, dst, src *User) {
	data := BoundData{Key: primary, User: dst.Packet}

	seenSelf := sigBytesSeen(dst.SelfCertifications)
	for _, s := range src.SelfCertifications {
		if seenSelf[string(s.Raw())] {
			continue
		}
		if !s.Verified() {
			if ok, err := s.Verify(primary, data); err != nil || !ok {
				continue
			}
		}
		dst.SelfCertifications = append(dst.SelfCertifications, s)
		seenSelf[string(s.Raw())] = true
	}

	dst.OtherCertifications = mergeUnconditional(dst.OtherCertifications, src.OtherCertifications)
	dst.RevocationSignatures = mergeRevocations(primary, data, dst.RevocationSignatures, src.RevocationSignatures)
}

func mergeSubKey(primary KeyPacket, dst, src *SubKey) {
	data := BoundData{Key: primary, Bind: dst.Packet}
	dst.BindingSignatures = mergeBindings(dst.BindingSignatures, src.BindingSignatures)
	dst.RevocationSignatures = mergeRevocations(primary, data, dst.RevocationSignatures, src.RevocationSignatures)
}

// mergeBindings implements the per-issuer keep-newer rule of spec.md
// §4.8: if a source binding and an existing binding share an issuer
// key ID, the later-created one survives and the other is dropped.
func mergeBindings(dst, src []SignaturePacket) []SignaturePacket {
	byIssuer := make(map[KeyID]SignaturePacket)
	order := make([]KeyID, 0, len(dst)+len(src))
	seenBytes := make(map[string]bool)

	add := func(s SignaturePacket) {
		issuer := s.IssuerKeyID()
		existing, ok := byIssuer[issuer]
		if !ok {
			byIssuer[issuer] = s
			order = append(order, issuer)
			return
		}
		if s.Created().After(existing.Created()) {
			byIssuer[issuer] = s
		}
	}

	for _, s := range dst {
		if !seenBytes[string(s.Raw())] {
			add(s)
			seenBytes[string(s.Raw())] = true
		}
	}
	for _, s := range src {
		if !seenBytes[string(s.Raw())] {
			add(s)
			seenBytes[string(s.Raw())] = true
		}
	}

	out := make([]SignaturePacket, 0, len(order))
	for _, issuer := range order {
		out = append(out, byIssuer[issuer])
	}
	return out
}
