package pgpkey

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skeeto/pgpkey/enums"
)

// verifyAll fans out Verify across sigs against the same verifying key
// and bound data, joining deterministically before any caller reads
// the cached Verified()/Revoked() flags. This is the concurrency model
// of spec.md §5: verification work is launched in parallel and the
// caller synchronizes before drawing a conclusion.
func verifyAll(verifyingKey KeyPacket, data BoundData, sigs []SignaturePacket) {
	if len(sigs) == 0 {
		return
	}
	g, _ := errgroup.WithContext(context.Background())
	for _, sig := range sigs {
		sig := sig
		g.Go(func() error {
			if !sig.Verified() {
				_, _ = sig.Verify(verifyingKey, data)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// IsDataRevoked implements spec.md §4.3. It verifies every candidate
// revocation that has not itself expired (subject to
// cfg.RevocationsExpire), collects the issuer key IDs of those that
// verify, and either reports whether target's issuer appears among
// them (when target is non-nil, also recording that result in
// target's Revoked() cache) or whether any revocation survived at all.
func IsDataRevoked(verifyingKey KeyPacket, data BoundData, candidates []SignaturePacket, target SignaturePacket, at time.Time, cfg Config) bool {
	var live []SignaturePacket
	for _, cand := range candidates {
		if cfg.RevocationsExpire && cand.IsExpired(at) {
			continue
		}
		live = append(live, cand)
	}
	verifyAll(verifyingKey, data, live)

	issuers := make(map[KeyID]bool)
	for _, cand := range live {
		if cand.Verified() {
			issuers[cand.IssuerKeyID()] = true
		}
	}
	if target != nil {
		revoked := false
		for id := range issuers {
			if id.Equal(target.IssuerKeyID()) {
				revoked = true
				break
			}
		}
		target.SetRevoked(revoked)
		return revoked
	}
	return len(issuers) > 0
}

// IsDataExpired implements spec.md §4.4. sig is the governing
// signature (a self-certification for a primary user, a binding
// signature for a subkey); it may be nil for v3 keys, whose expiration
// lives entirely on the key packet.
func IsDataExpired(sig SignaturePacket, keyPacket KeyPacket, at time.Time) bool {
	if sig != nil && sig.IsExpired(at) {
		return true
	}
	created := keyPacket.Created()
	if at.Before(created) {
		return true
	}
	if keyPacket.Version() == 3 {
		days := keyPacket.ExpirationTimeV3()
		if days == 0 {
			return false
		}
		expiry := created.Add(time.Duration(days) * 24 * time.Hour)
		return !at.Before(expiry)
	}
	if sig == nil || sig.KeyNeverExpires() {
		return false
	}
	secs, ok := sig.KeyExpirationTime()
	if !ok || secs == 0 {
		return false
	}
	expiry := created.Add(time.Duration(secs) * time.Second)
	return !at.Before(expiry)
}

// primaryUserCandidate is one surviving (user, self-certification)
// pair considered by GetPrimaryUser's total order.
type primaryUserCandidate struct {
	index   int
	user    *User
	cert    SignaturePacket
	weight  int
	created time.Time
}

// GetPrimaryUser implements spec.md §4.2. It returns the index of the
// winning User in key.Users, the User itself, and the self-
// certification that won; ok is false if no user survives.
func GetPrimaryUser(key *Key, at time.Time, cfg Config) (index int, user *User, cert SignaturePacket, ok bool) {
	// Fan out verification of every self-certification across every
	// eligible user before doing any sequential selection logic.
	for _, u := range key.Users {
		if !u.Packet.IsUserID() {
			continue
		}
		verifyAll(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}, u.SelfCertifications)
	}

	var candidates []primaryUserCandidate
	for ui, u := range key.Users {
		if !u.Packet.IsUserID() {
			continue
		}
		for _, c := range u.SelfCertifications {
			if !c.Verified() {
				continue
			}
			if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}, u.RevocationSignatures, c, at, cfg) {
				continue
			}
			if c.IsExpired(at) {
				continue
			}
			weight := -1
			if w, ok := c.IsPrimaryUserID(); ok {
				weight = w
			}
			candidates = append(candidates, primaryUserCandidate{
				index: ui, user: u, cert: c, weight: weight, created: c.Created(),
			})
		}
	}

	var best *primaryUserCandidate
	for i := range candidates {
		c := &candidates[i]
		if best == nil {
			best = c
			continue
		}
		if c.weight > best.weight || (c.weight == best.weight && c.created.After(best.created)) {
			best = c
		}
	}
	if best == nil {
		return 0, nil, nil, false
	}
	return best.index, best.user, best.cert, true
}

// VerifyPrimaryKey implements spec.md §4.5.
func VerifyPrimaryKey(key *Key, at time.Time, cfg Config) enums.KeyStatus {
	if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey}, key.RevocationSignatures, nil, at, cfg) {
		return enums.StatusRevoked
	}
	hasSelfCert := false
	for _, u := range key.Users {
		if len(u.SelfCertifications) > 0 {
			hasSelfCert = true
			break
		}
	}
	if !hasSelfCert {
		return enums.StatusNoSelfCert
	}
	_, _, cert, ok := GetPrimaryUser(key, at, cfg)
	if !ok {
		return enums.StatusInvalid
	}
	if IsDataExpired(cert, key.PrimaryKey, at) {
		return enums.StatusExpired
	}
	return enums.StatusValid
}

// VerifySubKey implements spec.md §4.6.
func VerifySubKey(key *Key, sub *SubKey, at time.Time, cfg Config) enums.KeyStatus {
	if sub.Packet.Version() == 3 && IsDataExpired(nil, sub.Packet, at) {
		return enums.StatusExpired
	}

	verifyAll(key.PrimaryKey, BoundData{Key: key.PrimaryKey, Bind: sub.Packet}, sub.BindingSignatures)

	status := enums.StatusInvalid
	for _, binding := range sub.BindingSignatures {
		if !binding.Verified() {
			status = enums.StatusInvalid
			continue
		}
		if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey, Bind: sub.Packet}, sub.RevocationSignatures, nil, at, cfg) {
			status = enums.StatusRevoked
			continue
		}
		if IsDataExpired(binding, sub.Packet, at) {
			status = enums.StatusExpired
			continue
		}
		return enums.StatusValid
	}
	return status
}

// SubKeyExpirationTime returns the maximum getExpirationTime over all
// of sub's binding signatures, or the zero time and false if any
// binding asserts non-expiry (spec.md §4.6).
func SubKeyExpirationTime(sub *SubKey) (time.Time, bool) {
	var max time.Time
	for _, binding := range sub.BindingSignatures {
		if binding.KeyNeverExpires() {
			return time.Time{}, false
		}
		secs, ok := binding.KeyExpirationTime()
		if !ok || secs == 0 {
			continue
		}
		expiry := sub.Packet.Created().Add(time.Duration(secs) * time.Second)
		if expiry.After(max) {
			max = expiry
		}
	}
	if max.IsZero() {
		return time.Time{}, false
	}
	return max, true
}

// VerifyUser verifies every self- and other-certification on u,
// populating their Verified() caches, and reports whether u has at
// least one surviving (verified, unrevoked, unexpired)
// self-certification. The Revoked() cache is set on each verified
// self-certification it examines, up to the first survivor.
func VerifyUser(key *Key, u *User, at time.Time, cfg Config) bool {
	verifyAll(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}, u.SelfCertifications)
	verifyAll(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}, u.OtherCertifications)
	for _, c := range u.SelfCertifications {
		if !c.Verified() {
			continue
		}
		if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}, u.RevocationSignatures, c, at, cfg) {
			continue
		}
		if IsDataExpired(c, key.PrimaryKey, at) {
			continue
		}
		return true
	}
	return false
}

// VerifyCertificate verifies a single certification signature cert
// over (key, user) and reports whether it is currently trustworthy:
// verified, not revoked, not expired.
func VerifyCertificate(key *Key, u *User, cert SignaturePacket, at time.Time, cfg Config) bool {
	if !cert.Verified() {
		if ok, err := cert.Verify(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}); err != nil || !ok {
			return false
		}
	}
	if IsDataRevoked(key.PrimaryKey, BoundData{Key: key.PrimaryKey, User: u.Packet}, u.RevocationSignatures, cert, at, cfg) {
		return false
	}
	return !IsDataExpired(cert, key.PrimaryKey, at)
}

// PreferredHashAlgo implements spec.md §4.10's getPreferredHashAlgo.
// key may be nil (e.g. the caller only has a bare key packet). packet
// defaults to key.PrimaryKey when nil and key is non-nil.
func PreferredHashAlgo(cfg Config, key *Key, packet KeyPacket, at time.Time) enums.HashAlgo {
	result := cfg.PreferredHashAlgorithm

	if key != nil {
		if _, _, cert, ok := GetPrimaryUser(key, at, cfg); ok {
			if prefs := cert.PreferredHashAlgorithms(); len(prefs) > 0 {
				candidate := prefs[0]
				if candidate.Len() >= result.Len() {
					result = candidate
				}
			}
		}
		if packet == nil {
			packet = key.PrimaryKey
		}
	}

	if info, ok := curveInfoFor(packet); ok {
		if info.PreferredHash.Len() >= result.Len() {
			result = info.PreferredHash
		}
	}
	return result
}

// PreferredSymAlgo implements spec.md §4.10's getPreferredSymAlgo: a
// priority score accumulates across every key's primary user's
// preferred-symmetric list (index i scores 64>>i); a candidate
// qualifies only if it is known, not plaintext, not IDEA, and appears
// on every key's list.
func PreferredSymAlgo(keys []*Key, at time.Time, cfg Config) enums.SymAlgo {
	scores := make(map[enums.SymAlgo]int)
	presentEverywhere := make(map[enums.SymAlgo]int)

	for _, key := range keys {
		_, _, cert, ok := GetPrimaryUser(key, at, cfg)
		if !ok {
			return cfg.EncryptionCipher
		}
		prefs := cert.PreferredSymmetricAlgorithms()
		seen := make(map[enums.SymAlgo]bool)
		for i, algo := range prefs {
			scores[algo] += 64 >> uint(i)
			seen[algo] = true
		}
		for algo := range seen {
			presentEverywhere[algo]++
		}
	}

	var best enums.SymAlgo
	bestScore := -1
	for algo, count := range presentEverywhere {
		if count != len(keys) {
			continue
		}
		if algo == enums.Plaintext || algo == enums.IDEA {
			continue
		}
		if !enums.IsKnownSymAlgo(algo) {
			continue
		}
		if scores[algo] > bestScore {
			bestScore = scores[algo]
			best = algo
		}
	}
	if bestScore < 0 {
		return cfg.EncryptionCipher
	}
	return best
}
