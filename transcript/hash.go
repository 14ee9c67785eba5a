// Package transcript implements the four domain-separated hashes used by the
// MuSig protocol: H_agg (key aggregation coefficients), H_com (nonce
// pre-commitment), H_sig (the Fiat-Shamir challenge) and H_msg (optional
// message pre-hashing). All four are pure functions of their inputs; unlike
// the original source's stateful Sha512HStarAggregate (original_source/musig/src/hash.rs),
// nothing here carries hidden state between calls.
package transcript

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/encoding"
)

var (
	domainAgg = []byte("musig-jubjub/h_agg")
	domainCom = []byte("musig-jubjub/h_com")
	domainMsg = []byte("musig-jubjub/h_msg")
)

// HashAggregate computes the per-participant coefficient a_i = H_agg(L, X_i).
// The digest is the wide (64-byte) blake2b-512 output reduced modulo q; see
// DESIGN.md for why a narrower digest was rejected.
func HashAggregate(participants []curve.Point, self curve.Point) fr.Element {
	h, _ := blake2b.New512(nil)
	h.Write(domainAgg)
	for _, x := range participants {
		enc := encoding.EncodePoint(x)
		h.Write(enc[:])
	}
	selfEnc := encoding.EncodePoint(self)
	h.Write(selfEnc[:])

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// HashCommitment computes the pre-commitment t_i = H_com(R_i).
func HashCommitment(r curve.Point) [32]byte {
	h := sha256.New()
	h.Write(domainCom)
	enc := encoding.EncodePoint(r)
	h.Write(enc[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashMessage pre-hashes an application message with SHA-256. This is a
// caller convenience, not part of the protocol's security proof: Sign/Verify
// accept any byte string as m, pre-hashed or not.
func HashMessage(m []byte) []byte {
	h := sha256.New()
	h.Write(domainMsg)
	h.Write(m)
	return h.Sum(nil)
}
