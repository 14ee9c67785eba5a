// Package keyagg computes MuSig's aggregated public key and per-participant
// coefficients, the rogue-key-resistance layer of the protocol. It is
// grounded on original_source/musig/src/aggregated_pubkey.rs
// (AggregatedPublicKey::compute_from_pubkeys), including its n=1 fast path.
package keyagg

import (
	"bytes"
	"errors"
	"math/big"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/encoding"
	"github.com/kysee/musig-jubjub/transcript"
)

// ErrInvalidPubkeyLength is returned when the participant list is empty.
var ErrInvalidPubkeyLength = errors.New("keyagg: participant list must be non-empty")

// ErrInvalidPublicKey is returned when a participant's public key fails the
// subgroup check.
var ErrInvalidPublicKey = errors.New("keyagg: public key is not in the prime-order subgroup")

// Aggregated holds the result of key aggregation: the aggregated public key,
// the per-participant coefficients and the canonically sorted participant
// list the coefficients are aligned to.
type Aggregated struct {
	Key          curve.Point
	Coefficients []fr.Element
	Sorted       []curve.Point
}

// Compute aggregates L into a single MuSig public key. L may be supplied in
// any order by the caller: Compute sorts a defensive copy of it
// lexicographically by canonical encoding before deriving coefficients, so
// every caller converges on the same aggregated key and coefficient vector
// regardless of the order pubkeys were collected in (this repository's
// resolution of the canonical-ordering Open Question; original_source's
// aggregated_pubkey.rs left this as an unimplemented "// TODO: sort pubkeys").
func Compute(participants []curve.Point) (Aggregated, error) {
	if len(participants) == 0 {
		return Aggregated{}, ErrInvalidPubkeyLength
	}

	sorted := make([]curve.Point, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		bi := encoding.EncodePoint(sorted[i])
		bj := encoding.EncodePoint(sorted[j])
		return bytes.Compare(bi[:], bj[:]) < 0
	})

	for _, x := range sorted {
		if !curve.IsInSubgroup(x) {
			return Aggregated{}, ErrInvalidPublicKey
		}
	}

	if len(sorted) == 1 {
		one := fr.Element{}
		one.SetOne()
		return Aggregated{
			Key:          sorted[0],
			Coefficients: []fr.Element{one},
			Sorted:       sorted,
		}, nil
	}

	coeffs := make([]fr.Element, len(sorted))
	agg := curve.Identity()
	for i, x := range sorted {
		a := transcript.HashAggregate(sorted, x)
		coeffs[i] = a

		var bi big.Int
		a.BigInt(&bi)
		agg = curve.Add(agg, curve.Mul(x, &bi))
	}

	return Aggregated{Key: agg, Coefficients: coeffs, Sorted: sorted}, nil
}

// IndexOf returns the position of self within agg.Sorted, or false if absent.
func (a Aggregated) IndexOf(self curve.Point) (int, bool) {
	for i, x := range a.Sorted {
		if curve.Equal(x, self) {
			return i, true
		}
	}
	return 0, false
}
