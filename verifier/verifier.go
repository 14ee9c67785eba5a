// Package verifier implements MuSig's share and final-signature verification,
// grounded on original_source/musig/src/verifier.rs
// (MuSigVerifier::verify / verify_share).
package verifier

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/keyagg"
	"github.com/kysee/musig-jubjub/transcript"
)

// Signature is a finished MuSig signature: the aggregated nonce commitment R
// and the aggregated response scalar s.
type Signature struct {
	R curve.Point
	S fr.Element
}

// VerifyShare checks a single party's signature share against its public
// commitment: s_i*B = R_i + (c*a_i)*X_i.
func VerifyShare(si fr.Element, ri curve.Point, c, ai fr.Element, xi curve.Point) bool {
	var caiElem fr.Element
	caiElem.Mul(&c, &ai)
	var caiInt big.Int
	caiElem.BigInt(&caiInt)

	var siInt big.Int
	si.BigInt(&siInt)

	lhs := curve.MulByGeneratorCT(&siInt) // s_i is public once revealed; CT path retained for symmetry with Sign's usage of the same scalar.
	rhs := curve.Add(ri, curve.Mul(xi, &caiInt))
	return curve.Equal(lhs, rhs)
}

// Verify checks a finished signature against a participant list and message.
// It recomputes the aggregated public key from L (subgroup-checking every
// entry) and returns it alongside the boolean result so callers can compare
// it against an out-of-band trusted value, since Verify has no way to know
// whether the supplied L is the one actually agreed at signing time.
func Verify(m []byte, participants []curve.Point, sig Signature, suite transcript.HashSuite) (bool, curve.Point, error) {
	agg, err := keyagg.Compute(participants)
	if err != nil {
		return false, curve.Point{}, err
	}

	c := suite.HashSignature(agg.Key, sig.R, m)

	var sInt big.Int
	sig.S.BigInt(&sInt)
	lhs := curve.MulByGeneratorCT(&sInt)

	var cInt big.Int
	c.BigInt(&cInt)
	rhs := curve.Add(sig.R, curve.Mul(agg.Key, &cInt))

	return curve.Equal(lhs, rhs), agg.Key, nil
}
