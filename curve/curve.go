// Package curve is a narrow facade over the BabyJubJub group embedded in
// BN254's scalar field. It exposes only the operations the MuSig protocol
// needs and keeps secret-scalar and public-scalar multiplications on visibly
// distinct call paths.
package curve

import (
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

// Point is a point on the BabyJubJub curve, in affine coordinates.
type Point = twistededwards.PointAffine

// Params holds the curve's public parameters: base point, subgroup order and
// cofactor. Obtained once from gnark-crypto's cached curve singleton and used
// read-only from then on.
type Params struct {
	inner twistededwards.CurveParams
}

var cached = Params{inner: twistededwards.GetEdwardsCurve()}

// CurveParams returns the package-wide curve parameters.
func CurveParams() Params {
	return cached
}

// Generator returns the curve's fixed base point B.
func (p Params) Generator() Point {
	return p.inner.Base
}

// Order returns the prime order q of the subgroup generated by B.
func (p Params) Order() *big.Int {
	o := p.inner.Order
	return &o
}

// Identity returns the neutral element of the Edwards group, (0, 1).
func Identity() Point {
	var id Point
	id.X.SetZero()
	id.Y.SetOne()
	return id
}

// Add returns a + b.
func Add(a, b Point) Point {
	var r Point
	r.Add(&a, &b)
	return r
}

// Mul returns k*P. This is the variable-time entry point: use it only when k
// is public (a challenge scalar, an aggregation coefficient during
// verification) and never on a secret scalar.
func Mul(p Point, k *big.Int) Point {
	var r Point
	r.ScalarMul(&p, k)
	return r
}

// MulByGeneratorCT returns k*B, the constant-time entry point reserved for
// secret scalars (nonces, private keys). gnark-crypto does not expose a
// separate constant-time scalar multiplication, so this wraps the same
// ScalarMul call as Mul; the distinct name keeps the two call sites textually
// separate so a future constant-time backend swap touches one function only.
func MulByGeneratorCT(k *big.Int) Point {
	g := cached.Generator()
	var r Point
	r.ScalarMul(&g, k)
	return r
}

// Equal reports whether a and b are the same point.
func Equal(a, b Point) bool {
	return a.X.Equal(&b.X) && a.Y.Equal(&b.Y)
}

// IsInSubgroup reports whether P lies in the prime-order subgroup generated
// by B, i.e. whether [q]P = O. Every externally supplied point (public key,
// nonce commitment) MUST pass this check before use.
func IsInSubgroup(p Point) bool {
	res := Mul(p, cached.Order())
	return Equal(res, Identity())
}

// ElementFromBigInt reduces a big.Int into a scalar field element.
func ElementFromBigInt(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

// RandomScalar draws 64 bytes from rng and reduces them modulo q, giving a
// scalar with cryptographically negligible bias. Wide sampling is used here
// for the same statistical reason H_agg uses a wide digest (see DESIGN.md).
func RandomScalar(rng io.Reader) (*big.Int, error) {
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	out := new(big.Int).SetBytes(buf)
	out.Mod(out, cached.Order())
	return out, nil
}
