// Package encoding implements the canonical wire representation of curve
// points and scalars: 32 bytes, little-endian, matching the original
// protocol's explicit little-endian framing (original_source/musig/src/encoder.rs)
// rather than gnark-crypto's native big-endian Element.Bytes encoding.
package encoding

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	"github.com/kysee/musig-jubjub/curve"
)

// ErrInvalidEncoding is returned when a decoded byte string does not
// represent a valid curve point or is not the canonical encoding of one.
var ErrInvalidEncoding = errors.New("encoding: invalid point or scalar encoding")

// EncodeScalar returns the canonical little-endian encoding of k.
func EncodeScalar(k fr.Element) [32]byte {
	be := k.Bytes() // gnark-crypto: big-endian canonical form
	return reverse(be)
}

// DecodeScalar parses a little-endian scalar encoding.
func DecodeScalar(b [32]byte) fr.Element {
	var e fr.Element
	be := reverse(b)
	e.SetBytes(be[:])
	return e
}

// EncodePoint returns the canonical little-endian encoding of P: the x
// coordinate, little-endian, with the sign of y folded into the high bit of
// the last byte.
func EncodePoint(p curve.Point) [32]byte {
	out := EncodeScalar(p.X)
	if yIsOdd(p.Y) {
		out[31] |= 0x80
	} else {
		out[31] &^= 0x80
	}
	return out
}

// DecodePoint recovers a point from its canonical encoding, recomputing y
// from the curve equation and the stored sign bit, and rejects the encoding
// if it does not correspond to a point on the curve.
func DecodePoint(b [32]byte) (curve.Point, error) {
	sign := b[31]&0x80 != 0
	b[31] &^= 0x80

	var x fr.Element
	xb := reverse(b)
	if err := x.SetBytesCanonical(xb[:]); err != nil {
		return curve.Point{}, ErrInvalidEncoding
	}

	y, ok := recoverY(x, sign)
	if !ok {
		return curve.Point{}, ErrInvalidEncoding
	}

	p := curve.Point{X: x, Y: y}
	if !p.IsOnCurve() {
		return curve.Point{}, ErrInvalidEncoding
	}
	return p, nil
}

// recoverY solves the twisted Edwards equation a*x^2 + y^2 = 1 + d*x^2*y^2
// for y, given x and the desired parity of y's canonical big-endian integer
// representation.
func recoverY(x fr.Element, oddY bool) (fr.Element, bool) {
	var x2, num, den, t fr.Element
	x2.Square(&x)

	a, d := curveCoefficients()
	num.Mul(&a, &x2)
	num.Neg(&num)
	num.Add(&num, one())

	den.Mul(&d, &x2)
	den.Neg(&den)
	den.Add(&den, one())

	if den.IsZero() {
		return fr.Element{}, false
	}
	t.Inverse(&den)
	t.Mul(&t, &num)

	var y fr.Element
	if y.Sqrt(&t) == nil {
		return fr.Element{}, false
	}

	if yParity(y) != oddY {
		y.Neg(&y)
	}
	return y, true
}

func yParity(y fr.Element) bool {
	bi := new(big.Int)
	y.BigInt(bi)
	return bi.Bit(0) == 1
}

func one() fr.Element {
	var e fr.Element
	e.SetOne()
	return e
}

// curveCoefficients exposes the twisted Edwards a, d coefficients used by
// DecodePoint's y-recovery, taken from the same gnark-crypto curve that
// curve.Point and IsOnCurve use.
func curveCoefficients() (a, d fr.Element) {
	params := twistededwards.GetEdwardsCurve()
	return params.A, params.D
}

func reverse(b [32]byte) [32]byte {
	var out [32]byte
	for i := 0; i < 32; i++ {
		out[i] = b[31-i]
	}
	return out
}

func yIsOdd(y fr.Element) bool {
	return yParity(y)
}
