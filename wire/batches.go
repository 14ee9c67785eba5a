// Package wire implements the external serialization adapter named in
// SPEC_FULL.md §6: fixed-width batch encoding for every boundary type the
// protocol exchanges (pubkey lists, pre-commitment batches, commitment
// batches, share batches, signatures), plus hex/JSON codecs for CLI and log
// ergonomics. None of this is part of the protocol's security proof — it is
// the boundary adapter a caller uses to move bytes between parties.
package wire

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/encoding"
	"github.com/kysee/musig-jubjub/verifier"
)

// ErrInvalidLength is returned when a decoded byte buffer's length is not a
// multiple of the expected element width.
var ErrInvalidLength = errors.New("wire: buffer length does not match expected element width")

const (
	pointWidth    = 32
	scalarWidth   = 32
	hashWidth     = 32
	signatureSize = pointWidth + scalarWidth
)

// EncodePubkeys concatenates the canonical 32-byte encoding of each point.
func EncodePubkeys(points []curve.Point) []byte {
	out := make([]byte, 0, len(points)*pointWidth)
	for _, p := range points {
		enc := encoding.EncodePoint(p)
		out = append(out, enc[:]...)
	}
	return out
}

// DecodePubkeys parses a concatenated pubkey-list buffer.
func DecodePubkeys(b []byte) ([]curve.Point, error) {
	if len(b)%pointWidth != 0 {
		return nil, ErrInvalidLength
	}
	n := len(b) / pointWidth
	out := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		var enc [pointWidth]byte
		copy(enc[:], b[i*pointWidth:(i+1)*pointWidth])
		p, err := encoding.DecodePoint(enc)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// EncodePreCommitments concatenates the pre-commitment hashes {t_i}.
func EncodePreCommitments(ts [][32]byte) []byte {
	out := make([]byte, 0, len(ts)*hashWidth)
	for _, t := range ts {
		out = append(out, t[:]...)
	}
	return out
}

// DecodePreCommitments parses a concatenated pre-commitment batch.
func DecodePreCommitments(b []byte) ([][32]byte, error) {
	if len(b)%hashWidth != 0 {
		return nil, ErrInvalidLength
	}
	n := len(b) / hashWidth
	out := make([][32]byte, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], b[i*hashWidth:(i+1)*hashWidth])
	}
	return out, nil
}

// EncodeCommitments concatenates the revealed nonce commitments {R_i}.
func EncodeCommitments(points []curve.Point) []byte {
	return EncodePubkeys(points)
}

// DecodeCommitments parses a concatenated commitment batch.
func DecodeCommitments(b []byte) ([]curve.Point, error) {
	return DecodePubkeys(b)
}

// EncodeShares concatenates the signature shares {s_i}.
func EncodeShares(shares []fr.Element) []byte {
	out := make([]byte, 0, len(shares)*scalarWidth)
	for _, s := range shares {
		enc := encoding.EncodeScalar(s)
		out = append(out, enc[:]...)
	}
	return out
}

// DecodeShares parses a concatenated share batch.
func DecodeShares(b []byte) ([]fr.Element, error) {
	if len(b)%scalarWidth != 0 {
		return nil, ErrInvalidLength
	}
	n := len(b) / scalarWidth
	out := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		var enc [scalarWidth]byte
		copy(enc[:], b[i*scalarWidth:(i+1)*scalarWidth])
		out[i] = encoding.DecodeScalar(enc)
	}
	return out, nil
}

// EncodeSignature returns the 64-byte wire form R (32) || s (32).
func EncodeSignature(sig verifier.Signature) [signatureSize]byte {
	var out [signatureSize]byte
	r := encoding.EncodePoint(sig.R)
	s := encoding.EncodeScalar(sig.S)
	copy(out[:pointWidth], r[:])
	copy(out[pointWidth:], s[:])
	return out
}

// DecodeSignature parses a 64-byte signature buffer.
func DecodeSignature(b []byte) (verifier.Signature, error) {
	if len(b) != signatureSize {
		return verifier.Signature{}, ErrInvalidLength
	}
	var rEnc [pointWidth]byte
	var sEnc [scalarWidth]byte
	copy(rEnc[:], b[:pointWidth])
	copy(sEnc[:], b[pointWidth:])

	r, err := encoding.DecodePoint(rEnc)
	if err != nil {
		return verifier.Signature{}, err
	}
	s := encoding.DecodeScalar(sEnc)
	return verifier.Signature{R: r, S: s}, nil
}
