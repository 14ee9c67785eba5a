package wire_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/verifier"
	"github.com/kysee/musig-jubjub/wire"
)

func samplePoints(n int) []curve.Point {
	g := curve.CurveParams().Generator()
	pts := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = curve.Mul(g, big.NewInt(int64(1000+i)))
	}
	return pts
}

func TestPubkeyBatchRoundTrip(t *testing.T) {
	pts := samplePoints(4)
	enc := wire.EncodePubkeys(pts)
	require.Len(t, enc, 4*32)

	dec, err := wire.DecodePubkeys(enc)
	require.NoError(t, err)
	require.Len(t, dec, 4)
	for i := range pts {
		require.True(t, curve.Equal(pts[i], dec[i]))
	}
}

func TestDecodePubkeysRejectsShortBuffer(t *testing.T) {
	_, err := wire.DecodePubkeys(make([]byte, 31))
	require.ErrorIs(t, err, wire.ErrInvalidLength)
}

func TestSignatureRoundTrip(t *testing.T) {
	pts := samplePoints(1)
	sig := verifier.Signature{R: pts[0]}
	sig.S = curve.ElementFromBigInt(big.NewInt(123456789))

	enc := wire.EncodeSignature(sig)
	require.Len(t, enc, 64)

	dec, err := wire.DecodeSignature(enc[:])
	require.NoError(t, err)
	require.True(t, curve.Equal(sig.R, dec.R))
	require.True(t, sig.S.Equal(&dec.S))
}

func TestHexBytesJSONRoundTrip(t *testing.T) {
	b := wire.HexBytes{0xde, 0xad, 0xbe, 0xef}
	j, err := b.MarshalJSON()
	require.NoError(t, err)

	var out wire.HexBytes
	require.NoError(t, out.UnmarshalJSON(j))
	require.Equal(t, b, out)
}
