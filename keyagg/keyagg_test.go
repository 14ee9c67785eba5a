package keyagg_test

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/keyagg"
)

func randomPubkeys(n int, seed int64) []curve.Point {
	g := curve.CurveParams().Generator()
	r := rand.New(rand.NewSource(seed))
	pts := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		k := new(big.Int).SetInt64(r.Int63() + 1)
		pts[i] = curve.Mul(g, k)
	}
	return pts
}

func TestComputeRejectsEmptyList(t *testing.T) {
	_, err := keyagg.Compute(nil)
	require.ErrorIs(t, err, keyagg.ErrInvalidPubkeyLength)
}

func TestComputeSingleParty(t *testing.T) {
	pts := randomPubkeys(1, 1)
	agg, err := keyagg.Compute(pts)
	require.NoError(t, err)
	require.True(t, curve.Equal(agg.Key, pts[0]))
	require.Len(t, agg.Coefficients, 1)
	one := agg.Coefficients[0]
	require.True(t, one.IsOne())
}

func TestComputeIsOrderIndependent(t *testing.T) {
	pts := randomPubkeys(5, 2)
	reordered := []curve.Point{pts[4], pts[0], pts[3], pts[1], pts[2]}

	a1, err := keyagg.Compute(pts)
	require.NoError(t, err)
	a2, err := keyagg.Compute(reordered)
	require.NoError(t, err)

	require.True(t, curve.Equal(a1.Key, a2.Key))
	require.Equal(t, len(a1.Coefficients), len(a2.Coefficients))
	for i := range a1.Coefficients {
		require.True(t, a1.Coefficients[i].Equal(&a2.Coefficients[i]))
	}
}

func TestComputeDeterministic(t *testing.T) {
	pts := randomPubkeys(3, 3)
	a1, err := keyagg.Compute(pts)
	require.NoError(t, err)
	a2, err := keyagg.Compute(pts)
	require.NoError(t, err)
	require.True(t, curve.Equal(a1.Key, a2.Key))
}

func TestComputeRejectsInvalidPublicKey(t *testing.T) {
	pts := randomPubkeys(2, 4)
	var bogus curve.Point
	bogus.X.SetUint64(3)
	bogus.Y.SetUint64(5)
	_, err := keyagg.Compute([]curve.Point{pts[0], bogus})
	require.ErrorIs(t, err, keyagg.ErrInvalidPublicKey)
}

func TestIndexOf(t *testing.T) {
	pts := randomPubkeys(4, 5)
	agg, err := keyagg.Compute(pts)
	require.NoError(t, err)

	idx, ok := agg.IndexOf(pts[2])
	require.True(t, ok)
	require.True(t, curve.Equal(agg.Sorted[idx], pts[2]))

	g := curve.CurveParams().Generator()
	other := curve.Mul(g, big.NewInt(999999))
	_, ok = agg.IndexOf(other)
	require.False(t, ok)
}
