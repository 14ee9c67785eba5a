package musig_test

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/musig"
	"github.com/kysee/musig-jubjub/transcript"
	"github.com/kysee/musig-jubjub/verifier"
)

// party bundles one participant's private key and its session, for the
// in-process simulated ceremonies used throughout this package's tests.
type party struct {
	priv    *big.Int
	pub     curve.Point
	session *musig.SignerSession
}

func makeParties(t *testing.T, n int, suite transcript.HashSuite, seed int64) []*party {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	g := curve.CurveParams().Generator()

	parties := make([]*party, n)
	pubkeys := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		sk := new(big.Int).SetInt64(r.Int63() + 1)
		pk := curve.Mul(g, sk)
		parties[i] = &party{priv: sk, pub: pk}
		pubkeys[i] = pk
	}

	for i, p := range parties {
		s, err := musig.NewSignerSession(pubkeys, p.pub, suite)
		require.NoError(t, err, "party %d", i)
		p.session = s
	}

	// Sessions index every batch by canonical (sorted) position, so the
	// parties are returned in that order; pubkeys above stay unsorted.
	ordered := make([]*party, n)
	for _, p := range parties {
		ordered[p.session.SelfIndex()] = p
	}
	return ordered
}

// runHonestCeremony drives every party's session through all three rounds
// and returns the resulting signature as seen by every party (they must all
// agree, property P3).
func runHonestCeremony(t *testing.T, parties []*party, m []byte) []verifier.Signature {
	t.Helper()
	n := len(parties)

	preCommits := make([][32]byte, n)
	for i, p := range parties {
		tc, err := p.session.ComputePrecommitment(p.priv, m, musig.DeterministicNonce())
		require.NoError(t, err)
		preCommits[i] = tc
	}

	commitments := make([]curve.Point, n)
	for i, p := range parties {
		r, err := p.session.ReceivePrecommitments(preCommits)
		require.NoError(t, err)
		commitments[i] = r
	}

	for _, p := range parties {
		_, err := p.session.ReceiveCommitments(commitments)
		require.NoError(t, err)
	}

	shares := make([]fr.Element, n)
	for i, p := range parties {
		share, err := p.session.Sign(p.priv, m)
		require.NoError(t, err)
		shares[i] = share
	}

	sigs := make([]verifier.Signature, n)
	for i, p := range parties {
		sig, err := p.session.ReceiveSignatureShares(shares)
		require.NoError(t, err)
		sigs[i] = sig
	}
	return sigs
}

func TestHonestCeremonyTwoParties(t *testing.T) {
	suite := transcript.MimcChallengeSuite()
	parties := makeParties(t, 2, suite, 10)
	m := []byte("two party message")

	sigs := runHonestCeremony(t, parties, m)
	for i := 1; i < len(sigs); i++ {
		require.True(t, curve.Equal(sigs[0].R, sigs[i].R))
		require.True(t, sigs[0].S.Equal(&sigs[i].S))
	}

	pubkeys := make([]curve.Point, len(parties))
	for i, p := range parties {
		pubkeys[i] = p.pub
	}
	ok, _, err := verifier.Verify(m, pubkeys, sigs[0], suite)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHonestCeremonyFiveAndTwentyFive(t *testing.T) {
	suite := transcript.WideHashChallengeSuite()
	for _, n := range []int{5, 25} {
		parties := makeParties(t, n, suite, int64(n))
		m := []byte("multi-party message")

		sigs := runHonestCeremony(t, parties, m)
		pubkeys := make([]curve.Point, n)
		for i, p := range parties {
			pubkeys[i] = p.pub
		}
		ok, _, err := verifier.Verify(m, pubkeys, sigs[0], suite)
		require.NoError(t, err, "n=%d", n)
		require.True(t, ok, "n=%d", n)
	}
}

func TestSingleSignerDegeneratesToSchnorr(t *testing.T) {
	suite := transcript.MimcChallengeSuite()
	parties := makeParties(t, 1, suite, 20)
	m := []byte("solo message")

	sigs := runHonestCeremony(t, parties, m)
	ok, aggKey, err := verifier.Verify(m, []curve.Point{parties[0].pub}, sigs[0], suite)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, curve.Equal(aggKey, parties[0].pub))
}

func TestOutOfOrderCallsRejected(t *testing.T) {
	suite := transcript.MimcChallengeSuite()
	parties := makeParties(t, 2, suite, 30)
	m := []byte("out of order")

	_, err := parties[0].session.Sign(parties[0].priv, m)
	require.ErrorIs(t, err, musig.ErrCommitmentsNotReceived)

	shares := []fr.Element{{}, {}}
	_, err = parties[0].session.ReceiveSignatureShares(shares)
	require.ErrorIs(t, err, musig.ErrChallengeNotGenerated)
}

func TestComputePrecommitmentRejectsReentry(t *testing.T) {
	suite := transcript.MimcChallengeSuite()
	parties := makeParties(t, 2, suite, 40)
	m := []byte("reentry")

	_, err := parties[0].session.ComputePrecommitment(parties[0].priv, m, musig.DeterministicNonce())
	require.NoError(t, err)

	_, err = parties[0].session.ComputePrecommitment(parties[0].priv, m, musig.DeterministicNonce())
	require.ErrorIs(t, err, musig.ErrPrecommitmentAlreadyComputed)
	require.NotErrorIs(t, err, musig.ErrAlreadySigned)
}

func TestParticipantNotFound(t *testing.T) {
	suite := transcript.MimcChallengeSuite()
	g := curve.CurveParams().Generator()
	a := curve.Mul(g, big.NewInt(1))
	b := curve.Mul(g, big.NewInt(2))
	outsider := curve.Mul(g, big.NewInt(3))

	_, err := musig.NewSignerSession([]curve.Point{a, b}, outsider, suite)
	require.ErrorIs(t, err, musig.ErrParticipantPositionNotFound)
}
