// Package musig implements SignerSession, the per-party three-round MuSig
// state machine. It is grounded on original_source/musig/src/signer.rs
// (MuSigSigner), the newer of the two generations in the original source —
// the older musig.rs (MusigSession::set_t/set_r_pub) single-peer-assignment
// API is not implemented as the primary surface; see SPEC_FULL.md §13.
package musig

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/keyagg"
	"github.com/kysee/musig-jubjub/transcript"
	"github.com/kysee/musig-jubjub/verifier"
)

// sessionState is a tagged union over the phases of §4.5 that follow
// construction (ready through done; Init has no type of its own): one
// concrete type per phase, each carrying exactly the data valid in that
// phase. This replaces the original source's boolean-flag/Option-field
// design (MuSigSigner's performed_sign bool, Option<Fs> nonce, etc.) per
// SPEC_FULL.md §9's Design Notes.
type sessionState interface {
	phase() string
}

type stateReady struct{}

func (stateReady) phase() string { return "ready" }

type stateCommitted struct {
	nonce      big.Int
	commitment curve.Point
}

func (stateCommitted) phase() string { return "committed" }

type stateRevealed struct {
	nonce          big.Int
	commitment     curve.Point
	preCommitments [][32]byte
}

func (stateRevealed) phase() string { return "revealed" }

type stateAggregated struct {
	nonce           big.Int
	commitment      curve.Point
	preCommitments  [][32]byte
	commitments     []curve.Point
	aggregatedNonce curve.Point
}

func (stateAggregated) phase() string { return "aggregated" }

type stateSigned struct {
	aggregatedNonce curve.Point
	challenge       fr.Element
	share           fr.Element
}

func (stateSigned) phase() string { return "signed" }

type stateDone struct {
	signature verifier.Signature
}

func (stateDone) phase() string { return "done" }

// SignerSession is one party's view of a single MuSig signing ceremony. It
// is NOT safe for concurrent use: each party drives its session from a
// single goroutine, and a session produces at most one signature share
// before it must be discarded.
type SignerSession struct {
	log          zerolog.Logger
	suite        transcript.HashSuite
	participants []curve.Point
	coefficients []fr.Element
	aggregated   curve.Point
	selfIndex    int

	// lastCommitments holds the revealed nonce commitments {R_j} once
	// ReceiveCommitments succeeds. These are public values (unlike the
	// nonce r_i, which stateSigned deliberately drops) and are kept
	// outside the tagged union purely so ReceiveSignatureShares can
	// verify each peer's share without re-deriving R_j.
	lastCommitments []curve.Point

	state sessionState
}

// Option configures a SignerSession at construction time.
type Option func(*SignerSession)

// WithLogger attaches a zerolog.Logger that observes state transitions and
// errors; it never influences the protocol's outcome. The default is a
// disabled logger, so unconfigured sessions pay nothing for logging.
func WithLogger(l zerolog.Logger) Option {
	return func(s *SignerSession) { s.log = l }
}

// NewSignerSession constructs a session for one participant. participants
// may be supplied in any order; self must be present among them.
func NewSignerSession(participants []curve.Point, self curve.Point, suite transcript.HashSuite, opts ...Option) (*SignerSession, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidPubkeyLength
	}

	agg, err := keyagg.Compute(participants)
	if err != nil {
		if err == keyagg.ErrInvalidPublicKey {
			return nil, ErrInvalidPublicKey
		}
		return nil, err
	}

	idx, ok := agg.IndexOf(self)
	if !ok {
		return nil, ErrParticipantPositionNotFound
	}

	s := &SignerSession{
		log:          zerolog.Nop(),
		suite:        suite,
		participants: agg.Sorted,
		coefficients: agg.Coefficients,
		aggregated:   agg.Key,
		selfIndex:    idx,
		state:        stateReady{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Debug().Int("self_index", idx).Int("n", len(agg.Sorted)).Msg("session ready")
	return s, nil
}

// N returns the number of participants.
func (s *SignerSession) N() int { return len(s.participants) }

// SelfIndex returns self's position within the canonicalized participant
// list.
func (s *SignerSession) SelfIndex() int { return s.selfIndex }

// AggregatedKey returns X'.
func (s *SignerSession) AggregatedKey() curve.Point { return s.aggregated }

// ComputePrecommitment samples (or derives) r_i, computes R_i = r_i*B, and
// returns the pre-commitment t_i = H_com(R_i). The revealed R_i itself is
// not returned here — only in ReceivePrecommitments, after every party has
// published its pre-commitment.
func (s *SignerSession) ComputePrecommitment(selfPriv *big.Int, m []byte, source NonceSource) ([32]byte, error) {
	if _, ok := s.state.(stateReady); !ok {
		return [32]byte{}, ErrPrecommitmentAlreadyComputed
	}

	r, err := source.nonce(selfPriv, m)
	if err != nil {
		return [32]byte{}, err
	}

	commitment := curve.MulByGeneratorCT(r)
	s.state = stateCommitted{nonce: *r, commitment: commitment}

	t := transcript.HashCommitment(commitment)
	s.log.Debug().Msg("precommitment computed")
	return t, nil
}

// ReceivePrecommitments accepts the full batch of pre-commitments {t_j},
// including self's own slot, and returns self's revealed R_i so the caller
// can broadcast it.
func (s *SignerSession) ReceivePrecommitments(preCommitments [][32]byte) (curve.Point, error) {
	committed, ok := s.state.(stateCommitted)
	if !ok {
		return curve.Point{}, ErrNonceCommitmentNotGenerated
	}
	if len(preCommitments) != len(s.participants) {
		return curve.Point{}, ErrPrecommitmentCountMismatch
	}

	cp := make([][32]byte, len(preCommitments))
	copy(cp, preCommitments)

	s.state = stateRevealed{
		nonce:          committed.nonce,
		commitment:     committed.commitment,
		preCommitments: cp,
	}
	s.log.Debug().Msg("pre-commitments received")
	return committed.commitment, nil
}

// ReceiveCommitments accepts the full batch of revealed nonce commitments
// {R_j}, validates each against its pre-commitment and subgroup membership,
// computes the aggregated nonce R = Sum R_j, and returns it.
func (s *SignerSession) ReceiveCommitments(commitments []curve.Point) (curve.Point, error) {
	revealed, ok := s.state.(stateRevealed)
	if !ok {
		return curve.Point{}, ErrPrecommitmentsNotReceived
	}
	if len(commitments) != len(s.participants) {
		return curve.Point{}, ErrCommitmentCountMismatch
	}

	for j, r := range commitments {
		if !curve.IsInSubgroup(r) {
			return curve.Point{}, ErrCommitmentNotInSubgroup
		}
		if transcript.HashCommitment(r) != revealed.preCommitments[j] {
			return curve.Point{}, ErrCommitmentMismatch
		}
	}

	agg := curve.Identity()
	for _, r := range commitments {
		agg = curve.Add(agg, r)
	}

	cp := make([]curve.Point, len(commitments))
	copy(cp, commitments)

	s.state = stateAggregated{
		nonce:           revealed.nonce,
		commitment:      revealed.commitment,
		preCommitments:  revealed.preCommitments,
		commitments:     cp,
		aggregatedNonce: agg,
	}
	s.lastCommitments = cp
	s.log.Debug().Msg("nonce commitments aggregated")
	return agg, nil
}

// Sign computes the Fiat-Shamir challenge c = H_sig(X', R, m) and self's
// signature share s_i = r_i + c*a_i*x_i. The secret nonce r_i is zeroized
// immediately after use: the session cannot be asked to sign twice, and
// cannot leak r_i once this call returns.
func (s *SignerSession) Sign(selfPriv *big.Int, m []byte) (fr.Element, error) {
	aggregated, ok := s.state.(stateAggregated)
	if !ok {
		return fr.Element{}, ErrCommitmentsNotReceived
	}

	c := s.suite.HashSignature(s.aggregated, aggregated.aggregatedNonce, m)

	ai := s.coefficients[s.selfIndex]
	var cai fr.Element
	cai.Mul(&c, &ai)

	var caiInt, skInt big.Int
	cai.BigInt(&caiInt)
	skInt.Set(selfPriv)

	var term big.Int
	term.Mul(&caiInt, &skInt)
	term.Add(&term, &aggregated.nonce)
	term.Mod(&term, curve.CurveParams().Order())

	var share fr.Element
	share.SetBigInt(&term)

	// Zeroize the nonce now that it has been consumed. SetInt64(0) alone
	// would only shorten the slice, so the words are overwritten first.
	nonceWords := aggregated.nonce.Bits()
	for i := range nonceWords {
		nonceWords[i] = 0
	}
	aggregated.nonce.SetInt64(0)

	s.state = stateSigned{
		aggregatedNonce: aggregated.aggregatedNonce,
		challenge:       c,
		share:           share,
	}
	s.log.Debug().Msg("signature share computed")
	return share, nil
}

// ReceiveSignatureShares accepts the full batch of signature shares {s_j},
// verifies each against its public commitment, and returns the finished
// signature sigma = (R, Sum s_j).
func (s *SignerSession) ReceiveSignatureShares(shares []fr.Element) (verifier.Signature, error) {
	signed, ok := s.state.(stateSigned)
	if !ok {
		return verifier.Signature{}, ErrChallengeNotGenerated
	}
	if len(shares) != len(s.participants) {
		return verifier.Signature{}, ErrShareCountMismatch
	}

	if s.lastCommitments == nil {
		return verifier.Signature{}, ErrAggregatedNonceMissing
	}

	total := fr.Element{}
	for j, sj := range shares {
		if !verifier.VerifyShare(sj, s.lastCommitments[j], signed.challenge, s.coefficients[j], s.participants[j]) {
			s.log.Warn().Int("participant", j).Msg("signature share failed verification")
			return verifier.Signature{}, &InvalidShareError{Index: j}
		}
		total.Add(&total, &sj)
	}

	sig := verifier.Signature{R: signed.aggregatedNonce, S: total}
	s.state = stateDone{signature: sig}
	s.log.Debug().Msg("session done")
	return sig, nil
}
