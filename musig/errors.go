package musig

import (
	"errors"
	"fmt"
)

// Sentinel errors mirroring original_source/musig/src/errors.rs, the
// authoritative (newer-generation) error taxonomy. Compared with errors.Is
// rather than a Rust-style enum, matching Go idiom and the teacher's own
// fmt.Errorf("...: %w", err) wrapping throughout provers/.
var (
	ErrInvalidPubkeyLength          = errors.New("musig: participant list must be non-empty")
	ErrParticipantPositionNotFound  = errors.New("musig: self public key not found in participant list")
	ErrInvalidPublicKey             = errors.New("musig: public key is not in the prime-order subgroup")
	ErrNonceCommitmentNotGenerated  = errors.New("musig: nonce pre-commitment has not been generated yet")
	ErrPrecommitmentsNotReceived    = errors.New("musig: pre-commitments have not been received yet")
	ErrCommitmentsNotReceived       = errors.New("musig: nonce commitments have not been received yet")
	ErrChallengeNotGenerated        = errors.New("musig: challenge has not been generated yet")
	ErrPrecommitmentCountMismatch   = errors.New("musig: pre-commitment batch size does not match participant count")
	ErrCommitmentCountMismatch      = errors.New("musig: commitment batch size does not match participant count")
	ErrShareCountMismatch           = errors.New("musig: signature share batch size does not match participant count")
	ErrCommitmentNotInSubgroup      = errors.New("musig: revealed nonce commitment is not in the prime-order subgroup")
	ErrCommitmentMismatch           = errors.New("musig: revealed nonce commitment does not match its pre-commitment")
	ErrInvalidSignatureShare        = errors.New("musig: signature share failed verification")
	ErrPrecommitmentAlreadyComputed = errors.New("musig: nonce pre-commitment has already been computed for this session")
	ErrAlreadySigned                = errors.New("musig: session has already produced a signature share")
	ErrAggregatedNonceMissing       = errors.New("musig: aggregated nonce commitment has not been computed")
)

// InvalidShareError wraps ErrInvalidSignatureShare with the offending
// participant's index, so callers can errors.As it out instead of parsing
// the error string — the same pattern the teacher uses for indexed fetch
// failures (provers/listener.go).
type InvalidShareError struct {
	Index int
}

func (e *InvalidShareError) Error() string {
	return fmt.Sprintf("musig: signature share from participant %d failed verification", e.Index)
}

func (e *InvalidShareError) Unwrap() error {
	return ErrInvalidSignatureShare
}
