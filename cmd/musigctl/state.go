package main

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// SessionState is the on-disk, per-party snapshot of an in-flight signing
// ceremony, round-tripped between musigctl invocations as CBOR — the same
// wire-level choice luxfi-threshold's handler.go uses for its own round
// messages, reused here for local inter-invocation state instead of network
// transport.
//
// Nonce is explicitly dropped (left nil) once Sign has produced Share: an
// on-disk state file never carries a live secret nonce past the signing
// round.
// SelfPubKey identifies this party by its own encoded public key rather than
// by the ordinal position it occupies in Participants: Participants is
// stored in whatever order --pubkeys was given, but keyagg.Compute sorts a
// defensive copy before deriving coefficients, so a pre-sort ordinal does
// not reliably index agg.Coefficients/agg.Sorted once init's --pubkeys
// wasn't already canonically ordered. Re-deriving the sorted index from the
// public key itself (keyagg.Aggregated.IndexOf) at every round keeps sign
// and combine correct regardless of --pubkeys order.
type SessionState struct {
	Phase          string   `cbor:"phase"`
	Suite          string   `cbor:"suite"`
	SelfPubKey     []byte   `cbor:"self_pubkey"`
	Participants   [][]byte `cbor:"participants"`
	Nonce          []byte   `cbor:"nonce,omitempty"`
	Commitment     []byte   `cbor:"commitment,omitempty"`
	PreCommitments [][]byte `cbor:"pre_commitments,omitempty"`
	Commitments    [][]byte `cbor:"commitments,omitempty"`
	Challenge      []byte   `cbor:"challenge,omitempty"`
	Share          []byte   `cbor:"share,omitempty"`
}

func loadState(path string) (*SessionState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("musigctl: failed to read state file %s: %w", path, err)
	}
	var s SessionState
	if err := cbor.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("musigctl: failed to decode state file %s: %w", path, err)
	}
	return &s, nil
}

func saveState(path string, s *SessionState) error {
	b, err := cbor.Marshal(s)
	if err != nil {
		return fmt.Errorf("musigctl: failed to encode state: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("musigctl: failed to write state file %s: %w", path, err)
	}
	return nil
}
