package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/encoding"
	"github.com/kysee/musig-jubjub/keyagg"
	"github.com/kysee/musig-jubjub/transcript"
	"github.com/kysee/musig-jubjub/verifier"
)

// musigctl drives the three-round MuSig protocol across separate process
// invocations, one subcommand per protocol call, mirroring the original
// source's musig_wasm bindings one-for-one (SPEC_FULL.md §13). It re-derives
// aggregated-key state from the stored participant list on every invocation
// rather than serializing a musig.SignerSession directly: SignerSession's
// tagged-union state is deliberately unexported so a session's secrets never
// round-trip further than necessary (see musig/session.go), and keyagg.Compute
// is cheap and pure, so recomputing it per command is simpler than persisting
// derived values.

func decodePoint(hexStr string) (curve.Point, error) {
	b, err := hexutil.Decode(ensure0xLocal(hexStr))
	if err != nil {
		return curve.Point{}, err
	}
	if len(b) != 32 {
		return curve.Point{}, fmt.Errorf("musigctl: expected 32-byte point encoding, got %d bytes", len(b))
	}
	var arr [32]byte
	copy(arr[:], b)
	return encoding.DecodePoint(arr)
}

func ensure0xLocal(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}

func parsePubkeyList(csv string) ([]curve.Point, error) {
	parts := strings.Split(csv, ",")
	out := make([]curve.Point, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pt, err := decodePoint(p)
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}

func resolveSuite(name string) (transcript.HashSuite, error) {
	switch name {
	case "", "mimc":
		return transcript.MimcChallengeSuite(), nil
	case "sha512":
		return transcript.WideHashChallengeSuite(), nil
	default:
		return transcript.HashSuite{}, fmt.Errorf("musigctl: unknown suite %q (want mimc or sha512)", name)
	}
}

func pointsToBytes(pts []curve.Point) [][]byte {
	out := make([][]byte, len(pts))
	for i, p := range pts {
		enc := encoding.EncodePoint(p)
		cp := make([]byte, 32)
		copy(cp, enc[:])
		out[i] = cp
	}
	return out
}

func bytesToPoints(raw [][]byte) ([]curve.Point, error) {
	out := make([]curve.Point, len(raw))
	for i, r := range raw {
		var arr [32]byte
		copy(arr[:], r)
		p, err := encoding.DecodePoint(arr)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh private key and print it alongside its public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := curve.RandomScalar(randReader())
			if err != nil {
				return err
			}
			pub := curve.MulByGeneratorCT(sk)
			pubEnc := encoding.EncodePoint(pub)
			fmt.Fprintf(cmd.OutOrStdout(), "priv: 0x%x\npub:  %s\n", sk.Bytes(), hexutil.Encode(pubEnc[:]))
			return nil
		},
	}
}

func newAggregateCmd() *cobra.Command {
	var pubkeysCSV string
	c := &cobra.Command{
		Use:   "aggregate",
		Short: "Compute the aggregated public key for a participant list",
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePubkeyList(pubkeysCSV)
			if err != nil {
				return err
			}
			agg, err := keyagg.Compute(pts)
			if err != nil {
				return err
			}
			enc := encoding.EncodePoint(agg.Key)
			fmt.Fprintf(cmd.OutOrStdout(), "aggregated: %s\n", hexutil.Encode(enc[:]))
			return nil
		},
	}
	c.Flags().StringVar(&pubkeysCSV, "pubkeys", "", "comma-separated 0x-hex public keys")
	return c
}

func newInitCmd() *cobra.Command {
	var pubkeysCSV, suiteName, statePath string
	var selfIndex int
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialize a session's on-disk state",
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePubkeyList(pubkeysCSV)
			if err != nil {
				return err
			}
			if _, err := resolveSuite(suiteName); err != nil {
				return err
			}
			if selfIndex < 0 || selfIndex >= len(pts) {
				return fmt.Errorf("musigctl: --self-index out of range")
			}
			s := &SessionState{
				Phase:        "ready",
				Suite:        suiteName,
				SelfPubKey:   encodeBytes32(pts[selfIndex]),
				Participants: pointsToBytes(pts),
			}
			return saveState(statePath, s)
		},
	}
	c.Flags().StringVar(&pubkeysCSV, "pubkeys", "", "comma-separated 0x-hex public keys, in any order")
	c.Flags().StringVar(&suiteName, "suite", "mimc", "challenge hash suite: mimc or sha512")
	c.Flags().IntVar(&selfIndex, "self-index", 0, "index of this party within --pubkeys")
	c.Flags().StringVar(&statePath, "state", "session.cbor", "path to the session state file")
	return c
}

func newPrecommitCmd() *cobra.Command {
	var privHex, msg, statePath string
	c := &cobra.Command{
		Use:   "precommit",
		Short: "Round 1: compute and print this party's pre-commitment t_i",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadState(statePath)
			if err != nil {
				return err
			}
			if s.Phase != "ready" {
				return fmt.Errorf("musigctl: session is not in the ready phase (got %q)", s.Phase)
			}
			if _, ok := new(big.Int).SetString(strings.TrimPrefix(privHex, "0x"), 16); !ok {
				return fmt.Errorf("musigctl: invalid private key hex")
			}
			_ = msg // reserved: a future deterministic-nonce subcommand would bind r to (priv, msg)

			r, err := curve.RandomScalar(randReader())
			if err != nil {
				return err
			}
			commitment := curve.MulByGeneratorCT(r)

			s.Nonce = r.Bytes()
			s.Commitment = encodeBytes32(commitment)
			s.Phase = "committed"
			if err := saveState(statePath, s); err != nil {
				return err
			}

			tc := transcript.HashCommitment(commitment)
			fmt.Fprintf(cmd.OutOrStdout(), "precommit: %s\n", hexutil.Encode(tc[:]))
			return nil
		},
	}
	c.Flags().StringVar(&privHex, "priv", "", "this party's private key, 0x-hex")
	c.Flags().StringVar(&msg, "msg", "", "message to be signed (not used: the nonce is always drawn from the system RNG)")
	c.Flags().StringVar(&statePath, "state", "session.cbor", "path to the session state file")
	return c
}

func newRevealCmd() *cobra.Command {
	var precommitsCSV, statePath string
	c := &cobra.Command{
		Use:   "reveal",
		Short: "Round 1 continued: record peers' pre-commitments and reveal this party's R_i",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadState(statePath)
			if err != nil {
				return err
			}
			if s.Phase != "committed" {
				return fmt.Errorf("musigctl: session is not in the committed phase (got %q)", s.Phase)
			}
			raw := strings.Split(precommitsCSV, ",")
			if len(raw) != len(s.Participants) {
				return fmt.Errorf("musigctl: pre-commitment batch size does not match participant count")
			}
			pre := make([][]byte, len(raw))
			for i, r := range raw {
				b, err := hexutil.Decode(ensure0xLocal(strings.TrimSpace(r)))
				if err != nil {
					return err
				}
				pre[i] = b
			}

			s.PreCommitments = pre
			s.Phase = "revealed"
			if err := saveState(statePath, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reveal: %s\n", hexutil.Encode(s.Commitment))
			return nil
		},
	}
	c.Flags().StringVar(&precommitsCSV, "precommits", "", "comma-separated 0x-hex pre-commitments, including this party's own")
	c.Flags().StringVar(&statePath, "state", "session.cbor", "path to the session state file")
	return c
}

func newAggregateNonceCmd() *cobra.Command {
	var commitmentsCSV, statePath string
	c := &cobra.Command{
		Use:   "aggregate-nonce",
		Short: "Round 2: validate revealed nonce commitments and compute R",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadState(statePath)
			if err != nil {
				return err
			}
			if s.Phase != "revealed" {
				return fmt.Errorf("musigctl: session is not in the revealed phase (got %q)", s.Phase)
			}
			pts, err := parsePubkeyList(commitmentsCSV)
			if err != nil {
				return err
			}
			if len(pts) != len(s.Participants) {
				return fmt.Errorf("musigctl: commitment batch size does not match participant count")
			}
			for j, p := range pts {
				if !curve.IsInSubgroup(p) {
					return fmt.Errorf("musigctl: commitment %d is not in the prime-order subgroup", j)
				}
				tc := transcript.HashCommitment(p)
				if hexutil.Encode(tc[:]) != hexutil.Encode(s.PreCommitments[j]) {
					return fmt.Errorf("musigctl: commitment %d does not match its pre-commitment", j)
				}
			}

			agg := curve.Identity()
			for _, p := range pts {
				agg = curve.Add(agg, p)
			}

			s.Commitments = pointsToBytes(pts)
			s.Phase = "aggregated"
			if err := saveState(statePath, s); err != nil {
				return err
			}
			enc := encoding.EncodePoint(agg)
			fmt.Fprintf(cmd.OutOrStdout(), "aggregated_nonce: %s\n", hexutil.Encode(enc[:]))
			return nil
		},
	}
	c.Flags().StringVar(&commitmentsCSV, "commitments", "", "comma-separated 0x-hex revealed nonce commitments")
	c.Flags().StringVar(&statePath, "state", "session.cbor", "path to the session state file")
	return c
}

func newSignCmd() *cobra.Command {
	var privHex, msg, statePath string
	c := &cobra.Command{
		Use:   "sign",
		Short: "Round 3: compute the Fiat-Shamir challenge and this party's signature share",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadState(statePath)
			if err != nil {
				return err
			}
			if s.Phase != "aggregated" {
				return fmt.Errorf("musigctl: session is not in the aggregated phase (got %q)", s.Phase)
			}
			suite, err := resolveSuite(s.Suite)
			if err != nil {
				return err
			}
			participants, err := bytesToPoints(s.Participants)
			if err != nil {
				return err
			}
			agg, err := keyagg.Compute(participants)
			if err != nil {
				return err
			}
			commitments, err := bytesToPoints(s.Commitments)
			if err != nil {
				return err
			}
			aggNonce := curve.Identity()
			for _, p := range commitments {
				aggNonce = curve.Add(aggNonce, p)
			}

			c_ := suite.HashSignature(agg.Key, aggNonce, []byte(msg))

			sk, ok := new(big.Int).SetString(strings.TrimPrefix(privHex, "0x"), 16)
			if !ok {
				return fmt.Errorf("musigctl: invalid private key hex")
			}
			var selfEnc [32]byte
			copy(selfEnc[:], s.SelfPubKey)
			selfPub, err := encoding.DecodePoint(selfEnc)
			if err != nil {
				return err
			}
			selfIdx, ok := agg.IndexOf(selfPub)
			if !ok {
				return fmt.Errorf("musigctl: self public key not found in the aggregated participant list")
			}
			nonce := new(big.Int).SetBytes(s.Nonce)
			ai := agg.Coefficients[selfIdx]

			var cai fr.Element
			cai.Mul(&c_, &ai)
			var caiInt big.Int
			cai.BigInt(&caiInt)

			var term big.Int
			term.Mul(&caiInt, sk)
			term.Add(&term, nonce)
			term.Mod(&term, curve.CurveParams().Order())

			var share fr.Element
			share.SetBigInt(&term)

			s.Challenge = func() []byte { b := encoding.EncodeScalar(c_); return b[:] }()
			s.Share = func() []byte { b := encoding.EncodeScalar(share); return b[:] }()
			s.Nonce = nil // zeroize: the on-disk state never carries a live nonce past signing
			s.Phase = "signed"
			if err := saveState(statePath, s); err != nil {
				return err
			}
			enc := encoding.EncodeScalar(share)
			fmt.Fprintf(cmd.OutOrStdout(), "share: %s\n", hexutil.Encode(enc[:]))
			return nil
		},
	}
	c.Flags().StringVar(&privHex, "priv", "", "this party's private key, 0x-hex")
	c.Flags().StringVar(&msg, "msg", "", "message being signed")
	c.Flags().StringVar(&statePath, "state", "session.cbor", "path to the session state file")
	return c
}

func newCombineCmd() *cobra.Command {
	var sharesCSV, statePath string
	c := &cobra.Command{
		Use:   "combine",
		Short: "Verify every party's signature share and assemble the final signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadState(statePath)
			if err != nil {
				return err
			}
			if s.Phase != "signed" {
				return fmt.Errorf("musigctl: session is not in the signed phase (got %q)", s.Phase)
			}
			participants, err := bytesToPoints(s.Participants)
			if err != nil {
				return err
			}
			agg, err := keyagg.Compute(participants)
			if err != nil {
				return err
			}
			commitments, err := bytesToPoints(s.Commitments)
			if err != nil {
				return err
			}

			raw := strings.Split(sharesCSV, ",")
			if len(raw) != len(agg.Sorted) {
				return fmt.Errorf("musigctl: signature share batch size does not match participant count")
			}

			var cElem fr.Element
			{
				var arr [32]byte
				copy(arr[:], s.Challenge)
				cElem = encoding.DecodeScalar(arr)
			}

			total := fr.Element{}
			aggNonce := curve.Identity()
			for _, p := range commitments {
				aggNonce = curve.Add(aggNonce, p)
			}
			for j, rStr := range raw {
				b, err := hexutil.Decode(ensure0xLocal(strings.TrimSpace(rStr)))
				if err != nil {
					return err
				}
				var arr [32]byte
				copy(arr[:], b)
				share := encoding.DecodeScalar(arr)

				if !verifier.VerifyShare(share, commitments[j], cElem, agg.Coefficients[j], agg.Sorted[j]) {
					return fmt.Errorf("musigctl: signature share from participant %d failed verification", j)
				}
				total.Add(&total, &share)
			}

			sig := verifier.Signature{R: aggNonce, S: total}
			sigEnc := func() []byte {
				r := encoding.EncodePoint(sig.R)
				sb := encoding.EncodeScalar(sig.S)
				out := make([]byte, 0, 64)
				out = append(out, r[:]...)
				out = append(out, sb[:]...)
				return out
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", hexutil.Encode(sigEnc))
			return nil
		},
	}
	c.Flags().StringVar(&sharesCSV, "shares", "", "comma-separated 0x-hex signature shares, ordered to match the sorted participant list")
	c.Flags().StringVar(&statePath, "state", "session.cbor", "path to the session state file")
	return c
}

func newVerifyCmd() *cobra.Command {
	var pubkeysCSV, msg, sigHex, suiteName string
	c := &cobra.Command{
		Use:   "verify",
		Short: "Verify a finished MuSig signature against a participant list and message",
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePubkeyList(pubkeysCSV)
			if err != nil {
				return err
			}
			suite, err := resolveSuite(suiteName)
			if err != nil {
				return err
			}
			b, err := hexutil.Decode(ensure0xLocal(sigHex))
			if err != nil {
				return err
			}
			if len(b) != 64 {
				return fmt.Errorf("musigctl: signature must be 64 bytes")
			}
			var rEnc, sEnc [32]byte
			copy(rEnc[:], b[:32])
			copy(sEnc[:], b[32:])
			r, err := encoding.DecodePoint(rEnc)
			if err != nil {
				return err
			}
			sig := verifier.Signature{R: r, S: encoding.DecodeScalar(sEnc)}

			ok, aggKey, err := verifier.Verify([]byte(msg), pts, sig, suite)
			if err != nil {
				return err
			}
			aggEnc := encoding.EncodePoint(aggKey)
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %t\naggregated: %s\n", ok, hexutil.Encode(aggEnc[:]))
			return nil
		},
	}
	c.Flags().StringVar(&pubkeysCSV, "pubkeys", "", "comma-separated 0x-hex public keys")
	c.Flags().StringVar(&msg, "msg", "", "message that was signed")
	c.Flags().StringVar(&sigHex, "sig", "", "0x-hex 64-byte signature")
	c.Flags().StringVar(&suiteName, "suite", "mimc", "challenge hash suite: mimc or sha512")
	return c
}

func encodeBytes32(p curve.Point) []byte {
	enc := encoding.EncodePoint(p)
	out := make([]byte, 32)
	copy(out, enc[:])
	return out
}
