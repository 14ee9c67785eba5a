package main

import (
	"bytes"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/kysee/musig-jubjub/curve"
	"github.com/kysee/musig-jubjub/encoding"
)

// runCLI executes one leaf cobra.Command with the given flags and returns its
// captured stdout/stderr, failing the test on a non-nil error.
func runCLI(t *testing.T, c *cobra.Command, args []string) string {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	require.NoError(t, err, "args=%v output=%s", args, out.String())
	return out.String()
}

// TestEndToEndCeremonyWithUnsortedPubkeyOrder drives a full two-party
// ceremony across separate musigctl invocations (init, precommit, reveal,
// aggregate-nonce, sign, combine, verify), the way two operators running the
// CLI in separate shells would. --pubkeys is deliberately passed in the
// reverse of keyagg.Compute's canonical sorted order, and --self-index is
// given relative to that pre-sort order, per the flag's own documented
// contract ("comma-separated 0x-hex public keys, in any order"). Every batch
// vector (pre-commitments, revealed commitments, shares) is instead supplied
// in the canonical sorted order, since that is the order combine's
// verifier.VerifyShare call aligns against (agg.Sorted/agg.Coefficients).
func TestEndToEndCeremonyWithUnsortedPubkeyOrder(t *testing.T) {
	g := curve.CurveParams().Generator()
	sk0 := big.NewInt(4242)
	sk1 := big.NewInt(1337)
	pub0 := curve.Mul(g, sk0)
	pub1 := curve.Mul(g, sk1)

	enc0 := encoding.EncodePoint(pub0)
	enc1 := encoding.EncodePoint(pub1)
	hex0 := hexutil.Encode(enc0[:])
	hex1 := hexutil.Encode(enc1[:])

	// Canonical (sorted-by-encoding) order: every batch CSV below is built
	// in this order, matching keyagg.Compute's internal sort.
	sortedHex := [2]string{hex0, hex1}
	sortedSk := [2]*big.Int{sk0, sk1}
	if bytes.Compare(enc1[:], enc0[:]) < 0 {
		sortedHex = [2]string{hex1, hex0}
		sortedSk = [2]*big.Int{sk1, sk0}
	}

	// --pubkeys is the reverse of the canonical order, so --self-index (a
	// pre-sort ordinal) never matches either party's post-sort position.
	unsortedCSV := sortedHex[1] + "," + sortedHex[0]
	selfIndexInUnsorted := map[string]int{sortedHex[0]: 1, sortedHex[1]: 0}

	msg := "end to end ceremony"
	dir := t.TempDir()
	statePaths := [2]string{filepath.Join(dir, "party0.cbor"), filepath.Join(dir, "party1.cbor")}

	for i := range statePaths {
		runCLI(t, newInitCmd(), []string{
			"--pubkeys", unsortedCSV,
			"--self-index", fmt.Sprintf("%d", selfIndexInUnsorted[sortedHex[i]]),
			"--state", statePaths[i],
		})
	}

	var preCommits [2]string
	for i := range statePaths {
		out := runCLI(t, newPrecommitCmd(), []string{
			"--priv", fmt.Sprintf("0x%x", sortedSk[i].Bytes()),
			"--msg", msg,
			"--state", statePaths[i],
		})
		preCommits[i] = strings.TrimSpace(strings.TrimPrefix(out, "precommit:"))
	}
	preCommitsCSV := preCommits[0] + "," + preCommits[1]

	var commitments [2]string
	for i := range statePaths {
		out := runCLI(t, newRevealCmd(), []string{
			"--precommits", preCommitsCSV,
			"--state", statePaths[i],
		})
		commitments[i] = strings.TrimSpace(strings.TrimPrefix(out, "reveal:"))
	}
	commitmentsCSV := commitments[0] + "," + commitments[1]

	for i := range statePaths {
		runCLI(t, newAggregateNonceCmd(), []string{
			"--commitments", commitmentsCSV,
			"--state", statePaths[i],
		})
	}

	var shares [2]string
	for i := range statePaths {
		out := runCLI(t, newSignCmd(), []string{
			"--priv", fmt.Sprintf("0x%x", sortedSk[i].Bytes()),
			"--msg", msg,
			"--state", statePaths[i],
		})
		shares[i] = strings.TrimSpace(strings.TrimPrefix(out, "share:"))
	}
	sharesCSV := shares[0] + "," + shares[1]

	combineOut := runCLI(t, newCombineCmd(), []string{
		"--shares", sharesCSV,
		"--state", statePaths[0],
	})
	sigHex := strings.TrimSpace(strings.TrimPrefix(combineOut, "signature:"))

	verifyOut := runCLI(t, newVerifyCmd(), []string{
		"--pubkeys", unsortedCSV,
		"--msg", msg,
		"--sig", sigHex,
	})
	require.Contains(t, verifyOut, "valid: true")
}
