package musig

import (
	"io"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/kysee/musig-jubjub/curve"
)

// NonceSource supplies the per-session secret nonce r_i. Implementations are
// not required to be constant-time themselves; the resulting scalar is
// always carried through curve.MulByGeneratorCT.
type NonceSource interface {
	nonce(selfPriv *big.Int, m []byte) (*big.Int, error)
}

type randomNonceSource struct {
	rng io.Reader
}

// RandomNonce draws a fresh nonce from rng on every call. An RNG fault leaks
// the private key through the signature (the classic nonce-reuse failure
// mode); prefer DeterministicNonce unless rng is known-good.
func RandomNonce(rng io.Reader) NonceSource {
	return randomNonceSource{rng: rng}
}

func (s randomNonceSource) nonce(_ *big.Int, _ []byte) (*big.Int, error) {
	return curve.RandomScalar(s.rng)
}

type deterministicNonceSource struct{}

// DeterministicNonce derives r_i = H(x_i || m) via blake2b-512, so repeated
// signing attempts over the same (key, message) reuse the same nonce instead
// of depending on RNG quality. This is the recommended default (see
// SPEC_FULL.md §9 Constant-time / nonce-lifecycle discipline).
func DeterministicNonce() NonceSource {
	return deterministicNonceSource{}
}

func (s deterministicNonceSource) nonce(selfPriv *big.Int, m []byte) (*big.Int, error) {
	h, err := blake2b.New512([]byte("musig-jubjub/nonce"))
	if err != nil {
		return nil, err
	}
	skBytes := selfPriv.Bytes()
	h.Write(skBytes)
	h.Write(m)
	digest := h.Sum(nil)

	e := curve.ElementFromBigInt(new(big.Int).SetBytes(digest))
	out := new(big.Int)
	e.BigInt(out)
	return out, nil
}
