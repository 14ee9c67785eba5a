package wire

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexBytes is grounded on the teacher's types.HexBytes (kysee-zk-chains,
// types/hex2bytes.go): a byte slice that marshals to a "0x"-prefixed hex
// string and falls back to base64 on unmarshal if the input is not hex. This
// repository swaps the teacher's hand-rolled encoding/hex calls for
// go-ethereum's common/hexutil, already a direct dependency of the teacher's
// go.mod, for the "0x" framing.
type HexBytes []byte

// String returns the "0x"-prefixed hex encoding.
func (b HexBytes) String() string {
	return hexutil.Encode(b)
}

// MarshalJSON implements json.Marshaler.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	s := hexutil.Encode(b)
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting either a "0x"-prefixed
// hex string or, failing that, base64 — matching the teacher's tolerant
// decode path.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("wire: invalid hex string: %s", data)
	}
	val := string(data[1 : len(data)-1])

	if looksHex(val) {
		bz, err := hexutil.Decode(ensure0x(val))
		if err != nil {
			return err
		}
		*b = bz
		return nil
	}

	bz, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return err
	}
	*b = bz
	return nil
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}

func looksHex(s string) bool {
	v := strings.TrimPrefix(s, "0x")
	if len(v)%2 != 0 {
		return false
	}
	for _, c := range []byte(v) {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
