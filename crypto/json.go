package crypto

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	big "github.com/ncw/gmp"
)

// BigIntToJSON renders x as "0x" followed by upper case hex digits.
func BigIntToJSON(x *big.Int) string {
	if x == nil {
		return ""
	}
	digits := strings.TrimLeft(hex.EncodeToString(x.Bytes()), "0")
	if digits == "" {
		digits = "0"
	}
	return "0x" + strings.ToUpper(digits)
}

// BigIntFromJSON parses the "0x" prefixed base16 form. Values must be
// non-negative.
func BigIntFromJSON(s string) (*big.Int, error) {
	if len(s) < 3 || (s[:2] != "0x" && s[:2] != "0X") {
		return nil, &DecodeError{Base: 16, Input: s, Err: fmt.Errorf("missing 0x prefix")}
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok || n.Sign() < 0 {
		return nil, &DecodeError{Base: 16, Input: s, Err: fmt.Errorf("not a non-negative hex integer")}
	}
	return n, nil
}

// BigInt is a big integer that carries its own JSON representation, for
// payload fields that are single integers.
type BigInt struct {
	*big.Int
}

func NewBigInt(x *big.Int) BigInt {
	return BigInt{Int: x}
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	if b.Int == nil {
		return []byte("null"), nil
	}
	return json.Marshal(BigIntToJSON(b.Int))
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		b.Int = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := BigIntFromJSON(s)
	if err != nil {
		return err
	}
	b.Int = n
	return nil
}

// slice of *big.Int s
type BigIntSlice []*big.Int

func (s BigIntSlice) MarshalJSON() ([]byte, error) {
	strs := make([]string, len(s))
	for i, n := range s {
		strs[i] = BigIntToJSON(n)
	}
	return json.Marshal(strs)
}

func (s *BigIntSlice) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return err
	}
	bs := make(BigIntSlice, len(strs))
	for i := range strs {
		n, err := BigIntFromJSON(strs[i])
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		bs[i] = n
	}
	*s = bs
	return nil
}

// Equal compares element-wise.
func (s BigIntSlice) Equal(o BigIntSlice) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i].Cmp(o[i]) != 0 {
			return false
		}
	}
	return true
}
