package crypto

import (
	"fmt"

	big "github.com/ncw/gmp"
)

// ByteArray is the byte representation used by the hashing and
// encoding primitives. It is big-endian and never empty: building a
// ByteArray from an empty slice yields the single byte 0x00, which is
// what the signed payloads expect when hashing empty values.
type ByteArray struct {
	b []byte
}

// FromBytes copies b into a new ByteArray.
func FromBytes(b []byte) ByteArray {
	if len(b) == 0 {
		return ByteArray{b: []byte{0}}
	}
	c := make([]byte, len(b))
	copy(c, b)
	return ByteArray{b: c}
}

// FromString returns the UTF-8 bytes of s.
func FromString(s string) ByteArray {
	return FromBytes([]byte(s))
}

// FromBigInt returns the minimal big-endian representation of a
// non-negative integer. Zero is encoded as a single zero byte.
func FromBigInt(n *big.Int) (ByteArray, error) {
	if n == nil {
		return ByteArray{}, fmt.Errorf("cannot convert nil integer to byte array")
	}
	if n.Sign() < 0 {
		return ByteArray{}, fmt.Errorf("cannot convert negative integer %s to byte array", n)
	}
	return FromBytes(n.Bytes()), nil
}

// FromUint64 is FromBigInt for small values.
func FromUint64(n uint64) ByteArray {
	ba, _ := FromBigInt(new(big.Int).SetUint64(n))
	return ba
}

// Bytes returns a copy of the underlying bytes.
func (a ByteArray) Bytes() []byte {
	c := make([]byte, len(a.b))
	copy(c, a.b)
	return c
}

// Len is the number of bytes.
func (a ByteArray) Len() int {
	return len(a.b)
}

// BigInt interprets the bytes as an unsigned big-endian integer.
func (a ByteArray) BigInt() *big.Int {
	return new(big.Int).SetBytes(a.b)
}

// Equal compares two byte arrays byte by byte.
func (a ByteArray) Equal(o ByteArray) bool {
	if len(a.b) != len(o.b) {
		return false
	}
	for i := range a.b {
		if a.b[i] != o.b[i] {
			return false
		}
	}
	return true
}

// Prepend returns a new ByteArray with x in front.
func (a ByteArray) Prepend(x byte) ByteArray {
	c := make([]byte, 0, len(a.b)+1)
	c = append(c, x)
	c = append(c, a.b...)
	return ByteArray{b: c}
}

// Append returns the concatenation of a and o.
func (a ByteArray) Append(o ByteArray) ByteArray {
	c := make([]byte, 0, len(a.b)+len(o.b))
	c = append(c, a.b...)
	c = append(c, o.b...)
	return ByteArray{b: c}
}

// CutBitLength keeps the n least significant bits of the array,
// dropping the leading bytes and masking the top partial byte.
func (a ByteArray) CutBitLength(n int) (ByteArray, error) {
	if n < 1 {
		return ByteArray{}, fmt.Errorf("cannot cut byte array to %d bits", n)
	}
	if n > 8*len(a.b) {
		return ByteArray{}, fmt.Errorf("cannot cut %d byte array to %d bits", len(a.b), n)
	}
	length := (n + 7) / 8
	c := make([]byte, length)
	copy(c, a.b[len(a.b)-length:])
	topBits := n - 8*(length-1)
	c[0] &= byte(0xFF >> (8 - topBits))
	return ByteArray{b: c}, nil
}

// ByteLength is the number of bytes needed to hold n, that is
// ceil(bitlen(n)/8). It is 0 for 0.
func ByteLength(n *big.Int) int {
	return (n.BitLen() + 7) / 8
}
