package crypto

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeError reports input that is not valid in the expected base.
type DecodeError struct {
	Base  int
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	in := e.Input
	if len(in) > 32 {
		in = in[:32] + "..."
	}
	return fmt.Sprintf("cannot decode %q as base%d: %s", in, e.Base, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Base16Encode uses upper case hex digits.
func (a ByteArray) Base16Encode() string {
	return strings.ToUpper(hex.EncodeToString(a.b))
}

// Base16Decode accepts either case.
func Base16Decode(s string) (ByteArray, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ByteArray{}, &DecodeError{Base: 16, Input: s, Err: err}
	}
	return FromBytes(b), nil
}

// Base32Encode uses the standard padded alphabet.
func (a ByteArray) Base32Encode() string {
	return base32.StdEncoding.EncodeToString(a.b)
}

func Base32Decode(s string) (ByteArray, error) {
	b, err := base32.StdEncoding.DecodeString(s)
	if err != nil {
		return ByteArray{}, &DecodeError{Base: 32, Input: s, Err: err}
	}
	return FromBytes(b), nil
}

// Base64Encode uses the standard padded alphabet.
func (a ByteArray) Base64Encode() string {
	return base64.StdEncoding.EncodeToString(a.b)
}

func Base64Decode(s string) (ByteArray, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ByteArray{}, &DecodeError{Base: 64, Input: s, Err: err}
	}
	return FromBytes(b), nil
}
