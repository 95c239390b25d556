// Package hashing implements the recursive hash used for signatures,
// proof challenges and commitment keys.
//
// Every value is hashed with a one byte domain tag in front of its byte
// representation, so that a byte array, an integer and a string with the
// same bytes never collide:
//
//	0x00 byte array
//	0x01 integer (minimal big-endian)
//	0x02 string (UTF-8)
//	0x03 list, over the concatenated hashes of its elements
//
// The fixed length hash is SHA3-256. The variable length hash applies
// SHAKE-256 at the root only.
package hashing

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"
	"golang.org/x/crypto/sha3"

	"github.com/thechriswalker/go-evote-verifier/crypto"
)

const (
	tagByteArray byte = 0x00
	tagInteger   byte = 0x01
	tagString    byte = 0x02
	tagList      byte = 0x03
)

// ErrEmptyList is returned when hashing a list with no elements.
var ErrEmptyList = errors.New("cannot hash an empty list")

type Kind uint8

const (
	ByteArrayKind Kind = iota
	IntegerKind
	StringKind
	ListKind
)

// HashableMessage is a tree of values that can be recursively hashed.
type HashableMessage struct {
	kind    Kind
	bytes   crypto.ByteArray
	integer *big.Int
	str     string
	list    []HashableMessage
}

func Bytes(b crypto.ByteArray) HashableMessage {
	return HashableMessage{kind: ByteArrayKind, bytes: b}
}

func Int(n *big.Int) HashableMessage {
	return HashableMessage{kind: IntegerKind, integer: n}
}

func Uint(n uint64) HashableMessage {
	return Int(new(big.Int).SetUint64(n))
}

func String(s string) HashableMessage {
	return HashableMessage{kind: StringKind, str: s}
}

func List(vs ...HashableMessage) HashableMessage {
	return HashableMessage{kind: ListKind, list: vs}
}

func IntList(ns []*big.Int) HashableMessage {
	l := make([]HashableMessage, len(ns))
	for i, n := range ns {
		l[i] = Int(n)
	}
	return List(l...)
}

func StringList(ss []string) HashableMessage {
	l := make([]HashableMessage, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return List(l...)
}

func (m HashableMessage) Kind() Kind {
	return m.kind
}

// leaf returns the tagged byte representation of a non-list value.
func (m HashableMessage) leaf() ([]byte, error) {
	switch m.kind {
	case ByteArrayKind:
		return m.bytes.Prepend(tagByteArray).Bytes(), nil
	case IntegerKind:
		b, err := crypto.FromBigInt(m.integer)
		if err != nil {
			return nil, err
		}
		return b.Prepend(tagInteger).Bytes(), nil
	case StringKind:
		return crypto.FromString(m.str).Prepend(tagString).Bytes(), nil
	}
	return nil, fmt.Errorf("unexpected hashable kind %d", m.kind)
}

type digester func(data []byte) []byte

// hash applies h to the tagged representation of m. Elements of a list
// are always hashed with SHA3-256.
func (m HashableMessage) hash(h digester) ([]byte, error) {
	if m.kind != ListKind {
		b, err := m.leaf()
		if err != nil {
			return nil, err
		}
		return h(b), nil
	}
	if len(m.list) == 0 {
		return nil, ErrEmptyList
	}
	buf := []byte{tagList}
	for i, v := range m.list {
		sub, err := v.hash(sha3256)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		buf = append(buf, sub...)
	}
	return h(buf), nil
}

func sha3256(data []byte) []byte {
	s := sha3.Sum256(data)
	return s[:]
}

func shake256(length int) digester {
	return func(data []byte) []byte {
		out := make([]byte, length)
		sha3.ShakeSum256(out, data)
		return out
	}
}

// root combines multiple values as a list, a single value as itself.
func root(vs []HashableMessage) (HashableMessage, error) {
	switch len(vs) {
	case 0:
		return HashableMessage{}, ErrEmptyList
	case 1:
		return vs[0], nil
	}
	return List(vs...), nil
}

// RecursiveHash returns the 32 byte SHA3-256 recursive hash of the values.
// Several values are hashed as a list.
func RecursiveHash(vs ...HashableMessage) (crypto.ByteArray, error) {
	m, err := root(vs)
	if err != nil {
		return crypto.ByteArray{}, err
	}
	h, err := m.hash(sha3256)
	if err != nil {
		return crypto.ByteArray{}, err
	}
	return crypto.FromBytes(h), nil
}

// RecursiveHashOfLength returns a hash of exactly bits bits. The root
// is hashed with SHAKE-256, its children with RecursiveHash.
func RecursiveHashOfLength(bits int, vs ...HashableMessage) (crypto.ByteArray, error) {
	if bits < 1 {
		return crypto.ByteArray{}, fmt.Errorf("invalid hash length %d", bits)
	}
	m, err := root(vs)
	if err != nil {
		return crypto.ByteArray{}, err
	}
	h, err := m.hash(shake256((bits + 7) / 8))
	if err != nil {
		return crypto.ByteArray{}, err
	}
	return crypto.FromBytes(h).CutBitLength(bits)
}

// RecursiveHashToZq maps the values to an element of Z_q, reducing a
// hash 256 bits longer than q.
func RecursiveHashToZq(q *big.Int, vs ...HashableMessage) (*big.Int, error) {
	if q == nil || q.Sign() <= 0 {
		return nil, fmt.Errorf("invalid modulus for hash to Zq")
	}
	args := make([]HashableMessage, 0, len(vs)+2)
	args = append(args, String("RecursiveHash"), Int(q))
	args = append(args, vs...)
	h, err := RecursiveHashOfLength(q.BitLen()+256, List(args...))
	if err != nil {
		return nil, err
	}
	n := h.BigInt()
	return n.Mod(n, q), nil
}
