package mixnet

import (
	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

// ShuffleArgument proves that one vector of ciphertexts is a permuted
// re-encryption of another.
type ShuffleArgument struct {
	CA                          crypto.BigIntSlice           `json:"c_A"`
	CB                          crypto.BigIntSlice           `json:"c_B"`
	ProductArgument             *ProductArgument             `json:"productArgument"`
	MultiExponentiationArgument *MultiExponentiationArgument `json:"multiExponentiationArgument"`
}

// ProductArgument proves that committed values multiply to b. With a
// single commitment only the single value product argument is present.
type ProductArgument struct {
	CB                         crypto.BigInt               `json:"c_b"`
	HadamardArgument           *HadamardArgument           `json:"hadamardArgument,omitempty"`
	SingleValueProductArgument *SingleValueProductArgument `json:"singleValueProductArgument"`
}

type HadamardArgument struct {
	CB           crypto.BigIntSlice `json:"c_B"`
	ZeroArgument *ZeroArgument      `json:"zeroArgument"`
}

type ZeroArgument struct {
	CA0    crypto.BigInt      `json:"c_A_0"`
	CBm    crypto.BigInt      `json:"c_B_m"`
	CD     crypto.BigIntSlice `json:"c_d"`
	APrime crypto.BigIntSlice `json:"a_prime"`
	BPrime crypto.BigIntSlice `json:"b_prime"`
	RPrime crypto.BigInt      `json:"r_prime"`
	SPrime crypto.BigInt      `json:"s_prime"`
	TPrime crypto.BigInt      `json:"t_prime"`
}

type SingleValueProductArgument struct {
	CD          crypto.BigInt      `json:"c_d"`
	CLowerDelta crypto.BigInt      `json:"c_lower_delta"`
	CUpperDelta crypto.BigInt      `json:"c_upper_delta"`
	ATilde      crypto.BigIntSlice `json:"a_tilde"`
	BTilde      crypto.BigIntSlice `json:"b_tilde"`
	RTilde      crypto.BigInt      `json:"r_tilde"`
	STilde      crypto.BigInt      `json:"s_tilde"`
}

type MultiExponentiationArgument struct {
	CA0 crypto.BigInt         `json:"c_A_0"`
	CB  crypto.BigIntSlice    `json:"c_B"`
	E   []*elgamal.Ciphertext `json:"E"`
	A   crypto.BigIntSlice    `json:"a"`
	R   crypto.BigInt         `json:"r"`
	B   crypto.BigInt         `json:"b"`
	S   crypto.BigInt         `json:"s"`
	Tau crypto.BigInt         `json:"tau"`
}

func bigInt(b crypto.BigInt) hashing.HashableMessage {
	if b.Int == nil {
		return hashing.String("")
	}
	return hashing.Int(b.Int)
}

func (a *ShuffleArgument) HashableMessage() hashing.HashableMessage {
	return hashing.List(
		hashing.IntList(a.CA),
		hashing.IntList(a.CB),
		a.ProductArgument.HashableMessage(),
		a.MultiExponentiationArgument.HashableMessage(),
	)
}

func (a *ProductArgument) HashableMessage() hashing.HashableMessage {
	if a == nil {
		return hashing.String("")
	}
	if a.HadamardArgument == nil {
		return hashing.List(a.SingleValueProductArgument.HashableMessage())
	}
	return hashing.List(
		bigInt(a.CB),
		a.HadamardArgument.HashableMessage(),
		a.SingleValueProductArgument.HashableMessage(),
	)
}

func (a *HadamardArgument) HashableMessage() hashing.HashableMessage {
	return hashing.List(hashing.IntList(a.CB), a.ZeroArgument.HashableMessage())
}

func (a *ZeroArgument) HashableMessage() hashing.HashableMessage {
	if a == nil {
		return hashing.String("")
	}
	return hashing.List(
		bigInt(a.CA0), bigInt(a.CBm), hashing.IntList(a.CD),
		hashing.IntList(a.APrime), hashing.IntList(a.BPrime),
		bigInt(a.RPrime), bigInt(a.SPrime), bigInt(a.TPrime),
	)
}

func (a *SingleValueProductArgument) HashableMessage() hashing.HashableMessage {
	if a == nil {
		return hashing.String("")
	}
	return hashing.List(
		bigInt(a.CD), bigInt(a.CLowerDelta), bigInt(a.CUpperDelta),
		hashing.IntList(a.ATilde), hashing.IntList(a.BTilde),
		bigInt(a.RTilde), bigInt(a.STilde),
	)
}

func (a *MultiExponentiationArgument) HashableMessage() hashing.HashableMessage {
	if a == nil {
		return hashing.String("")
	}
	return hashing.List(
		bigInt(a.CA0), hashing.IntList(a.CB), elgamal.CiphertextsHashable(a.E),
		hashing.IntList(a.A), bigInt(a.R), bigInt(a.B), bigInt(a.S), bigInt(a.Tau),
	)
}
