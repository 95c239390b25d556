package crypto

import (
	"encoding/json"
	"errors"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyByteArrayIsZeroByte(t *testing.T) {
	assert.Equal(t, []byte{0}, FromBytes(nil).Bytes())
	assert.Equal(t, []byte{0}, FromBytes([]byte{}).Bytes())
	assert.Equal(t, 1, FromString("").Len())
}

func TestByteLength(t *testing.T) {
	assert.Equal(t, 0, ByteLength(big.NewInt(0)))
	assert.Equal(t, 1, ByteLength(big.NewInt(255)))
	assert.Equal(t, 2, ByteLength(big.NewInt(256)))

	zero, err := FromBigInt(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, zero.Bytes())

	_, err = FromBigInt(big.NewInt(-1))
	assert.Error(t, err)
}

func TestBigIntRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 255, 256, 65537, 1 << 40} {
		ba, err := FromBigInt(big.NewInt(v))
		require.NoError(t, err)
		assert.Equal(t, 0, ba.BigInt().Cmp(big.NewInt(v)), "value %d", v)
	}
}

func TestCutBitLength(t *testing.T) {
	ones := FromBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	for n := 1; n <= 32; n++ {
		cut, err := ones.CutBitLength(n)
		require.NoError(t, err)
		assert.Equal(t, n, cut.BigInt().BitLen(), "cut to %d bits", n)
		expected := new(big.Int).Lsh(big.NewInt(1), uint(n))
		expected.Sub(expected, big.NewInt(1))
		assert.Equal(t, 0, cut.BigInt().Cmp(expected), "cut to %d bits", n)
	}

	cut, err := FromBytes([]byte{0xAB, 0xCD}).CutBitLength(12)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0B, 0xCD}, cut.Bytes())

	_, err = ones.CutBitLength(0)
	assert.Error(t, err)
	_, err = ones.CutBitLength(33)
	assert.Error(t, err)
}

func TestBaseEncodings(t *testing.T) {
	data := FromBytes([]byte("verifiable election data"))

	b16, err := Base16Decode(data.Base16Encode())
	require.NoError(t, err)
	assert.True(t, data.Equal(b16))

	b32, err := Base32Decode(data.Base32Encode())
	require.NoError(t, err)
	assert.True(t, data.Equal(b32))

	b64, err := Base64Decode(data.Base64Encode())
	require.NoError(t, err)
	assert.True(t, data.Equal(b64))

	assert.Equal(t, "0A0B", FromBytes([]byte{10, 11}).Base16Encode())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Base16Decode("zz")
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 16, de.Base)

	_, err = Base64Decode("!!!")
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 64, de.Base)

	_, err = Base32Decode("1")
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 32, de.Base)
}

func TestBigIntJSON(t *testing.T) {
	assert.Equal(t, "0x0", BigIntToJSON(big.NewInt(0)))
	assert.Equal(t, "0x1F", BigIntToJSON(big.NewInt(31)))

	n, err := BigIntFromJSON("0x1f")
	require.NoError(t, err)
	assert.Equal(t, int64(31), n.Int64())

	_, err = BigIntFromJSON("31")
	assert.Error(t, err)

	var s BigIntSlice
	require.NoError(t, json.Unmarshal([]byte(`["0xA","0x3"]`), &s))
	assert.True(t, s.Equal(BigIntSlice{big.NewInt(10), big.NewInt(3)}))

	assert.Error(t, json.Unmarshal([]byte(`["0xA","nope"]`), &s))

	var v struct {
		N BigInt `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"n":"0xFF"}`), &v))
	assert.Equal(t, int64(255), v.N.Int64())
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":"0xFF"}`, string(out))
}
