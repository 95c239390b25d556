package signing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/crypto/signing"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/keystore"
)

func TestSignAndVerify(t *testing.T) {
	signer := fixtures.SignerFor(keystore.SdmConfig)
	msg := hashing.List(hashing.String("payload"), hashing.Uint(42))
	ctx := []hashing.HashableMessage{hashing.String("encryption parameters")}

	sig, err := signing.Sign(signer.Key, msg, ctx)
	require.NoError(t, err)

	ok, err := signing.Verify(&signer.Key.PublicKey, msg, ctx, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// different context
	ok, err = signing.Verify(&signer.Key.PublicKey, msg, []hashing.HashableMessage{hashing.String("other")}, sig)
	require.NoError(t, err)
	assert.False(t, ok)

	// different key
	other := fixtures.SignerFor(keystore.SdmTally)
	ok, err = signing.Verify(&other.Key.PublicKey, msg, ctx, sig)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = signing.Verify(nil, msg, ctx, sig)
	assert.Error(t, err)
	_, err = signing.Verify(&signer.Key.PublicKey, msg, ctx, nil)
	assert.Error(t, err)
}
