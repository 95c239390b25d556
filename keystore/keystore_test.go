package keystore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/keystore"
)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for _, a := range []keystore.Authority{keystore.SdmConfig, keystore.ControlComponent(2)} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(a)+".pem"), fixtures.SignerFor(a).PEM(), 0o644))
	}
	// ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("trust store"), 0o644))

	ks, err := keystore.Load(dir, "")
	require.NoError(t, err)

	pub, err := ks.PublicKey(keystore.ControlComponent(2))
	require.NoError(t, err)
	assert.Equal(t, 0, pub.N.Cmp(fixtures.SignerFor(keystore.ControlComponent(2)).Key.PublicKey.N))

	_, err = ks.PublicKey(keystore.SdmTally)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	fps := ks.Fingerprints()
	require.Len(t, fps, 2)
	assert.Equal(t, keystore.ControlComponent(2), fps[0].Authority)
	assert.Len(t, fps[0].SHA256, 64)
}

func TestLoadErrors(t *testing.T) {
	_, err := keystore.Load(filepath.Join(t.TempDir(), "missing.p12"), "pw")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "store.p12")
	require.NoError(t, os.WriteFile(bad, []byte("not a keystore"), 0o644))
	_, err = keystore.Load(bad, "pw")
	assert.Error(t, err)

	_, err = keystore.ParsePEM([]byte("nothing here"))
	assert.Error(t, err)
}
