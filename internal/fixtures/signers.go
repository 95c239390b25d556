package fixtures

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"sync"
	"time"

	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/crypto/signing"
	"github.com/thechriswalker/go-evote-verifier/keystore"
)

// Signer is an authority with a self signed certificate.
type Signer struct {
	Authority keystore.Authority
	Key       *rsa.PrivateKey
	Cert      *x509.Certificate
}

var (
	signersMu sync.Mutex
	signers   = map[keystore.Authority]*Signer{}
)

// SignerFor returns a cached signer for the authority.
func SignerFor(a keystore.Authority) *Signer {
	signersMu.Lock()
	defer signersMu.Unlock()
	if s, ok := signers[a]; ok {
		return s
	}
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: string(a)},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		panic(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		panic(err)
	}
	s := &Signer{Authority: a, Key: key, Cert: cert}
	signers[a] = s
	return s
}

// Sign signs the message and context.
func (s *Signer) Sign(message hashing.HashableMessage, context []hashing.HashableMessage) []byte {
	sig, err := signing.Sign(s.Key, message, context)
	if err != nil {
		panic(err)
	}
	return sig
}

// PEM encodes the certificate.
func (s *Signer) PEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: s.Cert.Raw})
}

// Authorities are every authority signing election payloads.
func Authorities() []keystore.Authority {
	out := []keystore.Authority{keystore.SdmConfig, keystore.SdmTally}
	for j := 1; j <= 4; j++ {
		out = append(out, keystore.ControlComponent(j))
	}
	return out
}

// KeyStore trusts every fixture authority.
func KeyStore() *keystore.KeyStore {
	certs := map[keystore.Authority]*x509.Certificate{}
	for _, a := range Authorities() {
		certs[a] = SignerFor(a).Cert
	}
	return keystore.New(certs)
}
