// Package signing verifies the RSASSA-PSS signatures over payloads.
//
// The signed message is the recursive hash of the payload content and
// its signature context. PSS uses SHA-256 with MGF1-SHA-256 and a 32 byte
// salt.
package signing

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

const saltLength = 32

var pssOptions = &rsa.PSSOptions{SaltLength: saltLength, Hash: stdcrypto.SHA256}

func digest(message hashing.HashableMessage, context []hashing.HashableMessage) ([]byte, error) {
	vs := []hashing.HashableMessage{message}
	if len(context) > 0 {
		vs = append(vs, hashing.List(context...))
	}
	h, err := hashing.RecursiveHash(vs...)
	if err != nil {
		return nil, fmt.Errorf("cannot hash signed content: %w", err)
	}
	d := sha256.Sum256(h.Bytes())
	return d[:], nil
}

// Verify reports whether signature is valid for the message and context.
// An error means the signature could not be checked at all.
func Verify(pub *rsa.PublicKey, message hashing.HashableMessage, context []hashing.HashableMessage, signature []byte) (bool, error) {
	if pub == nil {
		return false, fmt.Errorf("no public key")
	}
	if len(signature) == 0 {
		return false, fmt.Errorf("empty signature")
	}
	d, err := digest(message, context)
	if err != nil {
		return false, err
	}
	return rsa.VerifyPSS(pub, stdcrypto.SHA256, d, signature, pssOptions) == nil, nil
}

// Sign produces a signature Verify accepts.
func Sign(priv *rsa.PrivateKey, message hashing.HashableMessage, context []hashing.HashableMessage) ([]byte, error) {
	d, err := digest(message, context)
	if err != nil {
		return nil, err
	}
	return rsa.SignPSS(rand.Reader, priv, stdcrypto.SHA256, d, pssOptions)
}
