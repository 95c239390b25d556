// Package keystore holds the trusted certificates of the signing
// authorities, loaded from a PKCS#12 trust store or a directory of PEM
// files.
package keystore

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// Authority is the alias of a certificate in the store.
type Authority string

const (
	SdmConfig Authority = "sdm_config"
	SdmTally  Authority = "sdm_tally"
)

// ControlComponent is the authority of the online control component j.
func ControlComponent(j int) Authority {
	return Authority(fmt.Sprintf("control_component_%d", j))
}

var ErrNotFound = errors.New("certificate not found")

// Fingerprint identifies a certificate in reports.
type Fingerprint struct {
	Authority Authority `json:"authority"`
	SHA256    string    `json:"sha256"`
}

// KeyStore maps authorities to their certificates.
type KeyStore struct {
	certs map[Authority]*x509.Certificate
}

func New(certs map[Authority]*x509.Certificate) *KeyStore {
	return &KeyStore{certs: certs}
}

// Load reads a trust store: a PKCS#12 file when path is a file, or a
// directory of <authority>.pem files.
func Load(path, password string) (*KeyStore, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open keystore: %w", err)
	}
	if fi.IsDir() {
		return LoadDir(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read keystore: %w", err)
	}
	return LoadPKCS12(data, password)
}

// LoadPKCS12 reads every certificate bag, using its friendly name as the
// authority.
func LoadPKCS12(data []byte, password string) (*KeyStore, error) {
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		return nil, fmt.Errorf("cannot decode PKCS#12 keystore: %w", err)
	}
	certs := map[Authority]*x509.Certificate{}
	for _, b := range blocks {
		if b.Type != "CERTIFICATE" {
			continue
		}
		name := b.Headers["friendlyName"]
		if name == "" {
			return nil, fmt.Errorf("keystore certificate without a friendly name")
		}
		cert, err := x509.ParseCertificate(b.Bytes)
		if err != nil {
			return nil, fmt.Errorf("certificate %s: %w", name, err)
		}
		certs[Authority(name)] = cert
	}
	return New(certs), nil
}

// LoadDir reads every .pem file in dir.
func LoadDir(dir string) (*KeyStore, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pem"))
	if err != nil {
		return nil, err
	}
	certs := map[Authority]*x509.Certificate{}
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		cert, err := ParsePEM(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(m), err)
		}
		certs[Authority(strings.TrimSuffix(filepath.Base(m), ".pem"))] = cert
	}
	return New(certs), nil
}

// ParsePEM parses the first certificate in data.
func ParsePEM(data []byte) (*x509.Certificate, error) {
	for {
		var b *pem.Block
		b, data = pem.Decode(data)
		if b == nil {
			return nil, fmt.Errorf("no certificate in PEM data")
		}
		if b.Type == "CERTIFICATE" {
			return x509.ParseCertificate(b.Bytes)
		}
	}
}

// PublicKey returns the RSA key of the authority.
func (k *KeyStore) PublicKey(a Authority) (*rsa.PublicKey, error) {
	cert, ok := k.certs[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate %s does not hold an RSA key", a)
	}
	return pub, nil
}

// Fingerprints lists the SHA-256 of every certificate, sorted by authority.
func (k *KeyStore) Fingerprints() []Fingerprint {
	out := make([]Fingerprint, 0, len(k.certs))
	for a, c := range k.certs {
		sum := sha256.Sum256(c.Raw)
		out = append(out, Fingerprint{Authority: a, SHA256: strings.ToUpper(hex.EncodeToString(sum[:]))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Authority < out[j].Authority })
	return out
}
