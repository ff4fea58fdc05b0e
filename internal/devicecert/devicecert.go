// Package devicecert manages the persistent self-signed certificate that
// anchors a device's identity. The certificate is never presented for TLS;
// its only job is to give the device fingerprint stable key material.
package devicecert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	certFile = "device.crt"
	keyFile  = "device.key"
)

// LoadOrCreate returns the device identity certificate stored under dir,
// generating and persisting a new one on first use.
func LoadOrCreate(dir string) (*x509.Certificate, error) {
	certPath := filepath.Join(dir, certFile)

	certPEM, err := os.ReadFile(certPath)
	if err == nil {
		return parse(certPEM)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read device cert: %w", err)
	}

	return generate(dir)
}

// Rotate discards any stored identity and generates a fresh one.
func Rotate(dir string) (*x509.Certificate, error) {
	for _, name := range []string{certFile, keyFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return generate(dir)
}

func parse(certPEM []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("invalid device cert PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse device cert: %w", err)
	}
	return cert, nil
}

func generate(dir string) (*x509.Certificate, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("gen key: %w", err)
	}

	serial, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: "budget-device-" + uuid.NewString(),
		},
		NotBefore: time.Now().Add(-1 * time.Minute),
		NotAfter:  time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:  x509.KeyUsageDigitalSignature,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("create cert: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal priv key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	if err := os.WriteFile(filepath.Join(dir, certFile), certPEM, 0o600); err != nil {
		return nil, fmt.Errorf("write device cert: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, keyFile), keyPEM, 0o600); err != nil {
		return nil, fmt.Errorf("write device key: %w", err)
	}

	return x509.ParseCertificate(certDER)
}
