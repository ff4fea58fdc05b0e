// Package fingerprint derives the opaque device identifier attached to
// history commits. The identifier is best-effort: stable when the device
// identity can be persisted, random but session-stable otherwise.
package fingerprint

import (
	"crypto/sha256"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/multiformats/go-multibase"
	"go.uber.org/zap"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/devicecert"
)

// Provider computes and caches the local device fingerprint.
type Provider struct {
	dir string
	log *zap.Logger

	once sync.Once
	fp   string
}

// NewProvider constructs a Provider storing identity material under dir.
func NewProvider(dir string, log *zap.Logger) *Provider {
	return &Provider{dir: dir, log: log}
}

// Fingerprint returns the device fingerprint, computing it on first call.
// The fingerprint is the base32 multibase encoding of the SHA-256 of the
// persistent device certificate.
func (p *Provider) Fingerprint() string {
	p.once.Do(func() {
		cert, err := devicecert.LoadOrCreate(p.dir)
		if err != nil {
			p.log.Warn("device identity unavailable, using session fingerprint", zap.Error(err))
			p.fp = sessionFingerprint()
			return
		}
		sum := sha256.Sum256(cert.Raw)
		encoded, err := multibase.Encode(multibase.Base32, sum[:])
		if err != nil {
			p.log.Warn("encode fingerprint failed, using session fingerprint", zap.Error(err))
			p.fp = sessionFingerprint()
			return
		}
		p.fp = encoded
	})
	return p.fp
}

// sessionFingerprint is the fallback identity: unique per process, tied
// loosely to the host.
func sessionFingerprint() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return host + "-" + uuid.NewString()
}
