// Package main prints the local device fingerprint, generating the
// persistent device identity under the data directory when none exists.
package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"log"

	"github.com/multiformats/go-multibase"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/devicecert"
)

func main() {
	var (
		dataDir string
		rotate  bool
	)
	flag.StringVar(&dataDir, "data-dir", ".violet-vault", "directory for the device identity")
	flag.BoolVar(&rotate, "rotate", false, "discard the current identity and generate a new one")
	flag.Parse()

	load := devicecert.LoadOrCreate
	if rotate {
		load = devicecert.Rotate
	}
	cert, err := load(dataDir)
	if err != nil {
		log.Fatalf("device identity: %v", err)
	}

	sum := sha256.Sum256(cert.Raw)
	encoded, err := multibase.Encode(multibase.Base32, sum[:])
	if err != nil {
		log.Fatalf("encode fingerprint: %v", err)
	}

	fmt.Printf("Device: %s\n", cert.Subject.CommonName)
	fmt.Printf("Fingerprint: %s\n", encoded)
}
