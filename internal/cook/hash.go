package cook

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCook     = "cooksync/cook/v1"
	DomainSnapshot = "cooksync/snapshot/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies a cook document by content. Two cooks with the same
// fingerprint produce the same sync.
func Fingerprint(data []byte) string {
	return HashWithDomain(DomainCook, data)
}

// PartKey identifies a part by its position in the cook result. It is only
// meaningful within one cook.
type PartKey struct {
	Object int
	Geo    int
	Part   int
}
