package quote

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short keyed hash of an email address so a lead can be
// followed through the logs without writing the address itself.
func Fingerprint(secret []byte, email string) string {
	key := blake2b.Sum256(secret)
	h, err := blake2b.New256(key[:])
	if err != nil {
		return ""
	}
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
