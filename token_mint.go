package landmark

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// oneTimeTokenBytes is the entropy of minted one-time tokens.
const oneTimeTokenBytes = 32

// OneTimeToken is a minted out-of-band credential. Plaintext goes to the
// user (email link), only Hash and ExpiresAt are persisted.
type OneTimeToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// MintOneTimeToken creates a random single-use token with the given lifetime.
func MintOneTimeToken(ttl time.Duration) (OneTimeToken, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return OneTimeToken{}, errors.Wrap(err, errors.CategoryInternal, "failed to mint one-time token")
	}

	plaintext := hex.EncodeToString(buf)

	return OneTimeToken{
		Plaintext: plaintext,
		Hash:      HashOneTimeToken(plaintext),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashOneTimeToken is the one-way form a one-time token is stored under.
// Verification hashes the incoming plaintext and compares against the
// stored value; the plaintext itself is never persisted.
func HashOneTimeToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
