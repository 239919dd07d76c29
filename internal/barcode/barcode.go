// Package barcode generates check-in tokens and encodes the receipt payload
// scanned at check-out: the literal prefix "TRX", the transaction id padded
// to six digits and the token, with no separator.
package barcode

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

const (
	// Prefix starts every payload.
	Prefix = "TRX"

	tokenBytes = 16
	// TokenLength is the length of a token in hex characters.
	TokenLength = tokenBytes * 2
)

// NewToken returns a random hex token. It only makes barcodes unguessable;
// it is not a credential.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Format renders the payload for a transaction.
func Format(transactionID int64, token string) string {
	return fmt.Sprintf("%s%06d%s", Prefix, transactionID, token)
}

// Parse splits a payload into transaction id and token. The token has a
// fixed length and is taken from the end, so ids wider than six digits
// still parse.
func Parse(payload string) (int64, string, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, Prefix) {
		return 0, "", fmt.Errorf("%w: missing %s prefix", model.ErrInvalidBarcode, Prefix)
	}
	rest := payload[len(Prefix):]
	if len(rest) < 6+TokenLength {
		return 0, "", fmt.Errorf("%w: payload too short", model.ErrInvalidBarcode)
	}

	digits, token := rest[:len(rest)-TokenLength], rest[len(rest)-TokenLength:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, "", fmt.Errorf("%w: transaction id is not numeric", model.ErrInvalidBarcode)
		}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("%w: bad transaction id", model.ErrInvalidBarcode)
	}
	return id, token, nil
}

// TokenMatches compares tokens in constant time.
func TokenMatches(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
