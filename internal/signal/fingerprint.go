package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"orbitwatch/internal/models"
)

// Fingerprint keys one occurrence: type, object and UTC calendar day.
func Fingerprint(t models.SignalType, objectID string, at time.Time) string {
	sum := sha256.Sum256([]byte(string(t) + "|" + objectID + "|" + at.UTC().Format("2006-01-02")))
	return hex.EncodeToString(sum[:])
}
