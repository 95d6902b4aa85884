package util

import (
	"crypto/sha256"
	"encoding/hex"
)

const userKeyDomain = "gdpr-export-user:"

// HashUserKey maps a user id to the opaque 64-char hex segment used in
// published archive keys, so bucket listings do not reveal account ids.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userKeyDomain + userID))
	return hex.EncodeToString(sum[:])
}
