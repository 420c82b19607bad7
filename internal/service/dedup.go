package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeContentHash returns the hex-encoded SHA-256 digest of raw document
// content, used to detect byte-identical re-uploads.
func ComputeContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
