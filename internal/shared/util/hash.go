package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPrompt returns the hex sha256 of a prompt, used to correlate attempts in logs.
func HashPrompt(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte("\n\n"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
