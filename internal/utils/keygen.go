package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateReference builds a human-readable reference number.
// Format: PREFIX-YYYYMMDD-XXXXXX
// Example: MR-20260118-4F9A2C
func GenerateReference(prefix string, now time.Time) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), strings.ToUpper(hex.EncodeToString(b))), nil
}

// GenerateMaterialRequestReference generates an order reference: MR-xxx
func GenerateMaterialRequestReference() (string, error) {
	return GenerateReference("MR", time.Now())
}
