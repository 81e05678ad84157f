package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateReferenceNumber produces a human-facing order identifier in the
// form ORD-YYYYMMDD-XXXXXXXX. The suffix is 4 random bytes, so uniqueness
// is enforced by the database index, not by this function.
func GenerateReferenceNumber() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(suffix)),
	), nil
}
