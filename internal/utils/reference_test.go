package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferenceNumber_Format(t *testing.T) {
	ref, err := GenerateReferenceNumber()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), ref)
}

func TestGenerateReferenceNumber_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := GenerateReferenceNumber()
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
