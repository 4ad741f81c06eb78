package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^USR-[A-Z0-9]{6}$`)

	for i := 0; i < 50; i++ {
		code, err := GenerateReferralCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateReferralCodeUniqueEnough(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateReferralCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// Collisions over 100 draws from a 36^6 space would indicate broken
	// randomness.
	assert.Greater(t, len(seen), 95)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret-passphrase"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateQRCode(t *testing.T) {
	png, err := GenerateQRCode("voucher-code-123", 256)
	require.NoError(t, err)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
