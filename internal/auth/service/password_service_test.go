package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	ps := NewPasswordService(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"empty password", ""},
		{"unicode password", "pässwörd-日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := ps.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)

			assert.True(t, ps.Verify(tt.password, hash))
			assert.False(t, ps.Verify(tt.password+"x", hash))
		})
	}
}

func TestPasswordService_HashesAreSalted(t *testing.T) {
	ps := NewPasswordService(bcrypt.MinCost)

	first, err := ps.Hash("password123")
	require.NoError(t, err)
	second, err := ps.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, ps.Verify("password123", first))
	assert.True(t, ps.Verify("password123", second))
}

func TestPasswordService_MalformedHash(t *testing.T) {
	ps := NewPasswordService(bcrypt.MinCost)

	// A broken stored hash must read as a mismatch, not blow up.
	assert.False(t, ps.Verify("password123", "not-a-bcrypt-hash"))
	assert.False(t, ps.Verify("password123", ""))
}

func TestNewPasswordService_ClampsWorkFactor(t *testing.T) {
	ps := NewPasswordService(9999)
	assert.Equal(t, bcrypt.DefaultCost, ps.workFactor)

	ps = NewPasswordService(-1)
	assert.Equal(t, bcrypt.DefaultCost, ps.workFactor)

	ps = NewPasswordService(10)
	assert.Equal(t, 10, ps.workFactor)
}
