package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")
	id := uuid.New()

	token, err := v.Mint(id, time.Hour)
	require.NoError(t, err)

	got, err := v.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a").Mint(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("secret-b").UserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Mint(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = v.UserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewVerifier("test-secret").UserID("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
