package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := NewJWTValidator("test-secret", "lineage")

	token, err := v.Issue("user-42", time.Minute)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())
}

func TestJWTValidator_RejectsEmptyToken(t *testing.T) {
	v := NewJWTValidator("test-secret", "")

	_, err := v.Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestJWTValidator_RejectsGarbage(t *testing.T) {
	v := NewJWTValidator("test-secret", "")

	_, err := v.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTValidator("secret-a", "")
	verifier := NewJWTValidator("secret-b", "")

	token, err := issuer.Issue("user-1", time.Minute)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_RejectsExpiredToken(t *testing.T) {
	v := NewJWTValidator("test-secret", "")

	token, err := v.Issue("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_RejectsWrongIssuer(t *testing.T) {
	minted := NewJWTValidator("test-secret", "someone-else")
	v := NewJWTValidator("test-secret", "lineage")

	token, err := minted.Issue("user-1", time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
