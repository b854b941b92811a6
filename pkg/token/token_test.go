package token_test

import (
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/recipebook/pkg/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTMaker_ShortSecret(t *testing.T) {
	_, err := token.NewJWTMaker("too-short")
	require.Error(t, err)
}

func TestJWTMaker_RoundTrip(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	accessToken, payload, err := maker.CreateToken("chef", time.Minute, map[string]any{
		"role": "USER",
	})
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotNil(t, payload)

	verified, err := maker.VerifyToken(accessToken)
	require.NoError(t, err)

	assert.Equal(t, "chef", verified.Subject)
	assert.Equal(t, "USER", verified.CustomClaims["role"])
	assert.Equal(t, payload.ID, verified.ID)
}

func TestJWTMaker_ExpiredToken(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	accessToken, _, err := maker.CreateToken("chef", -time.Minute, nil)
	require.NoError(t, err)

	_, err = maker.VerifyToken(accessToken)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, token.CodeExpiredToken))
}

func TestJWTMaker_WrongSecret(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	other, err := token.NewJWTMaker("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	accessToken, _, err := maker.CreateToken("chef", time.Minute, nil)
	require.NoError(t, err)

	_, err = other.VerifyToken(accessToken)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, token.CodeInvalidToken))
}

func TestJWTMaker_GarbageToken(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	_, err = maker.VerifyToken("not.a.jwt")
	require.Error(t, err)
}

func TestNewOpaqueToken(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		tok := token.NewOpaqueToken()
		require.NotEmpty(t, tok)
		assert.False(t, seen[tok], "opaque tokens must not repeat")
		seen[tok] = true
	}
}
