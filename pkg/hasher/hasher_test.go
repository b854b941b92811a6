package hasher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/recipebook/pkg/hasher"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, hasher.Compare("s3cret-password", hash))
	assert.False(t, hasher.Compare("wrong-password", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := hasher.Hash("same-password")
	require.NoError(t, err)

	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCompareWithGarbageHash(t *testing.T) {
	assert.False(t, hasher.Compare("anything", "not-a-bcrypt-hash"))
}
