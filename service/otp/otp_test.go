package otp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	g := New()
	for i := 0; i < 500; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, code, Length)
		require.True(t, Valid(code), code)
	}
}

func TestGenerate_Varies(t *testing.T) {
	g := New()
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	require.Greater(t, len(seen), 150)
}

func TestValid(t *testing.T) {
	require.True(t, Valid("000000"))
	require.True(t, Valid("999999"))
	require.False(t, Valid("12345"))
	require.False(t, Valid("1234567"))
	require.False(t, Valid("12a456"))
	require.False(t, Valid(""))
}
