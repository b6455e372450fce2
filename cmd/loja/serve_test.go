package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSecret(t *testing.T) {
	got, err := sessionSecret("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), got)

	a, err := sessionSecret("")
	require.NoError(t, err)
	b, err := sessionSecret("")
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
