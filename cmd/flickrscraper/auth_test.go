package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLinePipedKeyWithoutSecret(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("KEY\n"))

	key, err := readLine(reader)
	require.NoError(t, err)
	assert.Equal(t, "KEY", key)

	secret, err := readLine(reader)
	require.NoError(t, err)
	assert.Empty(t, secret)
}

func TestReadLineWithoutTrailingNewline(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  KEY  "))

	key, err := readLine(reader)
	require.NoError(t, err)
	assert.Equal(t, "KEY", key)
}
