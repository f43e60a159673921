package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--cost", "4", "password123", "another-secret"}, &out))

	hashes := strings.Fields(out.String())
	require.Len(t, hashes, 2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashes[0]), []byte("password123")))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashes[1]), []byte("another-secret")))

	cost, err := bcrypt.Cost([]byte(hashes[0]))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, run(nil, &out), "usage")
	assert.ErrorContains(t, run([]string{"--cost", "2", "password123"}, &out), "cost must be between")
	assert.Error(t, run([]string{"short"}, &out))
	assert.Empty(t, out.String())
}
