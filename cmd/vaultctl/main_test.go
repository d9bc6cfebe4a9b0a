package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MissingCommand(t *testing.T) {
	err := run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "frobnicate"`)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CREDVAULT_MASTER_KEY", "")

	err := run([]string{"vendors"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
