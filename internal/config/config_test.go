package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	rt := NewDefault()

	require.NotEmpty(t, rt.Dir)
	assert.Equal(t, "clcache", filepath.Base(rt.Dir))
	assert.Empty(t, rt.Compiler)
	assert.False(t, rt.Disabled)
	assert.False(t, rt.Verbose)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLCACHE_DIR", "/build/cache")
	t.Setenv("CLCACHE_CL", `C:\tools\cl.exe`)
	t.Setenv("CLCACHE_LOG", "1")

	rt, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/build/cache", rt.Dir)
	assert.Equal(t, `C:\tools\cl.exe`, rt.Compiler)
	assert.True(t, rt.Verbose)
	assert.False(t, rt.Disabled)
}

func TestLoadDisableIsPresenceBased(t *testing.T) {
	// The switch counts as set even with an empty value.
	t.Setenv("CLCACHE_DISABLE", "")

	rt, err := Load()
	require.NoError(t, err)
	assert.True(t, rt.Disabled)
}
