package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAbsentFileReturnsZeroValue(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	contents := "listen_addr: 0.0.0.0:9090\nuse_ve: true\nmax_call_depth: 500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datacode.yaml"), []byte(contents), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, Config{ListenAddr: "0.0.0.0:9090", UseVE: true, MaxCallDepth: 500}, cfg)
}
