package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dcps"
)

func TestDomainIDs(t *testing.T) {
	ids, err := domainIDs([]uint{3, 1, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, []dcps.DomainID{0, 1, 3}, ids)

	_, err = domainIDs(nil)
	assert.Error(t, err)

	_, err = domainIDs([]uint{uint(dcps.MaxDomainID) + 1})
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-d", "1,2", "--domain", "7", "--auto-enable=false"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 7}, o.domains)
	assert.True(t, o.autoEnableSet)
	assert.False(t, o.autoEnable)
	assert.Len(t, o.factoryOptions(), 1)

	o, err = parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []uint{0}, o.domains)
	assert.False(t, o.autoEnableSet)
	assert.Empty(t, o.factoryOptions())
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-d", "4,5", "--entity-name", "ctl"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "domain-4")
	assert.Contains(t, out.String(), "domain-5")
	assert.Contains(t, out.String(), "enabled=true")
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dcps.toml")
	require.NoError(t, os.WriteFile(path, []byte("[factory]\nauto_enable = false\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-c", path, "-d", "9"}, &out))
	assert.Contains(t, out.String(), "enabled=false")
}

func TestRun_Failures(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), []string{"-d", "999"}, &out))
	assert.Error(t, run(context.Background(), []string{"-c", "/nonexistent/dcps.toml"}, &out))
	assert.Error(t, run(context.Background(), []string{"--bogus"}, &out))
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--version"}, &out))
	assert.Contains(t, out.String(), dcps.Version)
}
