package main

import (
	"testing"

	"github.com/pevans/medharvest/config"
	"github.com/pevans/medharvest/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSetup(t *testing.T) (*config.Config, *tags.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.Registry = t.TempDir() + "/registry.db"

	registry, err := tags.NewStore(cfg.Registry)
	require.NoError(t, err)
	t.Cleanup(func() { registry.Close() })

	return cfg, registry
}

func TestResolveTags_flagWins(t *testing.T) {
	cfg, registry := testSetup(t)

	_, err := registry.CreateTag("registered-tag")
	require.NoError(t, err)

	names, err := resolveTags(cfg, registry, "golang, ux-design, ")
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "ux-design"}, names)
}

func TestResolveTags_enabledRegistryTags(t *testing.T) {
	cfg, registry := testSetup(t)

	_, err := registry.CreateTag("enabled-tag")
	require.NoError(t, err)
	_, err = registry.CreateTag("disabled-tag")
	require.NoError(t, err)
	require.NoError(t, registry.SetEnabled("disabled-tag", false))

	names, err := resolveTags(cfg, registry, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"enabled-tag"}, names)
}

func TestResolveTags_fallsBackToConfig(t *testing.T) {
	cfg, registry := testSetup(t)

	names, err := resolveTags(cfg, registry, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.Tags, names, "an empty registry falls back to configured tags")
}

func TestResolveTags_nothingConfigured(t *testing.T) {
	cfg, registry := testSetup(t)
	cfg.Tags = nil

	_, err := resolveTags(cfg, registry, "")
	assert.Error(t, err)
}

func TestResolveTags_junkFlagValue(t *testing.T) {
	cfg, registry := testSetup(t)

	_, err := resolveTags(cfg, registry, " , ,")
	assert.Error(t, err)
}
