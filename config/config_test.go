package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/requpdate/config"
	"github.com/rios0rios0/requpdate/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requpdate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	// NOTE: cannot use t.Parallel() here because a subtest uses t.Setenv()

	t.Run("should load managers, targets and ignore patterns", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfigFile(t, `
managers:
  npm:
    enabled: true
    strategy: bump_versions
  terraform:
    enabled: false
targets:
  lodash:
    version: 4.17.21
  react:
    candidates: ["18.2.0", "18.3.1"]
ignore:
  - "internal-*"
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, domain.BumpVersions, cfg.Strategy("npm"))
		assert.True(t, cfg.Enabled("npm"))
		assert.False(t, cfg.Enabled("terraform"))
		assert.Equal(t, map[string]string{"lodash": "4.17.21"}, cfg.PinnedTargets())
		assert.Equal(t, map[string][]string{"react": {"18.2.0", "18.3.1"}}, cfg.CandidateVersions())
		assert.Equal(t, []string{"internal-*"}, cfg.Ignore)
	})

	t.Run("should reject an unknown strategy", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfigFile(t, `
managers:
  npm:
    enabled: true
    strategy: widen_ranges
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "widen_ranges")
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := config.Load("/nonexistent/requpdate.yaml")

		// then
		require.Error(t, err)
	})

	t.Run("should expand environment variables in target versions", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("TEST_TARGET_VERSION", "2.0.0")
		path := writeConfigFile(t, `
targets:
  lodash:
    version: ${TEST_TARGET_VERSION}
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", cfg.PinnedTargets()["lodash"])
	})
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	t.Run("should enable unknown managers by default", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{}

		// then
		assert.True(t, cfg.Enabled("npm"))
	})

	t.Run("should default to the lazy strategy", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{}

		// then
		assert.Equal(t, domain.BumpVersionsIfNecessary, cfg.Strategy("npm"))
	})
}

func TestExpandEnv(t *testing.T) {
	t.Run("should leave plain strings unchanged", func(t *testing.T) {
		t.Parallel()

		// when
		result := config.ExpandEnv("1.2.3")

		// then
		assert.Equal(t, "1.2.3", result)
	})

	t.Run("should replace unset variables with empty string", func(t *testing.T) {
		t.Parallel()

		// when
		result := config.ExpandEnv("${DEFINITELY_NOT_SET_VAR_12345}")

		// then
		assert.Empty(t, result)
	})
}
