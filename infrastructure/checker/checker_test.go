package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/requpdate/domain"
	"github.com/rios0rios0/requpdate/infrastructure/checker"
	testdoubles "github.com/rios0rios0/requpdate/test"
)

func TestSemverChecker_TargetVersion(t *testing.T) {
	t.Parallel()

	t.Run("should pick the highest candidate newer than the current version", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewSemver()
		dep := domain.Dependency{Name: "express", Version: "4.18.2"}

		// when
		target, ok := c.TargetVersion(dep, []string{"4.17.0", "4.19.1", "5.0.0", "4.18.3"})

		// then
		require.True(t, ok)
		assert.Equal(t, "5.0.0", target)
	})

	t.Run("should report no target when every candidate is older or equal", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewSemver()
		dep := domain.Dependency{Name: "express", Version: "4.18.2"}

		// when
		_, ok := c.TargetVersion(dep, []string{"4.18.2", "4.17.0"})

		// then
		assert.False(t, ok)
	})

	t.Run("should skip pre-release candidates for stable versions", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewSemver()
		dep := domain.Dependency{Name: "express", Version: "4.18.2"}

		// when
		target, ok := c.TargetVersion(dep, []string{"5.0.0-beta.1", "4.19.0"})

		// then
		require.True(t, ok)
		assert.Equal(t, "4.19.0", target)
	})

	t.Run("should allow pre-release candidates when the current version is one", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewSemver()
		dep := domain.Dependency{Name: "express", Version: "5.0.0-alpha.2"}

		// when
		target, ok := c.TargetVersion(dep, []string{"5.0.0-beta.1"})

		// then
		require.True(t, ok)
		assert.Equal(t, "5.0.0-beta.1", target)
	})

	t.Run("should skip candidates that do not parse", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewSemver()
		dep := domain.Dependency{Name: "express", Version: "1.0.0"}

		// when
		target, ok := c.TargetVersion(dep, []string{"not-a-version", "1.1.0"})

		// then
		require.True(t, ok)
		assert.Equal(t, "1.1.0", target)
	})

	t.Run("should pick the highest candidate when the current version is unknown", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewSemver()
		dep := domain.Dependency{Name: "express"}

		// when
		target, ok := c.TargetVersion(dep, []string{"1.2.0", "2.0.0"})

		// then
		require.True(t, ok)
		assert.Equal(t, "2.0.0", target)
	})
}

func TestStaticChecker_TargetVersion(t *testing.T) {
	t.Parallel()

	t.Run("should serve pinned targets before the fallback", func(t *testing.T) {
		t.Parallel()

		// given
		fallback := &testdoubles.SpyChecker{Targets: map[string]string{"express": "9.9.9"}}
		c := checker.NewStatic(map[string]string{"express": "5.0.0"}, fallback)

		// when
		target, ok := c.TargetVersion(domain.Dependency{Name: "express"}, nil)

		// then
		require.True(t, ok)
		assert.Equal(t, "5.0.0", target)
		assert.Empty(t, fallback.CheckedDeps)
	})

	t.Run("should delegate unmapped names to the fallback", func(t *testing.T) {
		t.Parallel()

		// given
		fallback := &testdoubles.SpyChecker{Targets: map[string]string{"lodash": "4.17.21"}}
		c := checker.NewStatic(map[string]string{"express": "5.0.0"}, fallback)

		// when
		target, ok := c.TargetVersion(domain.Dependency{Name: "lodash"}, nil)

		// then
		require.True(t, ok)
		assert.Equal(t, "4.17.21", target)
		assert.Equal(t, []string{"lodash"}, fallback.CheckedDeps)
	})

	t.Run("should report no target without a fallback", func(t *testing.T) {
		t.Parallel()

		// given
		c := checker.NewStatic(nil, nil)

		// when
		_, ok := c.TargetVersion(domain.Dependency{Name: "lodash"}, nil)

		// then
		assert.False(t, ok)
	})
}
