package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/requpdate/domain"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantErr    bool
		segments   []int
		prerelease bool
	}{
		{
			name:     "should parse a plain three-segment version",
			input:    "1.2.3",
			segments: []int{1, 2, 3},
		},
		{
			name:     "should parse a two-segment version",
			input:    "1.2",
			segments: []int{1, 2},
		},
		{
			name:     "should tolerate a leading v prefix",
			input:    "v2.0.1",
			segments: []int{2, 0, 1},
		},
		{
			name:       "should parse a pre-release suffix",
			input:      "1.2.3-beta.1",
			segments:   []int{1, 2, 3},
			prerelease: true,
		},
		{
			name:     "should ignore build metadata",
			input:    "1.2.3+build.5",
			segments: []int{1, 2, 3},
		},
		{
			name:    "should reject an empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "should reject non-numeric segments",
			input:   "1.two.3",
			wantErr: true,
		},
		{
			name:    "should reject a bare suffix",
			input:   "-alpha",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			v, err := domain.ParseVersion(tt.input)

			// then
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.segments, v.Segments())
			assert.Equal(t, tt.prerelease, v.Prerelease())
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "should order by major segment", a: "2.0.0", b: "1.9.9", expected: 1},
		{name: "should order by minor segment", a: "1.2.0", b: "1.10.0", expected: -1},
		{name: "should treat missing trailing segments as zero", a: "1.2", b: "1.2.0", expected: 0},
		{name: "should sort a pre-release before its release", a: "1.2.3-rc.1", b: "1.2.3", expected: -1},
		{name: "should order pre-release identifiers numerically", a: "1.0.0-rc.2", b: "1.0.0-rc.10", expected: -1},
		{name: "should rank numeric identifiers before alphanumeric", a: "1.0.0-1", b: "1.0.0-alpha", expected: -1},
		{name: "should treat equal versions as equal", a: "1.2.3", b: "1.2.3", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			a := domain.MustParseVersion(tt.a)
			b := domain.MustParseVersion(tt.b)

			// when
			result := a.Compare(b)

			// then
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, -tt.expected, b.Compare(a))
		})
	}
}

func TestVersion_Release(t *testing.T) {
	t.Parallel()

	t.Run("should strip the pre-release suffix", func(t *testing.T) {
		t.Parallel()

		// given
		v := domain.MustParseVersion("1.2.3-beta.2")

		// when
		release := v.Release()

		// then
		assert.False(t, release.Prerelease())
		assert.Equal(t, "1.2.3", release.String())
	})

	t.Run("should return a release version unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		v := domain.MustParseVersion("1.2.3")

		// when
		release := v.Release()

		// then
		assert.Equal(t, "1.2.3", release.String())
	})
}

func TestVersion_SegmentAt(t *testing.T) {
	t.Parallel()

	t.Run("should pad missing segments with zero", func(t *testing.T) {
		t.Parallel()

		// given
		v := domain.MustParseVersion("2.3")

		// then
		assert.Equal(t, 2, v.SegmentAt(0))
		assert.Equal(t, 3, v.SegmentAt(1))
		assert.Equal(t, 0, v.SegmentAt(2))
		assert.Equal(t, 2, v.NumSegments())
	})
}
