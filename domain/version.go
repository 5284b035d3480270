package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a string cannot be parsed as a version.
var ErrInvalidVersion = errors.New("invalid version")

// Version is an immutable, ordered version identifier: dot-separated numeric
// segments plus an optional pre-release suffix (e.g. "1.2.3-beta.1").
type Version struct {
	segments   []int
	prerelease string
	raw        string
}

// ParseVersion parses a version string. A leading "v" is tolerated, the
// numeric part must be dot-separated integers, and everything after the first
// "-" is treated as the pre-release suffix.
func ParseVersion(value string) (Version, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrInvalidVersion)
	}

	numeric := strings.TrimPrefix(raw, "v")
	prerelease := ""
	if idx := strings.IndexAny(numeric, "-+"); idx >= 0 {
		if numeric[idx] == '-' {
			prerelease = numeric[idx+1:]
		}
		numeric = numeric[:idx]
	}
	if numeric == "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, value)
	}

	parts := strings.Split(numeric, ".")
	segments := make([]int, 0, len(parts))
	for _, part := range parts {
		seg, err := strconv.Atoi(part)
		if err != nil || seg < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, value)
		}
		segments = append(segments, seg)
	}

	return Version{segments: segments, prerelease: prerelease, raw: raw}, nil
}

// MustParseVersion is ParseVersion for statically known inputs; it panics on
// parse failure.
func MustParseVersion(value string) Version {
	v, err := ParseVersion(value)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 if a sorts before, equal to, or after b.
// Segments compare positionally as integers with missing trailing segments
// treated as zero; a pre-release sorts before the same numeric version
// without one.
func (v Version) Compare(other Version) int {
	maxLen := len(v.segments)
	if len(other.segments) > maxLen {
		maxLen = len(other.segments)
	}
	for i := 0; i < maxLen; i++ {
		a, b := v.SegmentAt(i), other.SegmentAt(i)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return comparePrerelease(v.prerelease, other.prerelease)
}

// Prerelease reports whether the version carries a pre-release suffix.
func (v Version) Prerelease() bool {
	return v.prerelease != ""
}

// Release returns the version with any pre-release suffix stripped.
func (v Version) Release() Version {
	if v.prerelease == "" {
		return v
	}
	parts := make([]string, len(v.segments))
	for i, seg := range v.segments {
		parts[i] = strconv.Itoa(seg)
	}
	return Version{segments: v.segments, raw: strings.Join(parts, ".")}
}

// Segments returns a copy of the numeric segments.
func (v Version) Segments() []int {
	out := make([]int, len(v.segments))
	copy(out, v.segments)
	return out
}

// SegmentAt returns the numeric segment at the given index, or zero when the
// version has fewer segments.
func (v Version) SegmentAt(i int) int {
	if i < 0 || i >= len(v.segments) {
		return 0
	}
	return v.segments[i]
}

// NumSegments returns how many segments were written out in the original
// string (so "1.2" reports 2 even though it compares equal to "1.2.0").
func (v Version) NumSegments() int {
	return len(v.segments)
}

// String returns the version as originally written.
func (v Version) String() string {
	return v.raw
}

// comparePrerelease orders pre-release suffixes: absence of a suffix sorts
// after any suffix, and suffixes compare identifier-wise on "." with numeric
// identifiers compared as integers and ranked before alphanumeric ones.
func comparePrerelease(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	aIDs := strings.Split(a, ".")
	bIDs := strings.Split(b, ".")
	for i := 0; i < len(aIDs) && i < len(bIDs); i++ {
		if c := comparePrereleaseID(aIDs[i], bIDs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(aIDs) < len(bIDs):
		return -1
	case len(aIDs) > len(bIDs):
		return 1
	}
	return 0
}

func comparePrereleaseID(a, b string) int {
	aNum, aErr := strconv.Atoi(a)
	bNum, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		}
		return 0
	case aErr == nil:
		return -1 // numeric identifiers rank before alphanumeric ones
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}
