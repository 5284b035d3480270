package domain

import (
	"fmt"
	"strings"
)

const (
	unreleasedHeading = "## [Unreleased]"
	changedSubheading = "### Changed"
	h2Prefix          = "## ["
	bulletPrefix      = "- "
)

// ChangelogEntry renders the Keep-a-Changelog bullet line for one computed
// requirement update.
func ChangelogEntry(name, oldRequirement, newRequirement string) string {
	if oldRequirement == "" {
		return fmt.Sprintf("- changed the dependency `%s` to `%s`", name, newRequirement)
	}
	return fmt.Sprintf(
		"- changed the dependency `%s` from `%s` to `%s`",
		name, oldRequirement, newRequirement,
	)
}

// InsertChangelogEntries inserts bullet entries into the "## [Unreleased]" /
// "### Changed" section of a Keep-a-Changelog formatted string.
//
// Behaviour:
//   - If "## [Unreleased]" is missing, the content is returned unchanged.
//   - If "### Changed" already exists under Unreleased, the entries are
//     appended after the last bullet line in that subsection.
//   - If "### Changed" does not exist, a new subsection is created right
//     after the "## [Unreleased]" line.
func InsertChangelogEntries(content string, entries []string) string {
	if len(entries) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")

	unreleasedIdx := findHeadingIndex(lines, unreleasedHeading, 0, len(lines))
	if unreleasedIdx < 0 {
		return content // no Unreleased section
	}

	// The Unreleased section ends at the next ## [ heading or EOF.
	sectionEnd := findNextH2Index(lines, unreleasedIdx)

	changedIdx := findHeadingIndex(lines, changedSubheading, unreleasedIdx+1, sectionEnd)
	if changedIdx >= 0 {
		insertAfter := findLastBullet(lines, changedIdx, sectionEnd)
		lines = insertLines(lines, insertAfter+1, entries)
	} else {
		block := []string{"", changedSubheading, ""}
		block = append(block, entries...)
		lines = insertLines(lines, unreleasedIdx+1, block)
	}

	return strings.Join(lines, "\n")
}

// findHeadingIndex returns the index of the line equal to heading within
// [start, end), or -1.
func findHeadingIndex(lines []string, heading string, start, end int) int {
	for i := start; i < end; i++ {
		if strings.TrimSpace(lines[i]) == heading {
			return i
		}
	}
	return -1
}

// findNextH2Index returns the line index of the next "## [" heading after
// startIdx, or len(lines) if there is none.
func findNextH2Index(lines []string, startIdx int) int {
	for i := startIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), h2Prefix) {
			return i
		}
	}
	return len(lines)
}

// findLastBullet returns the index of the last bullet line in the
// ### Changed subsection, starting from changedIdx.
func findLastBullet(lines []string, changedIdx, endIdx int) int {
	insertAfter := changedIdx
	for i := changedIdx + 1; i < endIdx; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue // skip blank lines between bullets
		}
		if strings.HasPrefix(trimmed, bulletPrefix) {
			insertAfter = i
			continue
		}
		// Hit a different subsection heading or non-bullet content.
		break
	}
	return insertAfter
}

// insertLines inserts extra lines into slice at the given index.
func insertLines(lines []string, at int, extra []string) []string {
	result := make([]string, 0, len(lines)+len(extra))
	result = append(result, lines[:at]...)
	result = append(result, extra...)
	result = append(result, lines[at:]...)
	return result
}
