package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UpdateStrategy controls whether already-satisfied constraints are left
// untouched or always rewritten.
type UpdateStrategy string

const (
	// BumpVersions always recomputes the requirement string, even when the
	// target version already satisfies it.
	BumpVersions UpdateStrategy = "bump_versions"
	// BumpVersionsIfNecessary leaves the requirement text untouched when the
	// target version already satisfies every clause.
	BumpVersionsIfNecessary UpdateStrategy = "bump_versions_if_necessary"
)

// ErrUnknownUpdateStrategy is returned by NewRequirementsUpdater when the
// strategy is not one of the allowed values. It signals an integration
// error, not a version-resolution failure.
var ErrUnknownUpdateStrategy = errors.New("unknown update strategy")

// MalformedDeclarationError reports a shape-invalid requirement declaration:
// an upstream parser defect, fatal and never retried.
type MalformedDeclarationError struct {
	Index  int
	Reason string
}

func (e *MalformedDeclarationError) Error() string {
	return fmt.Sprintf("malformed requirement declaration at index %d: %s", e.Index, e.Reason)
}

// UpdateOutcome is the result for one input declaration. Unfixable is an
// ordinary outcome, not an error: no textual rewrite of the constraint can
// both preserve its intent and admit the target version, and the caller
// decides whether to skip or report the dependency.
type UpdateOutcome struct {
	Declaration RequirementDecl
	Unfixable   bool
}

// RequirementsUpdater computes updated requirement strings for one
// dependency's declarations. It holds no mutable state beyond its
// constructor arguments, so independent instances are safe to run in
// parallel.
type RequirementsUpdater struct {
	requirements  []RequirementDecl
	updatedSource *Source
	strategy      UpdateStrategy
	target        *Version // nil degrades to a source-only restamp
}

// NewRequirementsUpdater validates the strategy and resolves the target
// version. An absent or unparseable target is a deliberate leniency: the
// updater becomes a no-op that only rewrites the source field.
func NewRequirementsUpdater(
	requirements []RequirementDecl,
	updatedSource *Source,
	strategy UpdateStrategy,
	targetVersion string,
) (*RequirementsUpdater, error) {
	if strategy != BumpVersions && strategy != BumpVersionsIfNecessary {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUpdateStrategy, strategy)
	}

	var target *Version
	if targetVersion != "" {
		if v, err := ParseVersion(targetVersion); err == nil {
			target = &v
		}
	}

	return &RequirementsUpdater{
		requirements:  requirements,
		updatedSource: updatedSource,
		strategy:      strategy,
		target:        target,
	}, nil
}

// UpdatedRequirements produces one outcome per input declaration, preserving
// position. Each outcome carries the declaration with its requirement and
// source fields updated, or the unfixable marker.
func (u *RequirementsUpdater) UpdatedRequirements() ([]UpdateOutcome, error) {
	outcomes := make([]UpdateOutcome, 0, len(u.requirements))
	for i, decl := range u.requirements {
		if err := validateDeclaration(i, decl); err != nil {
			return nil, err
		}

		updated := decl
		updated.Source = u.updatedSource.Clone()

		if u.target == nil || decl.Requirement == "" {
			outcomes = append(outcomes, UpdateOutcome{Declaration: updated})
			continue
		}

		if u.strategy == BumpVersionsIfNecessary && u.alreadySatisfied(decl.Requirement) {
			outcomes = append(outcomes, UpdateOutcome{Declaration: updated})
			continue
		}

		newRequirement, unfixable := u.updatedRequirementString(decl.Requirement)
		if unfixable {
			outcomes = append(outcomes, UpdateOutcome{Declaration: updated, Unfixable: true})
			continue
		}
		updated.Requirement = newRequirement
		outcomes = append(outcomes, UpdateOutcome{Declaration: updated})
	}
	return outcomes, nil
}

func validateDeclaration(index int, decl RequirementDecl) error {
	if decl.File == "" {
		return &MalformedDeclarationError{Index: index, Reason: "missing file"}
	}
	if decl.Source != nil && decl.Source.Type == "" {
		return &MalformedDeclarationError{Index: index, Reason: "source without type"}
	}
	return nil
}

// alreadySatisfied is the lazy path: true when the target version meets
// every clause of the existing requirement, in which case the text is left
// untouched to avoid churn.
func (u *RequirementsUpdater) alreadySatisfied(requirement string) bool {
	parsed, err := ParseRequirement(requirement)
	if err != nil {
		return false
	}
	return parsed.SatisfiedBy(*u.target)
}

// updatedRequirementString recomputes one requirement string. An exact pin
// always wins and collapses the result to the updated pin alone; a changed
// short-form rewrite dominates next; otherwise each range clause is repaired
// individually and the clauses are rejoined.
func (u *RequirementsUpdater) updatedRequirementString(requirement string) (string, bool) {
	clauses := splitClauses(requirement)

	for _, c := range clauses {
		if isExactClauseString(c) {
			return substituteVersion(c, *u.target), false
		}
	}

	for _, c := range clauses {
		if !isShortFormClauseString(c) {
			continue
		}
		if rewritten := substituteVersion(c, *u.target); rewritten != c {
			return rewritten, false
		}
	}

	return u.updateRangeClauses(clauses)
}

// updateRangeClauses checks each comparison clause individually: satisfied
// clauses stay untouched, a violated lower bound makes the whole requirement
// unfixable, and a violated upper bound has its version literal replaced by
// the smallest bound that exceeds the target at the bound's precision.
func (u *RequirementsUpdater) updateRangeClauses(clauses []string) (string, bool) {
	out := make([]string, len(clauses))
	for i, text := range clauses {
		out[i] = text
		if !isRangeClauseString(text) {
			continue
		}

		parsed, err := parseClause(text)
		if err != nil {
			continue
		}
		if parsed.satisfiedBy(*u.target) {
			continue
		}
		if parsed.op == ">" || parsed.op == ">=" {
			// Loosening a lower bound cannot be expressed as a minimal rewrite.
			return "", true
		}

		bound := greatestBound(parsed.version, *u.target)
		out[i] = replaceVersionToken(text, bound)
	}

	joined := strings.Join(out, ", ")
	if parsed, err := ParseRequirement(joined); err == nil && !parsed.SatisfiedBy(*u.target) {
		// Two simultaneously repaired bounds produced a self-contradictory
		// range; treat it as unfixable rather than emitting it.
		return "", true
	}
	return joined, false
}

// isExactClauseString reports a literal version clause: no comparison
// operator, no wildcard.
func isExactClauseString(text string) bool {
	parsed, err := parseClause(text)
	if err != nil {
		return false
	}
	return parsed.kind == clauseExact
}

// isShortFormClauseString reports a single-version-anchored clause: begins
// with a digit, "~" or "^", or contains a wildcard.
func isShortFormClauseString(text string) bool {
	if strings.Contains(text, "*") {
		return true
	}
	if text == "" {
		return false
	}
	first := text[0]
	return (first >= '0' && first <= '9') || first == '~' || first == '^'
}

// isRangeClauseString reports a comparison-operator clause.
func isRangeClauseString(text string) bool {
	return strings.ContainsAny(text, "<>")
}

// substituteVersion rewrites the version token inside a clause. A token with
// a pre-release indicator (digit followed by "-") is replaced wholesale with
// the full target version; otherwise the token is rewritten part-wise with
// the same part count, keeping literal "*" parts as "*".
func substituteVersion(text string, target Version) string {
	start, end := findVersionToken(text)
	if start < 0 {
		return text
	}
	token := text[start:end]

	if hasPrereleaseIndicator(token) {
		return text[:start] + target.String() + text[end:]
	}

	oldParts := strings.Split(token, ".")
	newParts := make([]string, len(oldParts))
	for i, part := range oldParts {
		if part == "*" {
			newParts[i] = "*"
			continue
		}
		newParts[i] = strconv.Itoa(target.SegmentAt(i))
	}
	return text[:start] + strings.Join(newParts, ".") + text[end:]
}

// replaceVersionToken swaps the version token inside a clause for the given
// replacement, leaving operators and spacing intact.
func replaceVersionToken(text, replacement string) string {
	start, end := findVersionToken(text)
	if start < 0 {
		return text
	}
	return text[:start] + replacement + text[end:]
}

// findVersionToken locates the version-number run inside a clause: the first
// maximal run starting at a digit or "*" over version characters.
func findVersionToken(text string) (int, int) {
	start := -1
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if (ch >= '0' && ch <= '9') || ch == '*' {
			start = i
			break
		}
	}
	if start < 0 {
		return -1, -1
	}

	end := start
	for end < len(text) && isVersionChar(text[end]) {
		end++
	}
	return start, end
}

func isVersionChar(ch byte) bool {
	switch {
	case ch >= '0' && ch <= '9':
		return true
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		return true
	case ch == '.' || ch == '*' || ch == '-' || ch == '+':
		return true
	}
	return false
}

// hasPrereleaseIndicator reports a digit immediately followed by "-".
func hasPrereleaseIndicator(token string) bool {
	for i := 0; i+1 < len(token); i++ {
		if token[i] >= '0' && token[i] <= '9' && token[i+1] == '-' {
			return true
		}
	}
	return false
}

// greatestBound computes the smallest version strictly greater than target
// that keeps the old bound's precision tier: segments before the old
// bound's most significant non-zero segment copy the target, that segment
// becomes the target's value plus one, and everything after is zero. A
// "< 2.0" bound violated by 2.3.1 therefore becomes "< 3.0", not "< 2.3.2".
func greatestBound(oldBound, target Version) string {
	segments := oldBound.Release().Segments()

	idx := 0
	for i, seg := range segments {
		if seg != 0 {
			idx = i
			break
		}
	}

	out := make([]int, len(segments))
	for i := 0; i < idx; i++ {
		out[i] = target.SegmentAt(i)
	}
	out[idx] = target.SegmentAt(idx) + 1

	parts := make([]string, len(out))
	for i, seg := range out {
		parts[i] = strconv.Itoa(seg)
	}
	return strings.Join(parts, ".")
}
