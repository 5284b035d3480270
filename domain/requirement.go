package domain

import (
	"fmt"
	"strings"
)

// clauseKind tags the typed variants a requirement clause can take.
type clauseKind int

const (
	clauseExact      clauseKind = iota // "1.2.3" or "= 1.2.3"
	clauseWildcard                     // "1.*" or "1.*.3"
	clauseCompatible                   // "~1.2", "^1.2.3", "~> 3.0"
	clauseComparison                   // "< 2.0", ">= 1.0"
)

// clause is one comma-separated segment of a requirement string. Clauses are
// combined with AND semantics by Requirement.
type clause struct {
	kind     clauseKind
	op       string // "", "=", "~", "^", "<", "<=", ">", ">="
	raw      string // original text, trimmed
	version  Version
	wildcard []bool // per written part, true where the part was "*"
}

// Requirement is an immutable constraint over versions: one or more clauses,
// all of which must be satisfied.
type Requirement struct {
	raw     string
	clauses []clause
}

// clause operators, longest first so ">=" wins over ">".
var clauseOperators = []string{">=", "<=", "~>", ">", "<", "=", "~", "^"}

// ParseRequirement parses a constraint string, splitting compound
// constraints on "," and trimming each clause.
func ParseRequirement(value string) (Requirement, error) {
	parts := splitClauses(value)
	if len(parts) == 0 {
		return Requirement{}, fmt.Errorf("empty requirement %q", value)
	}

	clauses := make([]clause, 0, len(parts))
	for _, part := range parts {
		c, err := parseClause(part)
		if err != nil {
			return Requirement{}, err
		}
		clauses = append(clauses, c)
	}
	return Requirement{raw: strings.Join(parts, ", "), clauses: clauses}, nil
}

// SatisfiedBy reports whether the version meets every clause.
func (r Requirement) SatisfiedBy(v Version) bool {
	for _, c := range r.clauses {
		if !c.satisfiedBy(v) {
			return false
		}
	}
	return len(r.clauses) > 0
}

// Exact reports whether the requirement denotes exactly one version: a
// single clause with no comparison operator and no wildcard.
func (r Requirement) Exact() bool {
	if len(r.clauses) != 1 {
		return false
	}
	return r.clauses[0].kind == clauseExact
}

// String returns the normalized requirement text: clauses rejoined with ", ".
func (r Requirement) String() string {
	return r.raw
}

// splitClauses splits a requirement string on "," and trims each part,
// dropping empties.
func splitClauses(value string) []string {
	var parts []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func parseClause(text string) (clause, error) {
	op := ""
	rest := text
	for _, candidate := range clauseOperators {
		if strings.HasPrefix(rest, candidate) {
			op = candidate
			rest = strings.TrimSpace(rest[len(candidate):])
			break
		}
	}
	if op == "~>" {
		op = "~" // pessimistic operator, same compatible-range semantics
	}

	if strings.Contains(rest, "*") {
		if op != "" && op != "=" {
			return clause{}, fmt.Errorf("wildcard clause %q cannot carry operator %q", text, op)
		}
		return parseWildcardClause(text, rest)
	}

	version, err := ParseVersion(rest)
	if err != nil {
		return clause{}, fmt.Errorf("clause %q: %w", text, err)
	}

	kind := clauseComparison
	switch op {
	case "", "=":
		kind = clauseExact
	case "~", "^":
		kind = clauseCompatible
	}
	return clause{kind: kind, op: op, raw: text, version: version}, nil
}

// parseWildcardClause normalizes "*" parts to zero for comparison and keeps a
// mask of which parts were wildcarded.
func parseWildcardClause(text, rest string) (clause, error) {
	parts := strings.Split(rest, ".")
	normalized := make([]string, len(parts))
	mask := make([]bool, len(parts))
	for i, part := range parts {
		if part == "*" {
			normalized[i] = "0"
			mask[i] = true
			continue
		}
		normalized[i] = part
	}

	version, err := ParseVersion(strings.Join(normalized, "."))
	if err != nil {
		return clause{}, fmt.Errorf("wildcard clause %q: %w", text, err)
	}
	return clause{kind: clauseWildcard, raw: text, version: version, wildcard: mask}, nil
}

func (c clause) satisfiedBy(v Version) bool {
	switch c.kind {
	case clauseExact:
		return v.Compare(c.version) == 0
	case clauseWildcard:
		return c.wildcardMatch(v)
	case clauseCompatible:
		return c.compatibleMatch(v)
	case clauseComparison:
		return c.comparisonMatch(v)
	}
	return false
}

func (c clause) wildcardMatch(v Version) bool {
	if v.Prerelease() {
		return false
	}
	for i := range c.wildcard {
		if c.wildcard[i] {
			continue
		}
		if v.SegmentAt(i) != c.version.SegmentAt(i) {
			return false
		}
	}
	return true
}

// compatibleMatch implements "~" (bump the least significant written
// segment) and "^" (bump the most significant non-zero segment).
func (c clause) compatibleMatch(v Version) bool {
	if v.Compare(c.version) < 0 {
		return false
	}
	return v.Compare(c.upperBound()) < 0
}

// upperBound computes the exclusive upper bound of a compatible clause.
func (c clause) upperBound() Version {
	segments := c.version.Segments()

	bumpIdx := 0
	if c.op == "~" {
		bumpIdx = len(segments) - 2
		if bumpIdx < 0 {
			bumpIdx = 0
		}
	} else { // "^"
		for i, seg := range segments {
			bumpIdx = i
			if seg != 0 {
				break
			}
		}
		if segments[bumpIdx] == 0 {
			// all zero, e.g. "^0.0": only the written precision is compatible
			bumpIdx = len(segments) - 1
		}
	}

	bound := make([]int, len(segments))
	copy(bound, segments[:bumpIdx])
	bound[bumpIdx] = segments[bumpIdx] + 1
	return versionFromSegments(bound)
}

func (c clause) comparisonMatch(v Version) bool {
	cmp := v.Compare(c.version)
	switch c.op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// versionFromSegments builds a release Version from numeric segments.
func versionFromSegments(segments []int) Version {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = fmt.Sprintf("%d", seg)
	}
	return MustParseVersion(strings.Join(parts, "."))
}
