package npm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/requpdate/domain"
)

const splicerName = "npm"

// Splicer implements domain.Splicer for package.json files.
type Splicer struct{}

// New creates a new npm splicer.
func New() domain.Splicer {
	return &Splicer{}
}

func (s *Splicer) Name() string { return splicerName }

// Splice replaces the dependency's requirement string in package.json text,
// trying the canonical `"name": "requirement"` literal first and a
// whitespace-tolerant regex second. Git-sourced entries carry no requirement;
// their #ref suffix is rewritten instead.
func (s *Splicer) Splice(
	content string,
	dep domain.Dependency,
	original, updated domain.RequirementDecl,
) (string, error) {
	if original.Requirement == "" {
		return spliceGitRef(content, dep, original, updated)
	}

	oldLiteral := fmt.Sprintf("%q: %q", dep.Name, original.Requirement)
	newLiteral := fmt.Sprintf("%q: %q", dep.Name, updated.Requirement)
	if strings.Contains(content, oldLiteral) {
		return strings.Replace(content, oldLiteral, newLiteral, 1), nil
	}

	pattern := regexp.MustCompile(
		`("` + regexp.QuoteMeta(dep.Name) + `"\s*:\s*")` +
			regexp.QuoteMeta(original.Requirement) + `(")`,
	)
	if !pattern.MatchString(content) {
		return "", fmt.Errorf("requirement %q for %q not found in %s",
			original.Requirement, dep.Name, original.File)
	}
	return pattern.ReplaceAllString(content, "${1}"+updated.Requirement+"${2}"), nil
}

// spliceGitRef rewrites the "#ref" suffix of a git dependency spec, the only
// version-bearing part of a source-backed entry.
func spliceGitRef(
	content string,
	dep domain.Dependency,
	original, updated domain.RequirementDecl,
) (string, error) {
	if original.Source == nil || updated.Source == nil ||
		original.Source.Ref == "" || updated.Source.Ref == "" {
		return "", fmt.Errorf("declaration for %q in %s has no requirement to splice",
			dep.Name, original.File)
	}
	if original.Source.Ref == updated.Source.Ref {
		return content, nil
	}

	pattern := regexp.MustCompile(
		`("` + regexp.QuoteMeta(dep.Name) + `"\s*:\s*"[^"]*#)` +
			regexp.QuoteMeta(original.Source.Ref) + `(")`,
	)
	if !pattern.MatchString(content) {
		return "", fmt.Errorf("ref %q for %q not found in %s",
			original.Source.Ref, dep.Name, original.File)
	}
	return pattern.ReplaceAllString(content, "${1}"+updated.Source.Ref+"${2}"), nil
}
