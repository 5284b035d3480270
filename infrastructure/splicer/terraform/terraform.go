package terraform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/requpdate/domain"
	parserTf "github.com/rios0rios0/requpdate/infrastructure/parser/terraform"
)

const splicerName = "terraform"

// Splicer implements domain.Splicer for Terraform files: module source
// ?ref= pins and required_providers version constraints.
type Splicer struct{}

// New creates a new Terraform splicer.
func New() domain.Splicer {
	return &Splicer{}
}

func (s *Splicer) Name() string { return splicerName }

// Splice rewrites the declaration's version literal in the file content,
// trying an exact literal replacement first and a scoped regex second.
func (s *Splicer) Splice(
	content string,
	dep domain.Dependency,
	original, updated domain.RequirementDecl,
) (string, error) {
	if hasGroup(original, parserTf.GroupModules) {
		return spliceModuleRef(content, original, updated)
	}
	if hasGroup(original, parserTf.GroupProviders) {
		return spliceProviderVersion(content, dep.Name, original, updated)
	}
	return "", fmt.Errorf("declaration for %q carries no spliceable group", dep.Name)
}

func hasGroup(decl domain.RequirementDecl, group string) bool {
	for _, g := range decl.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// spliceModuleRef replaces the ?ref= value on the module's source URL.
func spliceModuleRef(content string, original, updated domain.RequirementDecl) (string, error) {
	if original.Source == nil || updated.Source == nil {
		return "", fmt.Errorf("module declaration in %s has no git source", original.File)
	}

	oldSource := sourceWithRef(original.Source.URL, original.Source.Ref)
	newSource := sourceWithRef(original.Source.URL, updated.Source.Ref)
	if strings.Contains(content, oldSource) {
		return strings.Replace(content, oldSource, newSource, 1), nil
	}

	// Regex-based fallback on the bare ref value.
	refPattern := regexp.MustCompile(
		`(\?ref=)` + regexp.QuoteMeta(original.Source.Ref) + `([^&"\s]*)`,
	)
	if !refPattern.MatchString(content) {
		return "", fmt.Errorf("ref %q not found in %s", original.Source.Ref, original.File)
	}
	return refPattern.ReplaceAllString(content, "${1}"+updated.Source.Ref+"${2}"), nil
}

func sourceWithRef(source, ref string) string {
	if strings.Contains(source, "?") {
		return source + "&ref=" + ref
	}
	return source + "?ref=" + ref
}

// spliceProviderVersion replaces the version constraint inside the
// provider's required_providers entry.
func spliceProviderVersion(
	content, name string,
	original, updated domain.RequirementDecl,
) (string, error) {
	// Scoped replacement: the version attribute inside this provider's entry.
	scoped := regexp.MustCompile(
		`(` + regexp.QuoteMeta(name) + `\s*=\s*\{[^}]*version\s*=\s*")` +
			regexp.QuoteMeta(original.Requirement) + `(")`,
	)
	if scoped.MatchString(content) {
		return scoped.ReplaceAllString(content, "${1}"+updated.Requirement+"${2}"), nil
	}

	// Bare string form: name = "constraint".
	bare := regexp.MustCompile(
		`(` + regexp.QuoteMeta(name) + `\s*=\s*")` +
			regexp.QuoteMeta(original.Requirement) + `(")`,
	)
	if bare.MatchString(content) {
		return bare.ReplaceAllString(content, "${1}"+updated.Requirement+"${2}"), nil
	}

	return "", fmt.Errorf("constraint %q for provider %q not found in %s",
		original.Requirement, name, original.File)
}
