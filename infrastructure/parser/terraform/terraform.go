package terraform

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/requpdate/domain"
)

const (
	parserName  = "terraform"
	minMatchLen = 6

	// Requirement declaration groups.
	GroupModules   = "modules"
	GroupProviders = "required_providers"
)

// Parser implements domain.Parser for Terraform files. It extracts git-based
// module dependencies pinned with ?ref= and provider version constraints
// from required_providers blocks.
type Parser struct{}

// New creates a new Terraform parser.
func New() domain.Parser {
	return &Parser{}
}

func (p *Parser) Name() string { return parserName }

// Detect returns true if the file set contains .tf files.
func (p *Parser) Detect(files map[string]string) bool {
	for path := range files {
		if strings.HasSuffix(path, ".tf") {
			return true
		}
	}
	return false
}

// Parse extracts module and provider dependencies from every .tf file.
func (p *Parser) Parse(_ context.Context, files map[string]string) (*domain.DependencySet, error) {
	set := domain.NewDependencySet()

	for _, path := range sortedPaths(files) {
		if !strings.HasSuffix(path, ".tf") {
			continue
		}
		content := files[path]
		for _, dep := range scanFile(content, path) {
			set.Add(dep)
		}
	}

	return set, nil
}

func sortedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// scanFile parses one Terraform file, falling back to regex scanning when
// the HCL is not well formed.
func scanFile(content, filePath string) []domain.Dependency {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL([]byte(content), filePath)
	if diags.HasErrors() {
		return scanWithRegex(content, filePath)
	}

	body := file.Body
	if body == nil {
		return nil
	}

	bodyContent, _, partialDiags := body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
			{Type: "terraform"},
		},
	})
	if partialDiags.HasErrors() {
		return scanWithRegex(content, filePath)
	}

	var deps []domain.Dependency
	for _, block := range bodyContent.Blocks {
		switch block.Type {
		case "module":
			if dep, ok := moduleDependency(block, filePath); ok {
				deps = append(deps, dep)
			}
		case "terraform":
			deps = append(deps, providerDependencies(block, filePath)...)
		}
	}

	return deps
}

// moduleDependency extracts a git-sourced module with a ?ref= version pin.
func moduleDependency(block *hcl.Block, filePath string) (domain.Dependency, bool) {
	attrs, _ := block.Body.JustAttributes()
	sourceAttr, hasSource := attrs["source"]
	if !hasSource {
		return domain.Dependency{}, false
	}

	sourceVal, sourceDiags := sourceAttr.Expr.Value(&hcl.EvalContext{})
	if sourceDiags.HasErrors() || sourceVal.Type() != cty.String {
		return domain.Dependency{}, false
	}

	source := sourceVal.AsString()
	if !isGitSource(source) {
		return domain.Dependency{}, false
	}

	ref := extractRef(source)
	if ref == "" || !looksLikeVersion(ref) {
		// branch refs like "main" are not updatable version pins
		return domain.Dependency{}, false
	}

	cleanSource := removeRefFromSource(source)
	return domain.Dependency{
		Name:           extractRepoName(cleanSource),
		Version:        strings.TrimPrefix(ref, "v"),
		PackageManager: domain.PackageManagerTerraform,
		Requirements: []domain.RequirementDecl{{
			Requirement: strings.TrimPrefix(ref, "v"),
			File:        filePath,
			Groups:      []string{GroupModules},
			Source:      &domain.Source{Type: "git", URL: cleanSource, Ref: ref},
		}},
	}, true
}

// providerDependencies extracts version constraints from the
// required_providers block inside a terraform block.
func providerDependencies(block *hcl.Block, filePath string) []domain.Dependency {
	inner, _, diags := block.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "required_providers"},
		},
	})
	if diags.HasErrors() {
		return nil
	}

	var deps []domain.Dependency
	for _, providers := range inner.Blocks {
		attrs, _ := providers.Body.JustAttributes()

		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			val, valDiags := attrs[name].Expr.Value(&hcl.EvalContext{})
			if valDiags.HasErrors() {
				logger.Debugf("[terraform] Skipping provider %q in %s: %v", name, filePath, valDiags)
				continue
			}

			requirement, providerSource := providerRequirement(val)
			if requirement == "" {
				continue
			}

			source := (*domain.Source)(nil)
			if providerSource != "" {
				source = &domain.Source{Type: "registry", URL: providerSource}
			}
			deps = append(deps, domain.Dependency{
				Name:           name,
				PackageManager: domain.PackageManagerTerraform,
				Requirements: []domain.RequirementDecl{{
					Requirement: requirement,
					File:        filePath,
					Groups:      []string{GroupProviders},
					Source:      source,
				}},
			})
		}
	}
	return deps
}

// providerRequirement reads a required_providers entry, which is either a
// bare version string or an object with source/version attributes.
func providerRequirement(val cty.Value) (requirement, source string) {
	switch {
	case val.Type() == cty.String:
		return val.AsString(), ""
	case val.Type().IsObjectType():
		if val.Type().HasAttribute("version") {
			if v := val.GetAttr("version"); v.Type() == cty.String {
				requirement = v.AsString()
			}
		}
		if val.Type().HasAttribute("source") {
			if s := val.GetAttr("source"); s.Type() == cty.String {
				source = s.AsString()
			}
		}
	}
	return requirement, source
}

// scanWithRegex extracts module dependencies when HCL parsing fails.
func scanWithRegex(content, filePath string) []domain.Dependency {
	var deps []domain.Dependency

	modulePattern := regexp.MustCompile(
		`(?s)module\s+"([^"]+)"\s*\{[^}]*source\s*=\s*"([^"]+)"`,
	)
	matches := modulePattern.FindAllStringSubmatchIndex(content, -1)

	for _, match := range matches {
		if len(match) < minMatchLen {
			continue
		}

		source := content[match[4]:match[5]]
		if !isGitSource(source) {
			continue
		}

		ref := extractRef(source)
		if ref == "" || !looksLikeVersion(ref) {
			continue
		}

		cleanSource := removeRefFromSource(source)
		deps = append(deps, domain.Dependency{
			Name:           extractRepoName(cleanSource),
			Version:        strings.TrimPrefix(ref, "v"),
			PackageManager: domain.PackageManagerTerraform,
			Requirements: []domain.RequirementDecl{{
				Requirement: strings.TrimPrefix(ref, "v"),
				File:        filePath,
				Groups:      []string{GroupModules},
				Source:      &domain.Source{Type: "git", URL: cleanSource, Ref: ref},
			}},
		})
	}

	return deps
}

// --- source helpers ---

func isGitSource(source string) bool {
	return strings.HasPrefix(source, "git::") ||
		strings.HasPrefix(source, "git@") ||
		strings.Contains(source, "github.com") ||
		strings.Contains(source, "gitlab.com") ||
		strings.Contains(source, "bitbucket.org") ||
		strings.Contains(source, "dev.azure.com") ||
		strings.Contains(source, "_git/")
}

var (
	refPattern       = regexp.MustCompile(`\?ref=([^&\s"]+)`)
	refRemovePattern = regexp.MustCompile(`\?ref=[^&\s"]+`)
)

func extractRef(source string) string {
	if matches := refPattern.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func removeRefFromSource(source string) string {
	return refRemovePattern.ReplaceAllString(source, "")
}

func extractRepoName(source string) string {
	parts := strings.Split(source, "/")
	name := source
	if len(parts) > 0 {
		name = parts[len(parts)-1]
	}
	return strings.TrimSuffix(name, ".git")
}

// looksLikeVersion reports whether a git ref is a semantic version tag
// rather than a branch name.
func looksLikeVersion(ref string) bool {
	normalized := ref
	if !strings.HasPrefix(normalized, "v") {
		normalized = "v" + normalized
	}
	return semver.IsValid(normalized)
}
