package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/requpdate/domain"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name           string
	version        string
	locked         bool
	packageManager domain.PackageManager
	requirements   []domain.RequirementDecl
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		name:           "test-dependency",
		version:        "1.0.0",
		packageManager: domain.PackageManagerNPM,
		requirements: []domain.RequirementDecl{
			{Requirement: "^1.0.0", File: "package.json", Groups: []string{"dependencies"}},
		},
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the resolved version.
func (b *DependencyBuilder) WithVersion(version string) *DependencyBuilder {
	b.version = version
	return b
}

// WithLocked marks the version as backed by a lock file.
func (b *DependencyBuilder) WithLocked(locked bool) *DependencyBuilder {
	b.locked = locked
	return b
}

// WithPackageManager sets the package manager tag.
func (b *DependencyBuilder) WithPackageManager(manager domain.PackageManager) *DependencyBuilder {
	b.packageManager = manager
	return b
}

// WithRequirements replaces the requirement declaration list.
func (b *DependencyBuilder) WithRequirements(decls ...domain.RequirementDecl) *DependencyBuilder {
	b.requirements = decls
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() domain.Dependency {
	return domain.Dependency{
		Name:           b.name,
		Version:        b.version,
		Locked:         b.locked,
		PackageManager: b.packageManager,
		Requirements:   b.requirements,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-dependency"
	b.version = "1.0.0"
	b.locked = false
	b.packageManager = domain.PackageManagerNPM
	b.requirements = []domain.RequirementDecl{
		{Requirement: "^1.0.0", File: "package.json", Groups: []string{"dependencies"}},
	}
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	requirements := make([]domain.RequirementDecl, len(b.requirements))
	copy(requirements, b.requirements)
	return &DependencyBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:           b.name,
		version:        b.version,
		locked:         b.locked,
		packageManager: b.packageManager,
		requirements:   requirements,
	}
}
