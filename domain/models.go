package domain

// PackageManager tags the ecosystem a dependency belongs to.
type PackageManager string

const (
	PackageManagerTerraform PackageManager = "terraform"
	PackageManagerNPM       PackageManager = "npm"
)

// Source describes where a requirement declaration resolves from when it is
// not the default registry: a git ref or a local path.
type Source struct {
	Type   string // "git", "path", "registry"
	URL    string
	Ref    string
	Branch string
}

// Clone returns a copy of the source, or nil for a nil receiver.
func (s *Source) Clone() *Source {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Equal reports whether two source descriptors are equivalent.
func (s *Source) Equal(other *Source) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}

// RequirementDecl is one declared requirement for a dependency, tied to the
// file and group it was declared in. Order across a declaration list is
// significant: updated declarations align positionally with the originals so
// the file splicer can map results back to source locations.
type RequirementDecl struct {
	Requirement string   // constraint string, empty for lock-file-only entries
	File        string   // manifest file the declaration came from
	Groups      []string // e.g. "dependencies", "dev-dependencies"
	Source      *Source  // nil for plain registry dependencies
}

// Equal reports whether two declarations are identical, used when merging
// dependency records.
func (d RequirementDecl) Equal(other RequirementDecl) bool {
	if d.Requirement != other.Requirement || d.File != other.File {
		return false
	}
	if len(d.Groups) != len(other.Groups) {
		return false
	}
	for i := range d.Groups {
		if d.Groups[i] != other.Groups[i] {
			return false
		}
	}
	return d.Source.Equal(other.Source)
}

// Dependency is a versioned dependency aggregated from a project's manifest
// and lock files. Values are read-only once constructed; an update produces
// a new Dependency rather than mutating the original.
type Dependency struct {
	Name           string // unique key within a package manager scope
	Version        string // resolved version, empty when only inferred
	Locked         bool   // version backed by a lock/freeze file
	PackageManager PackageManager
	Requirements   []RequirementDecl // ordered manifest declarations
}

// TopLevel reports whether the dependency is declared directly in a manifest
// rather than appearing only as a transitive lock-file entry.
func (d Dependency) TopLevel() bool {
	return len(d.Requirements) > 0
}
