package domain

// DependencySet aggregates dependency records keyed by name, preserving the
// order in which names were first added. Adding an entry for an existing
// name merges the two records: requirement declarations are unioned in
// insertion order and the most specific version estimate wins (a version
// backed by a lock file beats one inferred from the manifest alone).
type DependencySet struct {
	order []string
	deps  map[string]Dependency
}

// NewDependencySet creates an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{deps: make(map[string]Dependency)}
}

// Add inserts or merges a dependency record.
func (s *DependencySet) Add(dep Dependency) {
	existing, ok := s.deps[dep.Name]
	if !ok {
		s.order = append(s.order, dep.Name)
		s.deps[dep.Name] = dep
		return
	}
	s.deps[dep.Name] = merge(existing, dep)
}

// Get returns the dependency with the given name.
func (s *DependencySet) Get(name string) (Dependency, bool) {
	dep, ok := s.deps[name]
	return dep, ok
}

// All returns every dependency in first-insertion order.
func (s *DependencySet) All() []Dependency {
	out := make([]Dependency, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.deps[name])
	}
	return out
}

// Len returns the number of unique dependencies in the set.
func (s *DependencySet) Len() int {
	return len(s.order)
}

func merge(existing, incoming Dependency) Dependency {
	merged := existing

	for _, decl := range incoming.Requirements {
		if !containsDecl(merged.Requirements, decl) {
			merged.Requirements = append(merged.Requirements, decl)
		}
	}

	// Lock-backed versions are more specific than manifest estimates.
	switch {
	case incoming.Locked && incoming.Version != "":
		merged.Version = incoming.Version
		merged.Locked = true
	case merged.Version == "":
		merged.Version = incoming.Version
		merged.Locked = incoming.Locked
	}

	return merged
}

func containsDecl(decls []RequirementDecl, decl RequirementDecl) bool {
	for _, d := range decls {
		if d.Equal(decl) {
			return true
		}
	}
	return false
}
