package domain

// Checker resolves the upgrade target for a dependency from the versions
// known to be available. Retry policy for transient registry lookups lives
// behind implementations of this interface, never in the update core.
type Checker interface {
	// TargetVersion returns the version the dependency should be updated to,
	// or false when no acceptable newer version exists among the candidates.
	TargetVersion(dep Dependency, available []string) (string, bool)
}
