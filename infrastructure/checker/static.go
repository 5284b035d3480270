package checker

import "github.com/rios0rios0/requpdate/domain"

// StaticChecker implements domain.Checker from a fixed dependency-to-target
// mapping, falling back to another checker for unmapped names. It backs the
// CLI's --target overrides and the config file's pinned targets.
type StaticChecker struct {
	targets  map[string]string
	fallback domain.Checker
}

// NewStatic creates a checker that serves the given targets first. The
// fallback may be nil, in which case unmapped dependencies have no target.
func NewStatic(targets map[string]string, fallback domain.Checker) domain.Checker {
	return &StaticChecker{targets: targets, fallback: fallback}
}

func (c *StaticChecker) TargetVersion(dep domain.Dependency, available []string) (string, bool) {
	if target, ok := c.targets[dep.Name]; ok && target != "" {
		return target, true
	}
	if c.fallback != nil {
		return c.fallback.TargetVersion(dep, available)
	}
	return "", false
}
