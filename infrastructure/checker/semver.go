package checker

import (
	masterminds "github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/requpdate/domain"
)

// SemverChecker implements domain.Checker over a list of candidate version
// strings: it selects the highest candidate newer than the dependency's
// current version. Pre-release candidates are considered only when the
// current version is itself a pre-release.
type SemverChecker struct{}

// NewSemver creates a new semver-based checker.
func NewSemver() domain.Checker {
	return &SemverChecker{}
}

// TargetVersion returns the best upgrade candidate, or false when none of
// the candidates is an acceptable newer version.
func (c *SemverChecker) TargetVersion(dep domain.Dependency, available []string) (string, bool) {
	current := currentVersion(dep)
	allowPrerelease := current != nil && current.Prerelease() != ""

	var best *masterminds.Version
	bestRaw := ""
	for _, candidate := range available {
		parsed, err := masterminds.NewVersion(candidate)
		if err != nil {
			logger.Debugf("[checker] Skipping unparseable candidate %q for %s", candidate, dep.Name)
			continue
		}
		if parsed.Prerelease() != "" && !allowPrerelease {
			continue
		}
		if current != nil && !parsed.GreaterThan(current) {
			continue
		}
		if best == nil || parsed.GreaterThan(best) {
			best = parsed
			bestRaw = candidate
		}
	}

	if best == nil {
		return "", false
	}
	return bestRaw, true
}

func currentVersion(dep domain.Dependency) *masterminds.Version {
	if dep.Version == "" {
		return nil
	}
	parsed, err := masterminds.NewVersion(dep.Version)
	if err != nil {
		return nil
	}
	return parsed
}
