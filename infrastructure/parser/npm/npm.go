package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/requpdate/domain"
)

const (
	parserName   = "npm"
	manifestFile = "package.json"
	lockFile     = "package-lock.json"

	// Requirement declaration groups.
	GroupDependencies    = "dependencies"
	GroupDevDependencies = "dev-dependencies"
)

// Parser implements domain.Parser for npm projects: package.json provides
// requirement declarations, package-lock.json provides resolved versions.
type Parser struct{}

// New creates a new npm parser.
func New() domain.Parser {
	return &Parser{}
}

func (p *Parser) Name() string { return parserName }

// Detect returns true if the file set contains a package.json.
func (p *Parser) Detect(files map[string]string) bool {
	for filePath := range files {
		if path.Base(filePath) == manifestFile {
			return true
		}
	}
	return false
}

// Parse reads every package.json and package-lock.json in the file set.
// Manifest entries contribute ordered requirement declarations; lock entries
// contribute resolved versions that win over manifest estimates on merge.
func (p *Parser) Parse(_ context.Context, files map[string]string) (*domain.DependencySet, error) {
	set := domain.NewDependencySet()

	paths := make([]string, 0, len(files))
	for filePath := range files {
		paths = append(paths, filePath)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		switch path.Base(filePath) {
		case manifestFile:
			if err := parseManifest(files[filePath], filePath, set); err != nil {
				return nil, err
			}
		case lockFile:
			if err := parseLock(files[filePath], filePath, set); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}

type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parseManifest(content, filePath string, set *domain.DependencySet) error {
	var m manifest
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	addGroup(set, m.Dependencies, filePath, GroupDependencies)
	addGroup(set, m.DevDependencies, filePath, GroupDevDependencies)
	return nil
}

func addGroup(set *domain.DependencySet, entries map[string]string, filePath, group string) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		requirement, source := classifySpec(entries[name])
		set.Add(domain.Dependency{
			Name:           name,
			PackageManager: domain.PackageManagerNPM,
			Requirements: []domain.RequirementDecl{{
				Requirement: requirement,
				File:        filePath,
				Groups:      []string{group},
				Source:      source,
			}},
		})
	}
}

// classifySpec splits an npm dependency spec into a registry requirement
// string or a source descriptor. Git and path specs carry no constraint the
// updater could rewrite, so their requirement stays empty.
func classifySpec(spec string) (string, *domain.Source) {
	switch {
	case strings.HasPrefix(spec, "git+"), strings.HasPrefix(spec, "git://"),
		strings.HasPrefix(spec, "github:"):
		url, ref := splitGitSpec(spec)
		return "", &domain.Source{Type: "git", URL: url, Ref: ref}
	case strings.HasPrefix(spec, "file:"):
		return "", &domain.Source{Type: "path", URL: strings.TrimPrefix(spec, "file:")}
	}
	return spec, nil
}

// splitGitSpec separates "git+https://host/repo.git#v1.2.3" into URL and ref.
func splitGitSpec(spec string) (string, string) {
	url := strings.TrimPrefix(spec, "git+")
	if idx := strings.Index(url, "#"); idx >= 0 {
		return url[:idx], url[idx+1:]
	}
	return url, ""
}

// lock covers the v2/v3 "packages" shape and the legacy v1 "dependencies"
// shape of package-lock.json.
type lock struct {
	Packages     map[string]lockEntry `json:"packages"`
	Dependencies map[string]lockEntry `json:"dependencies"`
}

type lockEntry struct {
	Version string `json:"version"`
}

func parseLock(content, filePath string, set *domain.DependencySet) error {
	var l lock
	if err := json.Unmarshal([]byte(content), &l); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	entries := make(map[string]string)
	for pkgPath, entry := range l.Packages {
		name := lockPackageName(pkgPath)
		if name == "" || entry.Version == "" {
			continue
		}
		entries[name] = entry.Version
	}
	for name, entry := range l.Dependencies {
		if entry.Version == "" {
			continue
		}
		if _, ok := entries[name]; !ok {
			entries[name] = entry.Version
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		set.Add(domain.Dependency{
			Name:           name,
			Version:        entries[name],
			Locked:         true,
			PackageManager: domain.PackageManagerNPM,
		})
	}

	logger.Debugf("[npm] %s: %d locked packages", filePath, len(names))
	return nil
}

// lockPackageName maps a packages key like "node_modules/@scope/name" to the
// package name. The root entry (empty key) is the project itself.
func lockPackageName(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}
	idx := strings.LastIndex(pkgPath, "node_modules/")
	if idx < 0 {
		return ""
	}
	return pkgPath[idx+len("node_modules/"):]
}
