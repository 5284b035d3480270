// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"
	"strings"
	"sync"

	"github.com/rios0rios0/requpdate/domain"
)

// ---------------------------------------------------------------------------
// SpyParser
// ---------------------------------------------------------------------------

// SpyParser implements domain.Parser as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyParser struct {
	// --- identity ---
	ParserName string

	// --- Detect ---
	DetectResult bool
	// spy: file sets that were checked
	DetectCalls int

	// --- Parse ---
	Dependencies []domain.Dependency
	ParseErr     error
	// spy: file sets received
	ParsedFiles []map[string]string
}

var _ domain.Parser = (*SpyParser)(nil)

func (p *SpyParser) Name() string { return p.ParserName }

func (p *SpyParser) Detect(_ map[string]string) bool {
	p.DetectCalls++
	return p.DetectResult
}

func (p *SpyParser) Parse(_ context.Context, files map[string]string) (*domain.DependencySet, error) {
	p.ParsedFiles = append(p.ParsedFiles, files)
	if p.ParseErr != nil {
		return nil, p.ParseErr
	}
	set := domain.NewDependencySet()
	for _, dep := range p.Dependencies {
		set.Add(dep)
	}
	return set, nil
}

// ---------------------------------------------------------------------------
// SpyChecker
// ---------------------------------------------------------------------------

// SpyChecker implements domain.Checker as a configurable spy. It is safe for
// concurrent use so it can stand in for a checker behind a worker pool.
type SpyChecker struct {
	// Targets maps dependency name to the version to return; names absent
	// from the map report no acceptable target.
	Targets map[string]string

	mu sync.Mutex
	// spy: dependencies that were checked
	CheckedDeps []string
}

var _ domain.Checker = (*SpyChecker)(nil)

func (c *SpyChecker) TargetVersion(dep domain.Dependency, _ []string) (string, bool) {
	c.mu.Lock()
	c.CheckedDeps = append(c.CheckedDeps, dep.Name)
	c.mu.Unlock()
	target, ok := c.Targets[dep.Name]
	return target, ok
}

// ---------------------------------------------------------------------------
// SpySplicer
// ---------------------------------------------------------------------------

// SpySplicer implements domain.Splicer as a configurable spy. By default it
// performs a naive literal replacement so pipeline tests can assert on the
// rewritten content.
type SpySplicer struct {
	// --- identity ---
	SplicerName string

	// --- Splice ---
	SpliceErr error
	// spy: calls received
	SpliceCalls []SpliceCall
}

// SpliceCall records a single invocation of Splice.
type SpliceCall struct {
	Dep      domain.Dependency
	Original domain.RequirementDecl
	Updated  domain.RequirementDecl
}

var _ domain.Splicer = (*SpySplicer)(nil)

func (s *SpySplicer) Name() string { return s.SplicerName }

func (s *SpySplicer) Splice(
	content string,
	dep domain.Dependency,
	original, updated domain.RequirementDecl,
) (string, error) {
	s.SpliceCalls = append(s.SpliceCalls, SpliceCall{Dep: dep, Original: original, Updated: updated})
	if s.SpliceErr != nil {
		return "", s.SpliceErr
	}
	if original.Requirement == "" || original.Requirement == updated.Requirement {
		return content, nil
	}
	return strings.Replace(content, original.Requirement, updated.Requirement, 1), nil
}

// ---------------------------------------------------------------------------
// DummyParser — satisfies the interface but does nothing (for compile checks)
// ---------------------------------------------------------------------------

// DummyParser is a no-op implementation of domain.Parser.
// Use it only for interface compliance tests or as a placeholder.
type DummyParser struct{}

var _ domain.Parser = (*DummyParser)(nil)

func (d *DummyParser) Name() string { return "dummy" }

func (d *DummyParser) Detect(_ map[string]string) bool { return false }

func (d *DummyParser) Parse(_ context.Context, _ map[string]string) (*domain.DependencySet, error) {
	return domain.NewDependencySet(), nil
}

// ---------------------------------------------------------------------------
// DummyChecker — satisfies the interface but does nothing
// ---------------------------------------------------------------------------

// DummyChecker is a no-op implementation of domain.Checker.
type DummyChecker struct{}

var _ domain.Checker = (*DummyChecker)(nil)

func (d *DummyChecker) TargetVersion(_ domain.Dependency, _ []string) (string, bool) {
	return "", false
}
