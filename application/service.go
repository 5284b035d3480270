package application

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/requpdate/domain"
	parserPkg "github.com/rios0rios0/requpdate/infrastructure/parser"
	splicerPkg "github.com/rios0rios0/requpdate/infrastructure/splicer"
)

const defaultWorkers = 4

// UpdateService orchestrates the full requirement update flow:
// parse manifests -> resolve targets -> compute updated requirements ->
// splice results back into file text.
type UpdateService struct {
	parsers  *parserPkg.Registry
	checker  domain.Checker
	splicers *splicerPkg.Registry
}

// NewUpdateService creates a new service with the given collaborators.
func NewUpdateService(
	parsers *parserPkg.Registry,
	checker domain.Checker,
	splicers *splicerPkg.Registry,
) *UpdateService {
	return &UpdateService{
		parsers:  parsers,
		checker:  checker,
		splicers: splicers,
	}
}

// PlanOptions holds runtime options for a single planning run.
type PlanOptions struct {
	Strategy  domain.UpdateStrategy
	Manager   string              // If set, only run this package manager's parser
	Available map[string][]string // Dependency name -> candidate versions
	Ignore    []string            // Glob patterns of dependency names to skip
	Workers   int                 // Parallel update computations, defaults to 4
}

// PlannedUpdate is the computed update for one dependency.
type PlannedUpdate struct {
	Dependency domain.Dependency
	Target     string
	Outcomes   []domain.UpdateOutcome
	Unfixable  bool
}

// PlanResult aggregates the planned updates and the spliced file contents.
type PlanResult struct {
	Updates      []PlannedUpdate
	UpdatedFiles map[string]string // path -> rewritten content
}

// List parses the file set and returns every aggregated dependency,
// optionally restricted to one package manager.
func (s *UpdateService) List(
	ctx context.Context,
	files map[string]string,
	manager string,
) ([]domain.Dependency, error) {
	var all []domain.Dependency
	for _, p := range s.parsers.All() {
		if manager != "" && p.Name() != manager {
			continue
		}
		if !p.Detect(files) {
			continue
		}
		set, err := p.Parse(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("parser %q failed: %w", p.Name(), err)
		}
		all = append(all, set.All()...)
	}
	return all, nil
}

// Plan computes updated requirement strings for every outdated dependency
// and splices them into the file contents. Per-dependency computations run
// on a bounded worker pool: all inputs are immutable and each updater holds
// no cross-call state, so no coordination is needed beyond collecting
// results in order.
func (s *UpdateService) Plan(
	ctx context.Context,
	files map[string]string,
	opts PlanOptions,
) (*PlanResult, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = domain.BumpVersionsIfNecessary
	}
	// Surface a bad strategy before any work is fanned out.
	if _, err := domain.NewRequirementsUpdater(nil, nil, strategy, ""); err != nil {
		return nil, err
	}

	deps, err := s.collectDependencies(ctx, files, opts)
	if err != nil {
		return nil, err
	}

	planned, err := s.computeUpdates(deps, strategy, opts)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{UpdatedFiles: make(map[string]string)}
	for _, update := range planned {
		if update == nil {
			continue
		}
		result.Updates = append(result.Updates, *update)
		if update.Unfixable {
			logger.Warnf("[%s] Cannot update %s to %s: constraint is unfixable",
				update.Dependency.PackageManager, update.Dependency.Name, update.Target)
			continue
		}
		s.splice(files, result.UpdatedFiles, *update)
	}

	return result, nil
}

// collectDependencies runs every matching parser and keeps the top-level,
// non-ignored dependencies.
func (s *UpdateService) collectDependencies(
	ctx context.Context,
	files map[string]string,
	opts PlanOptions,
) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	for _, p := range s.parsers.All() {
		if opts.Manager != "" && p.Name() != opts.Manager {
			continue
		}
		if !p.Detect(files) {
			logger.Debugf("[%s] No manifest files detected", p.Name())
			continue
		}

		set, err := p.Parse(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("parser %q failed: %w", p.Name(), err)
		}

		for _, dep := range set.All() {
			if !dep.TopLevel() {
				continue
			}
			if ignored(dep.Name, opts.Ignore) {
				logger.Infof("[%s] Ignoring %s", p.Name(), dep.Name)
				continue
			}
			deps = append(deps, dep)
		}
	}
	return deps, nil
}

// computeUpdates fans the per-dependency computations out over a worker
// pool, preserving input order in the result slice. Entries stay nil for
// dependencies with no acceptable target.
func (s *UpdateService) computeUpdates(
	deps []domain.Dependency,
	strategy domain.UpdateStrategy,
	opts PlanOptions,
) ([]*PlannedUpdate, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	planned := make([]*PlannedUpdate, len(deps))
	errs := make([]error, len(deps))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, dep := range deps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, dep domain.Dependency) {
			defer wg.Done()
			defer func() { <-sem }()
			planned[i], errs[i] = s.computeUpdate(dep, strategy, opts.Available[dep.Name])
		}(i, dep)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return planned, nil
}

func (s *UpdateService) computeUpdate(
	dep domain.Dependency,
	strategy domain.UpdateStrategy,
	available []string,
) (*PlannedUpdate, error) {
	target, ok := s.checker.TargetVersion(dep, available)
	if !ok {
		logger.Debugf("[%s] %s is up to date", dep.PackageManager, dep.Name)
		return nil, nil //nolint:nilnil // nil update means nothing to do
	}

	updater, err := domain.NewRequirementsUpdater(
		dep.Requirements, updatedSourceFor(dep, target), strategy, target,
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := updater.UpdatedRequirements()
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", dep.Name, err)
	}

	unfixable := false
	for _, outcome := range outcomes {
		if outcome.Unfixable {
			unfixable = true
			break
		}
	}

	return &PlannedUpdate{
		Dependency: dep,
		Target:     target,
		Outcomes:   outcomes,
		Unfixable:  unfixable,
	}, nil
}

// updatedSourceFor derives the source descriptor to stamp onto updated
// declarations: the dependency's current source with its ref moved to the
// target version, keeping the original ref's "v" prefix convention.
func updatedSourceFor(dep domain.Dependency, target string) *domain.Source {
	for _, decl := range dep.Requirements {
		if decl.Source == nil {
			continue
		}
		source := decl.Source.Clone()
		if source.Ref != "" {
			if strings.HasPrefix(source.Ref, "v") && !strings.HasPrefix(target, "v") {
				source.Ref = "v" + target
			} else {
				source.Ref = target
			}
		}
		return source
	}
	return nil
}

// splice rewrites every changed declaration into the accumulated file
// contents, matching updated declarations to originals by position.
func (s *UpdateService) splice(
	files, updatedFiles map[string]string,
	update PlannedUpdate,
) {
	splicer := s.splicers.Get(string(update.Dependency.PackageManager))
	if splicer == nil {
		logger.Warnf("[%s] No splicer registered, skipping file rewrite for %s",
			update.Dependency.PackageManager, update.Dependency.Name)
		return
	}

	for i, outcome := range update.Outcomes {
		original := update.Dependency.Requirements[i]
		if !declChanged(original, outcome.Declaration) {
			continue
		}

		content, ok := updatedFiles[original.File]
		if !ok {
			content, ok = files[original.File]
			if !ok {
				logger.Warnf("[%s] File %s not in input set, skipping",
					update.Dependency.PackageManager, original.File)
				continue
			}
		}

		spliced, err := splicer.Splice(content, update.Dependency, original, outcome.Declaration)
		if err != nil {
			logger.Warnf("[%s] Failed to splice %s in %s: %v",
				update.Dependency.PackageManager, update.Dependency.Name, original.File, err)
			continue
		}
		updatedFiles[original.File] = spliced
	}
}

func declChanged(original, updated domain.RequirementDecl) bool {
	return original.Requirement != updated.Requirement ||
		!original.Source.Equal(updated.Source)
}

func ignored(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := path.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
