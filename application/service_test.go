package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/requpdate/application"
	"github.com/rios0rios0/requpdate/domain"
	parserPkg "github.com/rios0rios0/requpdate/infrastructure/parser"
	splicerPkg "github.com/rios0rios0/requpdate/infrastructure/splicer"
	testdoubles "github.com/rios0rios0/requpdate/test"
)

func buildService(
	parser *testdoubles.SpyParser,
	checker *testdoubles.SpyChecker,
	splicer *testdoubles.SpySplicer,
) *application.UpdateService {
	parsers := parserPkg.NewRegistry()
	parsers.Register(parser)

	splicers := splicerPkg.NewRegistry()
	splicers.Register(splicer)

	return application.NewUpdateService(parsers, checker, splicers)
}

func npmDependency(name, version, requirement string) domain.Dependency {
	return domain.Dependency{
		Name:           name,
		Version:        version,
		PackageManager: domain.PackageManagerNPM,
		Requirements: []domain.RequirementDecl{{
			Requirement: requirement,
			File:        "package.json",
			Groups:      []string{"dependencies"},
		}},
	}
}

func TestUpdateService_List(t *testing.T) {
	t.Parallel()

	t.Run("should return every dependency from detecting parsers", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{
				npmDependency("express", "4.18.2", "^4.18.2"),
				{Name: "accepts", Version: "1.3.8", Locked: true, PackageManager: domain.PackageManagerNPM},
			},
		}
		svc := buildService(parser, &testdoubles.SpyChecker{}, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		deps, err := svc.List(context.Background(), map[string]string{"package.json": "{}"}, "")

		// then
		require.NoError(t, err)
		assert.Len(t, deps, 2)
	})

	t.Run("should restrict listing to the requested package manager", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{npmDependency("express", "4.18.2", "^4.18.2")},
		}
		svc := buildService(parser, &testdoubles.SpyChecker{}, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		deps, err := svc.List(context.Background(), map[string]string{"package.json": "{}"}, "terraform")

		// then
		require.NoError(t, err)
		assert.Empty(t, deps)
		assert.Empty(t, parser.ParsedFiles)
	})
}

func TestUpdateService_Plan(t *testing.T) {
	t.Parallel()

	t.Run("should compute updates and splice them into the files", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{npmDependency("express", "4.18.2", "^4.18.2")},
		}
		checker := &testdoubles.SpyChecker{Targets: map[string]string{"express": "5.0.0"}}
		splicer := &testdoubles.SpySplicer{SplicerName: "npm"}
		svc := buildService(parser, checker, splicer)
		files := map[string]string{"package.json": `{"dependencies": {"express": "^4.18.2"}}`}

		// when
		result, err := svc.Plan(context.Background(), files, application.PlanOptions{
			Strategy: domain.BumpVersions,
		})

		// then
		require.NoError(t, err)
		require.Len(t, result.Updates, 1)
		update := result.Updates[0]
		assert.Equal(t, "express", update.Dependency.Name)
		assert.Equal(t, "5.0.0", update.Target)
		require.Len(t, update.Outcomes, 1)
		assert.Equal(t, "^5.0.0", update.Outcomes[0].Declaration.Requirement)
		assert.False(t, update.Unfixable)
		assert.Contains(t, result.UpdatedFiles["package.json"], "^5.0.0")
		require.Len(t, splicer.SpliceCalls, 1)
	})

	t.Run("should leave satisfied requirements alone under the lazy strategy", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{npmDependency("express", "4.18.2", "^4.0.0")},
		}
		checker := &testdoubles.SpyChecker{Targets: map[string]string{"express": "4.19.0"}}
		splicer := &testdoubles.SpySplicer{SplicerName: "npm"}
		svc := buildService(parser, checker, splicer)

		// when
		result, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"},
			application.PlanOptions{Strategy: domain.BumpVersionsIfNecessary})

		// then
		require.NoError(t, err)
		require.Len(t, result.Updates, 1)
		assert.Equal(t, "^4.0.0", result.Updates[0].Outcomes[0].Declaration.Requirement)
		assert.Empty(t, result.UpdatedFiles)
		assert.Empty(t, splicer.SpliceCalls)
	})

	t.Run("should skip dependencies with no acceptable target", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{npmDependency("express", "4.18.2", "^4.18.2")},
		}
		checker := &testdoubles.SpyChecker{}
		svc := buildService(parser, checker, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		result, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"}, application.PlanOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, result.Updates)
		assert.Equal(t, []string{"express"}, checker.CheckedDeps)
	})

	t.Run("should report unfixable constraints without touching files", func(t *testing.T) {
		t.Parallel()

		// given: the target violates the declared lower bound
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{npmDependency("express", "5.1.0", ">= 5.0.0")},
		}
		checker := &testdoubles.SpyChecker{Targets: map[string]string{"express": "4.0.0"}}
		splicer := &testdoubles.SpySplicer{SplicerName: "npm"}
		svc := buildService(parser, checker, splicer)

		// when
		result, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"},
			application.PlanOptions{Strategy: domain.BumpVersions})

		// then
		require.NoError(t, err)
		require.Len(t, result.Updates, 1)
		assert.True(t, result.Updates[0].Unfixable)
		assert.Empty(t, result.UpdatedFiles)
		assert.Empty(t, splicer.SpliceCalls)
	})

	t.Run("should skip transitive dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{
				{Name: "accepts", Version: "1.3.8", Locked: true, PackageManager: domain.PackageManagerNPM},
			},
		}
		checker := &testdoubles.SpyChecker{Targets: map[string]string{"accepts": "2.0.0"}}
		svc := buildService(parser, checker, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		result, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"}, application.PlanOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, result.Updates)
		assert.Empty(t, checker.CheckedDeps)
	})

	t.Run("should skip dependencies matching ignore patterns", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{
			ParserName:   "npm",
			DetectResult: true,
			Dependencies: []domain.Dependency{
				npmDependency("express", "4.18.2", "^4.18.2"),
				npmDependency("lodash", "4.17.0", "^4.17.0"),
			},
		}
		checker := &testdoubles.SpyChecker{Targets: map[string]string{
			"express": "5.0.0",
			"lodash":  "4.17.21",
		}}
		svc := buildService(parser, checker, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		result, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"},
			application.PlanOptions{Strategy: domain.BumpVersions, Ignore: []string{"exp*"}})

		// then
		require.NoError(t, err)
		require.Len(t, result.Updates, 1)
		assert.Equal(t, "lodash", result.Updates[0].Dependency.Name)
	})

	t.Run("should reject unknown update strategies before any work", func(t *testing.T) {
		t.Parallel()

		// given
		parser := &testdoubles.SpyParser{ParserName: "npm", DetectResult: true}
		svc := buildService(parser, &testdoubles.SpyChecker{}, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		_, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"},
			application.PlanOptions{Strategy: "delete_everything"})

		// then
		require.ErrorIs(t, err, domain.ErrUnknownUpdateStrategy)
		assert.Empty(t, parser.ParsedFiles)
	})

	t.Run("should propagate parser failures", func(t *testing.T) {
		t.Parallel()

		// given
		parseErr := errors.New("corrupt manifest")
		parser := &testdoubles.SpyParser{ParserName: "npm", DetectResult: true, ParseErr: parseErr}
		svc := buildService(parser, &testdoubles.SpyChecker{}, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		_, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"}, application.PlanOptions{})

		// then
		require.ErrorIs(t, err, parseErr)
		assert.Contains(t, err.Error(), `parser "npm" failed`)
	})

	t.Run("should preserve input order with many concurrent computations", func(t *testing.T) {
		t.Parallel()

		// given
		deps := make([]domain.Dependency, 0, 20)
		targets := make(map[string]string, 20)
		for _, name := range []string{
			"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
			"k", "l", "m", "n", "o", "p", "q", "r", "s", "t",
		} {
			deps = append(deps, npmDependency(name, "1.0.0", "1.0.0"))
			targets[name] = "2.0.0"
		}
		parser := &testdoubles.SpyParser{ParserName: "npm", DetectResult: true, Dependencies: deps}
		checker := &testdoubles.SpyChecker{Targets: targets}
		svc := buildService(parser, checker, &testdoubles.SpySplicer{SplicerName: "npm"})

		// when
		result, err := svc.Plan(context.Background(),
			map[string]string{"package.json": "{}"},
			application.PlanOptions{Strategy: domain.BumpVersions, Workers: 8})

		// then
		require.NoError(t, err)
		require.Len(t, result.Updates, 20)
		for i, dep := range deps {
			assert.Equal(t, dep.Name, result.Updates[i].Dependency.Name)
			assert.Equal(t, "2.0.0", result.Updates[i].Outcomes[0].Declaration.Requirement)
		}
	})
}
