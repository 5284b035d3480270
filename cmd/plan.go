package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/requpdate/application"
	"github.com/rios0rios0/requpdate/config"
	"github.com/rios0rios0/requpdate/domain"
	checkerPkg "github.com/rios0rios0/requpdate/infrastructure/checker"
	parserPkg "github.com/rios0rios0/requpdate/infrastructure/parser"
	npmParser "github.com/rios0rios0/requpdate/infrastructure/parser/npm"
	tfParser "github.com/rios0rios0/requpdate/infrastructure/parser/terraform"
	splicerPkg "github.com/rios0rios0/requpdate/infrastructure/splicer"
	npmSplicer "github.com/rios0rios0/requpdate/infrastructure/splicer/npm"
	tfSplicer "github.com/rios0rios0/requpdate/infrastructure/splicer/terraform"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	managerFilter    string
	strategyOverride string
	targetOverrides  []string
	writeFiles       bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var planCmd = &cobra.Command{
	Use:   "plan [directory]",
	Short: "Compute updated requirement strings for outdated dependencies",
	Long: `Parse the project's manifest and lock files, resolve upgrade
targets from the configuration (or --target overrides), and print the
updated requirement string for every dependency that can be upgraded.

Nothing is written unless --write is passed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	planCmd.Flags().StringVar(
		&managerFilter, "manager", "",
		"Only run this package manager (terraform, npm)",
	)
	planCmd.Flags().StringVar(
		&strategyOverride, "strategy", "",
		"Override the update strategy (bump_versions, bump_versions_if_necessary)",
	)
	planCmd.Flags().StringArrayVar(
		&targetOverrides, "target", nil,
		"Pin a dependency's target version as name=version (repeatable)",
	)
	planCmd.Flags().BoolVar(
		&writeFiles, "write", false,
		"Write the spliced file contents back to disk",
	)
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := readProjectFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warnf("No manifest files found under %s", dir)
		return nil
	}

	targets, err := resolveTargets(cfg)
	if err != nil {
		return err
	}

	svc := application.NewUpdateService(
		buildParserRegistry(cfg),
		checkerPkg.NewStatic(targets, checkerPkg.NewSemver()),
		buildSplicerRegistry(),
	)

	strategy := domain.UpdateStrategy(strategyOverride)
	if strategy == "" {
		strategy = cfg.Strategy(managerFilter)
	}

	result, planErr := svc.Plan(ctx, files, application.PlanOptions{
		Strategy:  strategy,
		Manager:   managerFilter,
		Available: cfg.CandidateVersions(),
		Ignore:    cfg.Ignore,
	})
	if planErr != nil {
		return fmt.Errorf("failed to plan updates: %w", planErr)
	}

	printPlan(result)

	if writeFiles {
		if err = writeUpdatedFiles(dir, result.UpdatedFiles); err != nil {
			return err
		}
		return updateChangelog(dir, result)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			logger.Debug("No config file found, using defaults")
			return &config.Config{}, nil
		}
		cfgPath = found
	}

	logger.Infof("Using config file: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveTargets merges config-pinned targets with --target overrides, the
// CLI winning on conflicts.
func resolveTargets(cfg *config.Config) (map[string]string, error) {
	targets := cfg.PinnedTargets()
	for _, override := range targetOverrides {
		name, version, ok := strings.Cut(override, "=")
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("invalid --target %q, expected name=version", override)
		}
		targets[name] = version
	}
	return targets, nil
}

// relevantFile reports whether the parsers consume this file name.
func relevantFile(name string) bool {
	return strings.HasSuffix(name, ".tf") ||
		name == "package.json" ||
		name == "package-lock.json"
}

// skippedDirs are never descended into when collecting project files.
//
//nolint:gochecknoglobals // lookup table
var skippedDirs = map[string]bool{
	".git":         true,
	".terraform":   true,
	"node_modules": true,
	"vendor":       true,
}

func readProjectFiles(dir string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if skippedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !relevantFile(entry.Name()) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", path, readErr)
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func buildParserRegistry(cfg *config.Config) *parserPkg.Registry {
	reg := parserPkg.NewRegistry()
	if cfg.Enabled("terraform") {
		reg.Register(tfParser.New())
	}
	if cfg.Enabled("npm") {
		reg.Register(npmParser.New())
	}
	return reg
}

func buildSplicerRegistry() *splicerPkg.Registry {
	reg := splicerPkg.NewRegistry()
	reg.Register(tfSplicer.New())
	reg.Register(npmSplicer.New())
	return reg
}

func printPlan(result *application.PlanResult) {
	if len(result.Updates) == 0 {
		fmt.Println("All dependencies are up to date.")
		return
	}

	for _, update := range result.Updates {
		if update.Unfixable {
			fmt.Printf("✗ %s: cannot update to %s (constraint is unfixable)\n",
				update.Dependency.Name, update.Target)
			continue
		}
		for i, outcome := range update.Outcomes {
			original := update.Dependency.Requirements[i]
			if original.Requirement == outcome.Declaration.Requirement {
				continue
			}
			fmt.Printf("✓ %s (%s): %q -> %q [%s]\n",
				update.Dependency.Name, update.Target,
				original.Requirement, outcome.Declaration.Requirement,
				original.File)
		}
	}

	if len(result.UpdatedFiles) > 0 {
		fmt.Printf("\n%d file(s) would be rewritten\n", len(result.UpdatedFiles))
	}
}

// updateChangelog appends Keep-a-Changelog bullets for the applied updates
// when the project maintains a CHANGELOG.md.
func updateChangelog(dir string, result *application.PlanResult) error {
	path := filepath.Join(dir, "CHANGELOG.md")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil // no changelog to maintain
	}

	var entries []string
	for _, update := range result.Updates {
		if update.Unfixable {
			continue
		}
		for i, outcome := range update.Outcomes {
			original := update.Dependency.Requirements[i]
			if original.Requirement == outcome.Declaration.Requirement {
				continue
			}
			entries = append(entries, domain.ChangelogEntry(
				update.Dependency.Name, original.Requirement, outcome.Declaration.Requirement,
			))
		}
	}

	updated := domain.InsertChangelogEntries(string(data), entries)
	if updated == string(data) {
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Infof("Updated %s", path)
	return nil
}

func writeUpdatedFiles(dir string, updated map[string]string) error {
	for rel, content := range updated {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		info, statErr := os.Stat(path)
		mode := os.FileMode(0o644)
		if statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, []byte(content), mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Infof("Updated %s", path)
	}
	return nil
}
