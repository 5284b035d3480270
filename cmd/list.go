package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/requpdate/application"
	checkerPkg "github.com/rios0rios0/requpdate/infrastructure/checker"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var topLevelOnly bool

//nolint:gochecknoglobals // required by cobra CLI pattern
var listCmd = &cobra.Command{
	Use:   "list [directory]",
	Short: "List parsed dependencies with their requirements",
	Long: `Parse the project's manifest and lock files and print every
aggregated dependency: its resolved version, whether the version is backed
by a lock file, and the declared requirement strings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	listCmd.Flags().StringVar(
		&managerFilter, "manager", "",
		"Only list this package manager's dependencies (terraform, npm)",
	)
	listCmd.Flags().BoolVar(
		&topLevelOnly, "top-level", false,
		"Show only direct manifest dependencies",
	)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	svc := application.NewUpdateService(
		buildParserRegistry(cfg),
		checkerPkg.NewStatic(nil, nil),
		buildSplicerRegistry(),
	)

	deps, err := svc.List(ctx, files, managerFilter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMANAGER\tVERSION\tLOCKED\tREQUIREMENTS")
	for _, dep := range deps {
		if topLevelOnly && !dep.TopLevel() {
			continue
		}

		requirements := make([]string, 0, len(dep.Requirements))
		for _, decl := range dep.Requirements {
			if decl.Requirement != "" {
				requirements = append(requirements, decl.Requirement)
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n",
			dep.Name, dep.PackageManager, dep.Version, dep.Locked,
			strings.Join(requirements, ", "))
	}
	return w.Flush()
}
