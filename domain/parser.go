package domain

import "context"

// Parser abstracts a dependency ecosystem's file formats (Terraform modules,
// npm manifests, etc.). Each implementation turns raw manifest and lock file
// contents into a DependencySet of requirement declarations.
type Parser interface {
	// Name returns the package manager identifier (e.g. "terraform", "npm").
	Name() string

	// Detect returns true if the given file set (path -> content) contains
	// this ecosystem's manifest files.
	Detect(files map[string]string) bool

	// Parse extracts the dependency set from the given file set. Lock file
	// entries contribute resolved versions; manifest entries contribute
	// ordered requirement declarations.
	Parse(ctx context.Context, files map[string]string) (*DependencySet, error)
}
