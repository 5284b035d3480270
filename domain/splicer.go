package domain

// Splicer rewrites manifest file text with updated requirement strings.
// Declarations map back to file locations by position, so implementations
// receive the original declaration alongside its updated counterpart.
type Splicer interface {
	// Name returns the package manager identifier this splicer serves.
	Name() string

	// Splice returns the file content with the original declaration's
	// requirement replaced by the updated one.
	Splice(content string, dep Dependency, original, updated RequirementDecl) (string, error)
}
