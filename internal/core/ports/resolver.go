package ports

// SourceResolver defines the interface for resolving source patterns.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type SourceResolver interface {
	// ResolveSources expands patterns relative to root into absolute file paths,
	// keeping pattern order and sorting the matches of each pattern.
	ResolveSources(patterns []string, root string) ([]string, error)
}
