// Package filter compiles expr-lang selectors and evaluates them against
// decoded API responses.
package filter

// Selector extracts a value from a response environment
type Selector interface {
	// Select evaluates the selector against env
	Select(env map[string]any) (any, error)

	// Expression returns the original selector expression
	Expression() string
}

// Compiler compiles selector expressions into executable selectors
type Compiler interface {
	// Compile parses and compiles a selector expression
	Compile(expression string) (Selector, error)
}

// CachingCompiler provides caching for compiled selectors
type CachingCompiler interface {
	Compiler

	// Clear removes all cached selectors
	Clear()

	// Size returns the number of cached selectors
	Size() int
}
