package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprSelector implements Selector using the expr language
type exprSelector struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables selector caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based selector compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable selector
func (c *exprCompiler) Compile(expression string) (Selector, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Response fields are only known at run time
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	sel := &exprSelector{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, sel)
	}

	return sel, nil
}

// Clear removes all cached selectors
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached selectors
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Select evaluates the selector. env values shadow helpers of the same name.
func (s *exprSelector) Select(env map[string]any) (any, error) {
	runtime := make(map[string]any, len(s.helpers)+len(env))
	maps.Copy(runtime, s.helpers)
	maps.Copy(runtime, env)

	out, err := expr.Run(s.program, runtime)
	if err != nil {
		return nil, &EvaluationError{
			Expression: s.expression,
			Reason:     "failed to run expression",
			Err:        err,
		}
	}
	return out, nil
}

// Expression returns the original expression
func (s *exprSelector) Expression() string {
	return s.expression
}

// createHelperFunctions creates the helper functions available to selectors
func createHelperFunctions() map[string]any {
	return map[string]any{
		// Imgur reports datetimes as Unix epoch seconds
		"epochDate": func(v any) string {
			var sec int64
			switch n := v.(type) {
			case float64:
				sec = int64(n)
			case int:
				sec = int64(n)
			case int64:
				sec = n
			default:
				return ""
			}
			return time.Unix(sec, 0).UTC().Format("2006-01-02")
		},
		"hasText": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
	}
}
