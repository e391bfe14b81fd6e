package expr

import "errors"

var (
	// ErrSyntax is returned for malformed expressions.
	ErrSyntax = errors.New("expr: syntax error")

	// ErrUnknownFunction is returned when an expression calls an unregistered function.
	ErrUnknownFunction = errors.New("expr: unknown function")

	// ErrArity is returned when a function gets the wrong number of arguments.
	ErrArity = errors.New("expr: wrong number of arguments")

	// ErrMaxDepth is returned when deferred expressions nest deeper than Config.MaxDepth.
	ErrMaxDepth = errors.New("expr: maximum evaluation depth exceeded")
)
