package message

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called on an already-started engine.
	ErrAlreadyStarted = errors.New("message: already started")

	// ErrScopeIntegrity signals a property scope released out of order.
	// It is a programming error and is raised by panic.
	ErrScopeIntegrity = errors.New("message: property scope released out of order")

	// ErrEmptyName is returned for a mediator or template parameter without a name.
	ErrEmptyName = errors.New("message: empty name")

	// ErrNilMediator is returned when registering a nil mediator.
	ErrNilMediator = errors.New("message: nil mediator")

	// ErrDuplicateSequence is returned when a name is registered twice.
	ErrDuplicateSequence = errors.New("message: duplicate sequence")

	// ErrRegistryFrozen is returned when registering after the load phase.
	ErrRegistryFrozen = errors.New("message: registry frozen")

	// ErrUnknownSequence is returned when a sequence name does not resolve.
	ErrUnknownSequence = errors.New("message: unknown sequence")

	// ErrDuplicateParameter is returned when a template declares a parameter twice.
	ErrDuplicateParameter = errors.New("message: duplicate template parameter")

	// ErrEmptyTarget is returned when an invoke mediator has no target template.
	ErrEmptyTarget = errors.New("message: empty invoke target")

	// ErrNoEvaluator is returned when an expression argument is configured
	// without an Evaluator.
	ErrNoEvaluator = errors.New("message: no evaluator for expression")
)
