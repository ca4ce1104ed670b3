package ecs

import "errors"

var (
	// ErrPreconditionViolated means the caller operated on an entity that is
	// not live, or on an empty registry. It is a caller bug.
	ErrPreconditionViolated = errors.New("ecs: precondition violated")

	// ErrOutOfRange means a table was read at a slot that is not currently
	// valid. It only happens if index bookkeeping is broken.
	ErrOutOfRange = errors.New("ecs: slot out of range")

	// ErrIdentityExhausted is returned once every EntityID has been handed out.
	ErrIdentityExhausted = errors.New("ecs: entity identity space exhausted")

	// ErrReentrantMutation is returned for spawn, despawn, add or remove issued
	// while a query or another structural operation is still running. Use the
	// World's CommandBuffer instead.
	ErrReentrantMutation = errors.New("ecs: structural mutation during iteration or event dispatch")

	// ErrUnknownComponent is returned for component handles or values that were
	// registered on a different Schema.
	ErrUnknownComponent = errors.New("ecs: component not registered with this world")
)
