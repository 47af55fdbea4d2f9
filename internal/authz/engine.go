package authz

import (
	"errors"
	"fmt"
)

// ErrDenied wraps every permission denial so callers can branch on it.
var ErrDenied = errors.New("permission denied")

// DeniedError carries the decision context a caller may surface to the user.
type DeniedError struct {
	Actor    Actor
	Action   Action
	Resource Resource
	Decision Decision
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Decision.Reason)
}

func (e *DeniedError) Unwrap() error { return ErrDenied }

// Denied builds the error surfaced when an evaluation refuses an operation.
func Denied(actor Actor, action Action, resource Resource, d Decision) error {
	return &DeniedError{Actor: actor, Action: action, Resource: resource, Decision: d}
}

// Evaluate is the two-tier permission decision.
//
// Tier one consults the static capability matrix; combinations it does not
// list deny outright. Tier two applies the record-context rule when the
// capability is allow-with-context and a record was supplied. When rec is nil
// (route-level pre-check) the coarse capability decision stands; callers
// performing record-scoped actions re-evaluate with the loaded record.
//
// Pure function: no I/O, no shared mutable state, safe under concurrency.
func Evaluate(actor Actor, action Action, resource Resource, rec *Record) Decision {
	mode, ok := capabilities[capKey{actor.Role, action, resource}]
	if !ok {
		return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot %s %s", actor.Role, action, resource)}
	}
	if mode == capAllowWithContext && rec != nil {
		if fn, ok := contextRuleFor(resource, action); ok {
			return fn(actor, *rec)
		}
	}
	return Decision{Allowed: true}
}
