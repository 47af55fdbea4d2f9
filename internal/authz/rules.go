package authz

import "fmt"

// contextRule refines an allow-with-context capability against a loaded
// record. Rules are pure functions keyed by (resource, action); role-specific
// branches live inside the rule so business services never embed role logic.
type contextRule func(actor Actor, rec Record) Decision

var contextRules = map[[2]string]contextRule{}

func rule(res Resource, act Action, fn contextRule) {
	contextRules[[2]string{string(res), string(act)}] = fn
}

func contextRuleFor(res Resource, act Action) (contextRule, bool) {
	fn, ok := contextRules[[2]string{string(res), string(act)}]
	return fn, ok
}

func init() {
	rule(ResourceSample, ActionRead, sampleOwnership)
	rule(ResourceSample, ActionUpdate, sampleOwnership)
	rule(ResourceTest, ActionCreate, assignedSampleOnly)
	rule(ResourceTest, ActionRead, assignedSampleOnly)
	rule(ResourceTest, ActionUpdate, assignedSampleOnly)
	rule(ResourceReport, ActionRead, reportVisibility)
	rule(ResourceReport, ActionGenerateDraft, assignedSampleOnly)
	rule(ResourceJob, ActionRead, clientOwnership)
}

// sampleOwnership: analysts must be assigned to the sample, clients must own it.
func sampleOwnership(actor Actor, rec Record) Decision {
	switch actor.Role {
	case RoleAnalyst:
		if rec.AssignedUserID != actor.ID {
			return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot access unassigned sample", actor.Role)}
		}
	case RoleClient:
		if rec.ClientID != actor.ID {
			return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot access another client's sample", actor.Role)}
		}
	}
	return Decision{Allowed: true}
}

// assignedSampleOnly applies to test assignments and draft generation, where
// the record context carries the owning sample's assignment.
func assignedSampleOnly(actor Actor, rec Record) Decision {
	if actor.Role == RoleAnalyst && rec.AssignedUserID != actor.ID {
		return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot access unassigned sample", actor.Role)}
	}
	return Decision{Allowed: true}
}

// reportVisibility: clients see only released reports for their own samples.
func reportVisibility(actor Actor, rec Record) Decision {
	switch actor.Role {
	case RoleClient:
		if rec.Status != "RELEASED" {
			return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot read an unreleased report", actor.Role)}
		}
		if rec.ClientID != actor.ID {
			return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot access another client's report", actor.Role)}
		}
	case RoleAnalyst:
		if rec.AssignedUserID != actor.ID {
			return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot access unassigned sample", actor.Role)}
		}
	}
	return Decision{Allowed: true}
}

func clientOwnership(actor Actor, rec Record) Decision {
	if actor.Role == RoleClient && rec.ClientID != actor.ID {
		return Decision{Allowed: false, Reason: fmt.Sprintf("role %s cannot access another client's job", actor.Role)}
	}
	return Decision{Allowed: true}
}
