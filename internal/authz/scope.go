package authz

// Scope narrows list queries to the rows the actor may see, so list
// endpoints filter in the query instead of fetching everything and rejecting
// per row. Zero value means unrestricted.
type Scope struct {
	// AssignedUserID restricts to records assigned to this analyst.
	AssignedUserID string
	// ClientID restricts to records owned by this client.
	ClientID string
	// ReleasedOnly restricts reports to RELEASED status.
	ReleasedOnly bool
}

// ListScope derives the row-level visibility filter for list queries from
// the same ownership rules Evaluate applies per record.
func ListScope(actor Actor, resource Resource) Scope {
	switch actor.Role {
	case RoleAnalyst:
		switch resource {
		case ResourceSample, ResourceTest, ResourceReport:
			return Scope{AssignedUserID: actor.ID}
		}
	case RoleClient:
		switch resource {
		case ResourceJob, ResourceSample:
			return Scope{ClientID: actor.ID}
		case ResourceReport:
			return Scope{ClientID: actor.ID, ReleasedOnly: true}
		}
	}
	return Scope{}
}
