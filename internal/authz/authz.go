// Package authz decides, per request, whether an actor-role may perform an
// action on a resource. Evaluation is two-tier: a static capability matrix
// (fail-closed) followed by record-context refinement for ownership rules.
// Decisions are pure values computed fresh per call and never cached.
package authz

import "context"

type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleLabManager      Role = "LAB_MANAGER"
	RoleAnalyst         Role = "ANALYST"
	RoleSalesAccounting Role = "SALES_ACCOUNTING"
	RoleClient          Role = "CLIENT"
)

type Action string

const (
	ActionCreate        Action = "CREATE"
	ActionRead          Action = "READ"
	ActionUpdate        Action = "UPDATE"
	ActionDelete        Action = "DELETE"
	ActionAssign        Action = "ASSIGN"
	ActionGenerateDraft Action = "GENERATE_DRAFT"
	ActionFinalize      Action = "FINALIZE"
	ActionRelease       Action = "RELEASE"
)

type Resource string

const (
	ResourceJob      Resource = "JOB"
	ResourceSample   Resource = "SAMPLE"
	ResourceTest     Resource = "TEST"
	ResourceReport   Resource = "REPORT"
	ResourceTemplate Resource = "TEMPLATE"
	ResourceAuditLog Resource = "AUDIT_LOG"
	ResourceUser     Resource = "USER"
)

// Roles, Actions and Resources are closed enumerations. Keep these lists in
// sync with the consts above; the engine's exhaustive tests range over them.
var (
	Roles     = []Role{RoleAdmin, RoleLabManager, RoleAnalyst, RoleSalesAccounting, RoleClient}
	Actions   = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign, ActionGenerateDraft, ActionFinalize, ActionRelease}
	Resources = []Resource{ResourceJob, ResourceSample, ResourceTest, ResourceReport, ResourceTemplate, ResourceAuditLog, ResourceUser}
)

// Actor is the authenticated identity a request acts as.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

// Record carries the ownership/state fields context refinement looks at.
// Only the fields relevant to the checked resource need to be set.
type Record struct {
	AssignedUserID string
	ClientID       string
	Status         string
}

// Decision is ephemeral: produced fresh per evaluation, never persisted.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
