package authz

// capMode is the outcome of the first-tier capability lookup.
type capMode int

const (
	// capAllow grants unconditionally.
	capAllow capMode = iota
	// capAllowWithContext grants only after the record-context rule passes.
	// Without a record (route-level pre-check) the coarse allow stands and
	// the caller must re-evaluate once the record is loaded.
	capAllowWithContext
)

type capKey struct {
	Role     Role
	Action   Action
	Resource Resource
}

// capabilities is the static role x action x resource table. Absence means
// deny: the engine is fail-closed and unlisted combinations never pass.
var capabilities = map[capKey]capMode{}

func allow(r Role, a Action, res Resource)    { capabilities[capKey{r, a, res}] = capAllow }
func allowCtx(r Role, a Action, res Resource) { capabilities[capKey{r, a, res}] = capAllowWithContext }

func init() {
	// ADMIN: full capability over every governed resource.
	for _, res := range Resources {
		for _, act := range Actions {
			allow(RoleAdmin, act, res)
		}
	}

	// LAB_MANAGER: runs the lab end to end, including report workflow and
	// compliance reads of the audit trail.
	for _, res := range []Resource{ResourceJob, ResourceSample, ResourceTest, ResourceTemplate} {
		allow(RoleLabManager, ActionCreate, res)
		allow(RoleLabManager, ActionRead, res)
		allow(RoleLabManager, ActionUpdate, res)
		allow(RoleLabManager, ActionDelete, res)
	}
	allow(RoleLabManager, ActionAssign, ResourceSample)
	allow(RoleLabManager, ActionCreate, ResourceReport)
	allow(RoleLabManager, ActionRead, ResourceReport)
	allow(RoleLabManager, ActionUpdate, ResourceReport)
	allow(RoleLabManager, ActionGenerateDraft, ResourceReport)
	allow(RoleLabManager, ActionFinalize, ResourceReport)
	allow(RoleLabManager, ActionRelease, ResourceReport)
	allow(RoleLabManager, ActionRead, ResourceAuditLog)
	allow(RoleLabManager, ActionRead, ResourceUser)

	// ANALYST: works only on samples assigned to them.
	allowCtx(RoleAnalyst, ActionRead, ResourceSample)
	allowCtx(RoleAnalyst, ActionUpdate, ResourceSample)
	allowCtx(RoleAnalyst, ActionCreate, ResourceTest)
	allowCtx(RoleAnalyst, ActionRead, ResourceTest)
	allowCtx(RoleAnalyst, ActionUpdate, ResourceTest)
	allowCtx(RoleAnalyst, ActionGenerateDraft, ResourceReport)
	allowCtx(RoleAnalyst, ActionRead, ResourceReport)
	allow(RoleAnalyst, ActionRead, ResourceTemplate)

	// SALES_ACCOUNTING: read-only commercial visibility, no mutations.
	allow(RoleSalesAccounting, ActionRead, ResourceJob)
	allow(RoleSalesAccounting, ActionRead, ResourceSample)
	allow(RoleSalesAccounting, ActionRead, ResourceReport)

	// CLIENT: sees only their own jobs/samples and released reports.
	allowCtx(RoleClient, ActionRead, ResourceJob)
	allowCtx(RoleClient, ActionRead, ResourceSample)
	allowCtx(RoleClient, ActionRead, ResourceReport)
}
