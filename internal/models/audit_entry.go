package models

import "time"

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// Source of an audit entry: written by the application recorder or by the
// storage-level row trigger. Both may fire for the same mutation; entries are
// never deduplicated at write time.
const (
	AuditSourceApp     = "app"
	AuditSourceTrigger = "trigger"
)

// SystemActor is the sentinel used when the storage trigger fires on a
// connection that carries no application session context.
const SystemActor = "system"

// FieldChange holds the before/after value of a single field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry is immutable once persisted. The audit_logs table carries a
// trigger that rejects UPDATE and DELETE outright.
type AuditEntry struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id"`
	ActorEmail string                 `json:"actor_email"`
	Action     AuditAction            `json:"action"`
	Table      string                 `json:"table"`
	RecordID   string                 `json:"record_id"`
	Changes    map[string]FieldChange `json:"changes"`
	Reason     string                 `json:"reason,omitempty"`
	TxID       string                 `json:"tx_id,omitempty"`
	IP         string                 `json:"ip,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Source     string                 `json:"source"`
	At         time.Time              `json:"at"`
}
