package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/models"
)

type auditLogsRepo struct{ db DBTX }

func (r *auditLogsRepo) Insert(ctx context.Context, e models.AuditEntry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO audit_logs(id, actor_id, actor_email, action, table_name, record_id, changes, reason, tx_id, ip, user_agent, source, at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),NULLIF($9,''),NULLIF($10,''),NULLIF($11,''),$12,$13)`,
		e.ID, e.ActorID, e.ActorEmail, e.Action, e.Table, e.RecordID, changes,
		e.Reason, e.TxID, e.IP, e.UserAgent, e.Source, e.At,
	)
	return err
}

// List applies the conjunctive filter set, newest-first, and returns the
// total match count for pagination. No default time window: an unset range
// spans the full history.
func (r *auditLogsRepo) List(ctx context.Context, f audit.Filter, limit, offset int) ([]models.AuditEntry, int, error) {
	where, args := buildAuditWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM audit_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(
		`SELECT id, actor_id, actor_email, action, table_name, record_id, changes,
		        coalesce(reason,''), coalesce(tx_id,''), coalesce(ip,''), coalesce(user_agent,''), source, at
		   FROM audit_logs%s
		  ORDER BY at DESC, id DESC
		  LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var changes []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorEmail, &e.Action, &e.Table, &e.RecordID,
			&changes, &e.Reason, &e.TxID, &e.IP, &e.UserAgent, &e.Source, &e.At); err != nil {
			return nil, 0, err
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, 0, fmt.Errorf("decode changes for %s: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func buildAuditWhere(f audit.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Table != "" {
		add("table_name=$%d", f.Table)
	}
	if f.RecordID != "" {
		add("record_id=$%d", f.RecordID)
	}
	if f.ActorID != "" {
		add("actor_id=$%d", f.ActorID)
	}
	if f.Action != "" {
		add("action=$%d", string(f.Action))
	}
	if f.TxID != "" {
		add("tx_id=$%d", f.TxID)
	}
	if f.From != nil {
		add("at >= $%d", *f.From)
	}
	if f.To != nil {
		add("at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
