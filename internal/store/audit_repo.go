package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// AuditRepo handles persistence for AuditRecord entries.
type AuditRepo struct{}

// Record inserts an audit record.
func (r *AuditRepo) Record(ctx context.Context, db *sql.DB, rec domain.AuditRecord) error {
	const q = `INSERT INTO audit_records (id, subject_id, category, actor, action, detail_json, severity, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if rec.DetailJSON == "" {
		rec.DetailJSON = "{}"
	}
	err := retryOp(defaultRetryConfig, func() error {
		_, err := db.ExecContext(ctx, q,
			rec.ID,
			rec.SubjectID,
			rec.Category,
			rec.Actor,
			rec.Action,
			rec.DetailJSON,
			rec.Severity,
			rec.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// ListBySubject returns all audit records for a ship or mission, ordered by creation time.
func (r *AuditRepo) ListBySubject(ctx context.Context, db *sql.DB, subjectID string) ([]domain.AuditRecord, error) {
	const q = `SELECT id, subject_id, category, actor, action, detail_json, severity, created_at
FROM audit_records
WHERE subject_id = ?
ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, q, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var a domain.AuditRecord
		if err := rows.Scan(&a.ID, &a.SubjectID, &a.Category, &a.Actor, &a.Action,
			&a.DetailJSON, &a.Severity, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
