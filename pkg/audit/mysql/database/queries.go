package auditDb

import (
	"context"
	"database/sql"
	"time"
)

const insertAuditRecord = `
INSERT INTO audit_record (record_uuid, description, tags, outcome, created_at)
VALUES (?, ?, ?, ?, ?)
`

const getAuditRecord = `
SELECT record_uuid, description, tags, outcome, created_at
FROM audit_record
WHERE record_uuid = ?
`

type Querier interface {
	InsertAuditRecord(ctx context.Context, arg InsertAuditRecordParams) error
	GetAuditRecord(ctx context.Context, recordUuid string) (*AuditRecordRow, error)
}

type InsertAuditRecordParams struct {
	RecordUuid  string
	Description string
	Tags        string
	Outcome     string
	CreatedAt   time.Time
}

type AuditRecordRow struct {
	RecordUuid  string
	Description string
	Tags        string
	Outcome     string
	CreatedAt   time.Time
}

type Queries struct {
	db                    *sql.DB
	insertAuditRecordStmt *sql.Stmt
	getAuditRecordStmt    *sql.Stmt
}

// Prepare builds statement-backed queries against the given connection.
func Prepare(ctx context.Context, db *sql.DB) (*Queries, error) {
	q := &Queries{db: db}
	var err error
	if q.insertAuditRecordStmt, err = db.PrepareContext(ctx, insertAuditRecord); err != nil {
		return nil, err
	}
	if q.getAuditRecordStmt, err = db.PrepareContext(ctx, getAuditRecord); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Queries) InsertAuditRecord(ctx context.Context, arg InsertAuditRecordParams) error {
	_, err := q.insertAuditRecordStmt.ExecContext(ctx,
		arg.RecordUuid,
		arg.Description,
		arg.Tags,
		arg.Outcome,
		arg.CreatedAt,
	)
	return err
}

func (q *Queries) GetAuditRecord(ctx context.Context, recordUuid string) (*AuditRecordRow, error) {
	row := q.getAuditRecordStmt.QueryRowContext(ctx, recordUuid)
	record := &AuditRecordRow{}
	err := row.Scan(
		&record.RecordUuid,
		&record.Description,
		&record.Tags,
		&record.Outcome,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}
