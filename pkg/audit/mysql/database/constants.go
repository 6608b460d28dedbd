package auditDb

// Audit record table - created on demand by tests and tooling, owned by the
// operator in production.
const AuditRecordTableDdl = `
CREATE TABLE IF NOT EXISTS audit_record (
    id          BIGINT AUTO_INCREMENT PRIMARY KEY,
    record_uuid VARCHAR(64)  NOT NULL,
    description VARCHAR(512) NOT NULL,
    tags        TEXT         NOT NULL,
    outcome     TEXT         NOT NULL,
    created_at  DATETIME     NOT NULL,
    UNIQUE KEY uk_record_uuid (record_uuid)
)`
