package auditMysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devlibx/gox-base/v2"
	"github.com/devlibx/gox-base/v2/errors"
	goxJsonUtils "github.com/devlibx/gox-base/v2/serialization/utils/json"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/toolate28/QDI/pkg/audit"
	auditDb "github.com/toolate28/QDI/pkg/audit/mysql/database"
)

type service struct {
	gox.CrossFunction
	queries *auditDb.Queries
}

func (s *service) Write(ctx context.Context, record *audit.Record) (string, error) {
	id := uuid.NewString()

	tags, err := goxJsonUtils.ObjectToString(record.Tags)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize audit record tags: id=%s", id)
	}
	outcome, err := goxJsonUtils.ObjectToString(record.Outcome)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize audit record outcome: id=%s", id)
	}

	err = s.queries.InsertAuditRecord(ctx, auditDb.InsertAuditRecordParams{
		RecordUuid:  id,
		Description: record.Description,
		Tags:        tags,
		Outcome:     outcome,
		CreatedAt:   s.Now(),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to insert audit record: id=%s", id)
	}
	return id, nil
}

func newAuditDatasourceUsingSqlDb(db *sql.DB) (*auditDb.Queries, error) {
	return auditDb.Prepare(context.Background(), db)
}

func newAuditDatasource(config *MySqlConfig) (*auditDb.Queries, error) {

	// Setup default values if missing
	config.SetupDefault()

	url := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", config.User, config.Password, config.Host, config.Port, config.Database)
	db, err := sql.Open("mysql", url)
	if err != nil {
		return nil, errors.Wrap(err, "error in connecting to database - failed to call sql.Open: database=[%s]", config.Database)
	}

	// Connection configurations
	db.SetMaxOpenConns(config.MaxOpenConnection)
	db.SetMaxIdleConns(config.MaxIdleConnection)
	db.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetimeInSec) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(config.ConnMaxIdleTimeInSec) * time.Second)

	return newAuditDatasourceUsingSqlDb(db)
}

func NewAuditMySQLSinkWithSqlDb(cf gox.CrossFunction, db *sql.DB) (audit.Sink, error) {
	queries, err := newAuditDatasourceUsingSqlDb(db)
	if err != nil {
		return nil, err
	}
	return &service{CrossFunction: cf, queries: queries}, nil
}

func NewAuditMySQLSink(cf gox.CrossFunction, mySqlConfig *MySqlConfig) (audit.Sink, error) {
	queries, err := newAuditDatasource(mySqlConfig)
	if err != nil {
		return nil, err
	}
	return &service{CrossFunction: cf, queries: queries}, nil
}
