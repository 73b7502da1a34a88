package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DatabaseDetail is the driver-level context of a failed statement.
type DatabaseDetail struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump flattens an error for structured logs. It is never sent to clients.
type ErrorDump struct {
	TopMessage string          `json:"top_message"`
	Code       Code            `json:"code,omitempty"`
	Retryable  bool            `json:"retryable"`
	Chain      []string        `json:"chain,omitempty"`
	Gorm       string          `json:"gorm,omitempty"`
	Database   *DatabaseDetail `json:"database,omitempty"`
}

var gormSentinels = []struct {
	err  error
	name string
}{
	{gorm.ErrRecordNotFound, "record_not_found"},
	{gorm.ErrDuplicatedKey, "duplicated_key"},
	{gorm.ErrForeignKeyViolated, "foreign_key_violated"},
	{gorm.ErrInvalidTransaction, "invalid_transaction"},
}

// Dump walks err and collects what the request log needs: the typed code,
// the unwrap chain and any postgres or gorm specifics.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	for _, s := range gormSentinels {
		if errors.Is(err, s.err) {
			d.Gorm = s.name
			break
		}
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.Database = &DatabaseDetail{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	case errors.As(err, &pqErr):
		d.Database = &DatabaseDetail{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return d
}

// Fields renders the dump as log fields, leaving out what is empty.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = string(d.Code)
		fields["retryable"] = d.Retryable
	}
	if d.Gorm != "" {
		fields["gorm_error"] = d.Gorm
	}
	if db := d.Database; db != nil {
		for key, value := range map[string]string{
			"pg_code":       db.Code,
			"pg_constraint": db.Constraint,
			"pg_table":      db.Table,
			"pg_column":     db.Column,
			"pg_detail":     db.Detail,
			"pg_message":    db.Message,
		} {
			if value != "" {
				fields[key] = value
			}
		}
	}
	return fields
}
