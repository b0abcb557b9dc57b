package elements

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/dbx"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
)

const selectColumns = `guid, type_name, anchor_guid, properties, version, created_by, updated_by, create_time, update_time`

// PostgresRepository implements element storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new element. GUID, timestamps and Version must be set by
// the caller.
func (r *PostgresRepository) Create(ctx context.Context, e *models.Element) error {
	props, err := marshalProperties(e.Properties)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO elements (guid, type_name, anchor_guid, properties, version, created_by, updated_by, create_time, update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.GUID, e.TypeName, nullableGUID(e.AnchorGUID), props, e.Version,
		e.CreatedBy, e.UpdatedBy, e.CreateTime, e.UpdateTime)
	if err != nil {
		return mapPgError(err, "db error")
	}
	return nil
}

// Update overwrites properties, bumps the version and stamps the updater.
// The new version and update time are written back into e.
func (r *PostgresRepository) Update(ctx context.Context, e *models.Element) error {
	props, err := marshalProperties(e.Properties)
	if err != nil {
		return err
	}

	query := `
		UPDATE elements
		SET properties = $2, version = version + 1, updated_by = $3, update_time = $4
		WHERE guid = $1
		RETURNING version
	`
	err = r.db.QueryRowContext(ctx, query, e.GUID, props, e.UpdatedBy, e.UpdateTime).Scan(&e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return mapPgError(err, "db error")
	}
	return nil
}

// Delete removes one element. Relationships go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, guid string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM elements WHERE guid = $1`, guid)
	if err != nil {
		return mapPgError(err, "db error")
	}
	return dbx.ExpectSingleRow(res, common.ErrorNotFound)
}

func (r *PostgresRepository) GetByGUID(ctx context.Context, guid string) (*models.Element, error) {
	query := `SELECT ` + selectColumns + ` FROM elements WHERE guid = $1`

	e, err := scanElement(r.db.QueryRowContext(ctx, query, guid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, mapPgError(err, "failed to select element")
	}
	return e, nil
}

// GetAnchored lists the elements whose anchor is anchorGUID.
func (r *PostgresRepository) GetAnchored(ctx context.Context, anchorGUID string) ([]*models.Element, error) {
	query := `SELECT ` + selectColumns + ` FROM elements WHERE anchor_guid = $1 ORDER BY create_time, guid`
	return r.queryElements(ctx, query, anchorGUID)
}

// Find runs a regex (SearchString) or equality (Value) match against the
// requested properties, ordered by creation and paged.
func (r *PostgresRepository) Find(ctx context.Context, q models.ElementQuery) ([]*models.Element, error) {
	query, args := buildFindQuery(q)
	return r.queryElements(ctx, query, args...)
}

func buildFindQuery(q models.ElementQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.TypeName != "" {
		where = append(where, "type_name = "+next(q.TypeName))
	}

	var match []string
	if len(q.PropertyNames) > 0 {
		keys := make([]string, 0, len(q.PropertyNames))
		for _, name := range q.PropertyNames {
			keys = append(keys, next(name))
		}
		match = append(match, "p.key IN ("+strings.Join(keys, ", ")+")")
	}
	switch {
	case q.Value != "":
		match = append(match, "p.value = "+next(q.Value))
	case q.SearchString != "":
		match = append(match, "p.value ~ "+next(q.SearchString))
	}
	if len(match) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM jsonb_each_text(elements.properties) p WHERE "+strings.Join(match, " AND ")+")")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + selectColumns + " FROM elements")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY create_time, guid")
	sb.WriteString(" OFFSET " + next(q.StartFrom))
	if q.PageSize > 0 {
		sb.WriteString(" LIMIT " + next(q.PageSize))
	}
	return sb.String(), args
}

func (r *PostgresRepository) queryElements(ctx context.Context, query string, args ...any) ([]*models.Element, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select elements: %w", err)
	}
	defer rows.Close()

	var result []*models.Element
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanElement(s scanner) (*models.Element, error) {
	var (
		e      models.Element
		anchor sql.NullString
		props  []byte
	)
	if err := s.Scan(&e.GUID, &e.TypeName, &anchor, &props, &e.Version,
		&e.CreatedBy, &e.UpdatedBy, &e.CreateTime, &e.UpdateTime); err != nil {
		return nil, err
	}
	e.AnchorGUID = anchor.String
	if err := json.Unmarshal(props, &e.Properties); err != nil {
		return nil, fmt.Errorf("bad properties for %s: %w", e.GUID, err)
	}
	return &e, nil
}

func marshalProperties(p map[string]any) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}
	return string(b), nil
}

// mapPgError turns the constraint errors a caller can act on into common
// errors: a second element with the same qualifiedName, or a guid that is not
// a UUID and so cannot name any element.
func mapPgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, common.ErrorAlreadyExists)
		case pgInvalidTextRepresent:
			return common.ErrorNotFound
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func nullableGUID(guid string) sql.NullString {
	return sql.NullString{String: guid, Valid: guid != ""}
}
