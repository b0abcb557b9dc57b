package relationships

import (
	"context"
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
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresRepository implements relationship storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts rel. A second link of the same type between the same ends
// yields ErrorAlreadyExists; a missing end yields ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, rel *models.Relationship) error {
	props := "{}"
	if rel.Properties != nil {
		b, err := json.Marshal(rel.Properties)
		if err != nil {
			return fmt.Errorf("marshal properties: %w", err)
		}
		props = string(b)
	}

	query := `
		INSERT INTO relationships (guid, type_name, end1_guid, end2_guid, properties, created_by, create_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.GUID, rel.TypeName, rel.End1GUID, rel.End2GUID, props, rel.CreatedBy, rel.CreateTime)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return common.ErrorAlreadyExists
			case pgForeignKeyViolation:
				return common.ErrorNotFound
			}
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, typeName, end1GUID, end2GUID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM relationships WHERE type_name = $1 AND end1_guid = $2 AND end2_guid = $3`,
		typeName, end1GUID, end2GUID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectSingleRow(res, common.ErrorNotFound)
}

// DeleteForElement removes every relationship with guid at either end and
// reports how many went.
func (r *PostgresRepository) DeleteForElement(ctx context.Context, guid string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM relationships WHERE end1_guid = $1 OR end2_guid = $1`, guid)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffected(res)
}

// GetForElement lists relationships touching guid. startingEnd restricts
// which end guid must occupy; an empty typeNames matches every type.
func (r *PostgresRepository) GetForElement(ctx context.Context, guid string, startingEnd int, typeNames []string,
	opts models.SearchOptions) ([]*models.Relationship, error) {

	args := []any{guid}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var where string
	switch startingEnd {
	case models.End1:
		where = "end1_guid = $1"
	case models.End2:
		where = "end2_guid = $1"
	default:
		where = "(end1_guid = $1 OR end2_guid = $1)"
	}
	if len(typeNames) > 0 {
		in := make([]string, 0, len(typeNames))
		for _, t := range typeNames {
			in = append(in, next(t))
		}
		where += " AND type_name IN (" + strings.Join(in, ", ") + ")"
	}

	query := `SELECT guid, type_name, end1_guid, end2_guid, properties, created_by, create_time
		FROM relationships
		WHERE ` + where + `
		ORDER BY create_time, guid
		OFFSET ` + next(opts.StartFrom)
	if opts.PageSize > 0 {
		query += ` LIMIT ` + next(opts.PageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select relationships: %w", err)
	}
	defer rows.Close()

	var result []*models.Relationship
	for rows.Next() {
		var (
			rel   models.Relationship
			props []byte
		)
		if err := rows.Scan(&rel.GUID, &rel.TypeName, &rel.End1GUID, &rel.End2GUID, &props,
			&rel.CreatedBy, &rel.CreateTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(props, &rel.Properties); err != nil {
			return nil, fmt.Errorf("bad properties for relationship %s: %w", rel.GUID, err)
		}
		result = append(result, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
