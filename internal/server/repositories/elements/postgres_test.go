package elements

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var elementColumns = []string{
	"guid", "type_name", "anchor_guid", "properties", "version",
	"created_by", "updated_by", "create_time", "update_time",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO elements \(guid, type_name, anchor_guid, properties`).
		WithArgs("g1", "Comment", "a1", `{"qualifiedName":"c1"}`, int64(1), "alice", "alice", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Element{
		GUID:       "g1",
		TypeName:   "Comment",
		AnchorGUID: "a1",
		Properties: map[string]any{"qualifiedName": "c1"},
		Version:    1,
		CreatedBy:  "alice",
		UpdatedBy:  "alice",
		CreateTime: now,
		UpdateTime: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NoAnchorPassesNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO elements`).
		WithArgs("g1", "Project", nil, `{}`, int64(1), "u", "u", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Element{GUID: "g1", TypeName: "Project", Version: 1, CreatedBy: "u", UpdatedBy: "u"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO elements`).WillReturnError(errors.New("db is down"))

	err := repo.Create(context.Background(), &models.Element{GUID: "g1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db is down`, err.Error())
}

func TestCreate_DuplicateQualifiedName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO elements`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "elements_qualified_name_uidx"})

	err := repo.Create(context.Background(), &models.Element{GUID: "g1", Properties: map[string]any{"qualifiedName": "same"}})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Contains(t, err.Error(), "elements_qualified_name_uidx")
}

func TestUpdate_DuplicateQualifiedName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE elements`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Update(context.Background(), &models.Element{GUID: "g1", Properties: map[string]any{"qualifiedName": "taken"}})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpdate_ReturnsNewVersion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE elements\s+SET properties = \$2, version = version \+ 1`).
		WithArgs("g1", `{"name":"n"}`, "bob", now).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))

	e := &models.Element{GUID: "g1", Properties: map[string]any{"name": "n"}, UpdatedBy: "bob", UpdateTime: now}
	require.NoError(t, repo.Update(context.Background(), e))
	assert.Equal(t, int64(4), e.Version)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE elements`).WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err := repo.Update(context.Background(), &models.Element{GUID: "missing"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(`DELETE FROM elements WHERE guid = \$1`).WithArgs("g1").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Delete(context.Background(), "g1"))
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(`DELETE FROM elements`).WithArgs("g1").WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.Delete(context.Background(), "g1"), common.ErrorNotFound)
	})
}

func TestGetByGUID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT guid, type_name, anchor_guid, properties, .* FROM elements WHERE guid = \$1`).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(elementColumns).
			AddRow("g1", "Endpoint", nil, []byte(`{"networkAddress":"host:1"}`), int64(2), "a", "b", now, now))

	e, err := repo.GetByGUID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Endpoint", e.TypeName)
	assert.Equal(t, "", e.AnchorGUID)
	assert.Equal(t, "host:1", e.StringProperty("networkAddress"))
	assert.Equal(t, int64(2), e.Version)
}

func TestGetByGUID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM elements WHERE guid`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(elementColumns))

	_, err := repo.GetByGUID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMalformedGUIDIsNotFound(t *testing.T) {
	badUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	t.Run("get", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(`FROM elements WHERE guid`).WithArgs("abc").WillReturnError(badUUID)

		_, err := repo.GetByGUID(context.Background(), "abc")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(`DELETE FROM elements`).WithArgs("abc").WillReturnError(badUUID)

		require.ErrorIs(t, repo.Delete(context.Background(), "abc"), common.ErrorNotFound)
	})

	t.Run("other pg errors stay wrapped", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(`FROM elements WHERE guid`).WillReturnError(&pgconn.PgError{Code: "57014", Message: "canceling statement"})

		_, err := repo.GetByGUID(context.Background(), "abc")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
		assert.Contains(t, err.Error(), "failed to select element")
	})
}

func TestGetByGUID_BadProperties(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM elements WHERE guid`).
		WillReturnRows(sqlmock.NewRows(elementColumns).
			AddRow("g1", "Endpoint", nil, []byte(`{not json`), int64(1), "a", "a", now, now))

	_, err := repo.GetByGUID(context.Background(), "g1")
	require.Error(t, err)
}

func TestGetAnchored(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM elements WHERE anchor_guid = \$1 ORDER BY create_time, guid`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(elementColumns).
			AddRow("c1", "Comment", "a1", []byte(`{}`), int64(1), "u", "u", now, now).
			AddRow("c2", "Comment", "a1", []byte(`{}`), int64(1), "u", "u", now, now))

	got, err := repo.GetAnchored(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[1].AnchorGUID)
}

func TestFind_RegexOnNamedProperties(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT ` + selectColumns + ` FROM elements WHERE type_name = $1 AND EXISTS (SELECT 1 FROM jsonb_each_text(elements.properties) p WHERE p.key IN ($2, $3) AND p.value ~ $4) ORDER BY create_time, guid OFFSET $5 LIMIT $6`)
	mock.ExpectQuery(q).
		WithArgs("Community", "qualifiedName", "name", "data.*", 0, 10).
		WillReturnRows(sqlmock.NewRows(elementColumns))

	got, err := repo.Find(context.Background(), models.ElementQuery{
		TypeName:      "Community",
		PropertyNames: []string{"qualifiedName", "name"},
		SearchString:  "data.*",
		SearchOptions: models.SearchOptions{PageSize: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildFindQuery(t *testing.T) {
	tests := []struct {
		name      string
		q         models.ElementQuery
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "value wins over regex",
			q:         models.ElementQuery{TypeName: "Endpoint", PropertyNames: []string{"networkAddress"}, Value: "h:1", SearchString: ".*"},
			wantWhere: "WHERE type_name = $1 AND EXISTS (SELECT 1 FROM jsonb_each_text(elements.properties) p WHERE p.key IN ($2) AND p.value = $3)",
			wantArgs:  []any{"Endpoint", "networkAddress", "h:1", 0},
		},
		{
			name:      "all properties, no limit",
			q:         models.ElementQuery{TypeName: "Project", SearchString: "x", SearchOptions: models.SearchOptions{StartFrom: 5}},
			wantWhere: "WHERE type_name = $1 AND EXISTS (SELECT 1 FROM jsonb_each_text(elements.properties) p WHERE p.value ~ $2)",
			wantArgs:  []any{"Project", "x", 5},
		},
		{
			name:      "no filters",
			q:         models.ElementQuery{},
			wantWhere: "",
			wantArgs:  []any{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildFindQuery(tt.q)
			if tt.wantWhere != "" {
				assert.Contains(t, query, tt.wantWhere)
			} else {
				assert.NotContains(t, query, "WHERE")
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFind_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db err"))

	_, err := repo.Find(context.Background(), models.ElementQuery{TypeName: "Location"})
	require.Error(t, err)
	assert.Regexp(t, `failed to select elements: .*db err`, err.Error())
}

func TestFind_RowsErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(elementColumns).
		AddRow("g1", "Location", nil, []byte(`{}`), int64(1), "u", "u", now, now).
		AddRow("g2", "Location", nil, []byte(`{}`), int64(1), "u", "u", now, now).
		RowError(1, errors.New("row-err"))
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	_, err := repo.Find(context.Background(), models.ElementQuery{TypeName: "Location"})
	require.EqualError(t, err, "row-err")
}
