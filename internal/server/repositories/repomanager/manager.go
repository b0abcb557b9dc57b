package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/metakeeper/internal/dbx"
	"github.com/dmitrijs2005/metakeeper/internal/server/repositories/elements"
	"github.com/dmitrijs2005/metakeeper/internal/server/repositories/relationships"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Elements(db dbx.DBTX) elements.Repository
	Relationships(db dbx.DBTX) relationships.Repository
}
