// Package relationships provides PostgreSQL-backed persistence for typed
// links between metadata elements.
package relationships

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rel *models.Relationship) error
	Delete(ctx context.Context, typeName, end1GUID, end2GUID string) error
	DeleteForElement(ctx context.Context, guid string) (int64, error)
	GetForElement(ctx context.Context, guid string, startingEnd int, typeNames []string, opts models.SearchOptions) ([]*models.Relationship, error)
}
