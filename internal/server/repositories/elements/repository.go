// Package elements provides PostgreSQL-backed persistence for metadata
// elements.
package elements

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, element *models.Element) error
	Update(ctx context.Context, element *models.Element) error
	Delete(ctx context.Context, guid string) error
	GetByGUID(ctx context.Context, guid string) (*models.Element, error)
	GetAnchored(ctx context.Context, anchorGUID string) ([]*models.Element, error)
	Find(ctx context.Context, query models.ElementQuery) ([]*models.Element, error)
}
