package client

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/api"
)

// Client is the set of metadata operations the CLI needs.
type Client interface {
	Ping(ctx context.Context) error
	ListCategories(ctx context.Context) ([]*api.Category, error)

	Create(ctx context.Context, category, anchorGUID string, props map[string]any) (string, error)
	Update(ctx context.Context, category, guid string, replaceAll bool, props map[string]any) error
	Delete(ctx context.Context, category, guid string) error
	Get(ctx context.Context, category, guid string) (*api.Element, error)
	GetByName(ctx context.Context, category, name string, paging api.SearchOptions) ([]*api.Element, error)
	Find(ctx context.Context, category, search string, paging api.SearchOptions) ([]*api.Element, error)

	Link(ctx context.Context, category, relationshipType, end1GUID, end2GUID string, props map[string]any) (string, error)
	Detach(ctx context.Context, category, relationshipType, end1GUID, end2GUID string) error
	GetRelated(ctx context.Context, category, guid, relationshipType string, paging api.SearchOptions) ([]*api.RelatedElement, error)

	// Invoke runs a category-specific operation such as a community's
	// add-member. ListCategories reports the operations of each category.
	Invoke(ctx context.Context, req *api.InvokeOperationRequest) (*api.InvokeOperationResponse, error)

	SetAccessToken(token string)
	Close() error
}
