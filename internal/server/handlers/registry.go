package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

// CategoryHandler is the part of every handler that works without knowing
// the category's property type. Properties travel as JSON objects.
type CategoryHandler interface {
	TypeName() string
	RelationshipTypes() []string

	CreateJSON(ctx context.Context, userID, anchorGUID string, props []byte) (string, error)
	UpdateJSON(ctx context.Context, userID, guid string, replaceAll bool, props []byte) error
	Delete(ctx context.Context, userID, guid string) error
	GetElement(ctx context.Context, userID, guid string) (*models.Element, error)
	GetElementsByName(ctx context.Context, userID, name string, opts models.SearchOptions) ([]*models.Element, error)
	FindElements(ctx context.Context, userID, searchString string, opts models.SearchOptions) ([]*models.Element, error)

	Link(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string, props map[string]any) (string, error)
	Detach(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string) error
	GetRelated(ctx context.Context, userID, guid, relationshipType string, opts models.SearchOptions) ([]*models.RelatedElement, error)

	Operations() []string
	Invoke(ctx context.Context, userID, operation string, args OperationArgs) (*OperationResult, error)
}

// Category names accepted by the registry.
const (
	CategoryComment           = "comment"
	CategoryCommunity         = "community"
	CategoryEndpoint          = "endpoint"
	CategoryExternalReference = "external-reference"
	CategoryNoteLog           = "note-log"
	CategoryProject           = "project"
	CategoryLocation          = "location"
)

// Registry holds one handler per category, all sharing a store.
type Registry struct {
	Comments           *CommentHandler
	Communities        *CommunityHandler
	Endpoints          *EndpointHandler
	ExternalReferences *ExternalReferenceHandler
	NoteLogs           *NoteLogHandler
	Projects           *ProjectHandler
	Locations          *LocationHandler

	byName map[string]CategoryHandler
}

func NewRegistry(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *Registry {
	r := &Registry{
		Comments:           NewCommentHandler(client, logger, maxPageSize),
		Communities:        NewCommunityHandler(client, logger, maxPageSize),
		Endpoints:          NewEndpointHandler(client, logger, maxPageSize),
		ExternalReferences: NewExternalReferenceHandler(client, logger, maxPageSize),
		NoteLogs:           NewNoteLogHandler(client, logger, maxPageSize),
		Projects:           NewProjectHandler(client, logger, maxPageSize),
		Locations:          NewLocationHandler(client, logger, maxPageSize),
	}
	r.byName = map[string]CategoryHandler{
		CategoryComment:           r.Comments,
		CategoryCommunity:         r.Communities,
		CategoryEndpoint:          r.Endpoints,
		CategoryExternalReference: r.ExternalReferences,
		CategoryNoteLog:           r.NoteLogs,
		CategoryProject:           r.Projects,
		CategoryLocation:          r.Locations,
	}
	return r
}

// Get returns the handler registered under category.
func (r *Registry) Get(category string) (CategoryHandler, error) {
	h, ok := r.byName[category]
	if !ok {
		return nil, common.NewInvalidParameter("lookupCategory", "category", fmt.Sprintf("unknown category %q", category))
	}
	return h, nil
}

// Categories returns the registered category names in sorted order.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
