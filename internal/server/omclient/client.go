// Package omclient is the narrow contract between the category handlers and
// the metadata store, together with its PostgreSQL-backed and in-memory
// implementations.
package omclient

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

// QualifiedNameProperty names the property that is unique across every
// stored element. Stores reject a second holder with ErrorAlreadyExists.
const QualifiedNameProperty = "qualifiedName"

// OpenMetadataClient is everything a handler may ask of the store. userID
// is the caller identity; the store, not the handler, decides what it may do.
type OpenMetadataClient interface {
	CreateMetadataElement(ctx context.Context, userID string, in models.NewElement) (string, error)
	UpdateMetadataElement(ctx context.Context, userID, guid string, replaceAll bool, props map[string]any) error
	DeleteMetadataElement(ctx context.Context, userID, guid string) error
	GetMetadataElementByGUID(ctx context.Context, userID, guid string) (*models.Element, error)

	FindMetadataElements(ctx context.Context, userID string, q models.ElementQuery) ([]*models.Element, error)
	GetMetadataElementsByPropertyValue(ctx context.Context, userID string, q models.ElementQuery) ([]*models.Element, error)

	CreateRelatedElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string, props map[string]any) (string, error)
	DeleteRelatedElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string) error
	// GetRelatedMetadataElements pages over the relationships touching guid
	// whose type is one of typeNames; no typeNames means any type.
	GetRelatedMetadataElements(ctx context.Context, userID, guid string, startingEnd int, typeNames []string,
		opts models.SearchOptions) ([]*models.RelatedElement, error)
}

// mergeProperties applies update onto current. With replaceAll the update
// stands alone; otherwise keys in update overwrite those in current and a nil
// value removes the key.
func mergeProperties(current, update map[string]any, replaceAll bool) map[string]any {
	out := make(map[string]any, len(current)+len(update))
	if !replaceAll {
		for k, v := range current {
			out[k] = v
		}
	}
	for k, v := range update {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func pageSize(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}
