package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	LocationTypeName = "Location"

	NestedLocationRelationship   = "NestedLocation"
	AdjacentLocationRelationship = "AdjacentLocation"
	AssetLocationRelationship    = "AssetLocation"
)

type LocationProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	Identifier           string            `json:"identifier,omitempty"`
	DisplayName          string            `json:"displayName,omitempty"`
	Description          string            `json:"description,omitempty"`
	Coordinates          string            `json:"coordinates,omitempty"`
	MapProjection        string            `json:"mapProjection,omitempty"`
	PostalAddress        string            `json:"postalAddress,omitempty"`
	TimeZone             string            `json:"timeZone,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

// LocationHandler manages locations. An anchored location describes where
// an asset lives; the asset sits at end2 of AssetLocation.
type LocationHandler struct {
	*ElementHandler[LocationProperties]
}

func NewLocationHandler(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *LocationHandler {
	h := &LocationHandler{newElementHandler[LocationProperties](client, logger, maxPageSize, category{
		typeName:         LocationTypeName,
		required:         []string{"displayName"},
		nameProperties:   []string{qualifiedName, "displayName", "identifier"},
		searchProperties: []string{qualifiedName, "displayName", "identifier", "description", "postalAddress"},
		relationships:    []string{NestedLocationRelationship, AdjacentLocationRelationship, AssetLocationRelationship},
		anchor:           AssetLocationRelationship,
		anchorAtEnd2:     true,
	})}
	h.ops = map[string]operation{
		"nested-locations": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return elementsResult(h.GetNestedLocations(ctx, userID, a.GUID, a.Options))
		},
	}
	return h
}

// GetNestedLocations lists the locations directly inside parentGUID.
func (h *LocationHandler) GetNestedLocations(ctx context.Context, userID, parentGUID string,
	opts models.SearchOptions) ([]*Element[LocationProperties], error) {

	if _, err := h.GetElement(ctx, userID, parentGUID); err != nil {
		return nil, err
	}
	return h.relatedOfType(ctx, "getNestedLocations", userID, parentGUID, models.End1, NestedLocationRelationship, opts)
}
