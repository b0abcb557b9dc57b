package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	ExternalReferenceTypeName = "ExternalReference"

	ExternalReferenceLinkRelationship = "ExternalReferenceLink"
)

type ExternalReferenceProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	DisplayName          string            `json:"displayName,omitempty"`
	Description          string            `json:"description,omitempty"`
	URL                  string            `json:"url,omitempty"`
	ReferenceVersion     string            `json:"referenceVersion,omitempty"`
	OwningDepartment     string            `json:"owningDepartment,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

type ExternalReferenceHandler struct {
	*ElementHandler[ExternalReferenceProperties]
}

func NewExternalReferenceHandler(client omclient.OpenMetadataClient, logger logging.Logger,
	maxPageSize int) *ExternalReferenceHandler {

	h := &ExternalReferenceHandler{newElementHandler[ExternalReferenceProperties](client, logger, maxPageSize, category{
		typeName:         ExternalReferenceTypeName,
		required:         []string{"url"},
		nameProperties:   []string{qualifiedName, "displayName"},
		searchProperties: []string{qualifiedName, "displayName", "description", "url"},
		relationships:    []string{ExternalReferenceLinkRelationship},
		anchor:           ExternalReferenceLinkRelationship,
	})}
	h.ops = map[string]operation{
		// GUID is the element, OtherGUID the reference and Value the
		// referenceId.
		"link-to-element": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return linkResult(h.LinkToElement(ctx, userID, a.GUID, a.OtherGUID, a.Value, a.Description))
		},
		"unlink-from-element": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return doneResult(h.UnlinkFromElement(ctx, userID, a.GUID, a.OtherGUID))
		},
	}
	return h
}

// LinkToElement attaches the reference to elementGUID. referenceID names the
// reference from the element's point of view.
func (h *ExternalReferenceHandler) LinkToElement(ctx context.Context, userID, elementGUID, referenceGUID,
	referenceID, description string) (string, error) {

	if _, err := h.GetElement(ctx, userID, referenceGUID); err != nil {
		return "", err
	}
	props := map[string]any{}
	if referenceID != "" {
		props["referenceId"] = referenceID
	}
	if description != "" {
		props["description"] = description
	}
	return h.Link(ctx, userID, ExternalReferenceLinkRelationship, elementGUID, referenceGUID, props)
}

func (h *ExternalReferenceHandler) UnlinkFromElement(ctx context.Context, userID, elementGUID, referenceGUID string) error {
	return h.Detach(ctx, userID, ExternalReferenceLinkRelationship, elementGUID, referenceGUID)
}
