package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	CommunityTypeName = "Community"

	CommunityMembershipRelationship = "CommunityMembership"
	NestedCommunityRelationship     = "NestedCommunity"
)

type CommunityProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	Name                 string            `json:"name,omitempty"`
	Description          string            `json:"description,omitempty"`
	Mission              string            `json:"mission,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

type CommunityHandler struct {
	*ElementHandler[CommunityProperties]
}

func NewCommunityHandler(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *CommunityHandler {
	h := &CommunityHandler{newElementHandler[CommunityProperties](client, logger, maxPageSize, category{
		typeName:         CommunityTypeName,
		required:         []string{"name"},
		nameProperties:   []string{qualifiedName, "name"},
		searchProperties: []string{qualifiedName, "name", "description", "mission"},
		relationships:    []string{CommunityMembershipRelationship, NestedCommunityRelationship},
	})}
	h.ops = map[string]operation{
		// GUID is the community, OtherGUID the member and Value its role.
		"add-member": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return linkResult(h.AddMember(ctx, userID, a.GUID, a.OtherGUID, a.Value))
		},
		"remove-member": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return doneResult(h.RemoveMember(ctx, userID, a.GUID, a.OtherGUID))
		},
		"members": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return relatedResult(h.GetMembers(ctx, userID, a.GUID, a.Options))
		},
	}
	return h
}

// AddMember links memberGUID to the community. role is stored on the
// membership relationship when set.
func (h *CommunityHandler) AddMember(ctx context.Context, userID, communityGUID, memberGUID, role string) (string, error) {
	if _, err := h.GetElement(ctx, userID, communityGUID); err != nil {
		return "", err
	}
	var props map[string]any
	if role != "" {
		props = map[string]any{"membershipType": role}
	}
	return h.Link(ctx, userID, CommunityMembershipRelationship, communityGUID, memberGUID, props)
}

func (h *CommunityHandler) RemoveMember(ctx context.Context, userID, communityGUID, memberGUID string) error {
	return h.Detach(ctx, userID, CommunityMembershipRelationship, communityGUID, memberGUID)
}

// GetMembers returns the members of communityGUID together with their
// membership relationships.
func (h *CommunityHandler) GetMembers(ctx context.Context, userID, communityGUID string,
	opts models.SearchOptions) ([]*models.RelatedElement, error) {

	op := "getCommunityMembers"
	if err := requireParams(op, "userID", userID, "communityGUID", communityGUID); err != nil {
		return nil, err
	}
	if err := validatePaging(op, opts, h.maxPageSize); err != nil {
		return nil, err
	}
	if _, err := h.get(ctx, op, userID, communityGUID); err != nil {
		return nil, err
	}

	members, err := h.client.GetRelatedMetadataElements(ctx, userID, communityGUID, models.End1,
		[]string{CommunityMembershipRelationship}, opts)
	if err != nil {
		return nil, h.fail(ctx, op, err)
	}
	return members, nil
}
