package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	ProjectTypeName = "Project"

	ProjectManagementRelationship = "ProjectManagement"
	ProjectTeamRelationship       = "ProjectTeam"
	ProjectHierarchyRelationship  = "ProjectHierarchy"
)

// Project statuses.
const (
	ProjectProposed  = "PROPOSED"
	ProjectActive    = "ACTIVE"
	ProjectCompleted = "COMPLETED"
	ProjectAbandoned = "ABANDONED"
)

type ProjectProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	Identifier           string            `json:"identifier,omitempty"`
	Name                 string            `json:"name,omitempty"`
	Description          string            `json:"description,omitempty"`
	Status               string            `json:"status,omitempty"`
	StartDate            string            `json:"startDate,omitempty"`
	PlannedEndDate       string            `json:"plannedEndDate,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

type ProjectHandler struct {
	*ElementHandler[ProjectProperties]
}

func NewProjectHandler(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *ProjectHandler {
	h := &ProjectHandler{newElementHandler[ProjectProperties](client, logger, maxPageSize, category{
		typeName:         ProjectTypeName,
		required:         []string{"name"},
		nameProperties:   []string{qualifiedName, "name", "identifier"},
		searchProperties: []string{qualifiedName, "name", "identifier", "description"},
		relationships:    []string{ProjectManagementRelationship, ProjectTeamRelationship, ProjectHierarchyRelationship},
		validators: []func(string, map[string]any) error{
			oneOf("status", ProjectProposed, ProjectActive, ProjectCompleted, ProjectAbandoned),
		},
	})}
	h.ops = map[string]operation{
		// GUID is the parent project, OtherGUID the subproject.
		"add-subproject": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return linkResult(h.AddSubproject(ctx, userID, a.GUID, a.OtherGUID))
		},
		"subprojects": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return elementsResult(h.GetSubprojects(ctx, userID, a.GUID, a.Options))
		},
	}
	return h
}

// AddSubproject makes childGUID a subproject of parentGUID.
func (h *ProjectHandler) AddSubproject(ctx context.Context, userID, parentGUID, childGUID string) (string, error) {
	for _, guid := range []string{parentGUID, childGUID} {
		if _, err := h.GetElement(ctx, userID, guid); err != nil {
			return "", err
		}
	}
	return h.Link(ctx, userID, ProjectHierarchyRelationship, parentGUID, childGUID, nil)
}

func (h *ProjectHandler) GetSubprojects(ctx context.Context, userID, parentGUID string,
	opts models.SearchOptions) ([]*Element[ProjectProperties], error) {

	return h.relatedOfType(ctx, "getSubprojects", userID, parentGUID, models.End1, ProjectHierarchyRelationship, opts)
}
