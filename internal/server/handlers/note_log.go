package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	NoteLogTypeName = "NoteLog"

	AttachedNoteLogRelationship = "AttachedNoteLog"
)

type NoteLogProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	Name                 string            `json:"name,omitempty"`
	Description          string            `json:"description,omitempty"`
	IsPublic             bool              `json:"isPublic,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

type NoteLogHandler struct {
	*ElementHandler[NoteLogProperties]
}

func NewNoteLogHandler(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *NoteLogHandler {
	h := &NoteLogHandler{newElementHandler[NoteLogProperties](client, logger, maxPageSize, category{
		typeName:         NoteLogTypeName,
		required:         []string{"name"},
		nameProperties:   []string{qualifiedName, "name"},
		searchProperties: []string{qualifiedName, "name", "description"},
		relationships:    []string{AttachedNoteLogRelationship},
		anchor:           AttachedNoteLogRelationship,
	})}
	h.ops = map[string]operation{
		"attached-note-logs": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return elementsResult(h.GetAttachedNoteLogs(ctx, userID, a.GUID, a.Options))
		},
	}
	return h
}

func (h *NoteLogHandler) GetAttachedNoteLogs(ctx context.Context, userID, elementGUID string,
	opts models.SearchOptions) ([]*Element[NoteLogProperties], error) {

	return h.relatedOfType(ctx, "getAttachedNoteLogs", userID, elementGUID, models.End1, AttachedNoteLogRelationship, opts)
}
