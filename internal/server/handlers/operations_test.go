package handlers

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationsAreListedPerCategory(t *testing.T) {
	r, _ := newTestRegistry(t)

	want := map[string][]string{
		CategoryComment:           {"accept-answer", "attached-comments", "clear-answer", "replies"},
		CategoryCommunity:         {"add-member", "members", "remove-member"},
		CategoryEndpoint:          {"by-network-address"},
		CategoryExternalReference: {"link-to-element", "unlink-from-element"},
		CategoryNoteLog:           {"attached-note-logs"},
		CategoryProject:           {"add-subproject", "subprojects"},
		CategoryLocation:          {"nested-locations"},
	}
	for category, ops := range want {
		h, err := r.Get(category)
		require.NoError(t, err)
		assert.Equal(t, ops, h.Operations(), category)
	}
}

func TestInvoke(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()
	asset := createAsset(t, store, "asset::1")

	invoke := func(category, op string, args OperationArgs) (*OperationResult, error) {
		h, err := r.Get(category)
		require.NoError(t, err)
		return h.Invoke(ctx, "alice", op, args)
	}

	question, err := r.Comments.Create(ctx, "alice", asset, CommentProperties{QualifiedName: "q", CommentText: "why?", CommentType: Question})
	require.NoError(t, err)
	answer, err := r.Comments.Create(ctx, "bob", question, CommentProperties{QualifiedName: "a", CommentText: "because", CommentType: Answer})
	require.NoError(t, err)

	t.Run("comments", func(t *testing.T) {
		res, err := invoke(CategoryComment, "attached-comments", OperationArgs{GUID: asset})
		require.NoError(t, err)
		require.Len(t, res.Elements, 1)
		assert.Equal(t, question, res.Elements[0].GUID)
		assert.Equal(t, "why?", res.Elements[0].Properties["commentText"])

		res, err = invoke(CategoryComment, "replies", OperationArgs{GUID: question})
		require.NoError(t, err)
		require.Len(t, res.Elements, 1)
		assert.Equal(t, answer, res.Elements[0].GUID)

		res, err = invoke(CategoryComment, "accept-answer", OperationArgs{GUID: question, OtherGUID: answer})
		require.NoError(t, err)
		assert.NotEmpty(t, res.RelationshipGUID)

		_, err = invoke(CategoryComment, "clear-answer", OperationArgs{GUID: question, OtherGUID: answer})
		require.NoError(t, err)
		_, err = invoke(CategoryComment, "clear-answer", OperationArgs{GUID: question, OtherGUID: answer})
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("community members", func(t *testing.T) {
		community, err := r.Communities.Create(ctx, "alice", "", CommunityProperties{QualifiedName: "c", Name: "Data"})
		require.NoError(t, err)

		_, err = invoke(CategoryCommunity, "add-member", OperationArgs{GUID: community, OtherGUID: asset, Value: "LEADER"})
		require.NoError(t, err)

		res, err := invoke(CategoryCommunity, "members", OperationArgs{GUID: community})
		require.NoError(t, err)
		require.Len(t, res.Related, 1)
		assert.Equal(t, "LEADER", res.Related[0].Relationship.Properties["membershipType"])

		_, err = invoke(CategoryCommunity, "remove-member", OperationArgs{GUID: community, OtherGUID: asset})
		require.NoError(t, err)
	})

	t.Run("endpoint by address", func(t *testing.T) {
		ep, err := r.Endpoints.Create(ctx, "alice", "", EndpointProperties{QualifiedName: "ep", NetworkAddress: "db:5432"})
		require.NoError(t, err)

		res, err := invoke(CategoryEndpoint, "by-network-address", OperationArgs{Value: "db:5432"})
		require.NoError(t, err)
		require.Len(t, res.Elements, 1)
		assert.Equal(t, ep, res.Elements[0].GUID)

		_, err = invoke(CategoryEndpoint, "by-network-address", OperationArgs{})
		requireInvalidParameter(t, err, "networkAddress")
	})

	t.Run("external reference", func(t *testing.T) {
		ref, err := r.ExternalReferences.Create(ctx, "alice", "", ExternalReferenceProperties{QualifiedName: "ref", URL: "https://example.com"})
		require.NoError(t, err)

		res, err := invoke(CategoryExternalReference, "link-to-element",
			OperationArgs{GUID: asset, OtherGUID: ref, Value: "doc-1", Description: "datasheet"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.RelationshipGUID)

		_, err = invoke(CategoryExternalReference, "unlink-from-element", OperationArgs{GUID: asset, OtherGUID: ref})
		require.NoError(t, err)
	})

	t.Run("note logs, projects and locations", func(t *testing.T) {
		_, err := r.NoteLogs.Create(ctx, "alice", asset, NoteLogProperties{QualifiedName: "log", Name: "Ops"})
		require.NoError(t, err)
		res, err := invoke(CategoryNoteLog, "attached-note-logs", OperationArgs{GUID: asset})
		require.NoError(t, err)
		assert.Len(t, res.Elements, 1)

		parent, err := r.Projects.Create(ctx, "alice", "", ProjectProperties{QualifiedName: "p1", Name: "Platform"})
		require.NoError(t, err)
		child, err := r.Projects.Create(ctx, "alice", "", ProjectProperties{QualifiedName: "p2", Name: "Storage"})
		require.NoError(t, err)
		_, err = invoke(CategoryProject, "add-subproject", OperationArgs{GUID: parent, OtherGUID: child})
		require.NoError(t, err)
		res, err = invoke(CategoryProject, "subprojects", OperationArgs{GUID: parent, Options: models.SearchOptions{PageSize: 1}})
		require.NoError(t, err)
		require.Len(t, res.Elements, 1)
		assert.Equal(t, child, res.Elements[0].GUID)

		dc, err := r.Locations.Create(ctx, "alice", "", LocationProperties{QualifiedName: "dc", DisplayName: "DC"})
		require.NoError(t, err)
		res, err = invoke(CategoryLocation, "nested-locations", OperationArgs{GUID: dc})
		require.NoError(t, err)
		assert.Empty(t, res.Elements)
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := invoke(CategoryLocation, "teleport", OperationArgs{GUID: asset})
		requireInvalidParameter(t, err, "operation")
	})
}
