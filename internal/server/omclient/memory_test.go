package omclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingArchiver struct {
	archived []*models.Element
}

func (r *recordingArchiver) Archive(ctx context.Context, elements []*models.Element) error {
	r.archived = append(r.archived, elements...)
	return nil
}

func mustCreate(t *testing.T, c OpenMetadataClient, in models.NewElement) string {
	t.Helper()
	guid, err := c.CreateMetadataElement(context.Background(), "alice", in)
	require.NoError(t, err)
	return guid
}

func TestMemoryClient_CreateAndGet(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	guid := mustCreate(t, c, models.NewElement{
		TypeName:   "Community",
		Properties: map[string]any{"qualifiedName": "community::data", "name": "Data"},
	})

	e, err := c.GetMetadataElementByGUID(ctx, "bob", guid)
	require.NoError(t, err)
	assert.Equal(t, "Community", e.TypeName)
	assert.Equal(t, int64(1), e.Version)
	assert.Equal(t, "alice", e.CreatedBy)
	assert.Equal(t, "Data", e.StringProperty("name"))

	// returned copies are detached from the store
	e.Properties["name"] = "changed"
	again, err := c.GetMetadataElementByGUID(ctx, "bob", guid)
	require.NoError(t, err)
	assert.Equal(t, "Data", again.StringProperty("name"))
}

func TestMemoryClient_CreateWithParentRelationship(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	asset := mustCreate(t, c, models.NewElement{TypeName: "Asset", Properties: map[string]any{"qualifiedName": "a"}})
	comment := mustCreate(t, c, models.NewElement{
		TypeName:                   "Comment",
		AnchorGUID:                 asset,
		Properties:                 map[string]any{"qualifiedName": "c"},
		ParentGUID:                 asset,
		ParentRelationshipTypeName: "AttachedComment",
	})

	related, err := c.GetRelatedMetadataElements(ctx, "alice", asset, models.End1, []string{"AttachedComment"}, models.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, comment, related[0].Element.GUID)
	assert.Equal(t, asset, related[0].Relationship.End1GUID)

	_, err = c.CreateMetadataElement(ctx, "alice", models.NewElement{TypeName: "Comment", ParentGUID: "missing", ParentRelationshipTypeName: "AttachedComment"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryClient_Update(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	guid := mustCreate(t, c, models.NewElement{TypeName: "Endpoint", Properties: map[string]any{"qualifiedName": "e", "protocol": "https"}})

	require.NoError(t, c.UpdateMetadataElement(ctx, "bob", guid, false, map[string]any{"networkAddress": "host:443"}))
	e, _ := c.GetMetadataElementByGUID(ctx, "bob", guid)
	assert.Equal(t, map[string]any{"qualifiedName": "e", "protocol": "https", "networkAddress": "host:443"}, e.Properties)
	assert.Equal(t, int64(2), e.Version)
	assert.Equal(t, "bob", e.UpdatedBy)

	require.NoError(t, c.UpdateMetadataElement(ctx, "bob", guid, true, map[string]any{"qualifiedName": "e2"}))
	e, _ = c.GetMetadataElementByGUID(ctx, "bob", guid)
	assert.Equal(t, map[string]any{"qualifiedName": "e2"}, e.Properties)
	assert.Equal(t, int64(3), e.Version)

	require.ErrorIs(t, c.UpdateMetadataElement(ctx, "bob", "missing", false, nil), common.ErrorNotFound)
}

func TestMemoryClient_DeleteCascadesAnchoredAndArchives(t *testing.T) {
	arch := &recordingArchiver{}
	c := NewMemoryClient(arch, 0)
	ctx := context.Background()

	asset := mustCreate(t, c, models.NewElement{TypeName: "Asset", Properties: map[string]any{"qualifiedName": "a"}})
	other := mustCreate(t, c, models.NewElement{TypeName: "Asset", Properties: map[string]any{"qualifiedName": "b"}})
	comment := mustCreate(t, c, models.NewElement{TypeName: "Comment", AnchorGUID: asset, ParentGUID: asset, ParentRelationshipTypeName: "AttachedComment"})
	reply := mustCreate(t, c, models.NewElement{TypeName: "Comment", AnchorGUID: comment, ParentGUID: comment, ParentRelationshipTypeName: "AttachedComment"})
	_, err := c.CreateRelatedElements(ctx, "alice", "Link", other, comment, nil)
	require.NoError(t, err)

	require.NoError(t, c.DeleteMetadataElement(ctx, "alice", asset))

	for _, g := range []string{asset, comment, reply} {
		_, err := c.GetMetadataElementByGUID(ctx, "alice", g)
		require.ErrorIs(t, err, common.ErrorNotFound)
	}
	related, err := c.GetRelatedMetadataElements(ctx, "alice", other, models.AnyEnd, nil, models.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, related)

	require.Len(t, arch.archived, 3)
	assert.Equal(t, asset, arch.archived[0].GUID)

	require.ErrorIs(t, c.DeleteMetadataElement(ctx, "alice", asset), common.ErrorNotFound)
}

func TestMemoryClient_FindAndPaging(t *testing.T) {
	c := NewMemoryClient(nil, 2)
	ctx := context.Background()

	for _, n := range []string{"data-lake", "data-mesh", "finance", "data-ops"} {
		mustCreate(t, c, models.NewElement{TypeName: "Project", Properties: map[string]any{"qualifiedName": "project::" + n, "name": n}})
	}
	mustCreate(t, c, models.NewElement{TypeName: "Community", Properties: map[string]any{"name": "data-people"}})

	got, err := c.FindMetadataElements(ctx, "u", models.ElementQuery{TypeName: "Project", PropertyNames: []string{"name"}, SearchString: "^data"})
	require.NoError(t, err)
	require.Len(t, got, 2, "page size is capped by the store maximum")
	assert.Equal(t, "data-lake", got[0].StringProperty("name"))

	got, err = c.FindMetadataElements(ctx, "u", models.ElementQuery{
		TypeName: "Project", PropertyNames: []string{"name"}, SearchString: "^data",
		SearchOptions: models.SearchOptions{StartFrom: 2, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "data-ops", got[0].StringProperty("name"))

	got, err = c.FindMetadataElements(ctx, "u", models.ElementQuery{TypeName: "Project", SearchString: "finance"})
	require.NoError(t, err)
	require.Len(t, got, 1, "empty property list searches every property")

	_, err = c.FindMetadataElements(ctx, "u", models.ElementQuery{SearchString: "("})
	require.ErrorIs(t, err, common.ErrorInvalidParameter)
}

func TestMemoryClient_GetByPropertyValue(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	mustCreate(t, c, models.NewElement{TypeName: "Endpoint", Properties: map[string]any{"networkAddress": "h:1"}})
	mustCreate(t, c, models.NewElement{TypeName: "Endpoint", Properties: map[string]any{"networkAddress": "h:10"}})

	got, err := c.GetMetadataElementsByPropertyValue(ctx, "u", models.ElementQuery{TypeName: "Endpoint", PropertyNames: []string{"networkAddress"}, Value: "h:1"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = c.GetMetadataElementsByPropertyValue(ctx, "u", models.ElementQuery{TypeName: "Endpoint"})
	require.ErrorIs(t, err, common.ErrorInvalidParameter)
}

func TestMemoryClient_Relationships(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	a := mustCreate(t, c, models.NewElement{TypeName: "Location"})
	b := mustCreate(t, c, models.NewElement{TypeName: "Location"})

	_, err := c.CreateRelatedElements(ctx, "u", "NestedLocation", a, b, map[string]any{"note": "x"})
	require.NoError(t, err)

	_, err = c.CreateRelatedElements(ctx, "u", "NestedLocation", a, b, nil)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = c.CreateRelatedElements(ctx, "u", "NestedLocation", a, "missing", nil)
	require.ErrorIs(t, err, common.ErrorNotFound)

	fromB, err := c.GetRelatedMetadataElements(ctx, "u", b, models.End2, []string{"NestedLocation"}, models.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, fromB, 1)
	assert.Equal(t, a, fromB[0].Element.GUID)

	none, err := c.GetRelatedMetadataElements(ctx, "u", b, models.End1, []string{"NestedLocation"}, models.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, c.DeleteRelatedElements(ctx, "u", "NestedLocation", a, b))
	require.ErrorIs(t, c.DeleteRelatedElements(ctx, "u", "NestedLocation", a, b), common.ErrorNotFound)

	_, err = c.GetRelatedMetadataElements(ctx, "u", "missing", models.AnyEnd, nil, models.SearchOptions{})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryClient_RelatedTypeSetPagesAfterFiltering(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	hub := mustCreate(t, c, models.NewElement{TypeName: "Location"})
	var want []string
	for i, typeName := range []string{"Other", "NestedLocation", "Other", "Other", "AssetLocation", "Other"} {
		g := mustCreate(t, c, models.NewElement{TypeName: "Location"})
		_, err := c.CreateRelatedElements(ctx, "u", typeName, hub, g, map[string]any{"i": i})
		require.NoError(t, err)
		if typeName != "Other" {
			want = append(want, g)
		}
	}

	types := []string{"NestedLocation", "AssetLocation"}
	var got []string
	for start := 0; ; start++ {
		pg, err := c.GetRelatedMetadataElements(ctx, "u", hub, models.AnyEnd, types, models.SearchOptions{StartFrom: start, PageSize: 1})
		require.NoError(t, err)
		if len(pg) == 0 {
			break
		}
		require.Len(t, pg, 1)
		got = append(got, pg[0].Element.GUID)
	}
	assert.Equal(t, want, got)

	all, err := c.GetRelatedMetadataElements(ctx, "u", hub, models.AnyEnd, nil, models.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestMemoryClient_QualifiedNameIsUnique(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	first := mustCreate(t, c, models.NewElement{TypeName: "Community", Properties: map[string]any{"qualifiedName": "same"}})
	second := mustCreate(t, c, models.NewElement{TypeName: "Project", Properties: map[string]any{"qualifiedName": "other"}})

	_, err := c.CreateMetadataElement(ctx, "alice", models.NewElement{TypeName: "Project", Properties: map[string]any{"qualifiedName": "same"}})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	err = c.UpdateMetadataElement(ctx, "alice", second, false, map[string]any{"qualifiedName": "same"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	e, err := c.GetMetadataElementByGUID(ctx, "alice", second)
	require.NoError(t, err)
	assert.Equal(t, "other", e.StringProperty("qualifiedName"), "a rejected update leaves the element alone")

	require.NoError(t, c.UpdateMetadataElement(ctx, "alice", first, false, map[string]any{"qualifiedName": "same", "name": "n"}),
		"an element may keep its own name")
}

func TestMemoryClient_ConcurrentCreatesWithSameName(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		dupes   atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.CreateMetadataElement(ctx, "alice", models.NewElement{
				TypeName:   "Community",
				Properties: map[string]any{"qualifiedName": "same"},
			})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, common.ErrorAlreadyExists):
				dupes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), dupes.Load())
}

func TestMemoryClient_SearchMatchesJSONText(t *testing.T) {
	c := NewMemoryClient(nil, 0)
	ctx := context.Background()

	guid := mustCreate(t, c, models.NewElement{TypeName: "Project", Properties: map[string]any{
		"qualifiedName":        "p",
		"additionalProperties": map[string]any{"team": "core"},
		"budget":               1.5e6,
		"isPublic":             true,
	}})

	tests := []struct {
		name  string
		prop  string
		value string
	}{
		{name: "map", prop: "additionalProperties", value: `{"team":"core"}`},
		{name: "large float", prop: "budget", value: "1500000"},
		{name: "bool", prop: "isPublic", value: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.GetMetadataElementsByPropertyValue(ctx, "u", models.ElementQuery{
				PropertyNames: []string{tt.prop}, Value: tt.value,
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, guid, got[0].GUID)
		})
	}

	got, err := c.FindMetadataElements(ctx, "u", models.ElementQuery{PropertyNames: []string{"additionalProperties"}, SearchString: `"team":`})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMergeProperties(t *testing.T) {
	current := map[string]any{"a": 1, "b": 2}

	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, mergeProperties(current, map[string]any{"b": 3, "c": 4}, false))
	assert.Equal(t, map[string]any{"a": 1}, mergeProperties(current, map[string]any{"b": nil}, false))
	assert.Equal(t, map[string]any{"c": 4}, mergeProperties(current, map[string]any{"c": 4}, true))
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, current, "input must not be modified")
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, 100, pageSize(0, 100))
	assert.Equal(t, 100, pageSize(500, 100))
	assert.Equal(t, 10, pageSize(10, 100))
}
