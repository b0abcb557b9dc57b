package omclient

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/archive"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryClient is an in-process OpenMetadataClient. Results are copies, so
// callers may modify them freely.
type MemoryClient struct {
	mu            sync.RWMutex
	elements      map[string]*models.Element
	order         []string
	relationships []*models.Relationship

	archiver    archive.Archiver
	maxPageSize int
	now         func() time.Time
}

func NewMemoryClient(archiver archive.Archiver, maxPageSize int) *MemoryClient {
	if archiver == nil {
		archiver = archive.NopArchiver{}
	}
	if maxPageSize <= 0 {
		maxPageSize = common.DefaultMaxPageSize
	}
	return &MemoryClient{
		elements:    make(map[string]*models.Element),
		archiver:    archiver,
		maxPageSize: maxPageSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (c *MemoryClient) CreateMetadataElement(ctx context.Context, userID string, in models.NewElement) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if in.ParentGUID != "" {
		if _, ok := c.elements[in.ParentGUID]; !ok {
			return "", fmt.Errorf("parent %s: %w", in.ParentGUID, common.ErrorNotFound)
		}
	}
	if err := c.checkQualifiedName(in.Properties, ""); err != nil {
		return "", err
	}

	now := c.now()
	e := &models.Element{
		GUID:       uuid.NewString(),
		TypeName:   in.TypeName,
		AnchorGUID: in.AnchorGUID,
		Properties: maps.Clone(in.Properties),
		Version:    1,
		CreatedBy:  userID,
		UpdatedBy:  userID,
		CreateTime: now,
		UpdateTime: now,
	}
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}
	c.elements[e.GUID] = e
	c.order = append(c.order, e.GUID)

	if in.ParentGUID != "" && in.ParentRelationshipTypeName != "" {
		end1, end2 := in.ParentGUID, e.GUID
		if in.ParentAtEnd2 {
			end1, end2 = end2, end1
		}
		c.relationships = append(c.relationships, &models.Relationship{
			GUID:       uuid.NewString(),
			TypeName:   in.ParentRelationshipTypeName,
			End1GUID:   end1,
			End2GUID:   end2,
			Properties: maps.Clone(in.ParentRelationshipProps),
			CreatedBy:  userID,
			CreateTime: now,
		})
	}

	return e.GUID, nil
}

func (c *MemoryClient) UpdateMetadataElement(ctx context.Context, userID, guid string, replaceAll bool, props map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.elements[guid]
	if !ok {
		return common.ErrorNotFound
	}
	merged := mergeProperties(e.Properties, props, replaceAll)
	if err := c.checkQualifiedName(merged, guid); err != nil {
		return err
	}
	e.Properties = merged
	e.Version++
	e.UpdatedBy = userID
	e.UpdateTime = c.now()
	return nil
}

func (c *MemoryClient) DeleteMetadataElement(ctx context.Context, userID, guid string) error {
	c.mu.Lock()

	root, ok := c.elements[guid]
	if !ok {
		c.mu.Unlock()
		return common.ErrorNotFound
	}

	removed := []*models.Element{root}
	for i := 0; i < len(removed); i++ {
		for _, g := range c.order {
			if e := c.elements[g]; e.AnchorGUID == removed[i].GUID {
				removed = append(removed, e)
			}
		}
	}

	gone := make(map[string]bool, len(removed))
	for _, e := range removed {
		gone[e.GUID] = true
		delete(c.elements, e.GUID)
	}

	order := c.order[:0]
	for _, g := range c.order {
		if !gone[g] {
			order = append(order, g)
		}
	}
	c.order = order

	rels := c.relationships[:0]
	for _, r := range c.relationships {
		if !gone[r.End1GUID] && !gone[r.End2GUID] {
			rels = append(rels, r)
		}
	}
	c.relationships = rels

	snapshots := make([]*models.Element, 0, len(removed))
	for _, e := range removed {
		snapshots = append(snapshots, copyElement(e))
	}
	c.mu.Unlock()

	// Archive failures never fail a delete.
	_ = c.archiver.Archive(ctx, snapshots)
	return nil
}

func (c *MemoryClient) GetMetadataElementByGUID(ctx context.Context, userID, guid string) (*models.Element, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.elements[guid]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyElement(e), nil
}

func (c *MemoryClient) FindMetadataElements(ctx context.Context, userID string, q models.ElementQuery) ([]*models.Element, error) {
	re, err := regexp.Compile(q.SearchString)
	if err != nil {
		return nil, common.NewInvalidParameter("findMetadataElements", "searchString", err.Error())
	}
	return c.find(q, re.MatchString), nil
}

func (c *MemoryClient) GetMetadataElementsByPropertyValue(ctx context.Context, userID string, q models.ElementQuery) ([]*models.Element, error) {
	if q.Value == "" {
		return nil, common.NewInvalidParameter("getMetadataElementsByPropertyValue", "value", "must not be empty")
	}
	return c.find(q, func(s string) bool { return s == q.Value }), nil
}

func (c *MemoryClient) find(q models.ElementQuery, match func(string) bool) []*models.Element {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var hits []*models.Element
	for _, g := range c.order {
		e := c.elements[g]
		if q.TypeName != "" && e.TypeName != q.TypeName {
			continue
		}
		if matchesAny(e.Properties, q.PropertyNames, match) {
			hits = append(hits, copyElement(e))
		}
	}
	return page(hits, q.StartFrom, pageSize(q.PageSize, c.maxPageSize))
}

func matchesAny(props map[string]any, names []string, match func(string) bool) bool {
	if len(names) == 0 {
		for _, v := range props {
			if match(propertyText(v)) {
				return true
			}
		}
		return false
	}
	for _, n := range names {
		if v, ok := props[n]; ok && match(propertyText(v)) {
			return true
		}
	}
	return false
}

// propertyText renders a property value the way jsonb_each_text does:
// strings bare, everything else as its JSON encoding.
func propertyText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// checkQualifiedName fails when an element other than self already holds
// the qualifiedName in props. Callers hold the write lock.
func (c *MemoryClient) checkQualifiedName(props map[string]any, self string) error {
	name, _ := props[QualifiedNameProperty].(string)
	if name == "" {
		return nil
	}
	for guid, e := range c.elements {
		if guid != self && e.Properties[QualifiedNameProperty] == name {
			return fmt.Errorf("qualifiedName %q: %w", name, common.ErrorAlreadyExists)
		}
	}
	return nil
}

func (c *MemoryClient) CreateRelatedElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string,
	props map[string]any) (string, error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range []string{end1GUID, end2GUID} {
		if _, ok := c.elements[g]; !ok {
			return "", fmt.Errorf("relationship end %s: %w", g, common.ErrorNotFound)
		}
	}
	for _, r := range c.relationships {
		if r.TypeName == typeName && r.End1GUID == end1GUID && r.End2GUID == end2GUID {
			return "", common.ErrorAlreadyExists
		}
	}

	rel := &models.Relationship{
		GUID:       uuid.NewString(),
		TypeName:   typeName,
		End1GUID:   end1GUID,
		End2GUID:   end2GUID,
		Properties: maps.Clone(props),
		CreatedBy:  userID,
		CreateTime: c.now(),
	}
	c.relationships = append(c.relationships, rel)
	return rel.GUID, nil
}

func (c *MemoryClient) DeleteRelatedElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range c.relationships {
		if r.TypeName == typeName && r.End1GUID == end1GUID && r.End2GUID == end2GUID {
			c.relationships = append(c.relationships[:i], c.relationships[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (c *MemoryClient) GetRelatedMetadataElements(ctx context.Context, userID, guid string, startingEnd int, typeNames []string,
	opts models.SearchOptions) ([]*models.RelatedElement, error) {

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.elements[guid]; !ok {
		return nil, common.ErrorNotFound
	}

	var result []*models.RelatedElement
	for _, r := range c.relationships {
		if len(typeNames) > 0 && !slices.Contains(typeNames, r.TypeName) {
			continue
		}
		var other string
		switch {
		case r.End1GUID == guid && startingEnd != models.End2:
			other = r.End2GUID
		case r.End2GUID == guid && startingEnd != models.End1:
			other = r.End1GUID
		default:
			continue
		}
		rel := *r
		rel.Properties = maps.Clone(r.Properties)
		result = append(result, &models.RelatedElement{Relationship: &rel, Element: copyElement(c.elements[other])})
	}
	return page(result, opts.StartFrom, pageSize(opts.PageSize, c.maxPageSize)), nil
}

func copyElement(e *models.Element) *models.Element {
	out := *e
	out.Properties = maps.Clone(e.Properties)
	return &out
}

func page[T any](items []T, startFrom, size int) []T {
	if startFrom >= len(items) {
		return nil
	}
	items = items[startFrom:]
	if size < len(items) {
		items = items[:size]
	}
	return items
}
