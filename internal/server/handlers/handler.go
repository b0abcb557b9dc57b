// Package handlers exposes typed create, update, delete, search and
// relationship operations for each metadata element category. Handlers
// validate their input, shape the property map and leave everything else to
// the OpenMetadataClient.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const qualifiedName = omclient.QualifiedNameProperty

// category describes what distinguishes one element type from another.
type category struct {
	typeName string
	required []string

	// nameProperties are matched exactly by GetByName; searchProperties are
	// matched by regular expression in Find.
	nameProperties   []string
	searchProperties []string

	relationships []string

	// anchor is the relationship created between a new element and its
	// anchor. The anchor sits at end1 unless anchorAtEnd2 is set.
	anchor       string
	anchorAtEnd2 bool

	validators []func(op string, props map[string]any) error
}

// ElementHandler implements the operations shared by every category for
// elements whose properties decode into P.
type ElementHandler[P any] struct {
	client      omclient.OpenMetadataClient
	logger      logging.Logger
	maxPageSize int
	cat         category
	ops         map[string]operation
}

func newElementHandler[P any](client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int,
	cat category) *ElementHandler[P] {

	if logger == nil {
		logger = logging.Nop{}
	}
	if maxPageSize <= 0 {
		maxPageSize = common.DefaultMaxPageSize
	}
	return &ElementHandler[P]{
		client:      client,
		logger:      logger.With("module", "handlers", "type", cat.typeName),
		maxPageSize: maxPageSize,
		cat:         cat,
	}
}

func (h *ElementHandler[P]) TypeName() string { return h.cat.typeName }

func (h *ElementHandler[P]) RelationshipTypes() []string { return slices.Clone(h.cat.relationships) }

func (h *ElementHandler[P]) op(verb string) string { return verb + h.cat.typeName }

// Create stores a new element. When anchorGUID is set the element is
// anchored to it and linked through the category's anchor relationship.
func (h *ElementHandler[P]) Create(ctx context.Context, userID, anchorGUID string, props P) (string, error) {
	m, err := toProperties(props)
	if err != nil {
		return "", common.NewInvalidParameter(h.op("create"), "properties", err.Error())
	}
	return h.create(ctx, userID, anchorGUID, m)
}

func (h *ElementHandler[P]) CreateJSON(ctx context.Context, userID, anchorGUID string, raw []byte) (string, error) {
	props, err := decodeStrict[P](raw)
	if err != nil {
		return "", common.NewInvalidParameter(h.op("create"), "properties", err.Error())
	}
	return h.Create(ctx, userID, anchorGUID, props)
}

func (h *ElementHandler[P]) create(ctx context.Context, userID, anchorGUID string, props map[string]any) (string, error) {
	op := h.op("create")

	if err := requireParam(op, "userID", userID); err != nil {
		return "", err
	}
	if err := h.validateProperties(op, props); err != nil {
		return "", err
	}
	if anchorGUID != "" && h.cat.anchor == "" {
		return "", common.NewInvalidParameter(op, "anchorGUID", h.cat.typeName+" elements cannot be anchored")
	}

	in := models.NewElement{
		TypeName:   h.cat.typeName,
		AnchorGUID: anchorGUID,
		Properties: props,
	}
	if anchorGUID != "" {
		in.ParentGUID = anchorGUID
		in.ParentRelationshipTypeName = h.cat.anchor
		in.ParentAtEnd2 = h.cat.anchorAtEnd2
	}

	guid, err := h.client.CreateMetadataElement(ctx, userID, in)
	if err != nil {
		return "", h.fail(ctx, op, err)
	}

	h.logger.Info(ctx, "element created", "guid", guid, "user", userID)
	return guid, nil
}

// Update changes the properties of guid. With replaceAll the given
// properties replace the stored ones and must be complete; otherwise they are
// merged key by key. Unset fields are left alone; UpdateJSON can remove a
// property by sending it as null.
func (h *ElementHandler[P]) Update(ctx context.Context, userID, guid string, replaceAll bool, props P) error {
	m, err := toProperties(props)
	if err != nil {
		return common.NewInvalidParameter(h.op("update"), "properties", err.Error())
	}
	return h.update(ctx, userID, guid, replaceAll, m)
}

func (h *ElementHandler[P]) UpdateJSON(ctx context.Context, userID, guid string, replaceAll bool, raw []byte) error {
	op := h.op("update")

	props, err := decodeStrict[P](raw)
	if err != nil {
		return common.NewInvalidParameter(op, "properties", err.Error())
	}
	m, err := toProperties(props)
	if err != nil {
		return common.NewInvalidParameter(op, "properties", err.Error())
	}
	removed, err := nullFields[P](raw)
	if err != nil {
		return common.NewInvalidParameter(op, "properties", err.Error())
	}
	for _, name := range removed {
		m[name] = nil
	}
	return h.update(ctx, userID, guid, replaceAll, m)
}

func (h *ElementHandler[P]) update(ctx context.Context, userID, guid string, replaceAll bool, props map[string]any) error {
	op := h.op("update")

	if err := requireParams(op, "userID", userID, "guid", guid); err != nil {
		return err
	}

	current, err := h.get(ctx, op, userID, guid)
	if err != nil {
		return err
	}

	// result is what the store will hold; a nil value removes the property.
	result := make(map[string]any, len(current.Properties)+len(props))
	if !replaceAll {
		for k, v := range current.Properties {
			result[k] = v
		}
	}
	for k, v := range props {
		if v == nil {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	if err := h.validateProperties(op, result); err != nil {
		return err
	}

	if err := h.client.UpdateMetadataElement(ctx, userID, guid, replaceAll, props); err != nil {
		return h.fail(ctx, op, err)
	}

	h.logger.Info(ctx, "element updated", "guid", guid, "user", userID, "replace_all", replaceAll)
	return nil
}

// Delete removes guid along with everything anchored to it.
func (h *ElementHandler[P]) Delete(ctx context.Context, userID, guid string) error {
	op := h.op("delete")

	if err := requireParams(op, "userID", userID, "guid", guid); err != nil {
		return err
	}
	if _, err := h.get(ctx, op, userID, guid); err != nil {
		return err
	}
	if err := h.client.DeleteMetadataElement(ctx, userID, guid); err != nil {
		return h.fail(ctx, op, err)
	}

	h.logger.Info(ctx, "element deleted", "guid", guid, "user", userID)
	return nil
}

func (h *ElementHandler[P]) GetByGUID(ctx context.Context, userID, guid string) (*Element[P], error) {
	e, err := h.GetElement(ctx, userID, guid)
	if err != nil {
		return nil, err
	}
	return typed[P](e)
}

// GetElement is GetByGUID without decoding the properties.
func (h *ElementHandler[P]) GetElement(ctx context.Context, userID, guid string) (*models.Element, error) {
	op := h.op("get")
	if err := requireParams(op, "userID", userID, "guid", guid); err != nil {
		return nil, err
	}
	return h.get(ctx, op, userID, guid)
}

// get loads guid and hides elements of other categories.
func (h *ElementHandler[P]) get(ctx context.Context, op, userID, guid string) (*models.Element, error) {
	e, err := h.client.GetMetadataElementByGUID(ctx, userID, guid)
	if err != nil {
		return nil, h.fail(ctx, op, err)
	}
	if e.TypeName != h.cat.typeName {
		return nil, fmt.Errorf("%s %s: %w", h.cat.typeName, guid, common.ErrorNotFound)
	}
	return e, nil
}

func (h *ElementHandler[P]) GetByName(ctx context.Context, userID, name string, opts models.SearchOptions) ([]*Element[P], error) {
	return typedList[P](h.GetElementsByName(ctx, userID, name, opts))
}

// GetElementsByName returns elements whose name properties equal name.
func (h *ElementHandler[P]) GetElementsByName(ctx context.Context, userID, name string,
	opts models.SearchOptions) ([]*models.Element, error) {

	op := h.op("get") + "sByName"
	if err := requireParams(op, "userID", userID, "name", name); err != nil {
		return nil, err
	}
	return h.byValue(ctx, op, userID, h.cat.nameProperties, name, opts)
}

func (h *ElementHandler[P]) byValue(ctx context.Context, op, userID string, propertyNames []string, value string,
	opts models.SearchOptions) ([]*models.Element, error) {

	if err := validatePaging(op, opts, h.maxPageSize); err != nil {
		return nil, err
	}
	found, err := h.client.GetMetadataElementsByPropertyValue(ctx, userID, models.ElementQuery{
		TypeName:      h.cat.typeName,
		PropertyNames: propertyNames,
		Value:         value,
		SearchOptions: opts,
	})
	if err != nil {
		return nil, h.fail(ctx, op, err)
	}
	return found, nil
}

func (h *ElementHandler[P]) Find(ctx context.Context, userID, searchString string, opts models.SearchOptions) ([]*Element[P], error) {
	return typedList[P](h.FindElements(ctx, userID, searchString, opts))
}

// FindElements returns elements with a search property matching the
// regular expression searchString.
func (h *ElementHandler[P]) FindElements(ctx context.Context, userID, searchString string,
	opts models.SearchOptions) ([]*models.Element, error) {

	op := "find" + h.cat.typeName + "s"
	if err := requireParam(op, "userID", userID); err != nil {
		return nil, err
	}
	if err := validateSearchString(op, searchString); err != nil {
		return nil, err
	}
	if err := validatePaging(op, opts, h.maxPageSize); err != nil {
		return nil, err
	}

	found, err := h.client.FindMetadataElements(ctx, userID, models.ElementQuery{
		TypeName:      h.cat.typeName,
		PropertyNames: h.cat.searchProperties,
		SearchString:  searchString,
		SearchOptions: opts,
	})
	if err != nil {
		return nil, h.fail(ctx, op, err)
	}
	return found, nil
}

// Link creates a relationship of one of the category's relationship types.
func (h *ElementHandler[P]) Link(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string,
	props map[string]any) (string, error) {

	op := "link" + h.cat.typeName
	if err := h.checkRelationship(op, userID, relationshipType, end1GUID, end2GUID); err != nil {
		return "", err
	}

	guid, err := h.client.CreateRelatedElements(ctx, userID, relationshipType, end1GUID, end2GUID, props)
	if err != nil {
		return "", h.fail(ctx, op, err)
	}

	h.logger.Info(ctx, "relationship created", "relationship", relationshipType, "end1", end1GUID, "end2", end2GUID, "user", userID)
	return guid, nil
}

func (h *ElementHandler[P]) Detach(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string) error {
	op := "detach" + h.cat.typeName
	if err := h.checkRelationship(op, userID, relationshipType, end1GUID, end2GUID); err != nil {
		return err
	}

	if err := h.client.DeleteRelatedElements(ctx, userID, relationshipType, end1GUID, end2GUID); err != nil {
		return h.fail(ctx, op, err)
	}

	h.logger.Info(ctx, "relationship removed", "relationship", relationshipType, "end1", end1GUID, "end2", end2GUID, "user", userID)
	return nil
}

func (h *ElementHandler[P]) checkRelationship(op, userID, relationshipType, end1GUID, end2GUID string) error {
	if err := requireParams(op, "userID", userID, "relationshipType", relationshipType,
		"end1GUID", end1GUID, "end2GUID", end2GUID); err != nil {
		return err
	}
	if !slices.Contains(h.cat.relationships, relationshipType) {
		return common.NewInvalidParameter(op, "relationshipType",
			fmt.Sprintf("%s is not a %s relationship", relationshipType, h.cat.typeName))
	}
	return nil
}

// GetRelated lists elements linked to guid, which must belong to this
// category. An empty relationshipType matches every type the category
// declares.
func (h *ElementHandler[P]) GetRelated(ctx context.Context, userID, guid, relationshipType string,
	opts models.SearchOptions) ([]*models.RelatedElement, error) {

	op := "getRelated" + h.cat.typeName + "Elements"
	if err := requireParams(op, "userID", userID, "guid", guid); err != nil {
		return nil, err
	}
	if relationshipType != "" && !slices.Contains(h.cat.relationships, relationshipType) {
		return nil, common.NewInvalidParameter(op, "relationshipType",
			fmt.Sprintf("%s is not a %s relationship", relationshipType, h.cat.typeName))
	}
	if err := validatePaging(op, opts, h.maxPageSize); err != nil {
		return nil, err
	}
	if _, err := h.get(ctx, op, userID, guid); err != nil {
		return nil, err
	}

	types := h.cat.relationships
	if relationshipType != "" {
		types = []string{relationshipType}
	}
	related, err := h.client.GetRelatedMetadataElements(ctx, userID, guid, models.AnyEnd, types, opts)
	if err != nil {
		return nil, h.fail(ctx, op, err)
	}
	return related, nil
}

// relatedOfType follows relationshipType from guid, where guid sits at
// startingEnd, and keeps only elements of this category. guid itself may be
// of any type.
func (h *ElementHandler[P]) relatedOfType(ctx context.Context, op, userID, guid string, startingEnd int,
	relationshipType string, opts models.SearchOptions) ([]*Element[P], error) {

	if err := requireParams(op, "userID", userID, "guid", guid); err != nil {
		return nil, err
	}
	if err := validatePaging(op, opts, h.maxPageSize); err != nil {
		return nil, err
	}

	related, err := h.client.GetRelatedMetadataElements(ctx, userID, guid, startingEnd, []string{relationshipType}, opts)
	if err != nil {
		return nil, h.fail(ctx, op, err)
	}

	out := make([]*Element[P], 0, len(related))
	for _, r := range related {
		if r.Element.TypeName != h.cat.typeName {
			continue
		}
		e, err := typed[P](r.Element)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (h *ElementHandler[P]) validateProperties(op string, props map[string]any) error {
	if err := requireProperty(op, props, qualifiedName); err != nil {
		return err
	}
	for _, name := range h.cat.required {
		if err := requireProperty(op, props, name); err != nil {
			return err
		}
	}
	for _, v := range h.cat.validators {
		if err := v(op, props); err != nil {
			return err
		}
	}
	return nil
}

// fail logs unexpected store errors. Errors the caller can act on are
// returned untouched.
func (h *ElementHandler[P]) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) ||
		errors.Is(err, common.ErrorInvalidParameter) {
		h.logger.Debug(ctx, "store rejected request", "operation", op, "error", err.Error())
		return err
	}
	h.logger.Error(ctx, "store request failed", "operation", op, "error", err.Error())
	return err
}

func typedList[P any](found []*models.Element, err error) ([]*Element[P], error) {
	if err != nil {
		return nil, err
	}
	out := make([]*Element[P], 0, len(found))
	for _, e := range found {
		t, err := typed[P](e)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
