package handlers

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

// OperationArgs carries the arguments of a category-specific operation.
// Each operation documents which fields it reads.
type OperationArgs struct {
	GUID        string
	OtherGUID   string
	Value       string
	Description string
	Options     models.SearchOptions
}

// OperationResult holds whichever of its fields the operation produces.
type OperationResult struct {
	RelationshipGUID string
	Elements         []*models.Element
	Related          []*models.RelatedElement
}

type operation func(ctx context.Context, userID string, args OperationArgs) (*OperationResult, error)

// Operations lists the category-specific operations Invoke accepts.
func (h *ElementHandler[P]) Operations() []string {
	return slices.Sorted(maps.Keys(h.ops))
}

// Invoke runs the named category-specific operation.
func (h *ElementHandler[P]) Invoke(ctx context.Context, userID, name string, args OperationArgs) (*OperationResult, error) {
	op, ok := h.ops[name]
	if !ok {
		return nil, common.NewInvalidParameter("invoke"+h.cat.typeName, "operation",
			fmt.Sprintf("unknown %s operation %q", h.cat.typeName, name))
	}
	return op(ctx, userID, args)
}

func elementsResult[P any](found []*Element[P], err error) (*OperationResult, error) {
	if err != nil {
		return nil, err
	}
	out := make([]*models.Element, 0, len(found))
	for _, e := range found {
		m, err := e.untyped()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return &OperationResult{Elements: out}, nil
}

func relatedResult(related []*models.RelatedElement, err error) (*OperationResult, error) {
	if err != nil {
		return nil, err
	}
	if related == nil {
		related = []*models.RelatedElement{}
	}
	return &OperationResult{Related: related}, nil
}

func linkResult(guid string, err error) (*OperationResult, error) {
	if err != nil {
		return nil, err
	}
	return &OperationResult{RelationshipGUID: guid}, nil
}

func doneResult(err error) (*OperationResult, error) {
	if err != nil {
		return nil, err
	}
	return &OperationResult{}, nil
}
