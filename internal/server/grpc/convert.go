package grpc

import (
	"github.com/dmitrijs2005/metakeeper/internal/api"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

func toAPIElement(e *models.Element) *api.Element {
	if e == nil {
		return nil
	}
	return &api.Element{
		GUID:       e.GUID,
		TypeName:   e.TypeName,
		AnchorGUID: e.AnchorGUID,
		Version:    e.Version,
		CreatedBy:  e.CreatedBy,
		UpdatedBy:  e.UpdatedBy,
		CreateTime: e.CreateTime,
		UpdateTime: e.UpdateTime,
		Properties: e.Properties,
	}
}

func toAPIElements(in []*models.Element) []*api.Element {
	out := make([]*api.Element, 0, len(in))
	for _, e := range in {
		out = append(out, toAPIElement(e))
	}
	return out
}

func toAPIRelated(in []*models.RelatedElement) []*api.RelatedElement {
	out := make([]*api.RelatedElement, 0, len(in))
	for _, r := range in {
		rel := r.Relationship
		out = append(out, &api.RelatedElement{
			Relationship: &api.Relationship{
				GUID:       rel.GUID,
				TypeName:   rel.TypeName,
				End1GUID:   rel.End1GUID,
				End2GUID:   rel.End2GUID,
				Properties: rel.Properties,
				CreatedBy:  rel.CreatedBy,
				CreateTime: rel.CreateTime,
			},
			Element: toAPIElement(r.Element),
		})
	}
	return out
}

func fromAPIPaging(p api.SearchOptions) models.SearchOptions {
	return models.SearchOptions{StartFrom: p.StartFrom, PageSize: p.PageSize}
}
