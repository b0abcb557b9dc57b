// Package api defines the metakeeper gRPC service: its messages, a JSON wire
// codec and the service descriptor shared by server and client.
package api

import (
	"encoding/json"
	"time"
)

type SearchOptions struct {
	StartFrom int `json:"startFrom,omitempty"`
	PageSize  int `json:"pageSize,omitempty"`
}

type Element struct {
	GUID       string         `json:"guid"`
	TypeName   string         `json:"typeName"`
	AnchorGUID string         `json:"anchorGUID,omitempty"`
	Version    int64          `json:"version"`
	CreatedBy  string         `json:"createdBy"`
	UpdatedBy  string         `json:"updatedBy"`
	CreateTime time.Time      `json:"createTime"`
	UpdateTime time.Time      `json:"updateTime"`
	Properties map[string]any `json:"properties,omitempty"`
}

type Relationship struct {
	GUID       string         `json:"guid"`
	TypeName   string         `json:"typeName"`
	End1GUID   string         `json:"end1GUID"`
	End2GUID   string         `json:"end2GUID"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedBy  string         `json:"createdBy"`
	CreateTime time.Time      `json:"createTime"`
}

type RelatedElement struct {
	Relationship *Relationship `json:"relationship"`
	Element      *Element      `json:"element"`
}

type Category struct {
	Name              string   `json:"name"`
	TypeName          string   `json:"typeName"`
	RelationshipTypes []string `json:"relationshipTypes"`
	Operations        []string `json:"operations,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type CreateElementRequest struct {
	Category   string          `json:"category"`
	AnchorGUID string          `json:"anchorGUID,omitempty"`
	Properties json.RawMessage `json:"properties"`
}

type CreateElementResponse struct {
	GUID string `json:"guid"`
}

type UpdateElementRequest struct {
	Category   string          `json:"category"`
	GUID       string          `json:"guid"`
	ReplaceAll bool            `json:"replaceAll,omitempty"`
	Properties json.RawMessage `json:"properties"`
}

type UpdateElementResponse struct{}

type DeleteElementRequest struct {
	Category string `json:"category"`
	GUID     string `json:"guid"`
}

type DeleteElementResponse struct{}

type GetElementRequest struct {
	Category string `json:"category"`
	GUID     string `json:"guid"`
}

type GetElementResponse struct {
	Element *Element `json:"element"`
}

type GetElementsByNameRequest struct {
	Category string        `json:"category"`
	Name     string        `json:"name"`
	Paging   SearchOptions `json:"paging"`
}

type FindElementsRequest struct {
	Category     string        `json:"category"`
	SearchString string        `json:"searchString"`
	Paging       SearchOptions `json:"paging"`
}

type ElementsResponse struct {
	Elements []*Element `json:"elements"`
}

type LinkElementsRequest struct {
	Category         string         `json:"category"`
	RelationshipType string         `json:"relationshipType"`
	End1GUID         string         `json:"end1GUID"`
	End2GUID         string         `json:"end2GUID"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type LinkElementsResponse struct {
	GUID string `json:"guid"`
}

type DetachElementsRequest struct {
	Category         string `json:"category"`
	RelationshipType string `json:"relationshipType"`
	End1GUID         string `json:"end1GUID"`
	End2GUID         string `json:"end2GUID"`
}

type DetachElementsResponse struct{}

type GetRelatedElementsRequest struct {
	Category         string        `json:"category"`
	GUID             string        `json:"guid"`
	RelationshipType string        `json:"relationshipType,omitempty"`
	Paging           SearchOptions `json:"paging"`
}

type GetRelatedElementsResponse struct {
	Related []*RelatedElement `json:"related"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

// InvokeOperationRequest runs a category-specific operation. Which of the
// argument fields are read depends on the operation.
type InvokeOperationRequest struct {
	Category    string        `json:"category"`
	Operation   string        `json:"operation"`
	GUID        string        `json:"guid,omitempty"`
	OtherGUID   string        `json:"otherGUID,omitempty"`
	Value       string        `json:"value,omitempty"`
	Description string        `json:"description,omitempty"`
	Paging      SearchOptions `json:"paging"`
}

// InvokeOperationResponse leaves Elements and Related null unless the
// operation lists them.
type InvokeOperationResponse struct {
	RelationshipGUID string            `json:"relationshipGUID,omitempty"`
	Elements         []*Element        `json:"elements"`
	Related          []*RelatedElement `json:"related"`
}
