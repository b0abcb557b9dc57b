// Package models defines server-side data models persisted in the database.
package models

import "time"

// Element is a generic metadata entity instance. Category-specific fields
// live in Properties.
type Element struct {
	GUID       string
	TypeName   string
	AnchorGUID string
	Properties map[string]any
	Version    int64
	CreatedBy  string
	UpdatedBy  string
	CreateTime time.Time
	UpdateTime time.Time
}

// StringProperty returns Properties[name] when it holds a string.
func (e *Element) StringProperty(name string) string {
	if e == nil || e.Properties == nil {
		return ""
	}
	s, _ := e.Properties[name].(string)
	return s
}

// NewElement is the input for creating an element, optionally together with
// the relationship that ties it to a parent.
type NewElement struct {
	TypeName   string
	AnchorGUID string
	Properties map[string]any

	ParentGUID                 string
	ParentRelationshipTypeName string
	ParentRelationshipProps    map[string]any
	// ParentAtEnd2 places the parent at end2 of the parent relationship
	// instead of end1.
	ParentAtEnd2 bool
}
