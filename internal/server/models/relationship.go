package models

import "time"

// Relationship is a typed, directed link from End1GUID to End2GUID.
type Relationship struct {
	GUID       string
	TypeName   string
	End1GUID   string
	End2GUID   string
	Properties map[string]any
	CreatedBy  string
	CreateTime time.Time
}

// RelatedElement pairs a relationship with the element at its far end.
type RelatedElement struct {
	Relationship *Relationship
	Element      *Element
}

// Which end of a relationship the starting element must sit on.
const (
	AnyEnd = 0
	End1   = 1
	End2   = 2
)
