package models

// SearchOptions carries paging for multi-result queries.
type SearchOptions struct {
	StartFrom int
	PageSize  int
}

// ElementQuery selects elements of TypeName whose PropertyNames match.
// SearchString is a regular expression; Value is compared for equality and
// takes precedence when both are set. Empty PropertyNames means all
// properties.
type ElementQuery struct {
	TypeName      string
	PropertyNames []string
	SearchString  string
	Value         string
	SearchOptions
}
