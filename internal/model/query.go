package model

// Filter is an equality condition on a single column.
type Filter struct {
	Column string
	Value  string
}

// Query describes a read against one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// ActiveQuery returns the query used to list a kind: active records only,
// newest first.
func ActiveQuery(kind Kind) Query {
	return Query{
		Collection: kind.Collection(),
		Filters:    []Filter{{Column: "status", Value: StatusActive}},
		OrderBy:    "created_at",
		Descending: true,
	}
}
