package vectorstore

// Condition is a single exact-match equality predicate over a metadata
// field.
type Condition struct {
	Field string
	Value string
}

// Equals builds an equality condition on a metadata field.
func Equals(field, value string) Condition {
	return Condition{Field: field, Value: value}
}

// Filter is a conjunction of equality conditions over document
// metadata. The zero value matches every document.
//
// Filters are the only filter language this boundary supports: all
// conditions are combined with logical AND, with no partial or fuzzy
// matching. This keeps callers backend-agnostic while mapping directly
// onto the backend's where-clause.
type Filter struct {
	conds []Condition
}

// And combines conditions into a conjunctive filter.
func And(conds ...Condition) Filter {
	return Filter{conds: conds}
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.conds) == 0
}

// Conditions returns the filter's conditions in construction order.
func (f Filter) Conditions() []Condition {
	return f.conds
}

// Where renders the filter as a field→value map for backends that take
// map-shaped where clauses. Returns nil for the empty filter.
// Conditions are expected to use distinct fields; a repeated field
// keeps the last value.
func (f Filter) Where() map[string]string {
	if len(f.conds) == 0 {
		return nil
	}
	where := make(map[string]string, len(f.conds))
	for _, c := range f.conds {
		where[c.Field] = c.Value
	}
	return where
}

// Matches reports whether the given metadata satisfies every condition.
func (f Filter) Matches(metadata map[string]string) bool {
	for _, c := range f.conds {
		if metadata[c.Field] != c.Value {
			return false
		}
	}
	return true
}
