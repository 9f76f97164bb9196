package types

import "errors"

// Attribute is one named field of a Record. A scalar attribute carries its
// text in Value; a list-valued attribute carries its items in Values and
// leaves Value empty. Values == nil means scalar.
type Attribute struct {
	Name   string
	Value  string
	Values []string
}

// IsList returns true if the attribute is list-valued
func (a Attribute) IsList() bool {
	return a.Values != nil
}

// Record represents one structured item (typically one certificate's
// metadata) to be merged into a section's table. Records are immutable once
// constructed; the engine never mutates a caller's Record.
type Record struct {
	// Category is the free-text issuer/category the classifier routes on
	Category string

	// PrimaryKey identifies the record within its table (e.g. the
	// certificate common name). Uniqueness is not enforced here.
	PrimaryKey string

	// SortKey is date-like text used for ordering within a table
	SortKey string

	// Attributes are the remaining columns, in column order
	Attributes []Attribute
}

// Attribute returns the named attribute and whether it exists
func (r *Record) Attribute(name string) (Attribute, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Validate performs basic validation of the record
func (r *Record) Validate() error {
	if r.PrimaryKey == "" {
		return errors.New("record primary key is required")
	}

	for _, a := range r.Attributes {
		if a.Name == "" {
			return errors.New("attribute name is required")
		}
		if a.Values != nil && a.Value != "" {
			return errors.New("attribute cannot be both scalar and list-valued")
		}
	}

	return nil
}
