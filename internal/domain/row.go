package domain

// Row is one catalog product. Fields are opaque pass-through values keyed by column name.
type Row map[string]string

// Get returns the field value or "" when the field is absent.
func (r Row) Get(field string) string {
	return r[field]
}

// With returns a copy of the row with field set to value. The receiver is not modified.
func (r Row) With(field, value string) Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[field] = value
	return out
}
