package editrans

// Row is one canonical record: an ordered mapping of field name to string
// value. All codecs emit and accept rows; numeric and date coercion happens
// in the transaction set interpreters, not here.
//
// Field insertion order is preserved so that generation is deterministic
// (CSV headers and JSON keys come out in first-seen order). Overwriting an
// existing field keeps its original position.
type Row struct {
	fields []string
	values map[string]string
}

// NewRow returns an empty Row.
func NewRow() Row {
	return Row{values: make(map[string]string)}
}

// RowOf builds a Row from alternating field/value pairs, in the order
// given. It panics on an odd number of arguments; it is intended for
// literals in tests and generators.
func RowOf(pairs ...string) Row {
	if len(pairs)%2 != 0 {
		panic("editrans: RowOf requires field/value pairs")
	}
	r := NewRow()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set stores value under field, appending the field to the order on first
// use.
func (r *Row) Set(field, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Get returns the value for field, or the empty string if absent.
func (r Row) Get(field string) string {
	return r.values[field]
}

// Lookup returns the value for field and whether it is present.
func (r Row) Lookup(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether field is present, even if its value is empty.
func (r Row) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns the field names in insertion order. The returned slice
// must not be modified.
func (r Row) Fields() []string {
	return r.fields
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.fields)
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := Row{
		fields: make([]string, len(r.fields)),
		values: make(map[string]string, len(r.values)),
	}
	copy(out.fields, r.fields)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether two rows hold the same field set with the same
// values. Field order is a presentation detail and does not participate.
func (r Row) Equal(other Row) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for k, v := range r.values {
		ov, ok := other.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// rename returns a copy of the row with fields renamed through the given
// lookup, preserving positions. Fields absent from the lookup pass through
// unchanged. A rename is skipped when the row already carries a field with
// the target name that is not itself renamed away, so neither value is
// lost.
func (r Row) rename(lookup map[string]string) Row {
	out := NewRow()
	for _, f := range r.fields {
		name := f
		if mapped, ok := lookup[f]; ok && !r.renameCollides(f, mapped, lookup) {
			name = mapped
		}
		out.Set(name, r.values[f])
	}
	return out
}

// renameCollides reports whether renaming field to target would overwrite
// another field of the row that keeps the target name.
func (r Row) renameCollides(field, target string, lookup map[string]string) bool {
	if field == target || !r.Has(target) {
		return false
	}
	next, renamedAway := lookup[target]
	return !renamedAway || next == target
}

// fieldUnion returns the union of field names across rows in first-seen
// order. The CSV and XLSX generators derive their header from it.
func fieldUnion(rows []Row) []string {
	var union []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, f := range row.fields {
			if !seen[f] {
				seen[f] = true
				union = append(union, f)
			}
		}
	}
	return union
}

// withoutField returns copies of the rows with the named field removed.
// The inputs are never mutated.
func withoutField(rows []Row, field string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		r := NewRow()
		for _, f := range row.fields {
			if f == field {
				continue
			}
			r.Set(f, row.values[f])
		}
		out[i] = r
	}
	return out
}

// EqualRows reports whether two row sequences are equal under Row.Equal,
// element by element.
func EqualRows(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
