package records

// Field is one named attribute.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value Value  `json:"value" yaml:"value"`
}

// Fields is an ordered set of attributes. Order is insertion order, which
// keeps remote writes and changed-field reports deterministic.
type Fields []Field

// Get returns the value stored under name.
func (f Fields) Get(name string) (Value, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is present.
func (f Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Text returns the string form of a Text field, or "".
func (f Fields) Text(name string) string {
	if v, ok := f.Get(name); ok {
		if t, ok := v.(Text); ok {
			return string(t)
		}
	}
	return ""
}

// Set replaces the value under name or appends it.
func (f *Fields) Set(name string, v Value) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = v
			return
		}
	}
	*f = append(*f, Field{Name: name, Value: v})
}

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for _, field := range f {
		names = append(names, field.Name)
	}
	return names
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for i, field := range f {
		out[i] = Field{Name: field.Name, Value: Clone(field.Value)}
	}
	return out
}

// Map returns the fields keyed by name.
func (f Fields) Map() map[string]Value {
	m := make(map[string]Value, len(f))
	for _, field := range f {
		m[field.Name] = field.Value
	}
	return m
}
