package record

import "github.com/emberdb/ember/types"

// Schema lists a table's fields, in declaration order, along with each
// one's type and (for Varchar) declared length.
type Schema struct {
	order  []string
	byName map[string]types.FieldInfo
}

func NewSchema() *Schema {
	return &Schema{
		order:  make([]string, 0),
		byName: make(map[string]types.FieldInfo),
	}
}

// AddField registers a field with an explicit type and length. length is
// ignored for every type except Varchar.
func (s *Schema) AddField(name string, fieldType SchemaType, length int) {
	s.order = append(s.order, name)
	s.byName[name] = types.FieldInfo{Type: fieldType, Length: length}
}

func (s *Schema) AddIntField(name string) {
	s.AddField(name, Integer, 0)
}

func (s *Schema) AddStringField(name string, length int) {
	s.AddField(name, Varchar, length)
}

func (s *Schema) AddBoolField(name string) {
	s.AddField(name, Boolean, 0)
}

func (s *Schema) AddLongField(name string) {
	s.AddField(name, Long, 0)
}

func (s *Schema) AddShortField(name string) {
	s.AddField(name, Short, 0)
}

func (s *Schema) AddDateField(name string) {
	s.AddField(name, Date, 0)
}

// Add copies one field's type and length over from another schema,
// typically the schema of a table this one is joining against.
func (s *Schema) Add(name string, from *Schema) {
	info := from.byName[name]
	s.AddField(name, info.Type, info.Length)
}

// AddAll copies every field from another schema into this one.
func (s *Schema) AddAll(from *Schema) {
	for _, name := range from.order {
		s.Add(name, from)
	}
}

func (s *Schema) Fields() []string {
	return s.order
}

func (s *Schema) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *Schema) Type(name string) SchemaType {
	return s.byName[name].Type
}

func (s *Schema) Length(name string) int {
	return s.byName[name].Length
}
