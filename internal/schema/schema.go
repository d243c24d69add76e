// Package schema describes relational models: entities, their columns and the
// relations between them. A Schema is built once and never changes afterwards.
package schema

import "fmt"

type ColumnType int

const (
	Serial ColumnType = iota
	Integer
	VarcharType
	TextType
	DecimalType
	TimestampType
)

func (t ColumnType) String() string {
	switch t {
	case Serial:
		return "serial"
	case Integer:
		return "integer"
	case VarcharType:
		return "varchar"
	case TextType:
		return "text"
	case DecimalType:
		return "decimal"
	case TimestampType:
		return "timestamp"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Column is the metadata of one attribute.
type Column struct {
	Name     string
	Type     ColumnType
	Size     int // varchar length or decimal precision
	Scale    int // decimal fractional digits
	Nullable bool
	Unique   bool
}

// ID declares an auto-generated integer primary key.
func ID(name string) Column { return Column{Name: name, Type: Serial} }

func Int(name string) Column { return Column{Name: name, Type: Integer} }

func Varchar(name string, n int) Column {
	return Column{Name: name, Type: VarcharType, Size: n}
}

func Text(name string) Column { return Column{Name: name, Type: TextType} }

func Timestamp(name string) Column { return Column{Name: name, Type: TimestampType} }

func Decimal(name string, precision, scale int) Column {
	return Column{Name: name, Type: DecimalType, Size: precision, Scale: scale}
}

func (c Column) WithNull() Column {
	c.Nullable = true
	return c
}

func (c Column) WithUnique() Column {
	c.Unique = true
	return c
}

type DeleteRule int

const (
	// Restrict rejects deleting a parent while child rows reference it.
	Restrict DeleteRule = iota
	// SetNull clears the referencing column of child rows.
	SetNull
	// Cascade deletes the referencing child rows.
	Cascade
)

func (r DeleteRule) String() string {
	switch r {
	case Restrict:
		return "restrict"
	case SetNull:
		return "set null"
	case Cascade:
		return "cascade"
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

type Cardinality int

const (
	OneToMany Cardinality = iota
	ManyToMany
)

// Relation links two entities.
//
// OneToMany: Child.ForeignKey references Parent's id column.
// ManyToMany: Parent and Target are linked through the Through entity, which
// must itself hold OneToMany relations to both sides.
type Relation struct {
	Name        string
	Cardinality Cardinality
	Parent      string
	Child       string
	ForeignKey  string
	OnDelete    DeleteRule
	Target      string
	Through     string
}

// Entity is a named row type mapped to one table.
type Entity struct {
	name       string
	table      string
	columns    []Column
	primaryKey []string
}

func (e Entity) Name() string  { return e.name }
func (e Entity) Table() string { return e.table }

func (e Entity) Columns() []Column {
	return append([]Column(nil), e.columns...)
}

func (e Entity) PrimaryKey() []string {
	return append([]string(nil), e.primaryKey...)
}

func (e Entity) Column(name string) (Column, bool) {
	for _, c := range e.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IDColumn returns the primary key column of single-key entities.
func (e Entity) IDColumn() (string, bool) {
	if len(e.primaryKey) != 1 {
		return "", false
	}
	return e.primaryKey[0], true
}

type Schema struct {
	name      string
	entities  []Entity
	index     map[string]int
	relations []Relation
}

func (s *Schema) Name() string { return s.name }

func (s *Schema) Entity(name string) (Entity, bool) {
	i, ok := s.index[name]
	if !ok {
		return Entity{}, false
	}
	return s.entities[i], true
}

// MustEntity is for statically declared names; it panics on unknown entities.
func (s *Schema) MustEntity(name string) Entity {
	e, ok := s.Entity(name)
	if !ok {
		panic(fmt.Sprintf("schema %s: unknown entity %q", s.name, name))
	}
	return e
}

// Entities returns all entities in declaration order.
func (s *Schema) Entities() []Entity {
	return append([]Entity(nil), s.entities...)
}

func (s *Schema) Relations() []Relation {
	return append([]Relation(nil), s.relations...)
}

func (s *Schema) Relation(name string) (Relation, bool) {
	for _, r := range s.relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// ReferencesTo returns the one-to-many relations whose parent is entity.
func (s *Schema) ReferencesTo(entity string) []Relation {
	var refs []Relation
	for _, r := range s.relations {
		if r.Cardinality == OneToMany && r.Parent == entity {
			refs = append(refs, r)
		}
	}
	return refs
}
