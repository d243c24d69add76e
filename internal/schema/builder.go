package schema

import (
	"errors"
	"fmt"
)

// Builder collects entity and relation declarations and validates them in Build.
type Builder struct {
	name      string
	entities  []*EntityBuilder
	relations []Relation
}

type EntityBuilder struct {
	name       string
	table      string
	columns    []Column
	primaryKey []string
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Entity starts a new entity declaration.
func (b *Builder) Entity(name, table string) *EntityBuilder {
	eb := &EntityBuilder{name: name, table: table}
	b.entities = append(b.entities, eb)
	return eb
}

// Columns appends columns. A Serial column becomes the primary key.
func (eb *EntityBuilder) Columns(columns ...Column) *EntityBuilder {
	for _, c := range columns {
		eb.columns = append(eb.columns, c)
		if c.Type == Serial {
			eb.primaryKey = []string{c.Name}
		}
	}
	return eb
}

// Key sets a composite primary key.
func (eb *EntityBuilder) Key(columns ...string) *EntityBuilder {
	eb.primaryKey = append([]string(nil), columns...)
	return eb
}

// OneToMany declares that child.fk references parent.
func (b *Builder) OneToMany(name, parent, child, fk string, onDelete DeleteRule) *Builder {
	b.relations = append(b.relations, Relation{
		Name:        name,
		Cardinality: OneToMany,
		Parent:      parent,
		Child:       child,
		ForeignKey:  fk,
		OnDelete:    onDelete,
	})
	return b
}

// ManyToMany declares that left and right are linked through the through entity.
func (b *Builder) ManyToMany(name, left, right, through string) *Builder {
	b.relations = append(b.relations, Relation{
		Name:        name,
		Cardinality: ManyToMany,
		Parent:      left,
		Target:      right,
		Through:     through,
	})
	return b
}

func (b *Builder) Build() (*Schema, error) {
	s := &Schema{name: b.name, index: make(map[string]int, len(b.entities))}
	var errs []error

	for _, eb := range b.entities {
		if _, dup := s.index[eb.name]; dup {
			errs = append(errs, fmt.Errorf("entity %s declared twice", eb.name))
			continue
		}
		if err := eb.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		s.index[eb.name] = len(s.entities)
		s.entities = append(s.entities, Entity{
			name:       eb.name,
			table:      eb.table,
			columns:    append([]Column(nil), eb.columns...),
			primaryKey: append([]string(nil), eb.primaryKey...),
		})
	}

	names := make(map[string]bool, len(b.relations))
	for _, r := range b.relations {
		if names[r.Name] {
			errs = append(errs, fmt.Errorf("relation %s declared twice", r.Name))
			continue
		}
		names[r.Name] = true
		if err := s.validateRelation(r, b.relations); err != nil {
			errs = append(errs, err)
			continue
		}
		s.relations = append(s.relations, r)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("schema %s: %w", b.name, errors.Join(errs...))
	}
	return s, nil
}

// MustBuild is Build for package-level schema declarations.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (eb *EntityBuilder) validate() error {
	if eb.name == "" || eb.table == "" {
		return fmt.Errorf("entity %q: name and table are required", eb.name)
	}
	if len(eb.columns) == 0 {
		return fmt.Errorf("entity %s: no columns", eb.name)
	}
	seen := make(map[string]bool, len(eb.columns))
	serial := ""
	for _, c := range eb.columns {
		if seen[c.Name] {
			return fmt.Errorf("entity %s: column %s declared twice", eb.name, c.Name)
		}
		seen[c.Name] = true
		if c.Type == Serial {
			if serial != "" {
				return fmt.Errorf("entity %s: more than one serial column", eb.name)
			}
			serial = c.Name
		}
	}
	if serial != "" && (len(eb.primaryKey) != 1 || eb.primaryKey[0] != serial) {
		return fmt.Errorf("entity %s: serial column %s must be the whole primary key", eb.name, serial)
	}
	if len(eb.primaryKey) == 0 {
		return fmt.Errorf("entity %s: no primary key", eb.name)
	}
	for _, k := range eb.primaryKey {
		if !seen[k] {
			return fmt.Errorf("entity %s: primary key column %s does not exist", eb.name, k)
		}
	}
	return nil
}

func (s *Schema) validateRelation(r Relation, all []Relation) error {
	switch r.Cardinality {
	case OneToMany:
		parent, ok := s.Entity(r.Parent)
		if !ok {
			return fmt.Errorf("relation %s: unknown parent %s", r.Name, r.Parent)
		}
		child, ok := s.Entity(r.Child)
		if !ok {
			return fmt.Errorf("relation %s: unknown child %s", r.Name, r.Child)
		}
		if _, ok := parent.IDColumn(); !ok {
			return fmt.Errorf("relation %s: parent %s needs a single-column key", r.Name, r.Parent)
		}
		fk, ok := child.Column(r.ForeignKey)
		if !ok {
			return fmt.Errorf("relation %s: column %s.%s does not exist", r.Name, r.Child, r.ForeignKey)
		}
		if s.index[r.Parent] > s.index[r.Child] {
			return fmt.Errorf("relation %s: parent %s must be declared before %s", r.Name, r.Parent, r.Child)
		}
		if r.OnDelete == SetNull && !fk.Nullable {
			return fmt.Errorf("relation %s: set null on non-nullable %s.%s", r.Name, r.Child, r.ForeignKey)
		}
	case ManyToMany:
		for _, name := range []string{r.Parent, r.Target, r.Through} {
			if _, ok := s.Entity(name); !ok {
				return fmt.Errorf("relation %s: unknown entity %s", r.Name, name)
			}
		}
		if !hasEdge(all, r.Parent, r.Through) || !hasEdge(all, r.Target, r.Through) {
			return fmt.Errorf("relation %s: %s must reference both %s and %s", r.Name, r.Through, r.Parent, r.Target)
		}
	default:
		return fmt.Errorf("relation %s: unknown cardinality %d", r.Name, r.Cardinality)
	}
	return nil
}

func hasEdge(relations []Relation, parent, child string) bool {
	for _, r := range relations {
		if r.Cardinality == OneToMany && r.Parent == parent && r.Child == child {
			return true
		}
	}
	return false
}
