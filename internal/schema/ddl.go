package schema

import (
	"fmt"
	"strings"

	"relational-reports/internal/database"
)

// CreateStatements renders one CREATE TABLE statement per entity, parents first.
func (s *Schema) CreateStatements(d database.Dialect) []string {
	stmts := make([]string, 0, len(s.entities))
	for _, e := range s.entities {
		stmts = append(stmts, s.createTable(e, d))
	}
	return stmts
}

// DropStatements renders DROP TABLE statements, children first.
func (s *Schema) DropStatements() []string {
	stmts := make([]string, 0, len(s.entities))
	for i := len(s.entities) - 1; i >= 0; i-- {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+s.entities[i].table)
	}
	return stmts
}

func (s *Schema) createTable(e Entity, d database.Dialect) string {
	var defs []string
	for _, c := range e.columns {
		defs = append(defs, "\t"+columnDefinition(c, d))
	}
	if !hasSerial(e) {
		defs = append(defs, fmt.Sprintf("\tPRIMARY KEY (%s)", strings.Join(e.primaryKey, ", ")))
	}
	for _, r := range s.relations {
		if r.Cardinality != OneToMany || r.Child != e.name {
			continue
		}
		parent, _ := s.Entity(r.Parent)
		parentKey, _ := parent.IDColumn()
		defs = append(defs, fmt.Sprintf("\tFOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			r.ForeignKey, parent.table, parentKey, strings.ToUpper(r.OnDelete.String())))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", e.table, strings.Join(defs, ",\n"))
}

func hasSerial(e Entity) bool {
	for _, c := range e.columns {
		if c.Type == Serial {
			return true
		}
	}
	return false
}

func columnDefinition(c Column, d database.Dialect) string {
	if c.Type == Serial {
		switch d {
		case database.MySQL:
			return c.Name + " INT AUTO_INCREMENT PRIMARY KEY"
		case database.SQLite:
			return c.Name + " INTEGER PRIMARY KEY AUTOINCREMENT"
		default:
			return c.Name + " SERIAL PRIMARY KEY"
		}
	}

	def := c.Name + " " + sqlType(c, d)
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.Unique {
		def += " UNIQUE"
	}
	return def
}

func sqlType(c Column, d database.Dialect) string {
	switch c.Type {
	case Integer:
		if d == database.MySQL {
			return "INT"
		}
		return "INTEGER"
	case VarcharType:
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	case TextType:
		return "TEXT"
	case DecimalType:
		if d == database.Postgres {
			return fmt.Sprintf("NUMERIC(%d, %d)", c.Size, c.Scale)
		}
		return fmt.Sprintf("DECIMAL(%d, %d)", c.Size, c.Scale)
	case TimestampType:
		if d == database.Postgres {
			return "TIMESTAMP"
		}
		return "DATETIME"
	}
	return "TEXT"
}
