// Package relational implements the schema-driven primitives shared by the
// mutation layers: existence checks, delete rules and schema provisioning.
package relational

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"relational-reports/internal/apperrors"
	"relational-reports/internal/database"
	"relational-reports/internal/schema"
)

// Exists reports whether entity has a row with the given id.
func Exists(ctx context.Context, q database.Querier, s *schema.Schema, entity string, id int64) (bool, error) {
	e, key, err := keyed(s, entity)
	if err != nil {
		return false, err
	}
	var found int
	err = q.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", e.Table(), key), id).Scan(&found)
	if err != nil {
		if database.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check %s #%d: %w", entity, id, err)
	}
	return true, nil
}

// Require returns a NotFoundError when entity has no row with the given id.
func Require(ctx context.Context, q database.Querier, s *schema.Schema, entity string, id int64) error {
	ok, err := Exists(ctx, q, s, entity, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

// Fold returns the form names are compared in: trimmed and Unicode case
// folded, so "Été" and "ÉTÉ" agree on every engine.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Match resolves values against column of entity, comparing folded text. The
// result maps every matching row id to the index of the value it matched.
func Match(ctx context.Context, q database.Querier, s *schema.Schema, entity, column string, values []string) (map[int64]int, error) {
	e, key, err := keyed(s, entity)
	if err != nil {
		return nil, err
	}
	if _, ok := e.Column(column); !ok {
		return nil, fmt.Errorf("entity %s has no column %s", entity, column)
	}
	wanted := make(map[string]int, len(values))
	for i, v := range values {
		if _, dup := wanted[Fold(v)]; !dup {
			wanted[Fold(v)] = i
		}
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IS NOT NULL", key, column, e.Table(), column))
	if err != nil {
		return nil, fmt.Errorf("match %s.%s: %w", e.Table(), column, err)
	}
	defer rows.Close()

	matched := make(map[int64]int)
	for rows.Next() {
		var (
			id    int64
			value string
		)
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("match %s.%s: %w", e.Table(), column, err)
		}
		if i, ok := wanted[Fold(value)]; ok {
			matched[id] = i
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match %s.%s: %w", e.Table(), column, err)
	}
	return matched, nil
}

// EnsureUnique returns a ValidationError when another row of entity already
// holds value in column, compared as folded text. A non-zero exceptID leaves
// that row out of the comparison.
func EnsureUnique(ctx context.Context, q database.Querier, s *schema.Schema, entity, column, value string, exceptID int64) error {
	matched, err := Match(ctx, q, s, entity, column, []string{value})
	if err != nil {
		return err
	}
	for id := range matched {
		if id != exceptID {
			return apperrors.Invalid(column, "%q already exists", value)
		}
	}
	return nil
}

// Delete removes one row and applies the delete rule of every relation that
// references it. Restrict relations are checked before anything is modified;
// cascades into deeper levels rely on q being a transaction.
func Delete(ctx context.Context, q database.Querier, s *schema.Schema, entity string, id int64) error {
	e, key, err := keyed(s, entity)
	if err != nil {
		return err
	}
	if err := Require(ctx, q, s, entity, id); err != nil {
		return err
	}

	refs := s.ReferencesTo(entity)
	for _, r := range refs {
		if r.OnDelete != schema.Restrict {
			continue
		}
		child := s.MustEntity(r.Child)
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", child.Table(), r.ForeignKey)
		if err := q.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
			return fmt.Errorf("count %s references: %w", r.Name, err)
		}
		if count > 0 {
			return &apperrors.ReferentialIntegrityError{Entity: entity, ID: id, ReferencedBy: child.Table(), Count: count}
		}
	}

	for _, r := range refs {
		switch r.OnDelete {
		case schema.SetNull:
			child := s.MustEntity(r.Child)
			query := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ?", child.Table(), r.ForeignKey, r.ForeignKey)
			if _, err := q.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("clear %s: %w", r.Name, err)
			}
		case schema.Cascade:
			if err := cascade(ctx, q, s, r, id); err != nil {
				return err
			}
		}
	}

	if _, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", e.Table(), key), id); err != nil {
		return fmt.Errorf("delete %s #%d: %w", entity, id, err)
	}
	return nil
}

func cascade(ctx context.Context, q database.Querier, s *schema.Schema, r schema.Relation, parentID int64) error {
	child := s.MustEntity(r.Child)
	childKey, hasKey := child.IDColumn()
	if !hasKey || len(s.ReferencesTo(r.Child)) == 0 {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", child.Table(), r.ForeignKey)
		if _, err := q.ExecContext(ctx, query, parentID); err != nil {
			return fmt.Errorf("cascade %s: %w", r.Name, err)
		}
		return nil
	}

	ids, err := selectIDs(ctx, q, fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", childKey, child.Table(), r.ForeignKey), parentID)
	if err != nil {
		return fmt.Errorf("cascade %s: %w", r.Name, err)
	}
	for _, childID := range ids {
		if err := Delete(ctx, q, s, r.Child, childID); err != nil {
			return err
		}
	}
	return nil
}

func selectIDs(ctx context.Context, q database.Querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func keyed(s *schema.Schema, entity string) (schema.Entity, string, error) {
	e, ok := s.Entity(entity)
	if !ok {
		return schema.Entity{}, "", fmt.Errorf("schema %s: unknown entity %q", s.Name(), entity)
	}
	key, ok := e.IDColumn()
	if !ok {
		return schema.Entity{}, "", fmt.Errorf("entity %s has a composite key", entity)
	}
	return e, key, nil
}

// Provision creates every table of s that does not exist yet.
func Provision(ctx context.Context, q database.Querier, s *schema.Schema) error {
	for _, stmt := range s.CreateStatements(q.Dialect()) {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("provision %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Teardown drops every table of s.
func Teardown(ctx context.Context, q database.Querier, s *schema.Schema) error {
	for _, stmt := range s.DropStatements() {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("teardown %s: %w", s.Name(), err)
		}
	}
	return nil
}
