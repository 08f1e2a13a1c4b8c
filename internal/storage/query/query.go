// Package query builds the task listing statements for both SQL backends.
package query

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/adanyl0v/task-manager-api/internal/storage"
)

// TaskColumns is the column order every task scan expects.
var TaskColumns = []string{
	"id",
	"name",
	"description",
	"status",
	"due_date",
	"created_at",
	"updated_at",
}

// Dialect adapts the statements to a backend.
type Dialect struct {
	Placeholder sq.PlaceholderFormat
	// TimeArg converts a time bound into the value stored in due_date.
	TimeArg func(time.Time) any
	// Lower is the Unicode-aware lower-casing function of the backend.
	Lower string
}

var (
	Postgres = Dialect{
		Placeholder: sq.Dollar,
		TimeArg:     func(t time.Time) any { return t },
		Lower:       "LOWER",
	}
	SQLite = Dialect{
		Placeholder: sq.Question,
		TimeArg:     func(t time.Time) any { return t.UTC().UnixMilli() },
		// Built-in LOWER only folds ASCII; the store registers this one.
		Lower: "unicode_lower",
	}
)

type Statement struct {
	SQL  string
	Args []any
}

// CountTasks counts every row matching the filter, ignoring paging.
func CountTasks(d Dialect, filter storage.TaskFilter) (Statement, error) {
	b := sq.StatementBuilder.
		PlaceholderFormat(d.Placeholder).
		Select("COUNT(*)").
		From("tasks")
	b = applyTaskFilter(b, d, filter)
	return toStatement(b)
}

// ListTasks selects one page of tasks. The filter must be normalized.
// Rows with equal sort keys are ordered by id ascending.
func ListTasks(d Dialect, filter storage.TaskFilter) (Statement, error) {
	b := sq.StatementBuilder.
		PlaceholderFormat(d.Placeholder).
		Select(TaskColumns...).
		From("tasks")
	b = applyTaskFilter(b, d, filter)

	order := []string{fmt.Sprintf("%s %s", filter.SortBy, strings.ToUpper(filter.SortDirection))}
	if filter.SortBy != "id" {
		order = append(order, "id ASC")
	}
	b = b.OrderBy(order...).
		Limit(uint64(filter.PerPage)).
		Offset(uint64(filter.Offset()))
	return toStatement(b)
}

func applyTaskFilter(b sq.SelectBuilder, d Dialect, filter storage.TaskFilter) sq.SelectBuilder {
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if filter.DueDateFrom != nil {
		b = b.Where(sq.GtOrEq{"due_date": d.TimeArg(*filter.DueDateFrom)})
	}
	if filter.DueDateTo != nil {
		b = b.Where(sq.LtOrEq{"due_date": d.TimeArg(*filter.DueDateTo)})
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		b = b.Where(sq.Or{
			sq.Expr(d.Lower+`(name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(d.Lower+`(description) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	return b
}

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toStatement(b sq.SelectBuilder) (Statement, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("failed to build query: %w", err)
	}
	return Statement{SQL: sql, Args: args}, nil
}
