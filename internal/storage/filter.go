package storage

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultSortBy        = "created_at"
	DefaultSortDirection = "desc"
	DefaultPerPage       = 10
	MaxPerPage           = 100

	// MaxPage keeps (Page-1)*PerPage within the range of a SQL OFFSET.
	MaxPage = math.MaxInt32
)

// SortableColumns are the task columns a listing may be ordered by.
var SortableColumns = []string{"id", "name", "status", "due_date", "created_at", "updated_at"}

// TaskFilter holds the recognized listing keys. Zero values mean "not set".
type TaskFilter struct {
	Status        string
	DueDateFrom   *time.Time
	DueDateTo     *time.Time
	Search        string
	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// Normalize applies defaults and replaces unknown sort keys, directions and
// out of range page values instead of rejecting them.
func (f TaskFilter) Normalize() TaskFilter {
	f.Status = strings.TrimSpace(f.Status)
	f.Search = strings.TrimSpace(f.Search)

	f.SortBy = strings.ToLower(strings.TrimSpace(f.SortBy))
	if !isSortable(f.SortBy) {
		f.SortBy = DefaultSortBy
	}

	f.SortDirection = strings.ToLower(strings.TrimSpace(f.SortDirection))
	if f.SortDirection != "asc" && f.SortDirection != "desc" {
		f.SortDirection = DefaultSortDirection
	}

	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	return f
}

func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

func isSortable(column string) bool {
	for _, c := range SortableColumns {
		if c == column {
			return true
		}
	}
	return false
}

type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func (p *Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// From is the 1-based position of the first item on the page, 0 when empty.
func (p *Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To is the 1-based position of the last item on the page, 0 when empty.
func (p *Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
