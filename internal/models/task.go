package models

import (
	"strings"
	"time"
)

const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Statuses lists every accepted task status in display order.
var Statuses = []string{StatusToDo, StatusInProgress, StatusDone}

type Task struct {
	ID          int64
	Name        string
	Description *string
	Status      string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ParseDate parses the date formats accepted by the API. A date without a
// time component is reported through dateOnly so range filters can treat
// it as a whole day.
func ParseDate(value string) (t time.Time, dateOnly bool, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, false
	}

	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), false, true
		}
	}

	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, false, false
	}
	return t.UTC(), true, true
}
