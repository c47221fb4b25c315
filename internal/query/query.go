// Package query composes the owner scoped task list filter and ordering.
// A TaskQuery compiles either to parameterized SQL for PostgreSQL or to an
// in-memory filter with identical semantics.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"taskManager/internal/models/task"

	"github.com/google/uuid"
)

// StatusActive selects every task that is not done.
const StatusActive = "active"

type TagMode string

const (
	TagModeAnd TagMode = "and"
	TagModeOr  TagMode = "or"
)

func ParseTagMode(s string) TagMode {
	if strings.EqualFold(strings.TrimSpace(s), string(TagModeOr)) {
		return TagModeOr
	}
	return TagModeAnd
}

// Sort keys accepted from the list endpoint. Priority here is the raw column
// value, so it orders alphabetically (high, low, medium).
var sortColumns = map[string]string{
	"priority":    "t.priority ASC",
	"-priority":   "t.priority DESC",
	"due_date":    "t.due_date ASC",
	"-due_date":   "t.due_date DESC",
	"created_at":  "t.created_at ASC",
	"-created_at": "t.created_at DESC",
}

const defaultOrder = `CASE t.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 END ASC, t.created_at DESC`

func ValidSort(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

type TaskQuery struct {
	OwnerID uuid.UUID
	Status  string
	TagIDs  []uuid.UUID
	TagMode TagMode
	Sort    string
	Limit   int
	Offset  int
}

func New(owner uuid.UUID) *TaskQuery {
	return &TaskQuery{OwnerID: owner, TagMode: TagModeAnd}
}

// WithStatus ignores values outside the known filters.
func (q *TaskQuery) WithStatus(status string) *TaskQuery {
	if status == StatusActive || task.Status(status).Valid() {
		q.Status = status
	} else {
		q.Status = ""
	}
	return q
}

func (q *TaskQuery) WithTags(ids []uuid.UUID, mode TagMode) *TaskQuery {
	q.TagIDs = task.Unique(ids)
	q.TagMode = mode
	return q
}

func (q *TaskQuery) WithSort(key string) *TaskQuery {
	if ValidSort(key) {
		q.Sort = key
	} else {
		q.Sort = ""
	}
	return q
}

func (q *TaskQuery) Page(page, limit int) *TaskQuery {
	if limit <= 0 {
		q.Limit, q.Offset = 0, 0
		return q
	}
	if page < 1 {
		page = 1
	}
	q.Limit = limit
	q.Offset = (page - 1) * limit
	return q
}

// ToSQL renders the query selecting columns from the tasks table aliased t.
func (q *TaskQuery) ToSQL(columns string) (string, []any) {
	var sb strings.Builder
	args := []any{q.OwnerID}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM tasks t WHERE t.owner_id = $1")

	switch {
	case q.Status == StatusActive:
		sb.WriteString(" AND t.status <> 'done'")
	case q.Status != "":
		sb.WriteString(" AND t.status = " + next(q.Status))
	}

	if len(q.TagIDs) > 0 {
		if q.TagMode == TagModeOr {
			sb.WriteString(" AND EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.tag_id = ANY(" + next(q.TagIDs) + "))")
		} else {
			for _, id := range q.TagIDs {
				sb.WriteString(" AND EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.tag_id = " + next(id) + ")")
			}
		}
	}

	sb.WriteString(" ORDER BY ")
	if col, ok := sortColumns[q.Sort]; ok {
		sb.WriteString(col)
	} else {
		sb.WriteString(defaultOrder)
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + next(q.Limit))
		sb.WriteString(" OFFSET " + next(q.Offset))
	}
	return sb.String(), args
}

func (q *TaskQuery) Match(t *task.Task) bool {
	if t.OwnerID != q.OwnerID {
		return false
	}

	switch {
	case q.Status == StatusActive:
		if t.Status == task.StatusDone {
			return false
		}
	case q.Status != "":
		if string(t.Status) != q.Status {
			return false
		}
	}

	if len(q.TagIDs) == 0 {
		return true
	}
	if q.TagMode == TagModeOr {
		for _, id := range q.TagIDs {
			if t.HasTag(id) {
				return true
			}
		}
		return false
	}
	for _, id := range q.TagIDs {
		if !t.HasTag(id) {
			return false
		}
	}
	return true
}

// Apply filters, orders and windows tasks in memory. The input slice is not
// modified.
func (q *TaskQuery) Apply(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Match(t) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, q.compare)

	if q.Limit > 0 {
		if q.Offset >= len(out) {
			return []*task.Task{}
		}
		end := min(q.Offset+q.Limit, len(out))
		out = out[q.Offset:end]
	}
	return out
}

func (q *TaskQuery) compare(a, b *task.Task) int {
	switch q.Sort {
	case "priority":
		return strings.Compare(string(a.Priority), string(b.Priority))
	case "-priority":
		return strings.Compare(string(b.Priority), string(a.Priority))
	case "due_date":
		return compareDue(a, b)
	case "-due_date":
		return compareDue(b, a)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "-created_at":
		return b.CreatedAt.Compare(a.CreatedAt)
	}
	if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// compareDue orders ascending with missing dates last, as PostgreSQL does.
func compareDue(a, b *task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}
