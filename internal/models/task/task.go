package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/models"
	"taskManager/internal/models/tag"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"-" db:"owner_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Position    int        `json:"position" db:"position"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Tags        []*tag.Tag `json:"tags" db:"-"`
}

type Status string
type Priority string

const StatusTodo Status = "todo"
const StatusInProgress Status = "in_progress"
const StatusDone Status = "done"

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

const MaxTitleLength = 200
const MaxTags = 5

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities by severity, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// DateOf drops the clock part so due dates compare as calendar days.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return DateOf(*t.DueDate).Before(DateOf(today))
}

func (t *Task) DaysUntilDue(today time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	days := int(DateOf(*t.DueDate).Sub(DateOf(today)).Hours() / 24)
	return &days
}

// MarkComplete reports whether anything changed; a done task keeps its
// original completion time.
func (t *Task) MarkComplete(now time.Time) bool {
	if t.Status == StatusDone {
		return false
	}
	t.Status = StatusDone
	t.CompletedAt = &now
	return true
}

func (t *Task) MarkIncomplete() {
	t.Status = StatusTodo
	t.CompletedAt = nil
}

func (t *Task) Toggle(now time.Time) {
	if t.Status != StatusDone {
		t.MarkComplete(now)
		return
	}
	t.MarkIncomplete()
}

// SyncCompletion keeps CompletedAt consistent after a direct status edit.
func (t *Task) SyncCompletion(now time.Time) {
	switch {
	case t.Status == StatusDone && t.CompletedAt == nil:
		t.CompletedAt = &now
	case t.Status != StatusDone:
		t.CompletedAt = nil
	}
}

func (t *Task) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Tags))
	for _, tg := range t.Tags {
		ids = append(ids, tg.ID)
	}
	return ids
}

func (t *Task) HasTag(id uuid.UUID) bool {
	for _, tg := range t.Tags {
		if tg.ID == id {
			return true
		}
	}
	return false
}

func (t *Task) Validate() models.FieldErrors {
	var errs models.FieldErrors

	t.Title = strings.TrimSpace(t.Title)
	switch {
	case t.Title == "":
		errs.Add("title", "Title cannot be empty.")
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		errs.Add("title", "Title is too long (maximum 200 characters).")
	}
	if !t.Status.Valid() {
		errs.Add("status", "Select a valid status.")
	}
	if !t.Priority.Valid() {
		errs.Add("priority", "Select a valid priority.")
	}
	return errs
}

// ValidateTagSelection checks a raw tag id list coming from an edit form.
// Storage does not cap tags per task, so a merge may leave more than five.
func ValidateTagSelection(ids []uuid.UUID) models.FieldErrors {
	var errs models.FieldErrors
	if len(Unique(ids)) > MaxTags {
		errs.Add("tags", "A task can have at most 5 tags.")
	}
	return errs
}

// Unique removes duplicate ids keeping first occurrence order.
func Unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
