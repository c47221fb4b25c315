package dto

import (
	"time"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	DueDate     OptionalDate `json:"due_date"`
	TagIDs      []uuid.UUID  `json:"tag_ids"`
}

// UpdateTaskRequest is a partial update: absent fields keep their value and
// a null due_date clears it.
type UpdateTaskRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *string      `json:"status,omitempty"`
	Priority    *string      `json:"priority,omitempty"`
	DueDate     OptionalDate `json:"due_date"`
	Position    *int         `json:"position,omitempty"`
	TagIDs      *[]uuid.UUID `json:"tag_ids,omitempty"`
}

type MoveTaskRequest struct {
	Position *int `json:"position"`
}

type TagBadge struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	TextColor string    `json:"text_color"`
}

type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *string    `json:"due_date"`
	Position     int        `json:"position"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	IsOverdue    bool       `json:"is_overdue"`
	DaysUntilDue *int       `json:"days_until_due"`
	Tags         []TagBadge `json:"tags"`
}

func FromTask(t *task.Task, today time.Time) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		Position:     t.Position,
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		IsOverdue:    t.IsOverdue(today),
		DaysUntilDue: t.DaysUntilDue(today),
		Tags:         make([]TagBadge, 0, len(t.Tags)),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(DateLayout)
		resp.DueDate = &d
	}
	for _, tg := range t.Tags {
		resp.Tags = append(resp.Tags, FromTagBadge(tg))
	}
	return resp
}

func FromTaskList(tasks []*task.Task, today time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
	Page  int            `json:"page,omitempty"`
	Limit int            `json:"limit,omitempty"`
}

type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type RenameTagRequest struct {
	Name string `json:"name"`
}

type RecolorTagRequest struct {
	Color string `json:"color"`
}

type QuickCreateTagRequest struct {
	Name string `json:"name"`
}

type MergeTagRequest struct {
	TargetID uuid.UUID `json:"target_id"`
}

type BulkEditRequest struct {
	TagIDs []uuid.UUID `json:"tag_ids"`
	Action string      `json:"action"`
}

type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	TextColor string    `json:"text_color"`
	TaskCount int       `json:"task_count"`
	CreatedAt time.Time `json:"created_at"`
}

type TagDetailResponse struct {
	TagResponse
	Related []TagBadge `json:"related"`
}

// TagSummary is the compact shape returned by quick-create and autocomplete.
type TagSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

func FromTag(t *tag.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		TextColor: tag.TextColor(t.Color),
		TaskCount: t.TaskCount,
		CreatedAt: t.CreatedAt,
	}
}

func FromTagList(tags []*tag.Tag) []TagResponse {
	result := make([]TagResponse, len(tags))
	for i, t := range tags {
		result[i] = FromTag(t)
	}
	return result
}

func FromTagBadge(t *tag.Tag) TagBadge {
	return TagBadge{ID: t.ID, Name: t.Name, Color: t.Color, TextColor: tag.TextColor(t.Color)}
}

func FromTagBadges(tags []*tag.Tag) []TagBadge {
	result := make([]TagBadge, len(tags))
	for i, t := range tags {
		result[i] = FromTagBadge(t)
	}
	return result
}

func FromTagSummaries(tags []*tag.Tag) []TagSummary {
	result := make([]TagSummary, len(tags))
	for i, t := range tags {
		result[i] = TagSummary{ID: t.ID, Name: t.Name, Color: t.Color}
	}
	return result
}

type PaletteResponse struct {
	Colors  []tag.ColorChoice `json:"colors"`
	Default string            `json:"default"`
}

type RegisterUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username, CreatedAt: u.CreatedAt}
}
