package handlers

import (
	"context"
	"io"
	"time"

	"taskManager/internal/graph"
	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/query"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type TaskService interface {
	HealthChecker
	Today() time.Time
	CreateTask(ctx context.Context, owner uuid.UUID, in service.TaskInput) (*task.Task, error)
	GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, owner, id uuid.UUID, tagIDs *[]uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	MoveTask(ctx context.Context, owner, id uuid.UUID, position int) (*task.Task, error)
	DeleteTask(ctx context.Context, owner, id uuid.UUID) error
	ListTasks(ctx context.Context, q *query.TaskQuery) ([]*task.Task, error)
	RelatedTasks(ctx context.Context, owner, id uuid.UUID) ([]*task.Task, error)
	MarkComplete(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	MarkIncomplete(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	ToggleTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
}

type TagService interface {
	Palette() tag.Palette
	ListTags(ctx context.Context, owner uuid.UUID) ([]*tag.Tag, error)
	GetTag(ctx context.Context, owner, id uuid.UUID) (*tag.Tag, error)
	CreateTag(ctx context.Context, owner uuid.UUID, name, color string) (*tag.Tag, error)
	QuickCreate(ctx context.Context, owner uuid.UUID, name string) (*tag.Tag, error)
	UpdateTag(ctx context.Context, owner, id uuid.UUID, name, color *string) (*tag.Tag, error)
	RenameTag(ctx context.Context, owner, id uuid.UUID, name string) (*tag.Tag, error)
	RecolorTag(ctx context.Context, owner, id uuid.UUID, color string) (*tag.Tag, error)
	DeleteTag(ctx context.Context, owner, id uuid.UUID) error
	BulkEdit(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, action string) (service.BulkResult, error)
	MergeTags(ctx context.Context, owner, source, target uuid.UUID) (*tag.Tag, error)
	RelatedTags(ctx context.Context, owner, id uuid.UUID) ([]*tag.Tag, error)
	Autocomplete(ctx context.Context, owner uuid.UUID, q string) ([]*tag.Tag, error)
	ExportCSV(ctx context.Context, owner uuid.UUID, w io.Writer) error
}

type GraphService interface {
	BuildGraph(ctx context.Context, owner uuid.UUID, filterTag, filterStatus string) (graph.Graph, error)
}

type UserService interface {
	Register(ctx context.Context, email, username string) (*user.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

var (
	_ TaskService  = (*service.TaskService)(nil)
	_ TagService   = (*service.TagService)(nil)
	_ GraphService = (*service.GraphService)(nil)
	_ UserService  = (*service.UserService)(nil)
)
