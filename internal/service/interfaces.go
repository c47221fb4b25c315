package service

import (
	"context"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/query"

	"github.com/google/uuid"
)

// Every method taking an owner must only see that owner's rows and report
// repository.ErrNotFound for anything else.

type TaskRepository interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, *task.Task) error
	UpdateTask(context.Context, *task.Task) error
	UpdateTaskStatus(context.Context, *task.Task) error
	GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	DeleteTask(ctx context.Context, owner, id uuid.UUID) error
	ListTasks(context.Context, *query.TaskQuery) ([]*task.Task, error)
	ListGraphTasks(ctx context.Context, owner uuid.UUID, status, tagName string) ([]*task.Task, error)
	RelatedTasks(ctx context.Context, owner, id uuid.UUID) ([]*task.Task, error)
	CountTasks(ctx context.Context, owner uuid.UUID) (int, error)
}

type TagRepository interface {
	CreateTag(context.Context, *tag.Tag) error
	UpdateTag(context.Context, *tag.Tag) error
	GetTag(ctx context.Context, owner, id uuid.UUID) (*tag.Tag, error)
	GetTagsByIDs(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]*tag.Tag, error)
	DeleteTag(ctx context.Context, owner, id uuid.UUID) error
	DeleteTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (int, error)
	RecolorTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, color string) (int, error)
	ListTags(ctx context.Context, owner uuid.UUID) ([]*tag.Tag, error)
	SearchTags(ctx context.Context, owner uuid.UUID, q string, limit int) ([]*tag.Tag, error)
	TagNameTaken(ctx context.Context, owner uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	TagColors(ctx context.Context, owner uuid.UUID) ([]string, error)
	// MergeTags fails with ErrConflict when source equals target.
	MergeTags(ctx context.Context, owner, source, target uuid.UUID) error
	RelatedTags(ctx context.Context, owner, id uuid.UUID, limit int) ([]*tag.Tag, error)
	TagUsage(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error)
	CountTags(ctx context.Context, owner uuid.UUID) (int, error)
}

type UserRepository interface {
	CreateUser(context.Context, *user.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	UserTaken(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Repository interface {
	TaskRepository
	TagRepository
	UserRepository
}
