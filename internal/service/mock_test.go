package service_test

import (
	"context"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/query"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRepository stands in for a failing or instrumented store.
type MockRepository struct {
	mock.Mock
}

var _ service.Repository = (*MockRepository)(nil)

func (m *MockRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) UpdateTaskStatus(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockRepository) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockRepository) ListTasks(ctx context.Context, q *query.TaskQuery) ([]*task.Task, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) ListGraphTasks(ctx context.Context, owner uuid.UUID, status, tagName string) ([]*task.Task, error) {
	args := m.Called(ctx, owner, status, tagName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) RelatedTasks(ctx context.Context, owner, id uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) CountTasks(ctx context.Context, owner uuid.UUID) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CreateTag(ctx context.Context, t *tag.Tag) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) UpdateTag(ctx context.Context, t *tag.Tag) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetTag(ctx context.Context, owner, id uuid.UUID) (*tag.Tag, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tag.Tag), args.Error(1)
}

func (m *MockRepository) GetTagsByIDs(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]*tag.Tag, error) {
	args := m.Called(ctx, owner, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tag.Tag), args.Error(1)
}

func (m *MockRepository) DeleteTag(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, owner, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RecolorTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, color string) (int, error) {
	args := m.Called(ctx, owner, ids, color)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListTags(ctx context.Context, owner uuid.UUID) ([]*tag.Tag, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tag.Tag), args.Error(1)
}

func (m *MockRepository) SearchTags(ctx context.Context, owner uuid.UUID, q string, limit int) ([]*tag.Tag, error) {
	args := m.Called(ctx, owner, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tag.Tag), args.Error(1)
}

func (m *MockRepository) TagNameTaken(ctx context.Context, owner uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	args := m.Called(ctx, owner, name, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) TagColors(ctx context.Context, owner uuid.UUID) ([]string, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) MergeTags(ctx context.Context, owner, source, target uuid.UUID) error {
	args := m.Called(ctx, owner, source, target)
	return args.Error(0)
}

func (m *MockRepository) RelatedTags(ctx context.Context, owner, id uuid.UUID, limit int) ([]*tag.Tag, error) {
	args := m.Called(ctx, owner, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tag.Tag), args.Error(1)
}

func (m *MockRepository) TagUsage(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, owner, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockRepository) CountTags(ctx context.Context, owner uuid.UUID) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) UserTaken(ctx context.Context, email, username string) (bool, bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
