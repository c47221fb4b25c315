package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/query"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskInput struct {
	Title       string
	Description string
	Status      task.Status
	Priority    task.Priority
	DueDate     *time.Time
	TagIDs      []uuid.UUID
}

type TaskService struct {
	repo TaskRepository
	tags TagRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository, tags TagRepository) *TaskService {
	return &TaskService{
		repo: repo,
		tags: tags,
		now:  time.Now,
	}
}

func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Today is the calendar day used for overdue checks.
func (s *TaskService) Today() time.Time {
	return task.DateOf(s.now())
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: repository health check failed", err)
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, owner uuid.UUID, in TaskInput) (*task.Task, error) {
	now := s.now()

	t := &task.Task{
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	task.WithDueDate(in.DueDate)(t)

	tags, err := s.resolveTags(ctx, owner, in.TagIDs)
	if err != nil {
		return nil, err
	}
	t.Tags = tags

	if errs := t.Validate(); !errs.Empty() {
		return nil, NewValidationErrors(errs)
	}
	t.SyncCompletion(now)

	if err := s.repo.CreateTask(ctx, t); err != nil {
		logger.Error("Service: creating task failed", err, zap.String("owner_id", owner.String()))
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", t.ID.String()),
		zap.String("owner_id", owner.String()))
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("task_id", id.String()))
			return nil, NewNotFound(ResourceTask, id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a direct edit. A nil tagIDs keeps the current tags.
// Status changes made here still keep CompletedAt in step with done.
func (s *TaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, tagIDs *[]uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	if tagIDs != nil {
		tags, err := s.resolveTags(ctx, owner, *tagIDs)
		if err != nil {
			return nil, err
		}
		t.Tags = tags
	}

	if errs := t.Validate(); !errs.Empty() {
		return nil, NewValidationErrors(errs)
	}

	now := s.now()
	t.SyncCompletion(now)
	t.UpdatedAt = now

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceTask, id.String())
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return t, nil
}

func (s *TaskService) MoveTask(ctx context.Context, owner, id uuid.UUID, position int) (*task.Task, error) {
	if position < 0 {
		return nil, NewValidationError("position", "Position cannot be negative.")
	}
	return s.UpdateTask(ctx, owner, id, nil, task.WithPosition(position))
}

func (s *TaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, owner, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(ResourceTask, id.String())
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, q *query.TaskQuery) ([]*task.Task, error) {
	start := time.Now()
	tasks, err := s.repo.ListTasks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	logger.Debug("Service: tasks listed",
		zap.String("owner_id", q.OwnerID.String()),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	return tasks, nil
}

func (s *TaskService) RelatedTasks(ctx context.Context, owner, id uuid.UUID) ([]*task.Task, error) {
	if _, err := s.GetTask(ctx, owner, id); err != nil {
		return nil, err
	}
	tasks, err := s.repo.RelatedTasks(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("related tasks: %w", err)
	}
	return tasks, nil
}

// MarkComplete is a no-op for a task that is already done.
func (s *TaskService) MarkComplete(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	t, err := s.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !t.MarkComplete(now) {
		return t, nil
	}
	return t, s.saveStatus(ctx, t, now)
}

func (s *TaskService) MarkIncomplete(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	t, err := s.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t.MarkIncomplete()
	return t, s.saveStatus(ctx, t, now)
}

func (s *TaskService) ToggleTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	t, err := s.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t.Toggle(now)
	return t, s.saveStatus(ctx, t, now)
}

func (s *TaskService) saveStatus(ctx context.Context, t *task.Task, now time.Time) error {
	t.UpdatedAt = now
	if err := s.repo.UpdateTaskStatus(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(ResourceTask, t.ID.String())
		}
		return fmt.Errorf("saving task status: %w", err)
	}
	logger.Info("Service: task status changed",
		zap.String("task_id", t.ID.String()),
		zap.String("status", string(t.Status)))
	return nil
}

// resolveTags loads the owner's tags for ids. An id the owner does not have
// is reported as not found.
func (s *TaskService) resolveTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]*tag.Tag, error) {
	ids = task.Unique(ids)
	if errs := task.ValidateTagSelection(ids); !errs.Empty() {
		return nil, NewValidationErrors(errs)
	}
	if len(ids) == 0 {
		return []*tag.Tag{}, nil
	}

	found, err := s.tags.GetTagsByIDs(ctx, owner, ids)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	byID := make(map[uuid.UUID]*tag.Tag, len(found))
	for _, tg := range found {
		byID[tg.ID] = tg
	}

	tags := make([]*tag.Tag, 0, len(ids))
	for _, id := range ids {
		tg, ok := byID[id]
		if !ok {
			return nil, NewNotFound(ResourceTag, id.String())
		}
		tags = append(tags, tg)
	}
	return tags, nil
}
