package postgres

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/query"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `t.id, t.owner_id, t.title, t.description, t.status, t.priority,
	t.due_date, t.position, t.completed_at, t.created_at, t.updated_at`

func scanTask(row scanner) (*task.Task, error) {
	t := &task.Task{Tags: []*tag.Tag{}}
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.Position,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer observe("create_task", start)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO tasks
				(id, owner_id, title, description, status, priority, due_date, position, completed_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t.ID, t.OwnerID, t.Title, t.Description, t.Status, t.Priority,
			t.DueDate, t.Position, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return replaceTaskTags(ctx, tx, t.ID, t.TagIDs())
	})
	if err != nil {
		logger.Error("Repository: creating task failed", err, zap.String("task_id", t.ID.String()))
		return fmt.Errorf("creating task: %w", mapError(err))
	}
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer observe("update_task", start)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE tasks
				SET title = $1,
					description = $2,
					status = $3,
					priority = $4,
					due_date = $5,
					position = $6,
					completed_at = $7,
					updated_at = $8
				WHERE id = $9 AND owner_id = $10`,
			t.Title, t.Description, t.Status, t.Priority, t.DueDate,
			t.Position, t.CompletedAt, t.UpdatedAt, t.ID, t.OwnerID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		return replaceTaskTags(ctx, tx, t.ID, t.TagIDs())
	})
	if err != nil {
		return fmt.Errorf("updating task: %w", mapError(err))
	}
	return nil
}

// UpdateTaskStatus writes only the lifecycle columns.
func (s *Storage) UpdateTaskStatus(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer observe("update_task_status", start)

	tag, err := s.pool.Exec(ctx, `UPDATE tasks
			SET status = $1, completed_at = $2, updated_at = $3
			WHERE id = $4 AND owner_id = $5`,
		t.Status, t.CompletedAt, t.UpdatedAt, t.ID, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating task status: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer observe("get_task", start)

	t, err := scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1 AND t.owner_id = $2`, id, owner))
	if err != nil {
		return nil, mapError(err)
	}
	if err := attachTags(ctx, s.pool, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	start := time.Now()
	defer observe("delete_task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, q *query.TaskQuery) ([]*task.Task, error) {
	start := time.Now()
	defer observe("list_tasks", start)

	sql, args := q.ToSQL(taskColumns)
	return s.queryTasks(ctx, sql, args...)
}

func (s *Storage) ListGraphTasks(ctx context.Context, owner uuid.UUID, status, tagName string) ([]*task.Task, error) {
	start := time.Now()
	defer observe("list_graph_tasks", start)

	sql := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.owner_id = $1`
	args := []any{owner}
	if status != "" {
		args = append(args, status)
		sql += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if tagName != "" {
		args = append(args, tagName)
		sql += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
			WHERE tt.task_id = t.id AND LOWER(g.name) = LOWER($%d))`, len(args))
	}
	sql += " ORDER BY t.position ASC, t.created_at DESC"

	return s.queryTasks(ctx, sql, args...)
}

func (s *Storage) RelatedTasks(ctx context.Context, owner, id uuid.UUID) ([]*task.Task, error) {
	start := time.Now()
	defer observe("related_tasks", start)

	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks t
		WHERE t.owner_id = $1 AND t.id <> $2
		AND EXISTS (
			SELECT 1 FROM task_tags a JOIN task_tags b ON b.tag_id = a.tag_id
			WHERE a.task_id = $2 AND b.task_id = t.id
		)
		ORDER BY t.position ASC, t.created_at DESC`, owner, id)
}

func (s *Storage) CountTasks(ctx context.Context, owner uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = $1`, owner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}

func (s *Storage) queryTasks(ctx context.Context, sql string, args ...any) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error("Repository: querying tasks failed", err)
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	if err := attachTags(ctx, s.pool, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// attachTags loads tags for all tasks in one query, ordered by name.
func attachTags(ctx context.Context, q querier, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := q.Query(ctx, `SELECT tt.task_id, g.id, g.owner_id, g.name, g.color, g.created_at
			FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
			WHERE tt.task_id = ANY($1)
			ORDER BY `+tagNameOrder, ids)
	if err != nil {
		return fmt.Errorf("loading task tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID uuid.UUID
		tg := &tag.Tag{}
		if err := rows.Scan(&taskID, &tg.ID, &tg.OwnerID, &tg.Name, &tg.Color, &tg.CreatedAt); err != nil {
			return fmt.Errorf("scanning task tag: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.Tags = append(t.Tags, tg)
		}
	}
	return rows.Err()
}

func replaceTaskTags(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO task_tags (task_id, tag_id)
			SELECT $1, UNNEST($2::uuid[])
			ON CONFLICT DO NOTHING`, taskID, task.Unique(tagIDs))
	return err
}
