package postgres

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/tag"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Tag rows always carry their task count.
const tagSelect = `SELECT g.id, g.owner_id, g.name, g.color, g.created_at, COUNT(tt.task_id)
	FROM tags g LEFT JOIN task_tags tt ON tt.tag_id = g.id`

func scanTag(row scanner) (*tag.Tag, error) {
	t := &tag.Tag{}
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Color, &t.CreatedAt, &t.TaskCount)
	return t, err
}

func (s *Storage) CreateTag(ctx context.Context, t *tag.Tag) error {
	start := time.Now()
	defer observe("create_tag", start)

	_, err := s.pool.Exec(ctx, `INSERT INTO tags (id, owner_id, name, color, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.OwnerID, t.Name, t.Color, t.CreatedAt)
	if err != nil {
		logger.Warn("Repository: creating tag failed", zap.Error(err), zap.String("tag_id", t.ID.String()))
		return fmt.Errorf("creating tag: %w", mapError(err))
	}
	return nil
}

func (s *Storage) UpdateTag(ctx context.Context, t *tag.Tag) error {
	start := time.Now()
	defer observe("update_tag", start)

	cmd, err := s.pool.Exec(ctx, `UPDATE tags SET name = $1, color = $2 WHERE id = $3 AND owner_id = $4`,
		t.Name, t.Color, t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("updating tag: %w", mapError(err))
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetTag(ctx context.Context, owner, id uuid.UUID) (*tag.Tag, error) {
	t, err := scanTag(s.pool.QueryRow(ctx,
		tagSelect+` WHERE g.id = $1 AND g.owner_id = $2 GROUP BY g.id`, id, owner))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// tagNameOrder mirrors tag.CompareNames independently of the database locale.
const tagNameOrder = `lower(g.name) COLLATE "C", g.name COLLATE "C"`

func (s *Storage) GetTagsByIDs(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]*tag.Tag, error) {
	if len(ids) == 0 {
		return []*tag.Tag{}, nil
	}
	return s.queryTags(ctx, tagSelect+` WHERE g.owner_id = $1 AND g.id = ANY($2)
		GROUP BY g.id ORDER BY `+tagNameOrder, owner, ids)
}

func (s *Storage) DeleteTag(ctx context.Context, owner, id uuid.UUID) error {
	n, err := s.DeleteTags(ctx, owner, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// DeleteTags removes tags and, through the foreign key, their task links.
func (s *Storage) DeleteTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (int, error) {
	start := time.Now()
	defer observe("delete_tags", start)

	cmd, err := s.pool.Exec(ctx, `DELETE FROM tags WHERE owner_id = $1 AND id = ANY($2)`, owner, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting tags: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (s *Storage) RecolorTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, color string) (int, error) {
	cmd, err := s.pool.Exec(ctx, `UPDATE tags SET color = $1 WHERE owner_id = $2 AND id = ANY($3)`, color, owner, ids)
	if err != nil {
		return 0, fmt.Errorf("recoloring tags: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (s *Storage) ListTags(ctx context.Context, owner uuid.UUID) ([]*tag.Tag, error) {
	start := time.Now()
	defer observe("list_tags", start)

	return s.queryTags(ctx, tagSelect+` WHERE g.owner_id = $1 GROUP BY g.id ORDER BY `+tagNameOrder, owner)
}

// SearchTags matches q as a case-insensitive substring of the name.
func (s *Storage) SearchTags(ctx context.Context, owner uuid.UUID, q string, limit int) ([]*tag.Tag, error) {
	return s.queryTags(ctx, tagSelect+` WHERE g.owner_id = $1 AND STRPOS(LOWER(g.name), LOWER($2)) > 0
		GROUP BY g.id ORDER BY `+tagNameOrder+` LIMIT $3`, owner, q, limit)
}

func (s *Storage) TagNameTaken(ctx context.Context, owner uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM tags WHERE owner_id = $1 AND LOWER(name) = LOWER($2) AND id <> $3
		)`, owner, name, exclude).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("checking tag name: %w", err)
	}
	return taken, nil
}

func (s *Storage) TagColors(ctx context.Context, owner uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT color FROM tags WHERE owner_id = $1`, owner)
	if err != nil {
		return nil, fmt.Errorf("loading tag colors: %w", err)
	}
	colors, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning tag colors: %w", err)
	}
	return colors, nil
}

// MergeTags links every task of source to target, then drops source.
func (s *Storage) MergeTags(ctx context.Context, owner, source, target uuid.UUID) error {
	if source == target {
		return repo.ErrConflict
	}
	start := time.Now()
	defer observe("merge_tags", start)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var owned int
		err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE owner_id = $1 AND id IN ($2, $3)`,
			owner, source, target).Scan(&owned)
		if err != nil {
			return err
		}
		if owned != 2 {
			return repo.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `INSERT INTO task_tags (task_id, tag_id)
				SELECT task_id, $2 FROM task_tags WHERE tag_id = $1
				ON CONFLICT DO NOTHING`, source, target); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM task_tags WHERE tag_id = $1`, source); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM tags WHERE id = $1`, source)
		return err
	})
	if err != nil {
		return fmt.Errorf("merging tags: %w", mapError(err))
	}
	return nil
}

func (s *Storage) RelatedTags(ctx context.Context, owner, id uuid.UUID, limit int) ([]*tag.Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT g.id, g.owner_id, g.name, g.color, g.created_at, COUNT(*) AS shared
			FROM task_tags a
			JOIN task_tags b ON b.task_id = a.task_id AND b.tag_id <> a.tag_id
			JOIN tags g ON g.id = b.tag_id
			WHERE a.tag_id = $1 AND g.owner_id = $2
			GROUP BY g.id
			ORDER BY shared DESC, `+tagNameOrder+`
			LIMIT $3`, id, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("related tags: %w", err)
	}
	defer rows.Close()

	tags := []*tag.Tag{}
	for rows.Next() {
		t := &tag.Tag{}
		var shared int
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Color, &t.CreatedAt, &shared); err != nil {
			return nil, fmt.Errorf("scanning related tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagUsage counts the owner's tasks per tag; ids with no tasks map to zero.
func (s *Storage) TagUsage(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	usage := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return usage, nil
	}
	for _, id := range ids {
		usage[id] = 0
	}

	rows, err := s.pool.Query(ctx, `SELECT tt.tag_id, COUNT(*)
			FROM task_tags tt JOIN tasks t ON t.id = tt.task_id
			WHERE t.owner_id = $1 AND tt.tag_id = ANY($2)
			GROUP BY tt.tag_id`, owner, ids)
	if err != nil {
		return nil, fmt.Errorf("tag usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning tag usage: %w", err)
		}
		usage[id] = n
	}
	return usage, rows.Err()
}

func (s *Storage) CountTags(ctx context.Context, owner uuid.UUID) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE owner_id = $1`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tags: %w", err)
	}
	return n, nil
}

func (s *Storage) queryTags(ctx context.Context, sql string, args ...any) ([]*tag.Tag, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error("Repository: querying tags failed", err)
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	tags := []*tag.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
