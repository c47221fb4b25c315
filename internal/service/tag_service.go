package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/models/tag"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	AutocompleteLimit = 10
	RelatedTagsLimit  = 5

	BulkActionDelete      = "delete"
	BulkActionColorPrefix = "color:"
)

// Bulk edit warnings. They are reported to the user, never returned as errors.
const (
	WarnNoTagsSelected = "No tags selected."
	WarnNoTagsFound    = "No matching tags found."
	WarnInvalidColor   = "Invalid color."
	WarnUnknownAction  = "Unknown action."
)

var CSVHeader = []string{"name", "color", "task_count", "created_at"}

type BulkResult struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
	Warning  string `json:"warning,omitempty"`
}

type TagService struct {
	repo    TagRepository
	palette tag.Palette
	now     func() time.Time
}

func NewTagService(repo TagRepository, palette tag.Palette) *TagService {
	if len(palette) == 0 {
		palette = tag.DefaultPalette()
	}
	return &TagService{
		repo:    repo,
		palette: palette,
		now:     time.Now,
	}
}

func (s *TagService) WithClock(now func() time.Time) *TagService {
	s.now = now
	return s
}

func (s *TagService) Palette() tag.Palette {
	return s.palette
}

func (s *TagService) AutoPickColor(existing []string) string {
	return s.palette.AutoPick(existing)
}

func (s *TagService) ListTags(ctx context.Context, owner uuid.UUID) ([]*tag.Tag, error) {
	tags, err := s.repo.ListTags(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) GetTag(ctx context.Context, owner, id uuid.UUID) (*tag.Tag, error) {
	t, err := s.repo.GetTag(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: tag not found", zap.String("tag_id", id.String()))
			return nil, NewNotFound(ResourceTag, id.String())
		}
		return nil, fmt.Errorf("getting tag: %w", err)
	}
	return t, nil
}

// CreateTag picks a palette color when color is empty.
func (s *TagService) CreateTag(ctx context.Context, owner uuid.UUID, name, color string) (*tag.Tag, error) {
	if strings.TrimSpace(color) == "" {
		colors, err := s.repo.TagColors(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("loading tag colors: %w", err)
		}
		color = s.AutoPickColor(colors)
	}

	t := &tag.Tag{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      name,
		Color:     strings.TrimSpace(color),
		CreatedAt: s.now(),
	}
	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTag(ctx, t); err != nil {
		if errors.Is(err, rep.ErrConflict) {
			return nil, duplicateName(t.Name)
		}
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	logger.Info("Service: tag created",
		zap.String("tag_id", t.ID.String()),
		zap.String("owner_id", owner.String()))
	return t, nil
}

func (s *TagService) QuickCreate(ctx context.Context, owner uuid.UUID, name string) (*tag.Tag, error) {
	return s.CreateTag(ctx, owner, name, "")
}

// UpdateTag changes only the fields that are not nil.
func (s *TagService) UpdateTag(ctx context.Context, owner, id uuid.UUID, name, color *string) (*tag.Tag, error) {
	t, err := s.GetTag(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		t.Name = *name
	}
	if color != nil {
		t.Color = strings.TrimSpace(*color)
	}
	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTag(ctx, t); err != nil {
		switch {
		case errors.Is(err, rep.ErrConflict):
			return nil, duplicateName(t.Name)
		case errors.Is(err, rep.ErrNotFound):
			return nil, NewNotFound(ResourceTag, id.String())
		}
		return nil, fmt.Errorf("updating tag: %w", err)
	}
	return t, nil
}

func (s *TagService) RenameTag(ctx context.Context, owner, id uuid.UUID, name string) (*tag.Tag, error) {
	return s.UpdateTag(ctx, owner, id, &name, nil)
}

func (s *TagService) RecolorTag(ctx context.Context, owner, id uuid.UUID, color string) (*tag.Tag, error) {
	return s.UpdateTag(ctx, owner, id, nil, &color)
}

func (s *TagService) DeleteTag(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteTag(ctx, owner, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(ResourceTag, id.String())
		}
		return fmt.Errorf("deleting tag: %w", err)
	}
	logger.Info("Service: tag deleted", zap.String("tag_id", id.String()))
	return nil
}

// BulkEdit applies "delete" or "color:<hex>" to the owner's tags among ids.
// Ids of other owners are dropped without notice.
func (s *TagService) BulkEdit(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, action string) (BulkResult, error) {
	action = strings.TrimSpace(action)
	result := BulkResult{Action: action}

	if len(ids) == 0 {
		result.Warning = WarnNoTagsSelected
		return result, nil
	}

	owned, err := s.repo.GetTagsByIDs(ctx, owner, ids)
	if err != nil {
		return result, fmt.Errorf("selecting tags: %w", err)
	}
	if len(owned) == 0 {
		result.Warning = WarnNoTagsFound
		return result, nil
	}
	ownedIDs := make([]uuid.UUID, 0, len(owned))
	for _, t := range owned {
		ownedIDs = append(ownedIDs, t.ID)
	}

	var color string
	switch {
	case action == BulkActionDelete:
	case strings.HasPrefix(action, BulkActionColorPrefix):
		color = strings.TrimPrefix(action, BulkActionColorPrefix)
		if !s.palette.Contains(color) {
			result.Warning = WarnInvalidColor
			return result, nil
		}
	default:
		result.Warning = WarnUnknownAction
		return result, nil
	}

	if action == BulkActionDelete {
		result.Affected, err = s.repo.DeleteTags(ctx, owner, ownedIDs)
	} else {
		result.Affected, err = s.repo.RecolorTags(ctx, owner, ownedIDs, color)
	}
	if err != nil {
		return result, fmt.Errorf("bulk %s: %w", action, err)
	}

	logger.Info("Service: bulk tag edit",
		zap.String("action", action),
		zap.Int("affected", result.Affected),
		zap.String("owner_id", owner.String()))
	return result, nil
}

// MergeTags moves every task of source onto target and removes source.
func (s *TagService) MergeTags(ctx context.Context, owner, source, target uuid.UUID) (*tag.Tag, error) {
	if source == target {
		return nil, NewValidationError("target", "Cannot merge a tag into itself.")
	}
	if _, err := s.GetTag(ctx, owner, source); err != nil {
		return nil, err
	}
	if _, err := s.GetTag(ctx, owner, target); err != nil {
		return nil, err
	}

	if err := s.repo.MergeTags(ctx, owner, source, target); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceTag, source.String())
		}
		return nil, fmt.Errorf("merging tags: %w", err)
	}

	logger.Info("Service: tags merged",
		zap.String("source_id", source.String()),
		zap.String("target_id", target.String()))
	return s.GetTag(ctx, owner, target)
}

func (s *TagService) RelatedTags(ctx context.Context, owner, id uuid.UUID) ([]*tag.Tag, error) {
	if _, err := s.GetTag(ctx, owner, id); err != nil {
		return nil, err
	}
	tags, err := s.repo.RelatedTags(ctx, owner, id, RelatedTagsLimit)
	if err != nil {
		return nil, fmt.Errorf("related tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Autocomplete(ctx context.Context, owner uuid.UUID, q string) ([]*tag.Tag, error) {
	tags, err := s.repo.SearchTags(ctx, owner, strings.TrimSpace(q), AutocompleteLimit)
	if err != nil {
		return nil, fmt.Errorf("searching tags: %w", err)
	}
	return tags, nil
}

// ExportCSV writes one row per tag with its task count.
func (s *TagService) ExportCSV(ctx context.Context, owner uuid.UUID, w io.Writer) error {
	tags, err := s.ListTags(ctx, owner)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range tags {
		row := []string{
			t.Name,
			t.Color,
			strconv.Itoa(t.TaskCount),
			t.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *TagService) validate(ctx context.Context, t *tag.Tag) error {
	errs := t.Validate()
	if !errs.Empty() {
		return NewValidationErrors(errs)
	}

	taken, err := s.repo.TagNameTaken(ctx, t.OwnerID, t.Name, t.ID)
	if err != nil {
		return fmt.Errorf("checking tag name: %w", err)
	}
	if taken {
		return duplicateName(t.Name)
	}
	return nil
}

func duplicateName(name string) *BusinessError {
	var errs models.FieldErrors
	errs.Add("name", fmt.Sprintf("Tag '%s' already exists (case-insensitive).", name))
	return NewValidationErrors(errs)
}
