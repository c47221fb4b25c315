package inmemory

import (
	"slices"
	"time"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
)

func sortByName(tags []*tag.Tag) {
	slices.SortStableFunc(tags, func(a, b *tag.Tag) int {
		return tag.CompareNames(a.Name, b.Name)
	})
}

// sortByPosition is the default task order: manual position, newest first.
func sortByPosition(tasks []*task.Task) {
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
