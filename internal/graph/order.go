package graph

import (
	"slices"
	"strings"

	"taskManager/internal/models/tag"

	"github.com/google/uuid"
)

// sortedTags emits tag nodes by name, matching the tag list order.
func sortedTags(seen map[uuid.UUID]*tag.Tag) []*tag.Tag {
	out := make([]*tag.Tag, 0, len(seen))
	for _, tg := range seen {
		out = append(out, tg)
	}
	slices.SortFunc(out, func(a, b *tag.Tag) int {
		if c := tag.CompareNames(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}
