package inmemory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"taskManager/internal/logger"
	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/query"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type storedTask struct {
	task   task.Task
	tagIDs []uuid.UUID
}

// Storage keeps users, tags and tasks in maps. Values are copied on the way
// in and out so callers never share memory with the store.
type Storage struct {
	mtx   *sync.RWMutex
	users map[uuid.UUID]*user.User
	tags  map[uuid.UUID]*tag.Tag
	tasks map[uuid.UUID]*storedTask
	ids   []uuid.UUID
}

func NewStorage() *Storage {
	return &Storage{
		mtx:   &sync.RWMutex{},
		users: make(map[uuid.UUID]*user.User),
		tags:  make(map[uuid.UUID]*tag.Tag),
		tasks: make(map[uuid.UUID]*storedTask),
		ids:   []uuid.UUID{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory storage is healthy")
	return nil
}

// users

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repo.ErrConflict
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Storage) UserTaken(ctx context.Context, email, username string) (bool, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var emailTaken, usernameTaken bool
	for _, u := range s.users {
		emailTaken = emailTaken || strings.EqualFold(u.Email, email)
		usernameTaken = usernameTaken || u.Username == username
	}
	return emailTaken, usernameTaken, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[id]; !ok {
		return repo.ErrNotFound
	}
	for taskID, st := range s.tasks {
		if st.task.OwnerID == id {
			s.removeTask(taskID)
		}
	}
	for tagID, t := range s.tags {
		if t.OwnerID == id {
			delete(s.tags, tagID)
		}
	}
	delete(s.users, id)
	return nil
}

// tasks

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tasks[t.ID] = toStored(t)
	s.ids = append(s.ids, t.ID)
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok || existing.task.OwnerID != t.OwnerID {
		return repo.ErrNotFound
	}
	s.tasks[t.ID] = toStored(t)
	return nil
}

func (s *Storage) UpdateTaskStatus(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok || existing.task.OwnerID != t.OwnerID {
		return repo.ErrNotFound
	}
	existing.task.Status = t.Status
	existing.task.CompletedAt = copyTime(t.CompletedAt)
	existing.task.UpdatedAt = t.UpdatedAt
	return nil
}

func (s *Storage) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	st, ok := s.tasks[id]
	if !ok || st.task.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	return s.hydrate(st), nil
}

func (s *Storage) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	st, ok := s.tasks[id]
	if !ok || st.task.OwnerID != owner {
		return repo.ErrNotFound
	}
	s.removeTask(id)
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, q *query.TaskQuery) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return q.Apply(s.ownerTasks(q.OwnerID)), nil
}

func (s *Storage) ListGraphTasks(ctx context.Context, owner uuid.UUID, status, tagName string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := []*task.Task{}
	for _, t := range s.ownerTasks(owner) {
		if status != "" && string(t.Status) != status {
			continue
		}
		if tagName != "" && !slices.ContainsFunc(t.Tags, func(tg *tag.Tag) bool {
			return strings.EqualFold(tg.Name, tagName)
		}) {
			continue
		}
		out = append(out, t)
	}
	sortByPosition(out)
	return out, nil
}

func (s *Storage) RelatedTasks(ctx context.Context, owner, id uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	st, ok := s.tasks[id]
	if !ok || st.task.OwnerID != owner {
		return nil, repo.ErrNotFound
	}

	out := []*task.Task{}
	for _, t := range s.ownerTasks(owner) {
		if t.ID == id {
			continue
		}
		if slices.ContainsFunc(st.tagIDs, t.HasTag) {
			out = append(out, t)
		}
	}
	sortByPosition(out)
	return out, nil
}

func (s *Storage) CountTasks(ctx context.Context, owner uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n := 0
	for _, st := range s.tasks {
		if st.task.OwnerID == owner {
			n++
		}
	}
	return n, nil
}

// tags

func (s *Storage) CreateTag(ctx context.Context, t *tag.Tag) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.nameConflict(t) {
		return repo.ErrConflict
	}
	cp := *t
	s.tags[t.ID] = &cp
	return nil
}

func (s *Storage) UpdateTag(ctx context.Context, t *tag.Tag) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tags[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return repo.ErrNotFound
	}
	if s.nameConflict(t) {
		return repo.ErrConflict
	}
	existing.Name = t.Name
	existing.Color = t.Color
	return nil
}

func (s *Storage) GetTag(ctx context.Context, owner, id uuid.UUID) (*tag.Tag, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tags[id]
	if !ok || t.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	cp := *t
	cp.TaskCount = s.usage(id)
	return &cp, nil
}

func (s *Storage) GetTagsByIDs(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]*tag.Tag, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := []*tag.Tag{}
	for _, id := range task.Unique(ids) {
		if t, ok := s.tags[id]; ok && t.OwnerID == owner {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortByName(out)
	return out, nil
}

func (s *Storage) DeleteTag(ctx context.Context, owner, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tags[id]
	if !ok || t.OwnerID != owner {
		return repo.ErrNotFound
	}
	s.removeTag(id)
	return nil
}

func (s *Storage) DeleteTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	n := 0
	for _, id := range task.Unique(ids) {
		if t, ok := s.tags[id]; ok && t.OwnerID == owner {
			s.removeTag(id)
			n++
		}
	}
	return n, nil
}

func (s *Storage) RecolorTags(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, color string) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	n := 0
	for _, id := range task.Unique(ids) {
		if t, ok := s.tags[id]; ok && t.OwnerID == owner {
			t.Color = color
			n++
		}
	}
	return n, nil
}

func (s *Storage) ListTags(ctx context.Context, owner uuid.UUID) ([]*tag.Tag, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := []*tag.Tag{}
	for id, t := range s.tags {
		if t.OwnerID != owner {
			continue
		}
		cp := *t
		cp.TaskCount = s.usage(id)
		out = append(out, &cp)
	}
	sortByName(out)
	return out, nil
}

func (s *Storage) SearchTags(ctx context.Context, owner uuid.UUID, q string, limit int) ([]*tag.Tag, error) {
	all, err := s.ListTags(ctx, owner)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q)
	out := []*tag.Tag{}
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			out = append(out, t)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Storage) TagNameTaken(ctx context.Context, owner uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for id, t := range s.tags {
		if id != exclude && t.OwnerID == owner && strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) TagColors(ctx context.Context, owner uuid.UUID) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	colors := []string{}
	for _, t := range s.tags {
		if t.OwnerID == owner {
			colors = append(colors, t.Color)
		}
	}
	return colors, nil
}

func (s *Storage) MergeTags(ctx context.Context, owner, source, target uuid.UUID) error {
	if source == target {
		return repo.ErrConflict
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	src, ok := s.tags[source]
	if !ok || src.OwnerID != owner {
		return repo.ErrNotFound
	}
	dst, ok := s.tags[target]
	if !ok || dst.OwnerID != owner {
		return repo.ErrNotFound
	}

	for _, st := range s.tasks {
		if slices.Contains(st.tagIDs, source) && !slices.Contains(st.tagIDs, target) {
			st.tagIDs = append(st.tagIDs, target)
		}
	}
	s.removeTag(source)
	return nil
}

func (s *Storage) RelatedTags(ctx context.Context, owner, id uuid.UUID, limit int) ([]*tag.Tag, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	shared := make(map[uuid.UUID]int)
	for _, st := range s.tasks {
		if st.task.OwnerID != owner || !slices.Contains(st.tagIDs, id) {
			continue
		}
		for _, other := range st.tagIDs {
			if other != id {
				shared[other]++
			}
		}
	}

	out := make([]*tag.Tag, 0, len(shared))
	for tagID := range shared {
		if t, ok := s.tags[tagID]; ok && t.OwnerID == owner {
			cp := *t
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *tag.Tag) int {
		if shared[a.ID] != shared[b.ID] {
			return shared[b.ID] - shared[a.ID]
		}
		return tag.CompareNames(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) TagUsage(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	usage := make(map[uuid.UUID]int, len(ids))
	for _, id := range ids {
		usage[id] = 0
	}
	for _, st := range s.tasks {
		if st.task.OwnerID != owner {
			continue
		}
		for _, id := range st.tagIDs {
			if _, wanted := usage[id]; wanted {
				usage[id]++
			}
		}
	}
	return usage, nil
}

func (s *Storage) CountTags(ctx context.Context, owner uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n := 0
	for _, t := range s.tags {
		if t.OwnerID == owner {
			n++
		}
	}
	return n, nil
}

// helpers, callers hold the lock

func (s *Storage) ownerTasks(owner uuid.UUID) []*task.Task {
	out := []*task.Task{}
	for _, id := range s.ids {
		if st := s.tasks[id]; st.task.OwnerID == owner {
			out = append(out, s.hydrate(st))
		}
	}
	return out
}

func (s *Storage) hydrate(st *storedTask) *task.Task {
	t := st.task
	t.DueDate = copyTime(st.task.DueDate)
	t.CompletedAt = copyTime(st.task.CompletedAt)
	t.Tags = make([]*tag.Tag, 0, len(st.tagIDs))
	for _, id := range st.tagIDs {
		if tg, ok := s.tags[id]; ok {
			cp := *tg
			t.Tags = append(t.Tags, &cp)
		}
	}
	sortByName(t.Tags)
	return &t
}

func (s *Storage) usage(tagID uuid.UUID) int {
	n := 0
	for _, st := range s.tasks {
		if slices.Contains(st.tagIDs, tagID) {
			n++
		}
	}
	return n
}

func (s *Storage) nameConflict(t *tag.Tag) bool {
	for id, other := range s.tags {
		if id != t.ID && other.OwnerID == t.OwnerID && other.Name == t.Name {
			return true
		}
	}
	return false
}

func (s *Storage) removeTask(id uuid.UUID) {
	delete(s.tasks, id)
	s.ids = slices.DeleteFunc(s.ids, func(other uuid.UUID) bool { return other == id })
}

func (s *Storage) removeTag(id uuid.UUID) {
	for _, st := range s.tasks {
		st.tagIDs = slices.DeleteFunc(st.tagIDs, func(other uuid.UUID) bool { return other == id })
	}
	delete(s.tags, id)
}

func toStored(t *task.Task) *storedTask {
	st := &storedTask{task: *t, tagIDs: task.Unique(t.TagIDs())}
	st.task.Tags = nil
	st.task.DueDate = copyTime(t.DueDate)
	st.task.CompletedAt = copyTime(t.CompletedAt)
	return st
}
