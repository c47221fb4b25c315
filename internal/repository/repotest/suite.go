// Package repotest holds the behaviour every repository implementation must
// share. Storage packages run RepositorySuite from their own tests.
package repotest

import (
	"context"
	"time"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/query"
	repo "taskManager/internal/repository"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite

	// NewRepository returns an empty store for each test.
	NewRepository func() service.Repository

	ctx   context.Context
	repo  service.Repository
	owner *user.User
	other *user.User
	base  time.Time
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepository()
	s.base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s.owner = s.createUser("owner@example.com", "owner")
	s.other = s.createUser("other@example.com", "other")
}

func (s *RepositorySuite) createUser(email, username string) *user.User {
	u := &user.User{ID: uuid.New(), Email: email, Username: username, CreatedAt: s.base}
	s.Require().NoError(s.repo.CreateUser(s.ctx, u))
	return u
}

func (s *RepositorySuite) createTag(owner uuid.UUID, name, color string) *tag.Tag {
	t := &tag.Tag{ID: uuid.New(), OwnerID: owner, Name: name, Color: color, CreatedAt: s.base}
	s.Require().NoError(s.repo.CreateTag(s.ctx, t))
	return t
}

func (s *RepositorySuite) createTask(owner uuid.UUID, title string, offset time.Duration, tags ...*tag.Tag) *task.Task {
	t := &task.Task{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     title,
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		CreatedAt: s.base.Add(offset),
		UpdatedAt: s.base.Add(offset),
		Tags:      tags,
	}
	s.Require().NoError(s.repo.CreateTask(s.ctx, t))
	return t
}

func names(tags []*tag.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func (s *RepositorySuite) TestHealthCheck() {
	s.NoError(s.repo.HealthCheck(s.ctx))
}

func (s *RepositorySuite) TestUsers() {
	got, err := s.repo.GetUser(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal("owner@example.com", got.Email)

	emailTaken, usernameTaken, err := s.repo.UserTaken(s.ctx, "OWNER@example.com", "nobody")
	s.Require().NoError(err)
	s.True(emailTaken)
	s.False(usernameTaken)

	_, err = s.repo.GetUser(s.ctx, uuid.New())
	s.ErrorIs(err, repo.ErrNotFound)

	dup := &user.User{ID: uuid.New(), Email: "x@example.com", Username: "owner", CreatedAt: s.base}
	s.ErrorIs(s.repo.CreateUser(s.ctx, dup), repo.ErrConflict)
}

func (s *RepositorySuite) TestDeleteUserCascades() {
	work := s.createTag(s.owner.ID, "work", "#FF6B6B")
	tk := s.createTask(s.owner.ID, "report", 0, work)
	otherTag := s.createTag(s.other.ID, "work", "#FF6B6B")

	s.Require().NoError(s.repo.DeleteUser(s.ctx, s.owner.ID))

	_, err := s.repo.GetTask(s.ctx, s.owner.ID, tk.ID)
	s.ErrorIs(err, repo.ErrNotFound)
	_, err = s.repo.GetTag(s.ctx, s.owner.ID, work.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	kept, err := s.repo.GetTag(s.ctx, s.other.ID, otherTag.ID)
	s.Require().NoError(err)
	s.Equal("work", kept.Name)

	s.ErrorIs(s.repo.DeleteUser(s.ctx, s.owner.ID), repo.ErrNotFound)
}

func (s *RepositorySuite) TestTaskRoundTrip() {
	work := s.createTag(s.owner.ID, "work", "#FF6B6B")
	alpha := s.createTag(s.owner.ID, "alpha", "#45B7D1")
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tk := &task.Task{
		ID:          uuid.New(),
		OwnerID:     s.owner.ID,
		Title:       "report",
		Description: "quarterly",
		Status:      task.StatusInProgress,
		Priority:    task.PriorityHigh,
		DueDate:     &due,
		Position:    3,
		CreatedAt:   s.base,
		UpdatedAt:   s.base,
		Tags:        []*tag.Tag{work, alpha},
	}
	s.Require().NoError(s.repo.CreateTask(s.ctx, tk))

	got, err := s.repo.GetTask(s.ctx, s.owner.ID, tk.ID)
	s.Require().NoError(err)
	s.Equal("quarterly", got.Description)
	s.Equal(task.PriorityHigh, got.Priority)
	s.Equal(3, got.Position)
	s.Require().NotNil(got.DueDate)
	s.True(due.Equal(*got.DueDate))
	s.Nil(got.CompletedAt)
	s.Equal([]string{"alpha", "work"}, names(got.Tags))

	_, err = s.repo.GetTask(s.ctx, s.other.ID, tk.ID)
	s.ErrorIs(err, repo.ErrNotFound, "other owners cannot see the task")

	got.Title = "report v2"
	got.Tags = []*tag.Tag{work}
	got.DueDate = nil
	s.Require().NoError(s.repo.UpdateTask(s.ctx, got))

	again, err := s.repo.GetTask(s.ctx, s.owner.ID, tk.ID)
	s.Require().NoError(err)
	s.Equal("report v2", again.Title)
	s.Nil(again.DueDate)
	s.Equal([]string{"work"}, names(again.Tags))

	foreign := *again
	foreign.OwnerID = s.other.ID
	s.ErrorIs(s.repo.UpdateTask(s.ctx, &foreign), repo.ErrNotFound)
}

func (s *RepositorySuite) TestUpdateTaskStatusTouchesOnlyLifecycle() {
	tk := s.createTask(s.owner.ID, "report", 0)

	now := s.base.Add(time.Hour)
	change := *tk
	change.Title = "ignored"
	change.Status = task.StatusDone
	change.CompletedAt = &now
	change.UpdatedAt = now
	s.Require().NoError(s.repo.UpdateTaskStatus(s.ctx, &change))

	got, err := s.repo.GetTask(s.ctx, s.owner.ID, tk.ID)
	s.Require().NoError(err)
	s.Equal("report", got.Title)
	s.Equal(task.StatusDone, got.Status)
	s.Require().NotNil(got.CompletedAt)
	s.True(now.Equal(*got.CompletedAt))
}

func (s *RepositorySuite) TestDeleteTask() {
	tk := s.createTask(s.owner.ID, "report", 0)

	s.ErrorIs(s.repo.DeleteTask(s.ctx, s.other.ID, tk.ID), repo.ErrNotFound)
	s.Require().NoError(s.repo.DeleteTask(s.ctx, s.owner.ID, tk.ID))
	s.ErrorIs(s.repo.DeleteTask(s.ctx, s.owner.ID, tk.ID), repo.ErrNotFound)
}

func (s *RepositorySuite) TestDeleteTaskKeepsTags() {
	work := s.createTag(s.owner.ID, "work", "#FF6B6B")
	home := s.createTag(s.owner.ID, "home", "#4ECDC4")
	tk := s.createTask(s.owner.ID, "report", 0, work, home)

	s.Require().NoError(s.repo.DeleteTask(s.ctx, s.owner.ID, tk.ID))

	tags, err := s.repo.ListTags(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal([]string{"home", "work"}, names(tags))
	for _, tg := range tags {
		s.Zero(tg.TaskCount, tg.Name)
	}
}

func (s *RepositorySuite) TestListTasks() {
	work := s.createTag(s.owner.ID, "work", "#FF6B6B")
	home := s.createTag(s.owner.ID, "home", "#4ECDC4")

	both := s.createTask(s.owner.ID, "both", 0, work, home)
	s.createTask(s.owner.ID, "work only", time.Hour, work)
	s.createTask(s.owner.ID, "none", 2*time.Hour)
	s.createTask(s.other.ID, "foreign", 0)

	both.Status = task.StatusDone
	both.Priority = task.PriorityHigh
	s.Require().NoError(s.repo.UpdateTask(s.ctx, both))

	list := func(q *query.TaskQuery) []string {
		tasks, err := s.repo.ListTasks(s.ctx, q)
		s.Require().NoError(err)
		return titles(tasks)
	}

	s.Equal([]string{"both", "none", "work only"}, list(query.New(s.owner.ID)))
	s.Equal([]string{"none", "work only"}, list(query.New(s.owner.ID).WithStatus("active")))
	s.Equal([]string{"both"}, list(query.New(s.owner.ID).WithTags([]uuid.UUID{work.ID, home.ID}, query.TagModeAnd)))
	s.Equal([]string{"both", "work only"}, list(query.New(s.owner.ID).WithTags([]uuid.UUID{work.ID, home.ID}, query.TagModeOr)))
	s.Equal([]string{"work only"}, list(query.New(s.owner.ID).WithSort("created_at").Page(2, 1)))
	s.Empty(list(query.New(s.other.ID).WithTags([]uuid.UUID{work.ID}, query.TagModeOr)))
}

func (s *RepositorySuite) TestGraphAndRelatedTasks() {
	work := s.createTag(s.owner.ID, "Work", "#FF6B6B")
	home := s.createTag(s.owner.ID, "home", "#4ECDC4")

	first := s.createTask(s.owner.ID, "first", 0, work)
	second := s.createTask(s.owner.ID, "second", time.Hour, work, home)
	s.createTask(s.owner.ID, "third", 2*time.Hour, home)
	s.createTask(s.owner.ID, "loner", 3*time.Hour)

	second.Position = -1
	s.Require().NoError(s.repo.UpdateTask(s.ctx, second))

	tasks, err := s.repo.ListGraphTasks(s.ctx, s.owner.ID, "", "")
	s.Require().NoError(err)
	s.Equal([]string{"second", "loner", "third", "first"}, titles(tasks))

	tasks, err = s.repo.ListGraphTasks(s.ctx, s.owner.ID, "todo", "work")
	s.Require().NoError(err)
	s.Equal([]string{"second", "first"}, titles(tasks))

	related, err := s.repo.RelatedTasks(s.ctx, s.owner.ID, first.ID)
	s.Require().NoError(err)
	s.Equal([]string{"second"}, titles(related))

	n, err := s.repo.CountTasks(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(4, n)
}

func (s *RepositorySuite) TestTags() {
	work := s.createTag(s.owner.ID, "work", "#FF6B6B")
	s.createTag(s.owner.ID, "Alpha", "#45B7D1")
	s.createTag(s.other.ID, "secret", "#45B7D1")
	s.createTask(s.owner.ID, "report", 0, work)

	tags, err := s.repo.ListTags(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal([]string{"Alpha", "work"}, names(tags))
	s.Equal(1, tags[1].TaskCount)

	got, err := s.repo.GetTag(s.ctx, s.owner.ID, work.ID)
	s.Require().NoError(err)
	s.Equal(1, got.TaskCount)
	_, err = s.repo.GetTag(s.ctx, s.other.ID, work.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	taken, err := s.repo.TagNameTaken(s.ctx, s.owner.ID, "WORK", uuid.Nil)
	s.Require().NoError(err)
	s.True(taken)
	taken, err = s.repo.TagNameTaken(s.ctx, s.owner.ID, "WORK", work.ID)
	s.Require().NoError(err)
	s.False(taken)

	dup := &tag.Tag{ID: uuid.New(), OwnerID: s.owner.ID, Name: "work", Color: "#FF6B6B", CreatedAt: s.base}
	s.ErrorIs(s.repo.CreateTag(s.ctx, dup), repo.ErrConflict)

	colors, err := s.repo.TagColors(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"#FF6B6B", "#45B7D1"}, colors)

	found, err := s.repo.SearchTags(s.ctx, s.owner.ID, "AL", 10)
	s.Require().NoError(err)
	s.Equal([]string{"Alpha"}, names(found))

	n, err := s.repo.CountTags(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *RepositorySuite) TestDeleteTagKeepsTasks() {
	work := s.createTag(s.owner.ID, "work", "#FF6B6B")
	tk := s.createTask(s.owner.ID, "report", 0, work)

	s.ErrorIs(s.repo.DeleteTag(s.ctx, s.other.ID, work.ID), repo.ErrNotFound)
	s.Require().NoError(s.repo.DeleteTag(s.ctx, s.owner.ID, work.ID))

	got, err := s.repo.GetTask(s.ctx, s.owner.ID, tk.ID)
	s.Require().NoError(err)
	s.Empty(got.Tags)
}

func (s *RepositorySuite) TestBulkTagOperationsAreOwnerScoped() {
	a := s.createTag(s.owner.ID, "a", "#FF6B6B")
	b := s.createTag(s.owner.ID, "b", "#FF6B6B")
	foreign := s.createTag(s.other.ID, "c", "#FF6B6B")

	n, err := s.repo.RecolorTags(s.ctx, s.owner.ID, []uuid.UUID{a.ID, b.ID, foreign.ID}, "#BB8FCE")
	s.Require().NoError(err)
	s.Equal(2, n)

	kept, err := s.repo.GetTag(s.ctx, s.other.ID, foreign.ID)
	s.Require().NoError(err)
	s.Equal("#FF6B6B", kept.Color)

	n, err = s.repo.DeleteTags(s.ctx, s.owner.ID, []uuid.UUID{a.ID, foreign.ID})
	s.Require().NoError(err)
	s.Equal(1, n)

	owned, err := s.repo.GetTagsByIDs(s.ctx, s.owner.ID, []uuid.UUID{a.ID, b.ID, foreign.ID})
	s.Require().NoError(err)
	s.Equal([]string{"b"}, names(owned))
	s.Equal("#BB8FCE", owned[0].Color)
}

func (s *RepositorySuite) TestMergeTags() {
	source := s.createTag(s.owner.ID, "js", "#FF6B6B")
	target := s.createTag(s.owner.ID, "javascript", "#4ECDC4")

	onlySource := s.createTask(s.owner.ID, "only source", 0, source)
	both := s.createTask(s.owner.ID, "both", time.Hour, source, target)

	s.Require().NoError(s.repo.MergeTags(s.ctx, s.owner.ID, source.ID, target.ID))

	_, err := s.repo.GetTag(s.ctx, s.owner.ID, source.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	for _, id := range []uuid.UUID{onlySource.ID, both.ID} {
		got, err := s.repo.GetTask(s.ctx, s.owner.ID, id)
		s.Require().NoError(err)
		s.Equal([]string{"javascript"}, names(got.Tags))
	}

	merged, err := s.repo.GetTag(s.ctx, s.owner.ID, target.ID)
	s.Require().NoError(err)
	s.Equal(2, merged.TaskCount)

	foreign := s.createTag(s.other.ID, "x", "#FF6B6B")
	s.ErrorIs(s.repo.MergeTags(s.ctx, s.owner.ID, foreign.ID, target.ID), repo.ErrNotFound)
}

func (s *RepositorySuite) TestMergeTagIntoItselfChangesNothing() {
	tg := s.createTag(s.owner.ID, "go", "#FF6B6B")
	tk := s.createTask(s.owner.ID, "report", 0, tg)

	s.ErrorIs(s.repo.MergeTags(s.ctx, s.owner.ID, tg.ID, tg.ID), repo.ErrConflict)

	got, err := s.repo.GetTag(s.ctx, s.owner.ID, tg.ID)
	s.Require().NoError(err)
	s.Equal(1, got.TaskCount)
	stored, err := s.repo.GetTask(s.ctx, s.owner.ID, tk.ID)
	s.Require().NoError(err)
	s.Equal([]string{"go"}, names(stored.Tags))
}

func (s *RepositorySuite) TestTagsSortCaseInsensitively() {
	for _, name := range []string{"beta", "Gamma", "alpha", "Delta"} {
		s.createTag(s.owner.ID, name, "#FF6B6B")
	}

	tags, err := s.repo.ListTags(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal([]string{"alpha", "beta", "Delta", "Gamma"}, names(tags))

	found, err := s.repo.SearchTags(s.ctx, s.owner.ID, "a", 3)
	s.Require().NoError(err)
	s.Equal([]string{"alpha", "beta", "Delta"}, names(found))
}

func (s *RepositorySuite) TestRelatedTagsAndUsage() {
	base := s.createTag(s.owner.ID, "go", "#FF6B6B")
	often := s.createTag(s.owner.ID, "backend", "#4ECDC4")
	once := s.createTag(s.owner.ID, "api", "#45B7D1")
	tie := s.createTag(s.owner.ID, "cli", "#45B7D1")
	unrelated := s.createTag(s.owner.ID, "cooking", "#45B7D1")

	s.createTask(s.owner.ID, "one", 0, base, often, once)
	s.createTask(s.owner.ID, "two", time.Hour, base, often, tie)
	s.createTask(s.owner.ID, "three", 2*time.Hour, unrelated)

	related, err := s.repo.RelatedTags(s.ctx, s.owner.ID, base.ID, 5)
	s.Require().NoError(err)
	s.Equal([]string{"backend", "api", "cli"}, names(related))

	limited, err := s.repo.RelatedTags(s.ctx, s.owner.ID, base.ID, 1)
	s.Require().NoError(err)
	s.Equal([]string{"backend"}, names(limited))

	usage, err := s.repo.TagUsage(s.ctx, s.owner.ID, []uuid.UUID{base.ID, once.ID, unrelated.ID})
	s.Require().NoError(err)
	s.Equal(map[uuid.UUID]int{base.ID: 2, once.ID: 1, unrelated.ID: 1}, usage)
}
