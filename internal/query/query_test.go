package query_test

import (
	"testing"
	"time"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/query"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cols = "t.id"

func TestToSQL(t *testing.T) {
	owner := uuid.New()
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name     string
		query    *query.TaskQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "default order",
			query:    query.New(owner),
			wantSQL:  "SELECT t.id FROM tasks t WHERE t.owner_id = $1 ORDER BY CASE t.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 END ASC, t.created_at DESC",
			wantArgs: []any{owner},
		},
		{
			name:     "exact status with explicit sort",
			query:    query.New(owner).WithStatus("in_progress").WithSort("-due_date"),
			wantSQL:  "SELECT t.id FROM tasks t WHERE t.owner_id = $1 AND t.status = $2 ORDER BY t.due_date DESC",
			wantArgs: []any{owner, "in_progress"},
		},
		{
			name:     "active status has no parameter",
			query:    query.New(owner).WithStatus("active").WithSort("priority"),
			wantSQL:  "SELECT t.id FROM tasks t WHERE t.owner_id = $1 AND t.status <> 'done' ORDER BY t.priority ASC",
			wantArgs: []any{owner},
		},
		{
			name:  "and mode narrows per tag",
			query: query.New(owner).WithTags([]uuid.UUID{a, b, a}, query.TagModeAnd).WithSort("created_at"),
			wantSQL: "SELECT t.id FROM tasks t WHERE t.owner_id = $1" +
				" AND EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.tag_id = $2)" +
				" AND EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.tag_id = $3)" +
				" ORDER BY t.created_at ASC",
			wantArgs: []any{owner, a, b},
		},
		{
			name:  "or mode uses one set",
			query: query.New(owner).WithTags([]uuid.UUID{a, b}, query.TagModeOr).WithSort("-created_at").Page(2, 10),
			wantSQL: "SELECT t.id FROM tasks t WHERE t.owner_id = $1" +
				" AND EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.tag_id = ANY($2))" +
				" ORDER BY t.created_at DESC LIMIT $3 OFFSET $4",
			wantArgs: []any{owner, []uuid.UUID{a, b}, 10, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.query.ToSQL(cols)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuilderIgnoresUnknownValues(t *testing.T) {
	q := query.New(uuid.New()).WithStatus("archived").WithSort("title")
	assert.Empty(t, q.Status)
	assert.Empty(t, q.Sort)

	assert.Equal(t, query.TagModeOr, query.ParseTagMode("OR"))
	assert.Equal(t, query.TagModeAnd, query.ParseTagMode("xor"))
	assert.Equal(t, query.TagModeAnd, query.ParseTagMode(""))
}

type fixture struct {
	owner    uuid.UUID
	work     *tag.Tag
	home     *tag.Tag
	urgent   *task.Task
	chores   *task.Task
	done     *task.Task
	untagged *task.Task
	foreign  *task.Task
	all      []*task.Task
}

func newFixture() fixture {
	owner := uuid.New()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time {
		v := time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	f := fixture{
		owner: owner,
		work:  &tag.Tag{ID: uuid.New(), Name: "work"},
		home:  &tag.Tag{ID: uuid.New(), Name: "home"},
	}
	f.urgent = &task.Task{ID: uuid.New(), OwnerID: owner, Title: "urgent", Status: task.StatusTodo,
		Priority: task.PriorityHigh, DueDate: day(10), CreatedAt: base, Tags: []*tag.Tag{f.work, f.home}}
	f.chores = &task.Task{ID: uuid.New(), OwnerID: owner, Title: "chores", Status: task.StatusInProgress,
		Priority: task.PriorityLow, DueDate: day(5), CreatedAt: base.Add(time.Hour), Tags: []*tag.Tag{f.home}}
	f.done = &task.Task{ID: uuid.New(), OwnerID: owner, Title: "done", Status: task.StatusDone,
		Priority: task.PriorityMedium, CreatedAt: base.Add(2 * time.Hour), Tags: []*tag.Tag{f.work}}
	f.untagged = &task.Task{ID: uuid.New(), OwnerID: owner, Title: "untagged", Status: task.StatusTodo,
		Priority: task.PriorityHigh, CreatedAt: base.Add(3 * time.Hour)}
	f.foreign = &task.Task{ID: uuid.New(), OwnerID: uuid.New(), Title: "foreign", Status: task.StatusTodo,
		Priority: task.PriorityHigh, CreatedAt: base, Tags: []*tag.Tag{f.work}}
	f.all = []*task.Task{f.urgent, f.chores, f.done, f.untagged, f.foreign}
	return f
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestApply(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name  string
		query *query.TaskQuery
		want  []string
	}{
		{
			name:  "default order is severity then newest",
			query: query.New(f.owner),
			want:  []string{"untagged", "urgent", "done", "chores"},
		},
		{
			name:  "active excludes done",
			query: query.New(f.owner).WithStatus("active"),
			want:  []string{"untagged", "urgent", "chores"},
		},
		{
			name:  "and mode needs every tag",
			query: query.New(f.owner).WithTags([]uuid.UUID{f.work.ID, f.home.ID}, query.TagModeAnd),
			want:  []string{"urgent"},
		},
		{
			name:  "or mode needs any tag",
			query: query.New(f.owner).WithTags([]uuid.UUID{f.work.ID, f.home.ID}, query.TagModeOr),
			want:  []string{"urgent", "done", "chores"},
		},
		{
			name:  "priority sort is alphabetical",
			query: query.New(f.owner).WithSort("priority"),
			want:  []string{"urgent", "untagged", "chores", "done"},
		},
		{
			name:  "due date ascending puts missing last",
			query: query.New(f.owner).WithSort("due_date"),
			want:  []string{"chores", "urgent", "done", "untagged"},
		},
		{
			name:  "due date descending puts missing first",
			query: query.New(f.owner).WithSort("-due_date"),
			want:  []string{"done", "untagged", "urgent", "chores"},
		},
		{
			name:  "page window",
			query: query.New(f.owner).WithSort("created_at").Page(2, 2),
			want:  []string{"done", "untagged"},
		},
		{
			name:  "page past the end",
			query: query.New(f.owner).Page(5, 2),
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query.Apply(f.all)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestApplyDoesNotReorderInput(t *testing.T) {
	f := newFixture()
	before := titles(f.all)

	got := query.New(f.owner).WithSort("-created_at").Apply(f.all)
	require.NotEmpty(t, got)
	assert.Equal(t, before, titles(f.all))
}
