package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskManager/internal/graph"
	"taskManager/internal/handlers"
	"taskManager/internal/middleware"
	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"
	"taskManager/internal/query"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

type testServer struct {
	tasks *handlers.TaskHandler
	tags  *handlers.TagHandler
	graph *handlers.GraphHandler
	users *handlers.UserHandler

	taskService *service.TaskService
	tagService  *service.TagService
	owner       uuid.UUID
	other       uuid.UUID
}

func newTestServer() *testServer {
	store := inmemory.NewStorage()
	clock := func() time.Time { return fixedNow }

	taskService := service.NewTaskService(store, store).WithClock(clock)
	tagService := service.NewTagService(store, tag.DefaultPalette()).WithClock(clock)
	graphService := service.NewGraphService(store, store, graph.NewBuilder(tag.DefaultPalette())).WithClock(clock)

	return &testServer{
		tasks:       handlers.NewTaskHandler(taskService),
		tags:        handlers.NewTagHandler(tagService),
		graph:       handlers.NewGraphHandler(graphService),
		users:       handlers.NewUserHandler(service.NewUserService(store)),
		taskService: taskService,
		tagService:  tagService,
		owner:       uuid.New(),
		other:       uuid.New(),
	}
}

// newRequest builds an authenticated request. A non-empty id fills the {id}
// route parameter.
func newRequest(method, target, body string, owner uuid.UUID, id string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if owner != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), owner))
	}
	if id != "" {
		req.SetPathValue("id", id)
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func (s *testServer) createTag(t *testing.T, owner uuid.UUID, name string) *tag.Tag {
	t.Helper()
	tg, err := s.tagService.CreateTag(context.Background(), owner, name, "")
	require.NoError(t, err)
	return tg
}

func (s *testServer) createTask(t *testing.T, title string, tagIDs ...uuid.UUID) *task.Task {
	t.Helper()
	tk, err := s.taskService.CreateTask(context.Background(), s.owner, service.TaskInput{Title: title, TagIDs: tagIDs})
	require.NoError(t, err)
	return tk
}

type stubChecker struct{ err error }

func (c stubChecker) HealthCheck(context.Context) error { return c.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "store down", err: errors.New("db down"), wantStatus: http.StatusServiceUnavailable, wantBody: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(stubChecker{err: tt.err})
			rr := serve(h.HealthCheck, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decode(t, rr)
			assert.Equal(t, tt.wantBody, body["status"])
			assert.Equal(t, "task-manager", body["service"])
		})
	}
}

func TestTaskHandler_CreateTask(t *testing.T) {
	s := newTestServer()
	work := s.createTag(t, s.owner, "work")
	foreign := s.createTag(t, s.other, "secret")

	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
		check       func(t *testing.T, body map[string]any)
	}{
		{
			name:       "created with defaults",
			body:       `{"title":"Write report","due_date":"2024-03-09","tag_ids":["` + work.ID.String() + `"]}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Write report", body["title"])
				assert.Equal(t, "todo", body["status"])
				assert.Equal(t, "medium", body["priority"])
				assert.Equal(t, "2024-03-09", body["due_date"])
				assert.Equal(t, true, body["is_overdue"])
				assert.Equal(t, float64(-1), body["days_until_due"])
				tags := body["tags"].([]any)
				require.Len(t, tags, 1)
				badge := tags[0].(map[string]any)
				assert.Equal(t, "work", badge["name"])
				assert.Equal(t, "#000000", badge["text_color"])
			},
		},
		{
			name:       "empty due date means none",
			body:       `{"title":"Later","due_date":""}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				assert.Nil(t, body["due_date"])
				assert.Nil(t, body["days_until_due"])
				assert.Equal(t, []any{}, body["tags"])
			},
		},
		{
			name:       "validation error lists fields",
			body:       `{"title":"","priority":"urgent"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "VALIDATION_ERROR", body["error"])
				fields := body["details"].(map[string]any)["fields"].(map[string]any)
				assert.Contains(t, fields, "title")
				assert.Contains(t, fields, "priority")
			},
		},
		{
			name:       "foreign tag is not found",
			body:       `{"title":"x","tag_ids":["` + foreign.ID.String() + `"]}`,
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "NOT_FOUND", body["error"])
			},
		},
		{
			name:       "malformed due date",
			body:       `{"title":"x","due_date":"10/03/2024"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "broken json",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "wrong content type",
			body:        `{"title":"x"}`,
			contentType: "text/plain",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodPost, "/api/tasks", tt.body, s.owner, "")
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := serve(s.tasks.CreateTask, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.check != nil {
				tt.check(t, decode(t, rr))
			}
		})
	}
}

func TestTaskHandler_RequiresUser(t *testing.T) {
	s := newTestServer()
	rr := serve(s.tasks.ListTasks, newRequest(http.MethodGet, "/api/tasks", "", uuid.Nil, ""))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "UNAUTHORIZED", body["error"])
	assert.Equal(t, "authentication required", body["message"])
}

func TestTaskHandler_GetTask(t *testing.T) {
	s := newTestServer()
	tk := s.createTask(t, "mine")

	rr := serve(s.tasks.GetTask, newRequest(http.MethodGet, "/api/tasks/x", "", s.owner, tk.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "mine", decode(t, rr)["title"])

	rr = serve(s.tasks.GetTask, newRequest(http.MethodGet, "/api/tasks/x", "", s.other, tk.ID.String()))
	assert.Equal(t, http.StatusNotFound, rr.Code, "other owners get not found")

	rr = serve(s.tasks.GetTask, newRequest(http.MethodGet, "/api/tasks/x", "", s.owner, "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	s := newTestServer()
	work := s.createTag(t, s.owner, "work")
	tk, err := s.taskService.CreateTask(context.Background(), s.owner, service.TaskInput{
		Title:   "report",
		DueDate: &fixedNow,
		TagIDs:  []uuid.UUID{work.ID},
	})
	require.NoError(t, err)

	rr := serve(s.tasks.UpdateTask, newRequest(http.MethodPut, "/api/tasks/x",
		`{"status":"done","due_date":null}`, s.owner, tk.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, "done", body["status"])
	assert.NotNil(t, body["completed_at"])
	assert.Nil(t, body["due_date"])
	assert.Len(t, body["tags"], 1, "omitted tag_ids keep tags")

	rr = serve(s.tasks.UpdateTask, newRequest(http.MethodPut, "/api/tasks/x",
		`{"tag_ids":[]}`, s.owner, tk.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode(t, rr)["tags"])
}

func TestTaskHandler_Lifecycle(t *testing.T) {
	s := newTestServer()
	tk := s.createTask(t, "report")
	id := tk.ID.String()

	steps := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus string
		completed  bool
	}{
		{name: "toggle to done", handler: s.tasks.ToggleTask, wantStatus: "done", completed: true},
		{name: "complete is a no-op", handler: s.tasks.CompleteTask, wantStatus: "done", completed: true},
		{name: "incomplete", handler: s.tasks.IncompleteTask, wantStatus: "todo"},
		{name: "toggle back", handler: s.tasks.ToggleTask, wantStatus: "done", completed: true},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			rr := serve(step.handler, newRequest(http.MethodPost, "/api/tasks/x/toggle", "", s.owner, id))
			require.Equal(t, http.StatusOK, rr.Code)
			body := decode(t, rr)
			assert.Equal(t, step.wantStatus, body["status"])
			assert.Equal(t, step.completed, body["completed_at"] != nil)
		})
	}
}

func TestTaskHandler_MoveAndDelete(t *testing.T) {
	s := newTestServer()
	tk := s.createTask(t, "report")
	id := tk.ID.String()

	rr := serve(s.tasks.MoveTask, newRequest(http.MethodPut, "/api/tasks/x/position", `{}`, s.owner, id))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s.tasks.MoveTask, newRequest(http.MethodPut, "/api/tasks/x/position", `{"position":4}`, s.owner, id))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(4), decode(t, rr)["position"])

	rr = serve(s.tasks.DeleteTask, newRequest(http.MethodDelete, "/api/tasks/x", "", s.other, id))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s.tasks.DeleteTask, newRequest(http.MethodDelete, "/api/tasks/x", "", s.owner, id))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestTaskHandler_ListTasks(t *testing.T) {
	s := newTestServer()
	work := s.createTag(t, s.owner, "work")
	home := s.createTag(t, s.owner, "home")
	s.createTask(t, "both", work.ID, home.ID)
	s.createTask(t, "work", work.ID)
	s.createTask(t, "plain")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       []string
	}{
		{name: "all", target: "/api/tasks", wantStatus: http.StatusOK, want: []string{"both", "work", "plain"}},
		{
			name:       "and tags",
			target:     "/api/tasks?tags=" + work.ID.String() + "," + home.ID.String(),
			wantStatus: http.StatusOK,
			want:       []string{"both"},
		},
		{
			name:       "or tags skip empty entries",
			target:     "/api/tasks?tag_mode=or&tags=," + home.ID.String() + ",",
			wantStatus: http.StatusOK,
			want:       []string{"both"},
		},
		{name: "malformed tag id", target: "/api/tasks?tags=garbage", wantStatus: http.StatusBadRequest},
		{name: "malformed id among valid ones", target: "/api/tasks?tag_mode=or&tags=" + work.ID.String() + ",junk", wantStatus: http.StatusBadRequest},
		{name: "paged", target: "/api/tasks?sort=created_at&page=2&limit=1", wantStatus: http.StatusOK, want: []string{"work"}},
		{name: "unknown sort ignored", target: "/api/tasks?sort=title&status=archived", wantStatus: http.StatusOK, want: []string{"both", "work", "plain"}},
		{name: "bad limit", target: "/api/tasks?limit=0", wantStatus: http.StatusBadRequest},
		{name: "bad page", target: "/api/tasks?page=x&limit=5", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(s.tasks.ListTasks, newRequest(http.MethodGet, tt.target, "", s.owner, ""))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Tasks []struct {
					Title string `json:"title"`
				} `json:"tasks"`
				Count int `json:"count"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			got := make([]string, len(resp.Tasks))
			for i, tk := range resp.Tasks {
				got[i] = tk.Title
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), resp.Count)
		})
	}
}

func TestTaskHandler_RelatedTasks(t *testing.T) {
	s := newTestServer()
	work := s.createTag(t, s.owner, "work")
	a := s.createTask(t, "a", work.ID)
	s.createTask(t, "b", work.ID)

	rr := serve(s.tasks.RelatedTasks, newRequest(http.MethodGet, "/api/tasks/x/related", "", s.owner, a.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code)

	var related []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &related))
	require.Len(t, related, 1)
	assert.Equal(t, "b", related[0]["title"])
}

// failingTaskService fails every call it is configured for. Methods it does
// not override panic through the nil embedded interface.
type failingTaskService struct {
	handlers.TaskService
	mock.Mock
}

func (m *failingTaskService) ListTasks(ctx context.Context, q *query.TaskQuery) ([]*task.Task, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *failingTaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func TestTaskHandler_StoreFailureIs503(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	svc := new(failingTaskService)
	svc.On("ListTasks", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	svc.On("GetTask", mock.Anything, owner, id).Return(nil, errors.New("connection refused"))

	h := handlers.NewTaskHandler(svc)

	for _, rr := range []*httptest.ResponseRecorder{
		serve(h.ListTasks, newRequest(http.MethodGet, "/api/tasks", "", owner, "")),
		serve(h.GetTask, newRequest(http.MethodGet, "/api/tasks/x", "", owner, id.String())),
	} {
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body["error"])
		assert.NotContains(t, rr.Body.String(), "connection refused")
	}
	svc.AssertExpectations(t)
}

func TestTagHandler_CreateAndList(t *testing.T) {
	s := newTestServer()

	rr := serve(s.tags.CreateTag, newRequest(http.MethodPost, "/api/tags", `{"name":"work"}`, s.owner, ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	assert.Equal(t, "#FF6B6B", created["color"])
	assert.Equal(t, float64(0), created["task_count"])

	rr = serve(s.tags.CreateTag, newRequest(http.MethodPost, "/api/tags", `{"name":"Work"}`, s.owner, ""))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decode(t, rr)["details"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, []any{"Tag 'Work' already exists (case-insensitive)."}, fields["name"])

	rr = serve(s.tags.ListTags, newRequest(http.MethodGet, "/api/tags", "", s.owner, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "work", list[0]["name"])

	rr = serve(s.tags.ListTags, newRequest(http.MethodGet, "/api/tags", "", s.other, ""))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestTagHandler_QuickCreate(t *testing.T) {
	s := newTestServer()
	s.createTag(t, s.owner, "work")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "created", body: `{"name":"urgent"}`, wantStatus: http.StatusCreated},
		{name: "duplicate", body: `{"name":"WORK"}`, wantStatus: http.StatusBadRequest, wantError: "Tag 'WORK' already exists (case-insensitive)."},
		{name: "empty", body: `{"name":"  "}`, wantStatus: http.StatusBadRequest, wantError: "Tag name cannot be empty."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(s.tags.QuickCreate, newRequest(http.MethodPost, "/api/tags/quick-create", tt.body, s.owner, ""))
			require.Equal(t, tt.wantStatus, rr.Code)
			body := decode(t, rr)
			if tt.wantError != "" {
				assert.Equal(t, map[string]any{"error": tt.wantError}, body)
				return
			}
			assert.Equal(t, "urgent", body["name"])
			assert.NotEmpty(t, body["id"])
			assert.NotEmpty(t, body["color"])
		})
	}
}

func TestTagHandler_GetTagWithRelated(t *testing.T) {
	s := newTestServer()
	goTag := s.createTag(t, s.owner, "go")
	backend := s.createTag(t, s.owner, "backend")
	s.createTask(t, "api", goTag.ID, backend.ID)

	rr := serve(s.tags.GetTag, newRequest(http.MethodGet, "/api/tags/x", "", s.owner, goTag.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "go", body["name"])
	assert.Equal(t, float64(1), body["task_count"])
	related := body["related"].([]any)
	require.Len(t, related, 1)
	assert.Equal(t, "backend", related[0].(map[string]any)["name"])

	rr = serve(s.tags.GetTag, newRequest(http.MethodGet, "/api/tags/x", "", s.other, goTag.ID.String()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTagHandler_EditTag(t *testing.T) {
	s := newTestServer()
	work := s.createTag(t, s.owner, "work")
	id := work.ID.String()

	rr := serve(s.tags.RenameTag, newRequest(http.MethodPost, "/api/tags/x/name", `{"name":"job"}`, s.owner, id))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "job", decode(t, rr)["name"])

	rr = serve(s.tags.RecolorTag, newRequest(http.MethodPost, "/api/tags/x/color", `{"color":"#000000"}`, s.owner, id))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "#000000", body["color"])
	assert.Equal(t, "#ffffff", body["text_color"])

	rr = serve(s.tags.UpdateTag, newRequest(http.MethodPut, "/api/tags/x", `{"color":"black"}`, s.owner, id))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s.tags.DeleteTag, newRequest(http.MethodDelete, "/api/tags/x", "", s.owner, id))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestTagHandler_MergeTag(t *testing.T) {
	s := newTestServer()
	js := s.createTag(t, s.owner, "js")
	javascript := s.createTag(t, s.owner, "javascript")
	s.createTask(t, "app", js.ID)

	rr := serve(s.tags.MergeTag, newRequest(http.MethodPost, "/api/tags/x/merge", `{}`, s.owner, js.ID.String()))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body := `{"target_id":"` + javascript.ID.String() + `"}`
	rr = serve(s.tags.MergeTag, newRequest(http.MethodPost, "/api/tags/x/merge", body, s.owner, js.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	merged := decode(t, rr)
	assert.Equal(t, "javascript", merged["name"])
	assert.Equal(t, float64(1), merged["task_count"])
}

func TestTagHandler_BulkEdit(t *testing.T) {
	s := newTestServer()
	a := s.createTag(t, s.owner, "a")

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "warning is not an error", body: `{"tag_ids":[],"action":"delete"}`, want: `{"action":"delete","affected":0,"warning":"No tags selected."}`},
		{name: "invalid color", body: `{"tag_ids":["` + a.ID.String() + `"],"action":"color:#000000"}`, want: `{"action":"color:#000000","affected":0,"warning":"Invalid color."}`},
		{name: "recolor", body: `{"tag_ids":["` + a.ID.String() + `"],"action":"color:#BB8FCE"}`, want: `{"action":"color:#BB8FCE","affected":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(s.tags.BulkEdit, newRequest(http.MethodPost, "/api/tags/bulk-edit", tt.body, s.owner, ""))
			require.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, tt.want, rr.Body.String())
		})
	}
}

func TestTagHandler_AutocompleteAndPalette(t *testing.T) {
	s := newTestServer()
	s.createTag(t, s.owner, "backend")
	s.createTag(t, s.owner, "frontend")
	s.createTag(t, s.owner, "go")

	rr := serve(s.tags.Autocomplete, newRequest(http.MethodGet, "/api/tags/autocomplete?q=END", "", s.owner, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &found))
	require.Len(t, found, 2)
	assert.Equal(t, "backend", found[0]["name"])
	assert.Len(t, found[0], 3, "summaries carry id, name and color only")

	rr = serve(s.tags.Palette, newRequest(http.MethodGet, "/api/tags/palette", "", s.owner, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, tag.DefaultColor, body["default"])
	assert.Len(t, body["colors"], 8)
}

func TestTagHandler_ExportCSV(t *testing.T) {
	s := newTestServer()
	s.createTag(t, s.owner, "work")

	rr := serve(s.tags.ExportCSV, newRequest(http.MethodGet, "/api/tags/export", "", s.owner, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tags.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "name,color,task_count,created_at\nwork,#FF6B6B,0,2024-03-10T14:30:00Z\n", rr.Body.String())
}

func TestGraphHandler_GetGraph(t *testing.T) {
	s := newTestServer()
	work := s.createTag(t, s.owner, "work")
	s.createTask(t, "report", work.ID)
	s.createTask(t, "other")

	rr := serve(s.graph.GetGraph, newRequest(http.MethodGet, "/api/graph?filter_tag=WORK", "", s.owner, ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var g graph.Graph
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
	assert.Equal(t, graph.Stats{TotalTasks: 2, TotalTags: 1, FilteredTasks: 1, FilteredTags: 1}, g.Stats)

	rr = serve(s.graph.GetGraph, newRequest(http.MethodGet, "/api/graph", "", s.other, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"nodes":[],"edges":[],"stats":{"total_tasks":0,"total_tags":0,"filtered_tasks":0,"filtered_tags":0}}`,
		rr.Body.String())
}

func TestUserHandler(t *testing.T) {
	s := newTestServer()

	rr := serve(s.users.Register, newRequest(http.MethodPost, "/api/users", `{"email":"Ada@example.com","username":"ada"}`, uuid.Nil, ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	assert.Equal(t, "ada@example.com", created["email"])
	id, err := uuid.Parse(created["id"].(string))
	require.NoError(t, err)

	rr = serve(s.users.Register, newRequest(http.MethodPost, "/api/users", `{"email":"ada@example.com","username":"ada"}`, uuid.Nil, ""))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s.users.Me, newRequest(http.MethodGet, "/api/users/me", "", id, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ada", decode(t, rr)["username"])

	rr = serve(s.users.DeleteMe, newRequest(http.MethodDelete, "/api/users/me", "", id, ""))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(s.users.Me, newRequest(http.MethodGet, "/api/users/me", "", id, ""))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
