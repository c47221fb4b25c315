package handlers

import (
	"context"
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/task"
	"taskManager/internal/query"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{TaskService: taskService}
}

// ListTasks accepts status, tags (comma separated ids), tag_mode, sort,
// page and limit. Unknown filter values are ignored.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	limit, err := parsePositive(params.Get("limit"), 0)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "limit "+err.Error())
		return
	}
	page, err := parsePositive(params.Get("page"), 1)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "page "+err.Error())
		return
	}

	tagIDs, err := parseIDList(params.Get("tags"))
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "tags: "+err.Error())
		return
	}

	q := query.New(owner).
		WithStatus(params.Get("status")).
		WithTags(tagIDs, query.ParseTagMode(params.Get("tag_mode"))).
		WithSort(params.Get("sort")).
		Page(page, limit)

	tasks, err := h.TaskService.ListTasks(r.Context(), q)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Debug("HTTP_OUT: tasks listed",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	resp := dto.TaskListResponse{
		Tasks: dto.FromTaskList(tasks, h.TaskService.Today()),
		Count: len(tasks),
	}
	if limit > 0 {
		resp.Page, resp.Limit = page, limit
	}
	responseWithBody(w, http.StatusOK, resp)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TaskService.CreateTask(r.Context(), owner, service.TaskInput{
		Title:       request.Title,
		Description: request.Description,
		Status:      task.Status(request.Status),
		Priority:    task.Priority(request.Priority),
		DueDate:     request.DueDate.Value,
		TagIDs:      request.TagIDs,
	})
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("task_id", t.ID.String()))

	responseWithBody(w, http.StatusCreated, dto.FromTask(t, h.TaskService.Today()))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	h.withTask(w, r, "get_task", h.TaskService.GetTask)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	var options []task.TaskOption
	if request.Title != nil {
		options = append(options, task.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, task.WithDescription(*request.Description))
	}
	if request.Status != nil {
		options = append(options, task.WithStatus(task.Status(*request.Status)))
	}
	if request.Priority != nil {
		options = append(options, task.WithPriority(task.Priority(*request.Priority)))
	}
	if request.DueDate.Set {
		options = append(options, task.WithDueDate(request.DueDate.Value))
	}
	if request.Position != nil {
		options = append(options, task.WithPosition(*request.Position))
	}

	t, err := h.TaskService.UpdateTask(r.Context(), owner, id, request.TagIDs, options...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(t, h.TaskService.Today()))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), owner, id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("task_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	h.withTask(w, r, "toggle_task", h.TaskService.ToggleTask)
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.withTask(w, r, "complete_task", h.TaskService.MarkComplete)
}

func (h *TaskHandler) IncompleteTask(w http.ResponseWriter, r *http.Request) {
	h.withTask(w, r, "incomplete_task", h.TaskService.MarkIncomplete)
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request dto.MoveTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Position == nil {
		handleError(w, r, service.NewValidationError("position", "This field is required."), "move_task")
		return
	}

	t, err := h.TaskService.MoveTask(r.Context(), owner, id, *request.Position)
	if err != nil {
		handleError(w, r, err, "move_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(t, h.TaskService.Today()))
}

func (h *TaskHandler) RelatedTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.RelatedTasks(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, err, "related_tasks")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, h.TaskService.Today()))
}

type taskAction func(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)

// withTask runs a single task action for the {id} route and writes the task.
func (h *TaskHandler) withTask(w http.ResponseWriter, r *http.Request, operation string, action taskAction) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	t, err := action(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, err, operation)
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(t, h.TaskService.Today()))
}
