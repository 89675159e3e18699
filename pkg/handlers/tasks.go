package handlers

import (
	"net/http"

	"org-dashboard-backend/pkg/actions"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	config  *config.Config
	actions *actions.Actions
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(cfg *config.Config, a *actions.Actions) *TaskHandler {
	return &TaskHandler{config: cfg, actions: a}
}

// ListTasks lists tasks; ?author_id= wins over ?status= when both are given
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []models.Task
		err   error
	)
	sess := session(r)
	query := r.URL.Query()
	switch {
	case query.Get("author_id") != "":
		tasks, err = h.actions.GetTasksByAuthor(r.Context(), sess, query.Get("author_id"))
	case query.Get("status") != "":
		tasks, err = h.actions.GetTasksByStatus(r.Context(), sess, models.TaskStatus(query.Get("status")))
	default:
		tasks, err = h.actions.ListTasks(r.Context(), sess)
	}
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	writeList(w, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.actions.GetTask(r.Context(), session(r), idParam(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, task)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input models.CreateTaskInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	task, err := h.actions.CreateTask(r.Context(), session(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, task)
}

// UpdateTask applies a partial update; {"column_id": null} unassigns the task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateTaskInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	task, err := h.actions.UpdateTask(r.Context(), session(r), idParam(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.actions.DeleteTask(r.Context(), session(r), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": id})
}
