package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmoren/taskdeck-be/internal/models"
	"github.com/lmoren/taskdeck-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TaskHandler handles HTTP requests for task management.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskPayload defines the structure for task creation requests.
type CreateTaskPayload struct {
	UserID   string     `json:"userId" validate:"required"`
	Text     string     `json:"text" validate:"required"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
}

// UpdateTaskPayload defines the structure for partial task updates.
type UpdateTaskPayload struct {
	Completed *bool      `json:"completed"`
	Text      *string    `json:"text" validate:"omitempty,min=1"`
	Priority  *string    `json:"priority"`
	DueDate   *time.Time `json:"dueDate"`
}

// List handles retrieving all tasks for an owner, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	tasks, err := h.service.ListTasks(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list tasks")
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Create handles new task creation.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !checkPayload(w, payload) {
		return
	}

	task, err := h.service.CreateTask(payload.UserID, payload.Text, payload.Priority, payload.DueDate)
	if err != nil {
		log.Warn().Err(err).Str("user_id", payload.UserID).Msg("Failed to create task")
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"message": "task created",
		"task":    task,
	})
}

// Update applies a partial update to a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var payload UpdateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !checkPayload(w, payload) {
		return
	}

	task, err := h.service.UpdateTask(id, models.TaskPatch{
		Completed: payload.Completed,
		Text:      payload.Text,
		Priority:  payload.Priority,
		DueDate:   payload.DueDate,
	})
	if err != nil {
		log.Warn().Err(err).Int64("task_id", id).Msg("Failed to update task")
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": "task updated",
		"task":    task,
	})
}

// Delete removes a task by its identifier.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(id); err != nil {
		log.Warn().Err(err).Int64("task_id", id).Msg("Failed to delete task")
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "task deleted"})
}

// Stats returns the aggregate task counts for an owner.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	stats, err := h.service.GetStats(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get task stats")
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"stats": stats})
}

// taskID parses the numeric task identifier from the route.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}
