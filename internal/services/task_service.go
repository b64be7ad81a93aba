package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lmoren/taskdeck-be/internal/models"
	ws "github.com/lmoren/taskdeck-be/internal/websocket"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	ListTasks(userID string) ([]models.Task, error)
	GetTaskByID(id int64) (models.Task, error)
	CreateTask(userID, text, priority string, dueDate *time.Time) (models.Task, error)
	UpdateTask(id int64, patch models.TaskPatch) (models.Task, error)
	DeleteTask(id int64) error
	GetStats(userID string) (models.TaskStats, error)
	GetOverdueTasks(now time.Time) ([]models.Task, error)
	MarkDueNotified(id int64) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	db           *sql.DB
	hub          *ws.Hub
	eventService EventServiceProvider
}

// NewTaskService creates a new TaskService. The hub may be nil when no
// realtime feed is wired up (e.g. in tests).
func NewTaskService(db *sql.DB, hub *ws.Hub, eventService EventServiceProvider) *TaskService {
	return &TaskService{
		db:           db,
		hub:          hub,
		eventService: eventService,
	}
}

const taskColumns = "id, user_id, text, completed, priority, due_date, created_at, updated_at"

// ListTasks retrieves all tasks for an owner, newest-created first.
func (s *TaskService) ListTasks(userID string) ([]models.Task, error) {
	rows, err := s.db.Query("SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanTasks(rows)
}

// GetTaskByID retrieves a single task.
func (s *TaskService) GetTaskByID(id int64) (models.Task, error) {
	var task models.Task
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	err := row.Scan(&task.ID, &task.UserID, &task.Text, &task.Completed, &task.Priority, &task.DueDate, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// CreateTask persists a new task for an owner. Completion starts false and
// priority defaults to "medium".
func (s *TaskService) CreateTask(userID, text, priority string, dueDate *time.Time) (models.Task, error) {
	if userID == "" || strings.TrimSpace(text) == "" {
		return models.Task{}, fmt.Errorf("%w: userId and text are required", ErrValidation)
	}
	if priority == "" {
		priority = "medium"
	}

	now := time.Now().UTC()
	stmt, err := s.db.Prepare("INSERT INTO tasks(user_id, text, completed, priority, due_date, created_at, updated_at) VALUES(?, ?, 0, ?, ?, ?, ?)")
	if err != nil {
		return models.Task{}, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(userID, text, priority, dueDate, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return models.Task{}, fmt.Errorf("%w: user %s does not exist", ErrValidation, userID)
		}
		return models.Task{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}

	task, err := s.GetTaskByID(id)
	if err != nil {
		return models.Task{}, err
	}

	s.eventService.CreateEvent("task.create", "info", fmt.Sprintf("Task %d created.", task.ID), &task.UserID)
	s.notify("task_created", task)
	return task, nil
}

// UpdateTask applies only the supplied fields and always refreshes the
// update timestamp. Each present field maps to a fixed column assignment.
func (s *TaskService) UpdateTask(id int64, patch models.TaskPatch) (models.Task, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *patch.Completed)
	}
	if patch.Text != nil {
		if strings.TrimSpace(*patch.Text) == "" {
			return models.Task{}, fmt.Errorf("%w: text cannot be empty", ErrValidation)
		}
		sets = append(sets, "text = ?")
		args = append(args, *patch.Text)
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.DueDate != nil {
		// A changed due date may become overdue again, so re-arm the notice.
		sets = append(sets, "due_date = ?", "due_notified = 0")
		args = append(args, *patch.DueDate)
	}
	if len(sets) == 0 {
		return models.Task{}, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.Exec("UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return models.Task{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, ErrTaskNotFound
	}

	task, err := s.GetTaskByID(id)
	if err != nil {
		return models.Task{}, err
	}

	s.eventService.CreateEvent("task.update", "info", fmt.Sprintf("Task %d updated.", task.ID), &task.UserID)
	s.notify("task_updated", task)
	return task, nil
}

// DeleteTask removes a task by its identifier.
func (s *TaskService) DeleteTask(id int64) error {
	task, err := s.GetTaskByID(id)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return err
	}

	s.eventService.CreateEvent("task.delete", "info", fmt.Sprintf("Task %d deleted.", task.ID), &task.UserID)
	s.notify("task_deleted", task)
	return nil
}

// GetStats returns the task counts for an owner, zero-filled when none exist.
func (s *TaskService) GetStats(userID string) (models.TaskStats, error) {
	var stats models.TaskStats
	row := s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM tasks WHERE user_id = ?", userID)
	if err := row.Scan(&stats.Total, &stats.Completed); err != nil {
		return models.TaskStats{}, err
	}
	stats.Remaining = stats.Total - stats.Completed
	return stats, nil
}

// GetOverdueTasks retrieves incomplete tasks past their due date that have
// not been flagged yet.
func (s *TaskService) GetOverdueTasks(now time.Time) ([]models.Task, error) {
	rows, err := s.db.Query("SELECT "+taskColumns+" FROM tasks WHERE completed = 0 AND due_notified = 0 AND due_date IS NOT NULL AND due_date < ?", now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanTasks(rows)
}

// MarkDueNotified records that an overdue notice went out for a task.
func (s *TaskService) MarkDueNotified(id int64) error {
	_, err := s.db.Exec("UPDATE tasks SET due_notified = 1 WHERE id = ?", id)
	return err
}

func (s *TaskService) scanTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.UserID, &task.Text, &task.Completed, &task.Priority, &task.DueDate, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// notify pushes a task feed message to the owner's websocket subscribers.
func (s *TaskService) notify(action string, task models.Task) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastTo(task.UserID, ws.NewTaskMessage(action, task))
}
