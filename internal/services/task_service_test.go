package services

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lmoren/taskdeck-be/internal/models"
)

func newTaskFixture(t *testing.T) (*sql.DB, *UserService, *TaskService) {
	t.Helper()
	db := newTestDB(t)
	events := NewEventService(db)
	return db, NewUserService(db, 8, events), NewTaskService(db, nil, events)
}

func mustRegister(t *testing.T, users *UserService, email string) models.User {
	t.Helper()

	input := validRegistration()
	input.Email = email
	user, err := users.Register(input)
	if err != nil {
		t.Fatalf("failed to prepare user: %v", err)
	}
	return user
}

func mustCreateTask(t *testing.T, tasks *TaskService, userID, text string) models.Task {
	t.Helper()

	task, err := tasks.CreateTask(userID, text, "", nil)
	if err != nil {
		t.Fatalf("failed to prepare task: %v", err)
	}
	return task
}

func TestCreateTask_Defaults(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	task, err := tasks.CreateTask(owner.ID, "buy milk", "", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.Completed {
		t.Error("new task must start incomplete")
	}
	if task.Priority != "medium" {
		t.Errorf("expected default priority medium, got %q", task.Priority)
	}
	if task.DueDate != nil {
		t.Error("expected no due date")
	}
	if task.UserID != owner.ID {
		t.Errorf("expected owner %s, got %s", owner.ID, task.UserID)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	if _, err := tasks.CreateTask(owner.ID, "   ", "", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("blank text: expected ErrValidation, got %v", err)
	}
	if _, err := tasks.CreateTask("", "buy milk", "", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("missing owner: expected ErrValidation, got %v", err)
	}
	if _, err := tasks.CreateTask("no-such-user", "buy milk", "", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown owner: expected ErrValidation, got %v", err)
	}
}

func TestListTasks_NewestFirst(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	for i := 1; i <= 3; i++ {
		mustCreateTask(t, tasks, owner.ID, fmt.Sprintf("task %d", i))
	}

	listed, err := tasks.ListTasks(owner.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i-1].ID < listed[i].ID {
			t.Fatalf("tasks not in newest-first order: %d before %d", listed[i-1].ID, listed[i].ID)
		}
	}
}

func TestListTasks_Empty(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	listed, err := tasks.ListTasks(owner.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no tasks, got %d", len(listed))
	}
}

func TestUpdateTask_PartialCompletionOnly(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	task, err := tasks.CreateTask(owner.ID, "water plants", "high", &due)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	completed := true
	updated, err := tasks.UpdateTask(task.ID, models.TaskPatch{Completed: &completed})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Completed {
		t.Error("expected completion flag to flip")
	}
	if updated.Text != task.Text {
		t.Errorf("text changed unexpectedly to %q", updated.Text)
	}
	if updated.Priority != task.Priority {
		t.Errorf("priority changed unexpectedly to %q", updated.Priority)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Errorf("due date changed unexpectedly to %v", updated.DueDate)
	}
	if updated.UpdatedAt.Before(task.UpdatedAt) {
		t.Error("expected the update timestamp to move forward")
	}
}

func TestUpdateTask_Errors(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")
	task := mustCreateTask(t, tasks, owner.ID, "buy milk")

	completed := true
	if _, err := tasks.UpdateTask(9999, models.TaskPatch{Completed: &completed}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := tasks.UpdateTask(task.ID, models.TaskPatch{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty patch: expected ErrValidation, got %v", err)
	}
	blank := "  "
	if _, err := tasks.UpdateTask(task.ID, models.TaskPatch{Text: &blank}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank text: expected ErrValidation, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")
	task := mustCreateTask(t, tasks, owner.ID, "buy milk")

	if err := tasks.DeleteTask(task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := tasks.GetTaskByID(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected the task to be gone, got %v", err)
	}
	if err := tasks.DeleteTask(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second delete: expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteUser_CascadesToTasks(t *testing.T) {
	db, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")
	other := mustRegister(t, users, "other@example.com")

	mustCreateTask(t, tasks, owner.ID, "task one")
	mustCreateTask(t, tasks, owner.ID, "task two")
	kept := mustCreateTask(t, tasks, other.ID, "task three")

	if err := users.DeleteUser(owner.ID); err != nil {
		t.Fatalf("delete user failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks WHERE user_id = ?", owner.ID).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cascade to remove the owner's tasks, %d left", count)
	}
	if _, err := tasks.GetTaskByID(kept.ID); err != nil {
		t.Errorf("other user's task should survive: %v", err)
	}
}

func TestGetStats(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	stats, err := tasks.GetStats(owner.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 0 || stats.Completed != 0 || stats.Remaining != 0 {
		t.Fatalf("expected zero-filled stats, got %+v", stats)
	}

	completed := true
	for i := 0; i < 3; i++ {
		task := mustCreateTask(t, tasks, owner.ID, fmt.Sprintf("task %d", i))
		if i < 2 {
			if _, err := tasks.UpdateTask(task.ID, models.TaskPatch{Completed: &completed}); err != nil {
				t.Fatalf("update failed: %v", err)
			}
		}
	}

	stats, err = tasks.GetStats(owner.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 2 || stats.Remaining != 1 {
		t.Fatalf("expected {3 2 1}, got %+v", stats)
	}
	if stats.Total != stats.Completed+stats.Remaining {
		t.Fatalf("stats do not add up: %+v", stats)
	}
}

func TestOverdueScan(t *testing.T) {
	_, users, tasks := newTaskFixture(t)
	owner := mustRegister(t, users, "owner@example.com")

	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()
	overdue, err := tasks.CreateTask(owner.ID, "late task", "", &past)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := tasks.CreateTask(owner.ID, "future task", "", &future); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := tasks.GetOverdueTasks(time.Now())
	if err != nil {
		t.Fatalf("overdue query failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != overdue.ID {
		t.Fatalf("expected only the late task, got %+v", found)
	}

	if err := tasks.MarkDueNotified(overdue.ID); err != nil {
		t.Fatalf("mark notified failed: %v", err)
	}
	found, err = tasks.GetOverdueTasks(time.Now())
	if err != nil {
		t.Fatalf("overdue query failed: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no tasks after notification, got %d", len(found))
	}
}
