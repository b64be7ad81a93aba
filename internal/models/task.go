package models

import "time"

// Task is a single to-do item owned by a user.
type Task struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"userId"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Priority  string     `json:"priority"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TaskPatch carries the optional fields of a partial task update.
// A nil field is left untouched.
type TaskPatch struct {
	Completed *bool      `json:"completed"`
	Text      *string    `json:"text"`
	Priority  *string    `json:"priority"`
	DueDate   *time.Time `json:"dueDate"`
}

// TaskStats aggregates the task counts for a single owner.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}
