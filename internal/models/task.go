package models

import "time"

// Observed status values. Status is free text; these are the ones the dashboard uses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Task is a dated to-do item. Date and Time are kept in their ISO text form.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Category    *string    `json:"category"`
	Status      string     `json:"status"`
	Date        *string    `json:"date"`
	Time        *string    `json:"time"`
	Priority    int        `json:"priority"`
	Notes       *string    `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TaskFilter holds exact-match, AND-combined list filters. Nil fields are ignored.
type TaskFilter struct {
	Category *string
	Status   *string
	Date     *string
}

type TaskInput struct {
	Title    string  `json:"title"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
	Date     *string `json:"date"`
	Time     *string `json:"time"`
	Priority *int    `json:"priority"`
	Notes    *string `json:"notes"`
}

// TaskPatch is a sparse update: only fields present in the payload are applied.
type TaskPatch struct {
	Title    Optional[string] `json:"title" swaggertype:"string" extensions:"x-nullable"`
	Category Optional[string] `json:"category" swaggertype:"string" extensions:"x-nullable"`
	Status   Optional[string] `json:"status" swaggertype:"string" extensions:"x-nullable"`
	Date     Optional[string] `json:"date" swaggertype:"string" extensions:"x-nullable"`
	Time     Optional[string] `json:"time" swaggertype:"string" extensions:"x-nullable"`
	Priority Optional[int]    `json:"priority" swaggertype:"integer" extensions:"x-nullable"`
	Notes    Optional[string] `json:"notes" swaggertype:"string" extensions:"x-nullable"`
}

type DayCompletion struct {
	Day       string `json:"day"`
	Completed int    `json:"completed"`
}

type TaskStats struct {
	TotalTasks       int             `json:"totalTasks"`
	Completed        int             `json:"completed"`
	Pending          int             `json:"pending"`
	InProgress       int             `json:"inProgress"`
	CompletionRate   int             `json:"completionRate"`
	WeeklyCompletion []DayCompletion `json:"weeklyCompletion"`
}
