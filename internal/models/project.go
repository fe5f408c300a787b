package models

import "time"

const (
	ProjectStatusActive    = "active"
	ProjectStatusPaused    = "paused"
	ProjectStatusCompleted = "completed"
)

type Project struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description"`
	Status       string        `json:"status"`
	Progress     int           `json:"progress"`
	NextStep     *string       `json:"next_step"`
	ObsidianLink *string       `json:"obsidian_link"`
	IsMain       bool          `json:"is_main"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at"`
	Tasks        []ProjectTask `json:"tasks"`
}

// ProjectTask is a checklist item owned by a project. Order is caller-assigned and advisory.
type ProjectTask struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

type ProjectFilter struct {
	Status *string
}

type ProjectInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	Progress     *int    `json:"progress"`
	NextStep     *string `json:"next_step"`
	ObsidianLink *string `json:"obsidian_link"`
	IsMain       *bool   `json:"is_main"`
}

type ProjectPatch struct {
	Name         Optional[string] `json:"name" swaggertype:"string" extensions:"x-nullable"`
	Description  Optional[string] `json:"description" swaggertype:"string" extensions:"x-nullable"`
	Status       Optional[string] `json:"status" swaggertype:"string" extensions:"x-nullable"`
	Progress     Optional[int]    `json:"progress" swaggertype:"integer" extensions:"x-nullable"`
	NextStep     Optional[string] `json:"next_step" swaggertype:"string" extensions:"x-nullable"`
	ObsidianLink Optional[string] `json:"obsidian_link" swaggertype:"string" extensions:"x-nullable"`
	IsMain       Optional[bool]   `json:"is_main" swaggertype:"boolean" extensions:"x-nullable"`
}

type ProjectTaskInput struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed"`
	Order     *int   `json:"order"`
}
