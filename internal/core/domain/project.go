package domain

import "time"

// ProjectStatus tracks a project's lifecycle.
type ProjectStatus string

// Project statuses.
const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Project is a development project the user tracks conversations and
// notes against.
type Project struct {
	// ID is the database row identifier. Zero until persisted.
	ID int64

	// Name is the project name.
	Name string

	// Description is an optional summary.
	Description string

	// RepositoryURL is an optional link to the project's repository.
	RepositoryURL string

	// Status tracks the project lifecycle. Defaults to active.
	Status ProjectStatus

	// Metadata holds free-form extras (technology stack, milestones).
	Metadata map[string]any

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is when the project was last modified.
	UpdatedAt time.Time
}

// NewProject creates an unpersisted, active project.
func NewProject(name, description string) Project {
	now := time.Now().UTC()
	return Project{
		Name:        name,
		Description: description,
		Status:      ProjectActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
