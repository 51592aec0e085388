package store

import (
	"errors"

	"github.com/vincentyu/portfolio-backend/pkg/model"
)

// ErrProjectNotFound is returned when a project doesn't exist
var ErrProjectNotFound = errors.New("project not found")

// ProjectUpdate lists the fields to change. Nil fields are left alone.
type ProjectUpdate struct {
	Title     *string
	Summary   *string
	Content   *string
	Tags      *model.Tags
	Thumbnail *string
	Date      *string
}

// Empty reports whether the update changes nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Summary == nil && u.Content == nil &&
		u.Tags == nil && u.Thumbnail == nil && u.Date == nil
}

// ProjectsStore abstracts project storage operations
type ProjectsStore interface {
	// ListProjects returns all projects ordered by date, newest first.
	ListProjects() ([]model.Project, error)

	// FetchProject retrieves a project by slug.
	// Returns ErrProjectNotFound if the project doesn't exist.
	FetchProject(slug string) (*model.Project, error)

	// CreateProject inserts a project.
	// Returns ErrDuplicateSlug if the slug is taken.
	CreateProject(project *model.Project) error

	// UpdateProject applies update to the project with slug.
	UpdateProject(slug string, update ProjectUpdate) (*model.Project, error)

	// DeleteProject removes the project with slug.
	DeleteProject(slug string) error
}
