package gorm

import (
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// Ensure ProjectsStore implements store.ProjectsStore
var _ store.ProjectsStore = (*ProjectsStore)(nil)

var projectUniques = map[string]error{"project.slug": store.ErrDuplicateSlug}

// ProjectsStore implements store.ProjectsStore using GORM
type ProjectsStore struct {
	db *gorm.DB
}

// NewProjectsStore creates a new ProjectsStore
func NewProjectsStore(db *gorm.DB) *ProjectsStore {
	return &ProjectsStore{db: db}
}

func (s *ProjectsStore) ListProjects() ([]model.Project, error) {
	projects := []model.Project{}
	if err := s.db.Order("date DESC").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectsStore) FetchProject(slug string) (*model.Project, error) {
	var project model.Project
	if err := s.db.Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, notFound(err, store.ErrProjectNotFound)
	}
	return &project, nil
}

func (s *ProjectsStore) CreateProject(project *model.Project) error {
	if project.Tags == nil {
		project.Tags = model.Tags{}
	}
	return translate(s.db.Create(project).Error, projectUniques)
}

func (s *ProjectsStore) UpdateProject(slug string, update store.ProjectUpdate) (*model.Project, error) {
	values := map[string]interface{}{}
	setIf(values, "title", update.Title)
	setIf(values, "summary", update.Summary)
	setIf(values, "content", update.Content)
	setIf(values, "thumbnail", update.Thumbnail)
	setIf(values, "date", update.Date)
	if update.Tags != nil {
		values["tags"] = *update.Tags
	}

	if len(values) > 0 {
		tx := s.db.Model(&model.Project{}).Where("slug = ?", slug).Updates(values)
		if tx.Error != nil {
			return nil, translate(tx.Error, projectUniques)
		}
		if tx.RowsAffected == 0 {
			return nil, store.ErrProjectNotFound
		}
	}
	return s.FetchProject(slug)
}

func (s *ProjectsStore) DeleteProject(slug string) error {
	tx := s.db.Where("slug = ?", slug).Delete(&model.Project{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}
