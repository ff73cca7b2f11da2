package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNameRequired = errors.New("project name is required")
	ErrProjectNameTaken    = errors.New("project name already exists")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// ListProjects lists projects. Inactive rows are included only on request.
func (s *ProjectService) ListProjects(includeInactive bool) ([]models.Project, error) {
	projects, err := s.projectRepo.List(includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateProject creates a new project. Names stay unique across active and
// soft-deleted rows alike.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	if err := s.ensureNameFree(name, 0); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		IsActive:    true,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// UpdateProjectInput represents a partial project update.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// UpdateProject applies a partial update to a project.
func (s *ProjectService) UpdateProject(id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		if name != project.Name {
			if err := s.ensureNameFree(name, id); err != nil {
				return nil, err
			}
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.IsActive != nil {
		project.IsActive = *input.IsActive
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeactivateProject soft-deletes a project. Deactivating an already
// inactive project is not an error.
func (s *ProjectService) DeactivateProject(id uint64) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if !project.IsActive {
		return project, nil
	}

	project.IsActive = false
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to deactivate project: %w", err)
	}

	return project, nil
}

func (s *ProjectService) ensureNameFree(name string, selfID uint64) error {
	existing, err := s.projectRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if existing.ID != selfID {
		return ErrProjectNameTaken
	}
	return nil
}
