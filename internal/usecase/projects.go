package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskboard/internal/domain"
	"github.com/runoshun/taskboard/internal/usecase/shared"
)

// CreateProjectInput contains the parameters for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateProjectOutput contains the created project.
type CreateProjectOutput struct {
	Project *domain.Project
}

// CreateProject is the use case for creating a project.
type CreateProject struct {
	projects domain.ProjectRepository
	clock    domain.Clock
}

// NewCreateProject creates a new CreateProject use case.
func NewCreateProject(projects domain.ProjectRepository, clock domain.Clock) *CreateProject {
	return &CreateProject{projects: projects, clock: clock}
}

// Execute creates the project. The store rejects duplicate names with domain.ErrProjectExists.
func (uc *CreateProject) Execute(ctx context.Context, in CreateProjectInput) (*CreateProjectOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	project := &domain.Project{
		Name:        name,
		Description: in.Description,
		CreatedAt:   uc.clock.Now(),
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return &CreateProjectOutput{Project: project}, nil
}

// ListProjectsInput contains the parameters for listing projects.
type ListProjectsInput struct {
	IncludeArchived bool
}

// ListProjectsOutput contains matching projects.
type ListProjectsOutput struct {
	Projects []*domain.Project
}

// ListProjects is the use case for listing projects.
type ListProjects struct {
	projects domain.ProjectRepository
}

// NewListProjects creates a new ListProjects use case.
func NewListProjects(projects domain.ProjectRepository) *ListProjects {
	return &ListProjects{projects: projects}
}

// Execute lists projects. Archived projects are hidden unless requested.
func (uc *ListProjects) Execute(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	projects, err := uc.projects.List(ctx, in.IncludeArchived)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &ListProjectsOutput{Projects: projects}, nil
}

// ShowProject is the use case for retrieving one project.
type ShowProject struct {
	projects domain.ProjectRepository
}

// NewShowProject creates a new ShowProject use case.
func NewShowProject(projects domain.ProjectRepository) *ShowProject {
	return &ShowProject{projects: projects}
}

// Execute returns the project or domain.ErrProjectNotFound.
func (uc *ShowProject) Execute(ctx context.Context, id int64) (*domain.Project, error) {
	return shared.GetProject(ctx, uc.projects, id)
}

// ArchiveProject is the use case for hiding a project from default listings.
// Archiving is one-way and leaves the project's tasks untouched.
type ArchiveProject struct {
	projects domain.ProjectRepository
	logger   domain.Logger
}

// NewArchiveProject creates a new ArchiveProject use case.
func NewArchiveProject(projects domain.ProjectRepository, logger domain.Logger) *ArchiveProject {
	return &ArchiveProject{projects: projects, logger: logger}
}

// Execute archives the project. Archiving an archived project is a no-op.
func (uc *ArchiveProject) Execute(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := uc.projects.Archive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("archive project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}
	if uc.logger != nil {
		uc.logger.Info(0, "project", fmt.Sprintf("archived #%d: %q", project.ID, project.Name))
	}
	return project, nil
}
