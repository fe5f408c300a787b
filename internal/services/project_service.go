package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"dashboard/internal/models"
	"dashboard/internal/repositories"
)

type ProjectService interface {
	Create(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	GetAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id int64) error

	AddTask(ctx context.Context, projectID int64, in models.ProjectTaskInput) (*models.ProjectTask, error)
	ToggleTask(ctx context.Context, projectID, taskID int64) (*models.ProjectTask, error)
	DeleteTask(ctx context.Context, projectID, taskID int64) error
}

type projectService struct {
	repo repositories.ProjectRepository
	now  func() time.Time
}

func NewProjectService(repo repositories.ProjectRepository) ProjectService {
	return &projectService{repo: repo, now: time.Now}
}

func (s *projectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Project{
		Name:         in.Name,
		Description:  in.Description,
		Status:       models.ProjectStatusActive,
		NextStep:     in.NextStep,
		ObsidianLink: in.ObsidianLink,
		CreatedAt:    now,
		UpdatedAt:    &now,
	}
	if in.Status != nil && *in.Status != "" {
		p.Status = *in.Status
	}
	if in.Progress != nil {
		if err := validateProgress(*in.Progress); err != nil {
			return nil, err
		}
		p.Progress = *in.Progress
	}
	if in.IsMain != nil {
		p.IsMain = *in.IsMain
	}

	if err := s.repo.Store(ctx, p); err != nil {
		return nil, fmt.Errorf("store project: %w", err)
	}
	return p, nil
}

func (s *projectService) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}
	if p == nil {
		return nil, notFound("project")
	}
	return p, nil
}

func (s *projectService) GetAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	projects, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Update writes only the fields present in patch and always re-stamps updated_at.
// A null status, progress or is_main is ignored.
func (s *projectService) Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Name.Set {
		name := ""
		if patch.Name.Value != nil {
			name = *patch.Name.Value
		}
		if err := validateName(name); err != nil {
			return nil, err
		}
		patch.Name = models.Some(name)
	}
	if patch.Status.Value == nil {
		patch.Status = models.Optional[string]{}
	}
	if patch.Progress.Value == nil {
		patch.Progress = models.Optional[int]{}
	} else if err := validateProgress(*patch.Progress.Value); err != nil {
		return nil, err
	}
	if patch.IsMain.Value == nil {
		patch.IsMain = models.Optional[bool]{}
	}

	ok, err := s.repo.Patch(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update project %d: %w", id, err)
	}
	if !ok {
		return nil, notFound("project")
	}
	return s.GetByID(ctx, id)
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	if !ok {
		return notFound("project")
	}
	return nil
}

func (s *projectService) AddTask(ctx context.Context, projectID int64, in models.ProjectTaskInput) (*models.ProjectTask, error) {
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := validateTitle("title", in.Title); err != nil {
		return nil, err
	}

	t := &models.ProjectTask{ProjectID: projectID, Title: in.Title}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if in.Order != nil {
		t.Order = *in.Order
	}
	if err := s.repo.StoreTask(ctx, t); err != nil {
		return nil, fmt.Errorf("store project task: %w", err)
	}
	return t, nil
}

func (s *projectService) ToggleTask(ctx context.Context, projectID, taskID int64) (*models.ProjectTask, error) {
	t, err := s.repo.ToggleTask(ctx, projectID, taskID)
	if err != nil {
		return nil, fmt.Errorf("toggle project task %d/%d: %w", projectID, taskID, err)
	}
	if t == nil {
		return nil, notFound("task")
	}
	return t, nil
}

func (s *projectService) DeleteTask(ctx context.Context, projectID, taskID int64) error {
	ok, err := s.repo.DeleteTask(ctx, projectID, taskID)
	if err != nil {
		return fmt.Errorf("delete project task %d/%d: %w", projectID, taskID, err)
	}
	if !ok {
		return notFound("task")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxTitleLen {
		return invalid("name", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	return nil
}

func validateProgress(v int) error {
	if v < 0 || v > 100 {
		return invalid("progress", "must be between 0 and 100")
	}
	return nil
}
