package services

import (
	"context"
	"testing"
	"time"

	"dashboard/internal/database/dbtest"
	"dashboard/internal/models"
	"dashboard/internal/repositories"
)

func newTestProjectService(t *testing.T) *projectService {
	t.Helper()
	svc := NewProjectService(repositories.NewProjectRepository(dbtest.New(t))).(*projectService)
	svc.now = func() time.Time { return monday }
	return svc
}

func TestProjectServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestProjectService(t)

	in := models.ProjectInput{
		Name:         "Dashboard",
		Description:  ptr("personal backend"),
		Status:       ptr(models.ProjectStatusPaused),
		Progress:     ptr(40),
		NextStep:     ptr("write tests"),
		ObsidianLink: ptr("obsidian://open?vault=notes&file=dashboard"),
		IsMain:       ptr(true),
	}
	created, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != in.Name || *got.Description != *in.Description || got.Status != *in.Status ||
		got.Progress != *in.Progress || *got.NextStep != *in.NextStep ||
		*got.ObsidianLink != *in.ObsidianLink || got.IsMain != *in.IsMain {
		t.Errorf("GetByID() = %+v, want fields of %+v", got, in)
	}
	if len(got.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty", got.Tasks)
	}
}

func TestProjectServiceCreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestProjectService(t)

	p, err := svc.Create(ctx, models.ProjectInput{Name: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Status != models.ProjectStatusActive || p.Progress != 0 || p.IsMain {
		t.Errorf("defaults = %+v", p)
	}
	if p.UpdatedAt == nil || !p.CreatedAt.Equal(monday) {
		t.Errorf("timestamps = %v / %v", p.CreatedAt, p.UpdatedAt)
	}

	for name, in := range map[string]models.ProjectInput{
		"empty name":        {Name: ""},
		"negative progress": {Name: "x", Progress: ptr(-1)},
		"progress over 100": {Name: "x", Progress: ptr(101)},
	} {
		if _, err := svc.Create(ctx, in); !isValidation(err) {
			t.Errorf("%s: error = %v, want ValidationError", name, err)
		}
	}
}

func TestProjectServiceUpdateRestampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	svc := newTestProjectService(t)

	p, _ := svc.Create(ctx, models.ProjectInput{Name: "x", Progress: ptr(10)})
	later := monday.Add(time.Hour)
	svc.now = func() time.Time { return later }

	got, err := svc.Update(ctx, p.ID, models.ProjectPatch{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
	}
	if got.Name != "x" || got.Progress != 10 {
		t.Errorf("empty patch changed fields: %+v", got)
	}

	got, err = svc.Update(ctx, p.ID, models.ProjectPatch{Progress: models.Some(80), Description: models.Some("d")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Progress != 80 || *got.Description != "d" || got.Name != "x" {
		t.Errorf("Update() = %+v", got)
	}

	if _, err := svc.Update(ctx, p.ID, models.ProjectPatch{Progress: models.Some(150)}); !isValidation(err) {
		t.Errorf("Update(progress 150) error = %v", err)
	}
	if _, err := svc.Update(ctx, 999, models.ProjectPatch{}); !isNotFound(err) {
		t.Errorf("Update(missing) error = %v", err)
	}
}

func TestProjectServiceTasks(t *testing.T) {
	ctx := context.Background()
	svc := newTestProjectService(t)

	p, _ := svc.Create(ctx, models.ProjectInput{Name: "x"})

	if _, err := svc.AddTask(ctx, 999, models.ProjectTaskInput{Title: "t"}); !isNotFound(err) {
		t.Errorf("AddTask(missing project) error = %v", err)
	}
	if _, err := svc.AddTask(ctx, p.ID, models.ProjectTaskInput{Title: ""}); !isValidation(err) {
		t.Errorf("AddTask(empty title) error = %v", err)
	}

	task, err := svc.AddTask(ctx, p.ID, models.ProjectTaskInput{Title: "t"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.Completed || task.Order != 0 || task.ProjectID != p.ID {
		t.Errorf("AddTask() = %+v", task)
	}

	first, err := svc.ToggleTask(ctx, p.ID, task.ID)
	if err != nil || !first.Completed {
		t.Fatalf("ToggleTask() = %+v, %v", first, err)
	}
	second, err := svc.ToggleTask(ctx, p.ID, task.ID)
	if err != nil || second.Completed != task.Completed {
		t.Fatalf("second ToggleTask() = %+v, %v", second, err)
	}

	other, _ := svc.Create(ctx, models.ProjectInput{Name: "y"})
	if _, err := svc.ToggleTask(ctx, other.ID, task.ID); !isNotFound(err) {
		t.Errorf("ToggleTask(wrong project) error = %v", err)
	}
	if err := svc.DeleteTask(ctx, other.ID, task.ID); !isNotFound(err) {
		t.Errorf("DeleteTask(wrong project) error = %v", err)
	}
	if err := svc.DeleteTask(ctx, p.ID, task.ID); err != nil {
		t.Errorf("DeleteTask() error = %v", err)
	}
}

func TestProjectServiceDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc := newTestProjectService(t)

	p, _ := svc.Create(ctx, models.ProjectInput{Name: "x"})
	var ids []int64
	for i := 0; i < 4; i++ {
		task, err := svc.AddTask(ctx, p.ID, models.ProjectTaskInput{Title: "t", Order: ptr(i)})
		if err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
		ids = append(ids, task.ID)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(ctx, p.ID); !isNotFound(err) {
		t.Errorf("GetByID after delete error = %v", err)
	}
	for _, id := range ids {
		if _, err := svc.ToggleTask(ctx, p.ID, id); !isNotFound(err) {
			t.Errorf("child %d still reachable: %v", id, err)
		}
	}
	if err := svc.Delete(ctx, p.ID); !isNotFound(err) {
		t.Errorf("second Delete() error = %v", err)
	}
}
