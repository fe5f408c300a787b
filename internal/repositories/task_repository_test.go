package repositories

import (
	"context"
	"testing"
	"time"

	"dashboard/internal/database/dbtest"
	"dashboard/internal/models"
)

func strPtr(s string) *string { return &s }

func newTask(title, status string) *models.Task {
	return &models.Task{
		Title:     title,
		Status:    status,
		CreatedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}

func TestTaskRepositoryStoreAndFind(t *testing.T) {
	repo := NewTaskRepository(dbtest.New(t))
	ctx := context.Background()

	task := newTask("Write report", models.TaskStatusPending)
	task.Category = strPtr("Daily")
	task.Date = strPtr("2026-10-19")
	task.Time = strPtr("14:30:00")
	task.Priority = 2
	if err := repo.Store(ctx, task); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if task.ID == 0 {
		t.Fatal("Store() did not assign an id")
	}

	got, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("FindByID() = nil, want task")
	}
	if got.Title != "Write report" || *got.Category != "Daily" || *got.Date != "2026-10-19" || *got.Time != "14:30:00" {
		t.Errorf("FindByID() = %+v", got)
	}
	if got.Notes != nil || got.CompletedAt != nil {
		t.Errorf("nullable fields should stay nil: notes=%v completed_at=%v", got.Notes, got.CompletedAt)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, task.CreatedAt)
	}

	missing, err := repo.FindByID(ctx, task.ID+100)
	if err != nil || missing != nil {
		t.Errorf("FindByID(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestTaskRepositoryFindAllFilters(t *testing.T) {
	repo := NewTaskRepository(dbtest.New(t))
	ctx := context.Background()

	seed := []struct {
		title, category, status, date string
	}{
		{"a", "Daily", "pending", "2026-10-19"},
		{"b", "Weekly", "pending", "2026-10-19"},
		{"c", "Daily", "completed", "2026-10-20"},
	}
	for _, s := range seed {
		task := newTask(s.title, s.status)
		task.Category = strPtr(s.category)
		task.Date = strPtr(s.date)
		if err := repo.Store(ctx, task); err != nil {
			t.Fatalf("Store(%s) error = %v", s.title, err)
		}
	}

	tests := []struct {
		name   string
		filter models.TaskFilter
		want   []string
	}{
		{"no filter keeps insertion order", models.TaskFilter{}, []string{"a", "b", "c"}},
		{"category", models.TaskFilter{Category: strPtr("Daily")}, []string{"a", "c"}},
		{"status and date", models.TaskFilter{Status: strPtr("pending"), Date: strPtr("2026-10-19")}, []string{"a", "b"}},
		{"no match", models.TaskFilter{Category: strPtr("Monthly")}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindAll(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FindAll() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FindAll() returned %d tasks, want %d", len(got), len(tt.want))
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("task[%d] = %q, want %q", i, got[i].Title, title)
				}
			}
		})
	}
}

func TestTaskRepositoryUpdateDeleteComplete(t *testing.T) {
	repo := NewTaskRepository(dbtest.New(t))
	ctx := context.Background()

	task := newTask("a", models.TaskStatusPending)
	if err := repo.Store(ctx, task); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if ok, err := repo.Patch(ctx, task.ID, models.TaskPatch{Title: models.Some("renamed"), Priority: models.Some(5)}); err != nil || !ok {
		t.Fatalf("Patch() = %v, %v", ok, err)
	}

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	if ok, err := repo.Complete(ctx, task.ID, at); err != nil || !ok {
		t.Fatalf("Complete() = %v, %v", ok, err)
	}
	got, _ := repo.FindByID(ctx, task.ID)
	if got.Title != "renamed" || got.Priority != 5 || got.Status != models.TaskStatusCompleted {
		t.Errorf("after update/complete = %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, at)
	}

	if ok, err := repo.Complete(ctx, 999, at); err != nil || ok {
		t.Errorf("Complete(missing) = %v, %v; want false, nil", ok, err)
	}
	if ok, err := repo.Delete(ctx, task.ID); err != nil || !ok {
		t.Fatalf("Delete() = %v, %v", ok, err)
	}
	if ok, err := repo.Delete(ctx, task.ID); err != nil || ok {
		t.Errorf("second Delete() = %v, %v; want false, nil", ok, err)
	}
}

func TestTaskRepositoryPatchTouchesOnlySetColumns(t *testing.T) {
	db := dbtest.New(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := newTask("a", models.TaskStatusPending)
	task.Notes = strPtr("keep")
	task.Date = strPtr("2026-10-20")
	if err := repo.Store(ctx, task); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	// Another writer changes priority after this caller last read the row.
	if _, err := db.ExecContext(ctx, db.Rebind(`UPDATE tasks SET priority = ? WHERE id = ?`), 7, task.ID); err != nil {
		t.Fatalf("out-of-band update: %v", err)
	}
	if ok, err := repo.Patch(ctx, task.ID, models.TaskPatch{Title: models.Some("b"), Date: models.Null[string]()}); err != nil || !ok {
		t.Fatalf("Patch() = %v, %v", ok, err)
	}

	got, _ := repo.FindByID(ctx, task.ID)
	if got.Title != "b" || got.Priority != 7 || got.Date != nil || got.Notes == nil || *got.Notes != "keep" {
		t.Errorf("after Patch() = %+v", got)
	}

	tests := []struct {
		name  string
		id    int64
		patch models.TaskPatch
		want  bool
	}{
		{"empty patch, existing row", task.ID, models.TaskPatch{}, true},
		{"empty patch, missing row", 999, models.TaskPatch{}, false},
		{"missing row", 999, models.TaskPatch{Priority: models.Some(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ok, err := repo.Patch(ctx, tt.id, tt.patch); err != nil || ok != tt.want {
				t.Errorf("Patch() = %v, %v; want %v, nil", ok, err, tt.want)
			}
		})
	}
}

func TestTaskRepositoryAggregates(t *testing.T) {
	repo := NewTaskRepository(dbtest.New(t))
	ctx := context.Background()

	for _, status := range []string{"completed", "completed", "pending", "in-progress"} {
		task := newTask("x", status)
		if err := repo.Store(ctx, task); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if status == "completed" {
			if _, err := repo.Complete(ctx, task.ID, time.Now().UTC()); err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
		}
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts["completed"] != 2 || counts["pending"] != 1 || counts["in-progress"] != 1 {
		t.Errorf("CountByStatus() = %v", counts)
	}

	times, err := repo.CompletionTimes(ctx)
	if err != nil {
		t.Fatalf("CompletionTimes() error = %v", err)
	}
	if len(times) != 2 {
		t.Errorf("CompletionTimes() returned %d, want 2", len(times))
	}
}
