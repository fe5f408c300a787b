package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dashboard/internal/database/dbtest"
	"dashboard/internal/models"
	"dashboard/internal/repositories"
)

// 2026-10-19 is a Monday.
var monday = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newTestTaskService(t *testing.T, loc *time.Location) *taskService {
	t.Helper()
	svc := NewTaskService(repositories.NewTaskRepository(dbtest.New(t)), loc).(*taskService)
	svc.now = func() time.Time { return monday }
	return svc
}

func TestTaskServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		svc := newTestTaskService(t, nil)
		task, err := svc.Create(ctx, models.TaskInput{Title: "Stretch", Date: ptr("2026-10-19"), Time: ptr("07:30:00")})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if task.ID == 0 || task.Status != models.TaskStatusPending || task.Priority != 0 {
			t.Errorf("Create() = %+v", task)
		}
		if !task.CreatedAt.Equal(monday) {
			t.Errorf("CreatedAt = %v, want %v", task.CreatedAt, monday)
		}
		if task.CompletedAt != nil {
			t.Error("CompletedAt should only be set by completion")
		}
	})

	t.Run("date-time input keeps the date part", func(t *testing.T) {
		svc := newTestTaskService(t, nil)
		task, err := svc.Create(ctx, models.TaskInput{Title: "x", Date: ptr("2026-10-19T08:00:00")})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if *task.Date != "2026-10-19" {
			t.Errorf("Date = %q", *task.Date)
		}
	})

	invalidInputs := []struct {
		name  string
		in    models.TaskInput
		field string
	}{
		{"empty title", models.TaskInput{Title: ""}, "title"},
		{"blank title", models.TaskInput{Title: "   "}, "title"},
		{"title too long", models.TaskInput{Title: strings.Repeat("a", 201)}, "title"},
		{"bad date", models.TaskInput{Title: "x", Date: ptr("19/10/2026")}, "date"},
		{"bad time", models.TaskInput{Title: "x", Time: ptr("7pm")}, "time"},
	}
	for _, tt := range invalidInputs {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestTaskService(t, nil)
			_, err := svc.Create(ctx, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
			all, _ := svc.GetAll(ctx, models.TaskFilter{})
			if len(all) != 0 {
				t.Errorf("invalid input persisted %d rows", len(all))
			}
		})
	}
}

func TestTaskServiceUpdateIsSparse(t *testing.T) {
	ctx := context.Background()
	svc := newTestTaskService(t, nil)

	task, err := svc.Create(ctx, models.TaskInput{Title: "A", Priority: ptr(1), Date: ptr("2026-10-20"), Notes: ptr("keep")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Update(ctx, task.ID, models.TaskPatch{Priority: models.Some(5)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Title != "A" || got.Priority != 5 || *got.Notes != "keep" || *got.Date != "2026-10-20" {
		t.Errorf("Update() = %+v", got)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Error("Update() re-stamped created_at")
	}

	got, err = svc.Update(ctx, task.ID, models.TaskPatch{Date: models.Null[string](), Notes: models.Some("")})
	if err != nil {
		t.Fatalf("Update(clear) error = %v", err)
	}
	if got.Date != nil {
		t.Errorf("Date = %v, want cleared", *got.Date)
	}

	if _, err := svc.Update(ctx, task.ID, models.TaskPatch{Title: models.Some("")}); !isValidation(err) {
		t.Errorf("Update(empty title) error = %v, want ValidationError", err)
	}
	if _, err := svc.Update(ctx, 999, models.TaskPatch{}); !isNotFound(err) {
		t.Errorf("Update(missing) error = %v, want NotFoundError", err)
	}

	stored, _ := svc.GetByID(ctx, task.ID)
	if stored.Title != "A" || stored.Priority != 5 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestTaskServiceConcurrentUpdatesKeepBothFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestTaskService(t, nil)

	task, err := svc.Create(ctx, models.TaskInput{Title: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	patches := []models.TaskPatch{
		{Notes: models.Some("from the first caller")},
		{Priority: models.Some(9)},
		{Category: models.Some("work")},
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(patches))
	for _, p := range patches {
		wg.Add(1)
		go func(p models.TaskPatch) {
			defer wg.Done()
			if _, err := svc.Update(ctx, task.ID, p); err != nil {
				errs <- err
			}
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := svc.GetByID(ctx, task.ID)
	if got.Notes == nil || *got.Notes != "from the first caller" || got.Priority != 9 || got.Category == nil || *got.Category != "work" {
		t.Errorf("a concurrent update was lost: %+v", got)
	}
}

func TestTaskServiceCompleteTwice(t *testing.T) {
	ctx := context.Background()
	svc := newTestTaskService(t, nil)

	task, _ := svc.Create(ctx, models.TaskInput{Title: "x", Status: ptr(models.TaskStatusInProgress)})

	first, err := svc.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	svc.now = func() time.Time { return monday.Add(time.Minute) }
	second, err := svc.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}

	if first.Status != models.TaskStatusCompleted || second.Status != models.TaskStatusCompleted {
		t.Errorf("statuses = %q, %q", first.Status, second.Status)
	}
	if second.CompletedAt.Before(*first.CompletedAt) || second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("completed_at not re-stamped: %v then %v", first.CompletedAt, second.CompletedAt)
	}
	if _, err := svc.Complete(ctx, 999); !isNotFound(err) {
		t.Errorf("Complete(missing) error = %v", err)
	}
}

func TestTaskServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestTaskService(t, nil)

	task, _ := svc.Create(ctx, models.TaskInput{Title: "x"})
	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(ctx, task.ID); !isNotFound(err) {
		t.Errorf("GetByID after delete error = %v", err)
	}
	if err := svc.Delete(ctx, task.ID); !isNotFound(err) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestTaskServiceStatsEmpty(t *testing.T) {
	svc := newTestTaskService(t, nil)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalTasks != 0 || stats.Completed != 0 || stats.Pending != 0 || stats.InProgress != 0 || stats.CompletionRate != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
	want := []string{"Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Mon"}
	if len(stats.WeeklyCompletion) != 7 {
		t.Fatalf("len(WeeklyCompletion) = %d, want 7", len(stats.WeeklyCompletion))
	}
	for i, d := range stats.WeeklyCompletion {
		if d.Day != want[i] || d.Completed != 0 {
			t.Errorf("WeeklyCompletion[%d] = %+v, want {%s 0}", i, d, want[i])
		}
	}
}

func TestTaskServiceStatsCounts(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		rate     int
	}{
		{"two of three", []string{"completed", "completed", "pending"}, 67},
		{"one of eight rounds up", []string{"completed", "pending", "pending", "pending", "pending", "pending", "pending", "pending"}, 13},
		{"half", []string{"completed", "in-progress"}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestTaskService(t, nil)
			want := map[string]int{}
			for _, st := range tt.statuses {
				if _, err := svc.Create(ctx, models.TaskInput{Title: "x", Status: ptr(st)}); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				want[st]++
			}

			stats, err := svc.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if stats.TotalTasks != len(tt.statuses) || stats.Completed != want["completed"] ||
				stats.Pending != want["pending"] || stats.InProgress != want["in-progress"] {
				t.Errorf("Stats() counts = %+v", stats)
			}
			if stats.CompletionRate != tt.rate {
				t.Errorf("CompletionRate = %d, want %d", stats.CompletionRate, tt.rate)
			}
		})
	}
}

func TestTaskServiceWeeklyCompletion(t *testing.T) {
	ctx := context.Background()
	svc := newTestTaskService(t, nil)

	completeAt := func(at time.Time) {
		t.Helper()
		task, err := svc.Create(ctx, models.TaskInput{Title: "x"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		svc.now = func() time.Time { return at }
		if _, err := svc.Complete(ctx, task.ID); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		svc.now = func() time.Time { return monday }
	}

	completeAt(monday.AddDate(0, 0, -7))                      // a week ago, outside the window
	completeAt(time.Date(2026, 10, 13, 0, 0, 1, 0, time.UTC)) // Tuesday, oldest bucket
	completeAt(time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC))
	completeAt(time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC))
	completeAt(time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC))

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := []int{1, 0, 0, 0, 0, 2, 1}
	for i, d := range stats.WeeklyCompletion {
		if d.Completed != want[i] {
			t.Errorf("WeeklyCompletion[%d] (%s) = %d, want %d", i, d.Day, d.Completed, want[i])
		}
	}
}

func TestTaskServiceWeeklyCompletionUsesLocation(t *testing.T) {
	ctx := context.Background()
	svc := newTestTaskService(t, time.FixedZone("UTC+5", 5*60*60))

	task, _ := svc.Create(ctx, models.TaskInput{Title: "x"})
	// Sunday evening in UTC is already Monday at UTC+5.
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC) }
	if _, err := svc.Complete(ctx, task.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	svc.now = func() time.Time { return monday }

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	today := stats.WeeklyCompletion[6]
	if today.Day != "Mon" || today.Completed != 1 {
		t.Errorf("today = %+v, want {Mon 1}", today)
	}
}

func isValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
