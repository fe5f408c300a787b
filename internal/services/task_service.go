package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"dashboard/internal/models"
	"dashboard/internal/repositories"
)

const maxTitleLen = 200

// Sunday-first, indexed by time.Weekday.
var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type TaskService interface {
	Create(ctx context.Context, in models.TaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) (*models.Task, error)
	Stats(ctx context.Context) (*models.TaskStats, error)
}

type taskService struct {
	repo repositories.TaskRepository
	loc  *time.Location
	now  func() time.Time
}

// NewTaskService returns a TaskService. loc decides which calendar day a completion
// belongs to in the weekly stats; nil means UTC.
func NewTaskService(repo repositories.TaskRepository, loc *time.Location) TaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &taskService{repo: repo, loc: loc, now: time.Now}
}

func (s *taskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	if err := validateTitle("title", in.Title); err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	clock, err := parseClock(in.Time)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:     in.Title,
		Category:  in.Category,
		Status:    models.TaskStatusPending,
		Date:      date,
		Time:      clock,
		Notes:     in.Notes,
		CreatedAt: s.now().UTC(),
	}
	if in.Status != nil && *in.Status != "" {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, fmt.Errorf("store task: %w", err)
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	if task == nil {
		return nil, notFound("task")
	}
	return task, nil
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update writes only the fields present in patch. A null status or priority is ignored;
// a null or empty date or time clears it.
func (s *taskService) Update(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	var err error
	if patch.Title.Set {
		title := ""
		if patch.Title.Value != nil {
			title = *patch.Title.Value
		}
		if err := validateTitle("title", title); err != nil {
			return nil, err
		}
		patch.Title = models.Some(title)
	}
	if patch.Status.Value == nil {
		patch.Status = models.Optional[string]{}
	}
	if patch.Priority.Value == nil {
		patch.Priority = models.Optional[int]{}
	}
	if patch.Date.Set {
		if patch.Date.Value, err = parseDate(patch.Date.Value); err != nil {
			return nil, err
		}
	}
	if patch.Time.Set {
		if patch.Time.Value, err = parseClock(patch.Time.Value); err != nil {
			return nil, err
		}
	}

	ok, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if !ok {
		return nil, notFound("task")
	}
	return s.GetByID(ctx, id)
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if !ok {
		return notFound("task")
	}
	return nil
}

// Complete marks the task completed and stamps completed_at, whatever its previous status.
func (s *taskService) Complete(ctx context.Context, id int64) (*models.Task, error) {
	ok, err := s.repo.Complete(ctx, id, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("complete task %d: %w", id, err)
	}
	if !ok {
		return nil, notFound("task")
	}
	return s.GetByID(ctx, id)
}

// Stats counts tasks by status and buckets completions over the last seven calendar days,
// oldest first. completionRate is rounded half away from zero.
func (s *taskService) Stats(ctx context.Context) (*models.TaskStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	times, err := s.repo.CompletionTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load completion times: %w", err)
	}

	stats := &models.TaskStats{
		Completed:  counts[models.TaskStatusCompleted],
		Pending:    counts[models.TaskStatusPending],
		InProgress: counts[models.TaskStatusInProgress],
	}
	for _, n := range counts {
		stats.TotalTasks += n
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.TotalTasks) * 100))
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	perDay := map[string]int{}
	for _, at := range times {
		perDay[at.In(s.loc).Format(models.DateLayout)]++
	}

	stats.WeeklyCompletion = make([]models.DayCompletion, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		stats.WeeklyCompletion = append(stats.WeeklyCompletion, models.DayCompletion{
			Day:       weekdayLabels[day.Weekday()],
			Completed: perDay[day.Format(models.DateLayout)],
		})
	}
	return stats, nil
}

func validateTitle(field, title string) error {
	if strings.TrimSpace(title) == "" {
		return invalid(field, "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return invalid(field, fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	return nil
}

// parseDate normalizes an ISO-8601 date (or date-time) to YYYY-MM-DD. Empty means unset.
func parseDate(raw *string) (*string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, *raw)
	if err != nil {
		var errFull error
		if t, errFull = time.Parse(time.RFC3339, *raw); errFull != nil {
			if t, errFull = time.Parse("2006-01-02T15:04:05", *raw); errFull != nil {
				return nil, invalid("date", err.Error())
			}
		}
	}
	out := t.Format(models.DateLayout)
	return &out, nil
}

// parseClock validates an HH:MM:SS clock time. Empty means unset.
func parseClock(raw *string) (*string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(models.TimeLayout, *raw)
	if err != nil {
		return nil, invalid("time", err.Error())
	}
	out := t.Format(models.TimeLayout)
	return &out, nil
}
