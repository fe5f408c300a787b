package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"dashboard/internal/database"
	"dashboard/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	// Patch writes only the columns set in patch, so concurrent patches of different
	// fields do not overwrite each other. Patch, Delete and Complete report false when
	// no row has the given id.
	Patch(ctx context.Context, id int64, patch models.TaskPatch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Complete(ctx context.Context, id int64, at time.Time) (bool, error)

	CountByStatus(ctx context.Context) (map[string]int, error)
	CompletionTimes(ctx context.Context) ([]time.Time, error)
}

type taskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, category, status, task_date, task_time, priority, notes, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	if err := row.Scan(
		&t.ID, &t.Title, &t.Category, &t.Status, &t.Date, &t.Time,
		&t.Priority, &t.Notes, &t.CreatedAt, &t.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := r.db.Rebind(`
		INSERT INTO tasks (title, category, status, task_date, task_time, priority, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	return r.db.QueryRowContext(ctx, query,
		task.Title, task.Category, task.Status, task.Date, task.Time,
		task.Priority, task.Notes, task.CreatedAt,
	).Scan(&task.ID)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []any{}

	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Date != nil {
		conditions = append(conditions, "task_date = ?")
		args = append(args, *filter.Date)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Patch(ctx context.Context, id int64, patch models.TaskPatch) (bool, error) {
	var set assignments
	setColumn(&set, "title", patch.Title)
	setColumn(&set, "category", patch.Category)
	setColumn(&set, "status", patch.Status)
	setColumn(&set, "task_date", patch.Date)
	setColumn(&set, "task_time", patch.Time)
	setColumn(&set, "priority", patch.Priority)
	setColumn(&set, "notes", patch.Notes)
	return set.exec(ctx, r.db, "tasks", id)
}

func (r *taskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	return affected(res, err)
}

func (r *taskRepository) Complete(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`),
		models.TaskStatusCompleted, at, id)
	return affected(res, err)
}

func (r *taskRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status sql.NullString
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status.String] += n
	}
	return counts, rows.Err()
}

// CompletionTimes returns every non-null completed_at. Bucketing by calendar day happens in the service,
// where the reporting time zone is known.
func (r *taskRepository) CompletionTimes(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT completed_at FROM tasks WHERE completed_at IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// assignments is the SET list of a column-scoped UPDATE. Column names come from code,
// never from input.
type assignments struct {
	columns []string
	args    []any
}

func (a *assignments) add(column string, value any) {
	a.columns = append(a.columns, column+" = ?")
	a.args = append(a.args, value)
}

// setColumn adds column when o was sent; a null value writes NULL.
func setColumn[T any](a *assignments, column string, o models.Optional[T]) {
	if o.Set {
		a.add(column, o.Value)
	}
}

// exec runs the UPDATE against one row of table. With nothing to set it only checks
// that the row exists.
func (a *assignments) exec(ctx context.Context, db *database.DB, table string, id int64) (bool, error) {
	if len(a.columns) == 0 {
		var one int
		err := db.QueryRowContext(ctx, db.Rebind(`SELECT 1 FROM `+table+` WHERE id = ?`), id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	}
	query := db.Rebind(`UPDATE ` + table + ` SET ` + strings.Join(a.columns, ", ") + ` WHERE id = ?`)
	return affected(db.ExecContext(ctx, query, append(a.args, id)...))
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
