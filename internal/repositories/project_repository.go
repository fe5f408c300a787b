package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dashboard/internal/database"
	"dashboard/internal/models"
)

type ProjectRepository interface {
	Store(ctx context.Context, p *models.Project) error
	// FindByID and FindAll return projects with their tasks attached.
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	// Patch writes the columns set in patch plus updated_at.
	Patch(ctx context.Context, id int64, patch models.ProjectPatch, updatedAt time.Time) (bool, error)
	// Delete removes the project and all of its tasks in one transaction.
	Delete(ctx context.Context, id int64) (bool, error)

	StoreTask(ctx context.Context, t *models.ProjectTask) error
	FindTask(ctx context.Context, projectID, taskID int64) (*models.ProjectTask, error)
	ToggleTask(ctx context.Context, projectID, taskID int64) (*models.ProjectTask, error)
	DeleteTask(ctx context.Context, projectID, taskID int64) (bool, error)
}

type projectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const (
	projectColumns     = `id, name, description, status, progress, next_step, obsidian_link, is_main, created_at, updated_at`
	projectTaskColumns = `id, project_id, title, completed, sort_order`
)

var errNoRows = errors.New("no rows affected")

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.Progress, &p.NextStep,
		&p.ObsidianLink, &p.IsMain, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Tasks = []models.ProjectTask{}
	return &p, nil
}

func scanProjectTask(row rowScanner) (*models.ProjectTask, error) {
	var t models.ProjectTask
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Completed, &t.Order); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *projectRepository) Store(ctx context.Context, p *models.Project) error {
	query := r.db.Rebind(`
		INSERT INTO projects (name, description, status, progress, next_step, obsidian_link, is_main, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	if err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Status, p.Progress, p.NextStep, p.ObsidianLink, p.IsMain, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID); err != nil {
		return err
	}
	if p.Tasks == nil {
		p.Tasks = []models.ProjectTask{}
	}
	return nil
}

func (r *projectRepository) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tasks, err := r.listTasks(ctx,
		`SELECT `+projectTaskColumns+` FROM project_tasks WHERE project_id = ? ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = append(p.Tasks, tasks...)
	return p, nil
}

func (r *projectRepository) FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	projectQuery := `SELECT ` + projectColumns + ` FROM projects`
	taskQuery := `SELECT ` + projectTaskColumns + ` FROM project_tasks`
	var args []any
	if filter.Status != nil {
		projectQuery += ` WHERE status = ?`
		taskQuery += ` WHERE project_id IN (SELECT id FROM projects WHERE status = ?)`
		args = append(args, *filter.Status)
	}
	projectQuery += ` ORDER BY id`
	taskQuery += ` ORDER BY project_id, sort_order, id`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(projectQuery), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	index := map[int64]int{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(projects)
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return projects, nil
	}

	tasks, err := r.listTasks(ctx, taskQuery, args...)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if i, ok := index[t.ProjectID]; ok {
			projects[i].Tasks = append(projects[i].Tasks, t)
		}
	}
	return projects, nil
}

func (r *projectRepository) listTasks(ctx context.Context, query string, args ...any) ([]models.ProjectTask, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProjectTask
	for rows.Next() {
		t, err := scanProjectTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *projectRepository) Patch(ctx context.Context, id int64, patch models.ProjectPatch, updatedAt time.Time) (bool, error) {
	var set assignments
	setColumn(&set, "name", patch.Name)
	setColumn(&set, "description", patch.Description)
	setColumn(&set, "status", patch.Status)
	setColumn(&set, "progress", patch.Progress)
	setColumn(&set, "next_step", patch.NextStep)
	setColumn(&set, "obsidian_link", patch.ObsidianLink)
	setColumn(&set, "is_main", patch.IsMain)
	set.add("updated_at", updatedAt)
	return set.exec(ctx, r.db, "projects", id)
}

func (r *projectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM project_tasks WHERE project_id = ?`), id); err != nil {
			return err
		}
		ok, err := affected(tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM projects WHERE id = ?`), id))
		if err != nil {
			return err
		}
		if !ok {
			return errNoRows
		}
		return nil
	})
	if errors.Is(err, errNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *projectRepository) StoreTask(ctx context.Context, t *models.ProjectTask) error {
	query := r.db.Rebind(`
		INSERT INTO project_tasks (project_id, title, completed, sort_order)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	return r.db.QueryRowContext(ctx, query, t.ProjectID, t.Title, t.Completed, t.Order).Scan(&t.ID)
}

func (r *projectRepository) FindTask(ctx context.Context, projectID, taskID int64) (*models.ProjectTask, error) {
	return r.findTask(ctx, r.db.DB, projectID, taskID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *projectRepository) findTask(ctx context.Context, q queryRower, projectID, taskID int64) (*models.ProjectTask, error) {
	t, err := scanProjectTask(q.QueryRowContext(ctx,
		r.db.Rebind(`SELECT `+projectTaskColumns+` FROM project_tasks WHERE id = ? AND project_id = ?`),
		taskID, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *projectRepository) ToggleTask(ctx context.Context, projectID, taskID int64) (*models.ProjectTask, error) {
	var out *models.ProjectTask
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		ok, err := affected(tx.ExecContext(ctx,
			r.db.Rebind(`UPDATE project_tasks SET completed = NOT completed WHERE id = ? AND project_id = ?`),
			taskID, projectID))
		if err != nil || !ok {
			return err
		}
		out, err = r.findTask(ctx, tx, projectID, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepository) DeleteTask(ctx context.Context, projectID, taskID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM project_tasks WHERE id = ? AND project_id = ?`), taskID, projectID)
	return affected(res, err)
}
