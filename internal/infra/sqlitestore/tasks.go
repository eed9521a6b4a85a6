package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/runoshun/taskboard/internal/domain"
)

// taskRow is the tasks table representation of a domain.Task.
type taskRow struct {
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
	DueDate     sql.NullTime  `db:"due_date"`
	CompletedAt sql.NullTime  `db:"completed_at"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Status      string        `db:"status"`
	Priority    string        `db:"priority"`
	AssigneeID  sql.NullInt64 `db:"assignee_id"`
	ProjectID   sql.NullInt64 `db:"project_id"`
	ID          int64         `db:"id"`
	CreatorID   int64         `db:"creator_id"`
}

func newTaskRow(t *domain.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssigneeID:  nullInt(t.AssigneeID),
		CreatorID:   t.CreatorID,
		ProjectID:   nullInt(t.ProjectID),
		DueDate:     nullTime(t.DueDate),
		CompletedAt: nullTime(t.CompletedAt),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		AssigneeID:  intPtr(r.AssigneeID),
		CreatorID:   r.CreatorID,
		ProjectID:   intPtr(r.ProjectID),
		DueDate:     timePtr(r.DueDate),
		CompletedAt: timePtr(r.CompletedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Tags:        []domain.Tag{},
	}
}

// taskTagRow is one row of the task/tag join.
type taskTagRow struct {
	Name   string `db:"name"`
	Color  string `db:"color"`
	TaskID int64  `db:"task_id"`
	TagID  int64  `db:"tag_id"`
}

const taskColumns = `id, title, description, status, priority, assignee_id, creator_id,
	project_id, due_date, completed_at, created_at, updated_at`

// TaskStore implements domain.TaskRepository.
type TaskStore struct {
	s *Store
}

// Get retrieves a task with its tags by ID.
func (r *TaskStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var task *domain.Task
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		task, err = getTask(ctx, tx, id)
		return err
	})
	return task, err
}

// List retrieves tasks matching the filter, ordered by ID.
// Tasks and tags are read in one transaction.
func (r *TaskStore) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.AssigneeID != nil {
		where = append(where, "assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.ProjectID != nil {
		where = append(where, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	q := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	var tasks []*domain.Task
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		var rows []taskRow
		if err := tx.SelectContext(ctx, &rows, q, args...); err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		tasks = make([]*domain.Task, 0, len(rows))
		for _, row := range rows {
			tasks = append(tasks, row.toDomain())
		}
		return loadTags(ctx, tx, tasks)
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create inserts a new task with its tag set and assigns its ID.
func (r *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.CheckInvariants(); err != nil {
		return err
	}
	return r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO tasks (title, description, status, priority, assignee_id, creator_id,
				project_id, due_date, completed_at, created_at, updated_at)
			VALUES (:title, :description, :status, :priority, :assignee_id, :creator_id,
				:project_id, :due_date, :completed_at, :created_at, :updated_at)`,
			newTaskRow(task))
		if err != nil {
			return fmt.Errorf("insert task: %w", mapConstraint(err, nil))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		if err := replaceTags(ctx, tx, id, task.TagIDs()); err != nil {
			return err
		}
		task.ID = id
		return nil
	})
}

// Update atomically loads the task, applies fn and stores the result.
func (r *TaskStore) Update(ctx context.Context, id int64, fn func(*domain.Task) error) (*domain.Task, error) {
	var task *domain.Task
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil || current == nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}
		if err := current.CheckInvariants(); err != nil {
			return err
		}
		current.ID = id
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE tasks SET title = :title, description = :description, status = :status,
				priority = :priority, assignee_id = :assignee_id, project_id = :project_id,
				due_date = :due_date, completed_at = :completed_at, updated_at = :updated_at
			WHERE id = :id`, newTaskRow(current)); err != nil {
			return fmt.Errorf("update task: %w", mapConstraint(err, nil))
		}
		if err := replaceTags(ctx, tx, id, current.TagIDs()); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task. Tag associations cascade.
// Returns domain.ErrTaskNotFound when no row was deleted.
func (r *TaskStore) Delete(ctx context.Context, id int64) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireDeleted(res, domain.ErrTaskNotFound)
}

func getTask(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Task, error) {
	var row taskRow
	err := tx.GetContext(ctx, &row, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	task := row.toDomain()
	if err := loadTags(ctx, tx, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// loadTags fills Tags for every task, sorted by name.
func loadTags(ctx context.Context, tx *sqlx.Tx, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	q, args, err := sqlx.In(`
		SELECT tt.task_id, t.id AS tag_id, t.name, t.color
		FROM task_tags tt JOIN tags t ON t.id = tt.tag_id
		WHERE tt.task_id IN (?)
		ORDER BY t.name, t.id`, ids)
	if err != nil {
		return fmt.Errorf("build tag query: %w", err)
	}
	var rows []taskTagRow
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(q), args...); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, row := range rows {
		t := byID[row.TaskID]
		t.Tags = append(t.Tags, domain.Tag{ID: row.TagID, Name: row.Name, Color: row.Color})
	}
	return nil
}

func replaceTags(ctx context.Context, tx *sqlx.Tx, taskID int64, tagIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear task tags: %w", err)
	}
	for _, tagID := range domain.UniqueIDs(tagIDs) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID); err != nil {
			return fmt.Errorf("insert task tag: %w", mapConstraint(err, nil))
		}
	}
	return nil
}
