package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

type userRow struct {
	CreatedAt time.Time `db:"created_at"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	ID        int64     `db:"id"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt.UTC()}
}

// UserStore implements domain.UserRepository.
type UserStore struct {
	s *Store
}

// Create inserts a user. Names are unique regardless of case.
func (r *UserStore) Create(ctx context.Context, user *domain.User) error {
	res, err := r.s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)`,
		user.Name, user.Email, user.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert user: %w", mapConstraint(err, domain.ErrUserExists))
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (r *UserStore) Get(ctx context.Context, id int64) (*domain.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// FindByName looks a user up by name, ignoring case.
func (r *UserStore) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.getWhere(ctx, "name = ? COLLATE NOCASE", name)
}

func (r *UserStore) getWhere(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var row userRow
	err := r.s.db.GetContext(ctx, &row, "SELECT id, name, email, created_at FROM users WHERE "+cond, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

// List returns all users ordered by ID.
func (r *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := r.s.db.SelectContext(ctx, &rows, `SELECT id, name, email, created_at FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

type projectRow struct {
	CreatedAt   time.Time `db:"created_at"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	ID          int64     `db:"id"`
	Archived    bool      `db:"archived"`
}

func (r projectRow) toDomain() *domain.Project {
	return &domain.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Archived:    r.Archived,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

const projectColumns = `id, name, description, archived, created_at`

// ProjectStore implements domain.ProjectRepository.
type ProjectStore struct {
	s *Store
}

// Create inserts a project.
func (r *ProjectStore) Create(ctx context.Context, p *domain.Project) error {
	res, err := r.s.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, archived, created_at) VALUES (?, ?, ?, ?)`,
		p.Name, p.Description, p.Archived, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert project: %w", mapConstraint(err, domain.ErrProjectExists))
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID.
func (r *ProjectStore) Get(ctx context.Context, id int64) (*domain.Project, error) {
	var row projectRow
	err := r.s.db.GetContext(ctx, &row, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return row.toDomain(), nil
}

// List returns projects ordered by ID.
func (r *ProjectStore) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	q := "SELECT " + projectColumns + " FROM projects"
	if !includeArchived {
		q += " WHERE archived = 0"
	}
	q += " ORDER BY id"

	var rows []projectRow
	if err := r.s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]*domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.toDomain())
	}
	return projects, nil
}

// Archive sets the archived flag.
func (r *ProjectStore) Archive(ctx context.Context, id int64) (*domain.Project, error) {
	res, err := r.s.db.ExecContext(ctx, `UPDATE projects SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("archive project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("archive project: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

type tagRow struct {
	Name  string `db:"name"`
	Color string `db:"color"`
	ID    int64  `db:"id"`
}

// TagStore implements domain.TagRepository.
type TagStore struct {
	s *Store
}

// Create inserts a tag.
func (r *TagStore) Create(ctx context.Context, tag *domain.Tag) error {
	res, err := r.s.db.ExecContext(ctx, `INSERT INTO tags (name, color) VALUES (?, ?)`, tag.Name, tag.Color)
	if err != nil {
		return fmt.Errorf("insert tag: %w", mapConstraint(err, domain.ErrTagExists))
	}
	if tag.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// Get retrieves a tag by ID.
func (r *TagStore) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	var row tagRow
	err := r.s.db.GetContext(ctx, &row, `SELECT id, name, color FROM tags WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &domain.Tag{ID: row.ID, Name: row.Name, Color: row.Color}, nil
}

// List returns all tags ordered by name.
func (r *TagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	var rows []tagRow
	if err := r.s.db.SelectContext(ctx, &rows, `SELECT id, name, color FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags := make([]*domain.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, &domain.Tag{ID: row.ID, Name: row.Name, Color: row.Color})
	}
	return tags, nil
}
