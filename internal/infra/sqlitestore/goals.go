package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/runoshun/taskboard/internal/domain"
)

type goalRow struct {
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
	TargetDate  sql.NullTime  `db:"target_date"`
	CompletedAt sql.NullTime  `db:"completed_at"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Status      string        `db:"status"`
	OwnerID     sql.NullInt64 `db:"owner_id"`
	ID          int64         `db:"id"`
}

func newGoalRow(g *domain.Goal) goalRow {
	return goalRow{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Status:      string(g.Status),
		OwnerID:     nullInt(g.OwnerID),
		TargetDate:  nullTime(g.TargetDate),
		CompletedAt: nullTime(g.CompletedAt),
		CreatedAt:   g.CreatedAt.UTC(),
		UpdatedAt:   g.UpdatedAt.UTC(),
	}
}

func (r goalRow) toDomain() *domain.Goal {
	return &domain.Goal{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.GoalStatus(r.Status),
		OwnerID:     intPtr(r.OwnerID),
		TargetDate:  timePtr(r.TargetDate),
		CompletedAt: timePtr(r.CompletedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

const goalColumns = `id, title, description, status, owner_id, target_date, completed_at, created_at, updated_at`

// GoalStore implements domain.GoalRepository.
type GoalStore struct {
	s *Store
}

// Create inserts a goal.
func (r *GoalStore) Create(ctx context.Context, goal *domain.Goal) error {
	res, err := r.s.db.NamedExecContext(ctx, `
		INSERT INTO goals (title, description, status, owner_id, target_date, completed_at, created_at, updated_at)
		VALUES (:title, :description, :status, :owner_id, :target_date, :completed_at, :created_at, :updated_at)`,
		newGoalRow(goal))
	if err != nil {
		return fmt.Errorf("insert goal: %w", mapConstraint(err, nil))
	}
	if goal.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// Get retrieves a goal by ID.
func (r *GoalStore) Get(ctx context.Context, id int64) (*domain.Goal, error) {
	var goal *domain.Goal
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		goal, err = getGoal(ctx, tx, id)
		return err
	})
	return goal, err
}

// List returns all goals ordered by ID.
func (r *GoalStore) List(ctx context.Context) ([]*domain.Goal, error) {
	var rows []goalRow
	if err := r.s.db.SelectContext(ctx, &rows, "SELECT "+goalColumns+" FROM goals ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	goals := make([]*domain.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.toDomain())
	}
	return goals, nil
}

// Update atomically loads the goal, applies fn and stores the result.
func (r *GoalStore) Update(ctx context.Context, id int64, fn func(*domain.Goal) error) (*domain.Goal, error) {
	var goal *domain.Goal
	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getGoal(ctx, tx, id)
		if err != nil || current == nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}
		current.ID = id
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE goals SET title = :title, description = :description, status = :status,
				owner_id = :owner_id, target_date = :target_date, completed_at = :completed_at,
				updated_at = :updated_at
			WHERE id = :id`, newGoalRow(current)); err != nil {
			return fmt.Errorf("update goal: %w", mapConstraint(err, nil))
		}
		goal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal.
func (r *GoalStore) Delete(ctx context.Context, id int64) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireDeleted(res, domain.ErrGoalNotFound)
}

func getGoal(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Goal, error) {
	var row goalRow
	err := tx.GetContext(ctx, &row, "SELECT "+goalColumns+" FROM goals WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return row.toDomain(), nil
}
