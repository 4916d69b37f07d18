package activities

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgcatalog/backend/internal/models"
)

// Repository handles activity persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an activity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new activity node with a precomputed level.
func (r *Repository) Create(ctx context.Context, name string, parentID *int64, level int) (*models.Activity, error) {
	const q = `INSERT INTO activities (name, parent_id, level) VALUES ($1, $2, $3) RETURNING id`
	a := &models.Activity{Name: name, ParentID: parentID, Level: level}
	if err := r.pool.QueryRow(ctx, q, name, parentID, level).Scan(&a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID returns an activity by id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	const q = `SELECT id, name, level, parent_id FROM activities WHERE id = $1`
	var a models.Activity
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Name, &a.Level, &a.ParentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByName returns the first activity with the exact name, or nil.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Activity, error) {
	const q = `SELECT id, name, level, parent_id FROM activities WHERE name = $1 ORDER BY id LIMIT 1`
	var a models.Activity
	err := r.pool.QueryRow(ctx, q, name).Scan(&a.ID, &a.Name, &a.Level, &a.ParentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Roots returns all root activities (no parent), ordered by name.
func (r *Repository) Roots(ctx context.Context) ([]*models.Activity, error) {
	const q = `SELECT id, name, level, parent_id FROM activities WHERE parent_id IS NULL ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// ChildrenOf returns the direct children of the given parent ids,
// ordered by name. A single batched query serves one tree level.
func (r *Repository) ChildrenOf(ctx context.Context, parentIDs []int64) ([]*models.Activity, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT id, name, level, parent_id FROM activities WHERE parent_id = ANY($1) ORDER BY name`
	rows, err := r.pool.Query(ctx, q, parentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// ByLevel returns activities at exactly the given level, ordered by name.
func (r *Repository) ByLevel(ctx context.Context, level int) ([]*models.Activity, error) {
	const q = `SELECT id, name, level, parent_id FROM activities WHERE level = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// CountOrganizations returns how many organizations reference the
// activity directly (descendants are not included).
func (r *Repository) CountOrganizations(ctx context.Context, activityID int64) (int, error) {
	const q = `SELECT COUNT(organization_id) FROM organization_activity WHERE activity_id = $1`
	var n int
	if err := r.pool.QueryRow(ctx, q, activityID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanActivities(rows pgx.Rows) ([]*models.Activity, error) {
	var list []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.Level, &a.ParentID); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
