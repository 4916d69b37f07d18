package organizations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgcatalog/backend/internal/models"
)

// Repository handles organization persistence and aggregate assembly.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organization repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectOrg = `SELECT o.id, o.name, o.building_id, b.address, b.latitude, b.longitude
	FROM organizations o
	JOIN buildings b ON b.id = o.building_id`

// GetByIDWithRelations returns one organization with its building,
// phones and activities, or nil when absent.
func (r *Repository) GetByIDWithRelations(ctx context.Context, id int64) (*models.Organization, error) {
	rows, err := r.pool.Query(ctx, selectOrg+` WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list, err := r.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// SearchByName returns organizations whose name contains the substring,
// case-insensitive, ordered by name.
func (r *Repository) SearchByName(ctx context.Context, query string) ([]models.Organization, error) {
	rows, err := r.pool.Query(ctx, selectOrg+` WHERE o.name ILIKE '%' || $1 || '%' ORDER BY o.name, o.id`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// ByBuilding returns organizations housed in the building.
func (r *Repository) ByBuilding(ctx context.Context, buildingID int64) ([]models.Organization, error) {
	rows, err := r.pool.Query(ctx, selectOrg+` WHERE o.building_id = $1 ORDER BY o.name, o.id`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// ByActivityIDs returns organizations tagged with any of the activity
// ids. DISTINCT collapses matches through multiple tags.
func (r *Repository) ByActivityIDs(ctx context.Context, activityIDs []int64) ([]models.Organization, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT DISTINCT o.id, o.name, o.building_id, b.address, b.latitude, b.longitude
		FROM organizations o
		JOIN buildings b ON b.id = o.building_id
		JOIN organization_activity oa ON oa.organization_id = o.id
		WHERE oa.activity_id = ANY($1)
		ORDER BY o.id`
	rows, err := r.pool.Query(ctx, q, activityIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// Near returns organizations whose building lies within radiusMeters of
// the point, using the geodesic geography predicate.
func (r *Repository) Near(ctx context.Context, lat, lon, radiusMeters float64) ([]models.Organization, error) {
	q := selectOrg + ` WHERE ST_DWithin(b.geom::geography, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3) ORDER BY o.id`
	rows, err := r.pool.Query(ctx, q, lat, lon, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

// Create inserts the organization, its phones and its activity links in
// one transaction. activityIDs must already be resolved to existing
// activities by the caller.
func (r *Repository) Create(ctx context.Context, name string, buildingID int64, phoneNumbers []string, activityIDs []int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	const insertOrg = `INSERT INTO organizations (name, building_id) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRow(ctx, insertOrg, name, buildingID).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert organization: %w", err)
	}
	for _, number := range phoneNumbers {
		if _, err := tx.Exec(ctx, `INSERT INTO phones (number, organization_id) VALUES ($1, $2)`, number, id); err != nil {
			return 0, fmt.Errorf("insert phone: %w", err)
		}
	}
	for _, activityID := range activityIDs {
		const link = `INSERT INTO organization_activity (organization_id, activity_id) VALUES ($1, $2)
			ON CONFLICT (organization_id, activity_id) DO NOTHING`
		if _, err := tx.Exec(ctx, link, id, activityID); err != nil {
			return 0, fmt.Errorf("link activity: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// collect scans organization rows and batch-loads phones and activities
// for the whole result set (one query per relation, no per-row fan-out).
func (r *Repository) collect(ctx context.Context, rows pgx.Rows) ([]models.Organization, error) {
	var list []models.Organization
	for rows.Next() {
		var o models.Organization
		var b models.Building
		if err := rows.Scan(&o.ID, &o.Name, &o.BuildingID, &b.Address, &b.Latitude, &b.Longitude); err != nil {
			return nil, err
		}
		b.ID = o.BuildingID
		o.Building = &b
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]int64, len(list))
	index := make(map[int64]*models.Organization, len(list))
	for i := range list {
		ids[i] = list[i].ID
		index[list[i].ID] = &list[i]
	}
	if err := r.loadPhones(ctx, ids, index); err != nil {
		return nil, err
	}
	if err := r.loadActivities(ctx, ids, index); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) loadPhones(ctx context.Context, ids []int64, index map[int64]*models.Organization) error {
	const q = `SELECT id, number, organization_id FROM phones WHERE organization_id = ANY($1) ORDER BY number`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p models.Phone
		if err := rows.Scan(&p.ID, &p.Number, &p.OrganizationID); err != nil {
			return err
		}
		if o, ok := index[p.OrganizationID]; ok {
			o.Phones = append(o.Phones, p)
		}
	}
	return rows.Err()
}

func (r *Repository) loadActivities(ctx context.Context, ids []int64, index map[int64]*models.Organization) error {
	const q = `SELECT a.id, a.name, a.level, a.parent_id, oa.organization_id
		FROM activities a
		JOIN organization_activity oa ON oa.activity_id = a.id
		WHERE oa.organization_id = ANY($1)
		ORDER BY a.name`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a models.Activity
		var orgID int64
		if err := rows.Scan(&a.ID, &a.Name, &a.Level, &a.ParentID, &orgID); err != nil {
			return err
		}
		if o, ok := index[orgID]; ok {
			o.Activities = append(o.Activities, a)
		}
	}
	return rows.Err()
}
