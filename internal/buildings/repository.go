package buildings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/apperrors"
)

// Repository handles building persistence and the geospatial predicate.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a building repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a building; the point geometry is derived from the
// coordinates inside the same statement so the two can never diverge.
func (r *Repository) Create(ctx context.Context, address string, lat, lon float64) (*models.Building, error) {
	const q = `INSERT INTO buildings (address, latitude, longitude, geom)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($3, $2), 4326))
		RETURNING id`
	b := &models.Building{Address: address, Latitude: lat, Longitude: lon}
	if err := r.pool.QueryRow(ctx, q, address, lat, lon).Scan(&b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByID returns a building by id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Building, error) {
	const q = `SELECT id, address, latitude, longitude FROM buildings WHERE id = $1`
	var b models.Building
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.Address, &b.Latitude, &b.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Near returns buildings within radiusMeters of the point, truncated to
// limit. Geography casts make ST_DWithin geodesic (meters on the
// spheroid), not planar degrees.
func (r *Repository) Near(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.Building, error) {
	const q = `SELECT id, address, latitude, longitude FROM buildings
		WHERE ST_DWithin(geom::geography, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
		ORDER BY id
		LIMIT $4`
	rows, err := r.pool.Query(ctx, q, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Address, &b.Latitude, &b.Longitude); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Delete removes a building. While organizations reference it the FK
// RESTRICT action fires, surfaced as a ConstraintViolationError.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM buildings WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ConstraintViolation("building %d is referenced by organizations", id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("building", id)
	}
	return nil
}
