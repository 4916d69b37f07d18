package buildings

import (
	"context"

	"go.uber.org/zap"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/apperrors"
)

// Store is the persistence surface proximity search needs.
type Store interface {
	Create(ctx context.Context, address string, lat, lon float64) (*models.Building, error)
	GetByID(ctx context.Context, id int64) (*models.Building, error)
	Near(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.Building, error)
	Delete(ctx context.Context, id int64) error
}

// Service resolves "within radius of point" queries over building
// coordinates and owns the coordinate/radius validation used by every
// proximity path.
type Service struct {
	store           Store
	maxRadiusMeters float64
	defaultLimit    int
	logger          *zap.Logger
}

// NewService creates the proximity search service. The radius cap and
// default result limit come from configuration.
func NewService(store Store, maxRadiusMeters float64, defaultLimit int, logger *zap.Logger) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &Service{
		store:           store,
		maxRadiusMeters: maxRadiusMeters,
		defaultLimit:    defaultLimit,
		logger:          logger,
	}
}

// validateCoordinates holds the WGS84 bounds used by every path that
// accepts a point, query and create alike.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return apperrors.Validation("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return apperrors.Validation("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateQuery checks a proximity query. It is the single validation
// point shared by building and organization radius searches.
func (s *Service) ValidateQuery(lat, lon, radiusMeters float64) error {
	if err := validateCoordinates(lat, lon); err != nil {
		return err
	}
	if radiusMeters <= 0 {
		return apperrors.Validation("radius must be positive")
	}
	if s.maxRadiusMeters > 0 && radiusMeters > s.maxRadiusMeters {
		return apperrors.Validation("radius must not exceed %.0f meters", s.maxRadiusMeters)
	}
	return nil
}

// FindNear returns buildings within radiusMeters of the point,
// truncated to limit (default from configuration when limit <= 0).
func (s *Service) FindNear(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.Building, error) {
	if err := s.ValidateQuery(lat, lon, radiusMeters); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	s.logger.Debug("building proximity search",
		zap.Float64("lat", lat), zap.Float64("lon", lon),
		zap.Float64("radius_m", radiusMeters), zap.Int("limit", limit))
	return s.store.Near(ctx, lat, lon, radiusMeters, limit)
}

// Get returns a building by id, or nil when absent.
func (s *Service) Get(ctx context.Context, id int64) (*models.Building, error) {
	return s.store.GetByID(ctx, id)
}

// Create validates coordinates and persists a building with its derived
// point geometry.
func (s *Service) Create(ctx context.Context, address string, lat, lon float64) (*models.Building, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, address, lat, lon)
}

// Delete removes a building; blocked with a ConstraintViolationError
// while any organization references it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
