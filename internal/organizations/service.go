package organizations

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/apperrors"
)

// Store is the persistence surface the query facade needs.
type Store interface {
	GetByIDWithRelations(ctx context.Context, id int64) (*models.Organization, error)
	SearchByName(ctx context.Context, query string) ([]models.Organization, error)
	ByBuilding(ctx context.Context, buildingID int64) ([]models.Organization, error)
	ByActivityIDs(ctx context.Context, activityIDs []int64) ([]models.Organization, error)
	Near(ctx context.Context, lat, lon, radiusMeters float64) ([]models.Organization, error)
	Create(ctx context.Context, name string, buildingID int64, phoneNumbers []string, activityIDs []int64) (int64, error)
}

// ActivityDirectory resolves activity ids and descendant closures.
// Satisfied by the activities hierarchy service.
type ActivityDirectory interface {
	Get(ctx context.Context, id int64) (*models.Activity, error)
	DescendantIDs(ctx context.Context, activityID int64) ([]int64, error)
}

// BuildingDirectory checks building existence and validates proximity
// queries. Satisfied by the buildings service.
type BuildingDirectory interface {
	Get(ctx context.Context, id int64) (*models.Building, error)
	ValidateQuery(lat, lon, radiusMeters float64) error
}

// Service is the organization query facade: it composes the hierarchy
// manager and proximity search with the catalog store, returning
// deduplicated aggregates.
type Service struct {
	store      Store
	activities ActivityDirectory
	buildings  BuildingDirectory
	logger     *zap.Logger
}

// NewService creates the organization facade.
func NewService(store Store, activities ActivityDirectory, buildings BuildingDirectory, logger *zap.Logger) *Service {
	return &Service{store: store, activities: activities, buildings: buildings, logger: logger}
}

// GetByID returns the full aggregate or a NotFoundError.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.store.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.NotFound("organization", id)
	}
	return org, nil
}

// SearchByName returns organizations whose name contains the substring,
// case-insensitive.
func (s *Service) SearchByName(ctx context.Context, query string) ([]models.Organization, error) {
	return s.store.SearchByName(ctx, query)
}

// ByBuilding returns organizations housed in the building; the building
// itself must exist.
func (s *Service) ByBuilding(ctx context.Context, buildingID int64) ([]models.Organization, error) {
	b, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperrors.NotFound("building", buildingID)
	}
	return s.store.ByBuilding(ctx, buildingID)
}

// ByActivityDirect returns organizations tagged with exactly this
// activity id.
func (s *Service) ByActivityDirect(ctx context.Context, activityID int64) ([]models.Organization, error) {
	list, err := s.store.ByActivityIDs(ctx, []int64{activityID})
	if err != nil {
		return nil, err
	}
	return dedupeByID(list), nil
}

// ByActivitySubtree returns organizations tagged with the activity or
// any of its descendants. An organization matched through several
// descendant tags appears exactly once.
func (s *Service) ByActivitySubtree(ctx context.Context, activityID int64) ([]models.Organization, error) {
	ids, err := s.activities.DescendantIDs(ctx, activityID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ByActivityIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return dedupeByID(list), nil
}

// Near returns organizations whose building lies within radiusMeters of
// the point. Validation is shared with building proximity search.
func (s *Service) Near(ctx context.Context, lat, lon, radiusMeters float64) ([]models.Organization, error) {
	if err := s.buildings.ValidateQuery(lat, lon, radiusMeters); err != nil {
		return nil, err
	}
	return s.store.Near(ctx, lat, lon, radiusMeters)
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Name         string
	BuildingID   int64
	PhoneNumbers []string
	ActivityIDs  []int64
}

// CreateResult carries the assembled aggregate plus any supplied
// activity ids that did not resolve and were skipped.
type CreateResult struct {
	Organization       *models.Organization
	SkippedActivityIDs []int64
}

// Create validates the building, resolves each activity id
// independently (unresolved ids are skipped, not rejected), and writes
// the organization with its phones and links in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	b, err := s.buildings.Get(ctx, in.BuildingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperrors.NotFound("building", in.BuildingID)
	}

	resolved := make([]int64, 0, len(in.ActivityIDs))
	var skipped []int64
	seen := make(map[int64]bool, len(in.ActivityIDs))
	for _, id := range in.ActivityIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, err := s.activities.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if a == nil {
			skipped = append(skipped, id)
			continue
		}
		resolved = append(resolved, id)
	}
	if len(skipped) > 0 {
		s.logger.Warn("skipping unresolved activity ids on organization create",
			zap.String("name", in.Name), zap.Int64s("activity_ids", skipped))
	}

	id, err := s.store.Create(ctx, in.Name, in.BuildingID, in.PhoneNumbers, resolved)
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	org, err := s.store.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("organization created",
		zap.Int64("id", id), zap.Int("phones", len(in.PhoneNumbers)), zap.Int("activities", len(resolved)))
	return &CreateResult{Organization: org, SkippedActivityIDs: skipped}, nil
}

// dedupeByID keeps the first occurrence of each organization id,
// preserving order.
func dedupeByID(list []models.Organization) []models.Organization {
	if len(list) < 2 {
		return list
	}
	seen := make(map[int64]bool, len(list))
	out := list[:0]
	for _, o := range list {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	return out
}
