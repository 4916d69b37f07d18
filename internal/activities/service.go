package activities

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/apperrors"
)

// Unknown-parent policies for Create.
const (
	UnknownParentRoot   = "root"   // treat the node as a root (level 1)
	UnknownParentReject = "reject" // fail with NotFoundError
)

// Store is the persistence surface the hierarchy manager needs.
type Store interface {
	Create(ctx context.Context, name string, parentID *int64, level int) (*models.Activity, error)
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	FindByName(ctx context.Context, name string) (*models.Activity, error)
	Roots(ctx context.Context) ([]*models.Activity, error)
	ChildrenOf(ctx context.Context, parentIDs []int64) ([]*models.Activity, error)
	ByLevel(ctx context.Context, level int) ([]*models.Activity, error)
	CountOrganizations(ctx context.Context, activityID int64) (int, error)
}

// Service enforces the depth-bounded activity tree and computes
// descendant closures for category search.
type Service struct {
	store               Store
	maxDepth            int
	unknownParentPolicy string
	logger              *zap.Logger
}

// NewService creates the hierarchy manager. maxDepth and the
// unknown-parent policy come from configuration.
func NewService(store Store, maxDepth int, unknownParentPolicy string, logger *zap.Logger) *Service {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	return &Service{
		store:               store,
		maxDepth:            maxDepth,
		unknownParentPolicy: unknownParentPolicy,
		logger:              logger,
	}
}

// Create adds an activity node. Level is computed from the parent at
// creation time; a node that would exceed the maximum depth is rejected
// with a ValidationError and nothing is persisted.
func (s *Service) Create(ctx context.Context, name string, parentID *int64) (*models.Activity, error) {
	level := 1
	if parentID != nil {
		parent, err := s.store.GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent activity: %w", err)
		}
		if parent == nil {
			if s.unknownParentPolicy == UnknownParentReject {
				return nil, apperrors.NotFound("activity", *parentID)
			}
			s.logger.Warn("unknown parent activity, creating as root",
				zap.Int64("parent_id", *parentID), zap.String("name", name))
			parentID = nil
		} else {
			level = parent.Level + 1
			if level > s.maxDepth {
				return nil, apperrors.Validation("activity depth exceeded: maximum nesting level is %d", s.maxDepth)
			}
		}
	}
	return s.store.Create(ctx, name, parentID, level)
}

// Get returns an activity by id, or nil when absent.
func (s *Service) Get(ctx context.Context, id int64) (*models.Activity, error) {
	return s.store.GetByID(ctx, id)
}

// FindByName returns the first activity with the exact name, or nil.
func (s *Service) FindByName(ctx context.Context, name string) (*models.Activity, error) {
	return s.store.FindByName(ctx, name)
}

// Tree returns all root activities ordered by name, each populated
// with children down to the maximum depth. One batched query per level.
func (s *Service) Tree(ctx context.Context) ([]*models.Activity, error) {
	roots, err := s.store.Roots(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Activity, len(roots))
	frontier := make([]int64, 0, len(roots))
	for _, a := range roots {
		byID[a.ID] = a
		frontier = append(frontier, a.ID)
	}
	for depth := 1; depth < s.maxDepth && len(frontier) > 0; depth++ {
		children, err := s.store.ChildrenOf(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if _, seen := byID[c.ID]; seen {
				return nil, apperrors.DataIntegrity("activity %d revisited while loading tree", c.ID)
			}
			byID[c.ID] = c
			parent := byID[*c.ParentID]
			parent.Children = append(parent.Children, c)
			frontier = append(frontier, c.ID)
		}
	}
	return roots, nil
}

// DescendantIDs returns {activityID} plus all transitive children,
// sorted. Expansion is bounded to the maximum depth and any revisit of
// an already-collected node fails with a DataIntegrityError, so a
// corrupted parent chain cannot hang or crash the query path.
func (s *Service) DescendantIDs(ctx context.Context, activityID int64) ([]int64, error) {
	seen := map[int64]bool{activityID: true}
	frontier := []int64{activityID}
	for depth := 1; depth < s.maxDepth && len(frontier) > 0; depth++ {
		children, err := s.store.ChildrenOf(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if seen[c.ID] {
				return nil, apperrors.DataIntegrity("cycle detected in activity tree at node %d", c.ID)
			}
			seen[c.ID] = true
			frontier = append(frontier, c.ID)
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ByLevel returns activities at exactly the given level.
func (s *Service) ByLevel(ctx context.Context, level int) ([]*models.Activity, error) {
	if level < 1 || level > s.maxDepth {
		return nil, apperrors.Validation("level must be between 1 and %d", s.maxDepth)
	}
	return s.store.ByLevel(ctx, level)
}

// CountOrganizations returns the number of organizations directly
// tagged with the activity.
func (s *Service) CountOrganizations(ctx context.Context, activityID int64) (int, error) {
	return s.store.CountOrganizations(ctx, activityID)
}
