package organizations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/apperrors"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByIDWithRelations(ctx context.Context, id int64) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *mockStore) SearchByName(ctx context.Context, query string) ([]models.Organization, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *mockStore) ByBuilding(ctx context.Context, buildingID int64) ([]models.Organization, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *mockStore) ByActivityIDs(ctx context.Context, activityIDs []int64) ([]models.Organization, error) {
	args := m.Called(ctx, activityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *mockStore) Near(ctx context.Context, lat, lon, radiusMeters float64) ([]models.Organization, error) {
	args := m.Called(ctx, lat, lon, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, name string, buildingID int64, phoneNumbers []string, activityIDs []int64) (int64, error) {
	args := m.Called(ctx, name, buildingID, phoneNumbers, activityIDs)
	return args.Get(0).(int64), args.Error(1)
}

type mockActivityDirectory struct {
	mock.Mock
}

func (m *mockActivityDirectory) Get(ctx context.Context, id int64) (*models.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *mockActivityDirectory) DescendantIDs(ctx context.Context, activityID int64) ([]int64, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockBuildingDirectory struct {
	mock.Mock
}

func (m *mockBuildingDirectory) Get(ctx context.Context, id int64) (*models.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *mockBuildingDirectory) ValidateQuery(lat, lon, radiusMeters float64) error {
	return m.Called(lat, lon, radiusMeters).Error(0)
}

func newFacade(store Store, acts ActivityDirectory, bld BuildingDirectory) *Service {
	return NewService(store, acts, bld, zap.NewNop())
}

func org(id int64, name string) models.Organization {
	return models.Organization{ID: id, Name: name, BuildingID: 1}
}

func TestGetByIDReturnsAggregate(t *testing.T) {
	store := new(mockStore)
	want := org(1, "Horns and Hooves LLC")
	want.Phones = []models.Phone{{ID: 1, Number: "2-222-222", OrganizationID: 1}}
	store.On("GetByIDWithRelations", mock.Anything, int64(1)).Return(&want, nil)

	got, err := newFacade(store, nil, nil).GetByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Horns and Hooves LLC", got.Name)
	require.Len(t, got.Phones, 1)
}

func TestGetByIDNotFound(t *testing.T) {
	store := new(mockStore)
	store.On("GetByIDWithRelations", mock.Anything, int64(99)).Return(nil, nil)

	_, err := newFacade(store, nil, nil).GetByID(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestByBuildingChecksExistence(t *testing.T) {
	store := new(mockStore)
	bld := new(mockBuildingDirectory)
	bld.On("Get", mock.Anything, int64(5)).Return(nil, nil)

	_, err := newFacade(store, nil, bld).ByBuilding(context.Background(), 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	store.AssertNotCalled(t, "ByBuilding", mock.Anything, mock.Anything)
}

func TestByBuildingListsOrganizations(t *testing.T) {
	store := new(mockStore)
	bld := new(mockBuildingDirectory)
	bld.On("Get", mock.Anything, int64(1)).Return(&models.Building{ID: 1}, nil)
	store.On("ByBuilding", mock.Anything, int64(1)).
		Return([]models.Organization{org(1, "A"), org(2, "B")}, nil)

	list, err := newFacade(store, nil, bld).ByBuilding(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestByActivitySubtreeDeduplicates(t *testing.T) {
	store := new(mockStore)
	acts := new(mockActivityDirectory)
	acts.On("DescendantIDs", mock.Anything, int64(1)).Return([]int64{1, 2, 3}, nil)
	// store may return a repeated organization when it matches through
	// several descendant tags
	store.On("ByActivityIDs", mock.Anything, []int64{1, 2, 3}).
		Return([]models.Organization{org(10, "AutoWorld"), org(10, "AutoWorld"), org(11, "Truckers")}, nil)

	list, err := newFacade(store, acts, nil).ByActivitySubtree(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(10), list[0].ID)
	assert.Equal(t, int64(11), list[1].ID)
}

func TestByActivitySubtreeMatchesDirectUnion(t *testing.T) {
	direct := map[int64][]models.Organization{
		1: nil,
		2: {org(10, "AutoWorld")},
		3: {org(10, "AutoWorld"), org(11, "Truckers")},
	}
	store := new(mockStore)
	acts := new(mockActivityDirectory)
	acts.On("DescendantIDs", mock.Anything, int64(1)).Return([]int64{1, 2, 3}, nil)
	store.On("ByActivityIDs", mock.Anything, []int64{1, 2, 3}).
		Return(append(append([]models.Organization{}, direct[2]...), direct[3]...), nil)
	for id, orgs := range direct {
		store.On("ByActivityIDs", mock.Anything, []int64{id}).Return(orgs, nil)
	}

	facade := newFacade(store, acts, nil)
	subtree, err := facade.ByActivitySubtree(context.Background(), 1)
	require.NoError(t, err)

	union := map[int64]bool{}
	for id := range direct {
		list, err := facade.ByActivityDirect(context.Background(), id)
		require.NoError(t, err)
		for _, o := range list {
			union[o.ID] = true
		}
	}

	assert.Len(t, subtree, len(union))
	for _, o := range subtree {
		assert.True(t, union[o.ID])
	}
}

func TestNearValidatesThroughBuildingDirectory(t *testing.T) {
	store := new(mockStore)
	bld := new(mockBuildingDirectory)
	bld.On("ValidateQuery", 91.0, 0.0, 100.0).
		Return(apperrors.Validation("latitude must be between -90 and 90"))

	_, err := newFacade(store, nil, bld).Near(context.Background(), 91, 0, 100)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	store.AssertNotCalled(t, "Near", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNearReturnsOrganizations(t *testing.T) {
	store := new(mockStore)
	bld := new(mockBuildingDirectory)
	bld.On("ValidateQuery", 55.7558, 37.6176, 100.0).Return(nil)
	store.On("Near", mock.Anything, 55.7558, 37.6176, 100.0).
		Return([]models.Organization{org(1, "A")}, nil)

	list, err := newFacade(store, nil, bld).Near(context.Background(), 55.7558, 37.6176, 100)

	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateSkipsUnresolvedActivityIDs(t *testing.T) {
	store := new(mockStore)
	acts := new(mockActivityDirectory)
	bld := new(mockBuildingDirectory)

	bld.On("Get", mock.Anything, int64(1)).Return(&models.Building{ID: 1}, nil)
	acts.On("Get", mock.Anything, int64(3)).Return(&models.Activity{ID: 3, Name: "Meat", Level: 2}, nil)
	acts.On("Get", mock.Anything, int64(9999)).Return(nil, nil)
	store.On("Create", mock.Anything, "O", int64(1), []string{"2-222-222"}, []int64{3}).
		Return(int64(77), nil)
	created := org(77, "O")
	created.Activities = []models.Activity{{ID: 3, Name: "Meat", Level: 2}}
	store.On("GetByIDWithRelations", mock.Anything, int64(77)).Return(&created, nil)

	res, err := newFacade(store, acts, bld).Create(context.Background(), CreateInput{
		Name:         "O",
		BuildingID:   1,
		PhoneNumbers: []string{"2-222-222"},
		ActivityIDs:  []int64{3, 9999},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), res.Organization.ID)
	assert.Equal(t, []int64{9999}, res.SkippedActivityIDs)
	require.Len(t, res.Organization.Activities, 1)
	assert.Equal(t, "Meat", res.Organization.Activities[0].Name)
	store.AssertExpectations(t)
}

func TestCreateDeduplicatesActivityIDs(t *testing.T) {
	store := new(mockStore)
	acts := new(mockActivityDirectory)
	bld := new(mockBuildingDirectory)

	bld.On("Get", mock.Anything, int64(1)).Return(&models.Building{ID: 1}, nil)
	acts.On("Get", mock.Anything, int64(3)).Return(&models.Activity{ID: 3, Name: "Meat", Level: 2}, nil).Once()
	store.On("Create", mock.Anything, "O", int64(1), []string(nil), []int64{3}).
		Return(int64(5), nil)
	created := org(5, "O")
	store.On("GetByIDWithRelations", mock.Anything, int64(5)).Return(&created, nil)

	_, err := newFacade(store, acts, bld).Create(context.Background(), CreateInput{
		Name:        "O",
		BuildingID:  1,
		ActivityIDs: []int64{3, 3, 3},
	})

	require.NoError(t, err)
	store.AssertExpectations(t)
	acts.AssertExpectations(t)
}

func TestCreateFailsOnMissingBuilding(t *testing.T) {
	store := new(mockStore)
	bld := new(mockBuildingDirectory)
	bld.On("Get", mock.Anything, int64(404)).Return(nil, nil)

	_, err := newFacade(store, nil, bld).Create(context.Background(), CreateInput{
		Name:       "O",
		BuildingID: 404,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchByNamePassesThrough(t *testing.T) {
	store := new(mockStore)
	store.On("SearchByName", mock.Anything, "auto").
		Return([]models.Organization{org(3, "AutoWorld LLC")}, nil)

	list, err := newFacade(store, nil, nil).SearchByName(context.Background(), "auto")

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AutoWorld LLC", list[0].Name)
}
