package buildings

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

func (m *mockStore) Create(ctx context.Context, address string, lat, lon float64) (*models.Building, error) {
	args := m.Called(ctx, address, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*models.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *mockStore) Near(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.Building, error) {
	args := m.Called(ctx, lat, lon, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Building), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newService(store Store) *Service {
	return NewService(store, 50000, 100, zap.NewNop())
}

func TestValidateQuery(t *testing.T) {
	svc := newService(new(mockStore))

	cases := []struct {
		name             string
		lat, lon, radius float64
		wantErr          bool
	}{
		{"valid", 55.7558, 37.6176, 100, false},
		{"valid at bounds", -90, 180, 50000, false},
		{"latitude too low", -90.01, 0, 100, true},
		{"latitude too high", 90.01, 0, 100, true},
		{"longitude too low", 0, -180.01, 100, true},
		{"longitude too high", 0, 180.01, 100, true},
		{"zero radius", 0, 0, 0, true},
		{"negative radius", 0, 0, -5, true},
		{"radius over cap", 0, 0, 50001, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidateQuery(tc.lat, tc.lon, tc.radius)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateQueryUnboundedWhenCapDisabled(t *testing.T) {
	svc := NewService(new(mockStore), 0, 100, zap.NewNop())
	assert.NoError(t, svc.ValidateQuery(0, 0, 1e7))
}

func TestFindNearDefaultsLimit(t *testing.T) {
	store := new(mockStore)
	store.On("Near", mock.Anything, 55.7558, 37.6176, 100.0, 100).
		Return([]models.Building{{ID: 1, Address: "Moscow, Lenina st. 1"}}, nil)

	list, err := newService(store).FindNear(context.Background(), 55.7558, 37.6176, 100, 0)

	require.NoError(t, err)
	require.Len(t, list, 1)
	store.AssertExpectations(t)
}

func TestFindNearRejectsInvalidQueryBeforeStore(t *testing.T) {
	store := new(mockStore)

	_, err := newService(store).FindNear(context.Background(), 91, 0, 100, 10)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	store.AssertNotCalled(t, "Near", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFindNearEmptyResultIsNotAnError(t *testing.T) {
	store := new(mockStore)
	store.On("Near", mock.Anything, 55.0, 37.0, 1.0, 100).Return(nil, nil)

	list, err := newService(store).FindNear(context.Background(), 55.0, 37.0, 1, 0)

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateValidatesCoordinates(t *testing.T) {
	store := new(mockStore)

	_, err := newService(store).Create(context.Background(), "nowhere", 100, 0)
	assert.True(t, apperrors.IsValidation(err))

	_, err = newService(store).Create(context.Background(), "nowhere", 0, 200)
	assert.True(t, apperrors.IsValidation(err))

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePassesThroughConstraintViolation(t *testing.T) {
	store := new(mockStore)
	store.On("Delete", mock.Anything, int64(1)).
		Return(apperrors.ConstraintViolation("building 1 is referenced by organizations"))

	err := newService(store).Delete(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, apperrors.IsConstraintViolation(err))
}
