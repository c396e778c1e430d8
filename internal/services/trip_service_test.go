package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
)

type MockTripRepository struct {
	mock.Mock
}

func (m *MockTripRepository) CreateWithOwner(ctx context.Context, t *model.Trip) (*model.Trip, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trip), args.Error(1)
}

func (m *MockTripRepository) GetByID(ctx context.Context, id int64) (*model.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trip), args.Error(1)
}

func (m *MockTripRepository) GetByCode(ctx context.Context, code string) (*model.Trip, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trip), args.Error(1)
}

func (m *MockTripRepository) Join(ctx context.Context, tripID, userID int64) error {
	args := m.Called(ctx, tripID, userID)
	return args.Error(0)
}

func (m *MockTripRepository) IsMember(ctx context.Context, tripID, userID int64) (bool, error) {
	args := m.Called(ctx, tripID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTripRepository) Members(ctx context.Context, tripID int64) ([]*model.MemberWithUser, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MemberWithUser), args.Error(1)
}

func (m *MockTripRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Trip), args.Error(1)
}

func (m *MockTripRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func TestTripService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generates a six character code and enrolls the owner", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		tripRepo.On("CreateWithOwner", ctx, mock.MatchedBy(func(trip *model.Trip) bool {
			if len(trip.Code) != 6 {
				return false
			}
			for _, c := range trip.Code {
				if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
					return false
				}
			}
			return trip.OwnerUserID == 1 && trip.BaseCurrency == "TWD"
		})).Return(&model.Trip{ID: 3, Name: "Taiwan 2026", BaseCurrency: "TWD", OwnerUserID: 1}, nil)

		svc := NewTripService(tripRepo)
		created, err := svc.Create(ctx, model.CreateTripRequest{
			OwnerUserID:  1,
			Name:         "Taiwan 2026",
			BaseCurrency: "TWD",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), created.ID)
		tripRepo.AssertExpectations(t)
	})

	t.Run("retries on a code collision", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		tripRepo.On("CreateWithOwner", ctx, mock.AnythingOfType("*model.Trip")).
			Return(nil, repository.ErrDuplicateCode).Twice()
		tripRepo.On("CreateWithOwner", ctx, mock.AnythingOfType("*model.Trip")).
			Return(&model.Trip{ID: 4, OwnerUserID: 1}, nil).Once()

		svc := NewTripService(tripRepo)
		created, err := svc.Create(ctx, model.CreateTripRequest{
			OwnerUserID:  1,
			Name:         "Retry trip",
			BaseCurrency: "VND",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(4), created.ID)
		tripRepo.AssertNumberOfCalls(t, "CreateWithOwner", 3)
	})

	t.Run("gives up after exhausting collisions", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		tripRepo.On("CreateWithOwner", ctx, mock.AnythingOfType("*model.Trip")).
			Return(nil, repository.ErrDuplicateCode)

		svc := NewTripService(tripRepo)
		_, err := svc.Create(ctx, model.CreateTripRequest{
			OwnerUserID:  1,
			Name:         "Unlucky",
			BaseCurrency: "VND",
		})

		require.Error(t, err)
		tripRepo.AssertNumberOfCalls(t, "CreateWithOwner", 5)
	})
}

func TestTripService_Join(t *testing.T) {
	ctx := context.Background()
	trip := &model.Trip{ID: 3, Code: "AB12CD", Name: "Taiwan 2026"}

	t.Run("joins by code", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("GetByCode", ctx, "AB12CD").Return(trip, nil)
		tripRepo.On("Join", ctx, int64(3), int64(2)).Return(nil)

		svc := NewTripService(tripRepo)
		joined, err := svc.Join(ctx, "AB12CD", 2)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, joined.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("GetByCode", ctx, "NOSUCH").Return(nil, repository.ErrTripNotFound)

		svc := NewTripService(tripRepo)
		_, err := svc.Join(ctx, "NOSUCH", 2)
		assert.ErrorIs(t, err, ErrTripNotFound)
	})

	t.Run("joining twice", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("GetByCode", ctx, "AB12CD").Return(trip, nil)
		tripRepo.On("Join", ctx, int64(3), int64(2)).Return(repository.ErrAlreadyMember)

		svc := NewTripService(tripRepo)
		_, err := svc.Join(ctx, "AB12CD", 2)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestTripService_RequireMember(t *testing.T) {
	ctx := context.Background()
	trip := &model.Trip{ID: 3, BaseCurrency: "TWD"}

	t.Run("member passes", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("GetByID", ctx, int64(3)).Return(trip, nil)
		tripRepo.On("IsMember", ctx, int64(3), int64(1)).Return(true, nil)

		svc := NewTripService(tripRepo)
		got, err := svc.RequireMember(ctx, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, "TWD", got.BaseCurrency)
	})

	t.Run("outsider rejected", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("GetByID", ctx, int64(3)).Return(trip, nil)
		tripRepo.On("IsMember", ctx, int64(3), int64(9)).Return(false, nil)

		svc := NewTripService(tripRepo)
		_, err := svc.RequireMember(ctx, 3, 9)
		assert.ErrorIs(t, err, ErrNotTripMember)
	})
}
