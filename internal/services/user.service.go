package services

import (
	"context"
	"errors"

	"github.com/tdnguyen/tripledger/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Upsert(ctx context.Context, platformID int64, name string) (*model.User, error)
	GetByPlatformID(ctx context.Context, platformID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetSettings(ctx context.Context, userID int64) (*model.UserSettings, error)
	SaveSettings(ctx context.Context, s *model.UserSettings) error
}

type UserService struct {
	userRepo UserRepository
}

func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Upsert creates the user on first contact and refreshes the display name on
// every later one.
func (s *UserService) Upsert(ctx context.Context, p model.UpsertUserRequest) (*model.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.userRepo.Upsert(ctx, p.PlatformID, p.Name)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetByPlatformID(ctx context.Context, platformID int64) (*model.User, error) {
	return s.userRepo.GetByPlatformID(ctx, platformID)
}

func (s *UserService) GetSettings(ctx context.Context, userID int64) (*model.UserSettings, error) {
	return s.userRepo.GetSettings(ctx, userID)
}

func (s *UserService) SetPreferredCurrency(ctx context.Context, userID int64, currency string) error {
	if err := model.ValidateCurrency(currency); err != nil {
		return err
	}
	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err != nil {
		return err
	}
	settings.UserID = userID
	settings.PreferredCurrency = currency
	return s.userRepo.SaveSettings(ctx, settings)
}
