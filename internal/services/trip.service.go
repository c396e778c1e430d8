package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
)

var (
	ErrTripNotFound  = errors.New("trip not found")
	ErrAlreadyMember = errors.New("already a trip member")
	ErrNotTripMember = errors.New("not a trip member")
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 5
)

type TripRepository interface {
	CreateWithOwner(ctx context.Context, t *model.Trip) (*model.Trip, error)
	GetByID(ctx context.Context, id int64) (*model.Trip, error)
	GetByCode(ctx context.Context, code string) (*model.Trip, error)
	Join(ctx context.Context, tripID, userID int64) error
	IsMember(ctx context.Context, tripID, userID int64) (bool, error)
	Members(ctx context.Context, tripID int64) ([]*model.MemberWithUser, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Trip, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TripService struct {
	tripRepo TripRepository
}

func NewTripService(tripRepo TripRepository) *TripService {
	return &TripService{tripRepo: tripRepo}
}

// Create makes a trip with a fresh join code and enrolls the owner as admin.
// Code collisions are rare but possible, so creation retries with a new code.
func (s *TripService) Create(ctx context.Context, p model.CreateTripRequest) (*model.Trip, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, err
		}

		var created *model.Trip
		err = s.tripRepo.WithinTransaction(ctx, func(ctx context.Context) error {
			t, err := s.tripRepo.CreateWithOwner(ctx, &model.Trip{
				Code:         code,
				Name:         p.Name,
				BaseCurrency: p.BaseCurrency,
				OwnerUserID:  p.OwnerUserID,
			})
			if err != nil {
				return err
			}
			created = t
			return nil
		})
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, err
		}
	}
	return nil, errors.New("could not generate a unique join code")
}

func (s *TripService) Get(ctx context.Context, tripID int64) (*model.Trip, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return t, nil
}

// Join adds the user to the trip identified by its join code.
func (s *TripService) Join(ctx context.Context, code string, userID int64) (*model.Trip, error) {
	trip, err := s.tripRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if err := s.tripRepo.Join(ctx, trip.ID, userID); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	return trip, nil
}

func (s *TripService) Members(ctx context.Context, tripID int64) ([]*model.MemberWithUser, error) {
	if _, err := s.Get(ctx, tripID); err != nil {
		return nil, err
	}
	return s.tripRepo.Members(ctx, tripID)
}

func (s *TripService) ListByUser(ctx context.Context, userID int64) ([]*model.Trip, error) {
	return s.tripRepo.ListByUser(ctx, userID)
}

// RequireMember resolves the trip and verifies membership in one step.
func (s *TripService) RequireMember(ctx context.Context, tripID, userID int64) (*model.Trip, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	isMember, err := s.tripRepo.IsMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotTripMember
	}
	return trip, nil
}

func generateJoinCode() (string, error) {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
