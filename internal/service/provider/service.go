package provider

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/repository"
	"github.com/amante/clinic-booking-api/pkg/errors"
)

// Service is the public provider directory plus profile management for the
// provider themselves.
type Service struct {
	users repository.UserRepository
}

func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	provider, err := s.users.GetProvider(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("provider", err)
		}
		return nil, errors.Internal(err)
	}
	return provider, nil
}

func (s *Service) List(ctx context.Context, filters *model.ProviderFilters) ([]*model.Provider, error) {
	providers, err := s.users.ListProviders(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return providers, nil
}

// UpdateProfile rewrites the calling provider's public profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProviderProfileRequest) (*model.Provider, error) {
	provider, err := s.users.GetProviderByUserID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("provider profile", err)
		}
		return nil, errors.Internal(err)
	}

	provider.FirstName = req.FirstName
	provider.LastName = req.LastName
	provider.Specialization = req.Specialization
	provider.Bio = req.Bio
	provider.ConsultationFee = req.ConsultationFee
	provider.Currency = req.Currency
	provider.Country = req.Country
	provider.City = req.City
	provider.Address = req.Address
	provider.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateProvider(ctx, provider); err != nil {
		return nil, errors.Internal(err)
	}
	return provider, nil
}
