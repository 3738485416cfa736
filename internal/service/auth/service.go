package auth

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
	"github.com/amante/clinic-booking-api/internal/repository"
	"github.com/amante/clinic-booking-api/pkg/auth"
	"github.com/amante/clinic-booking-api/pkg/errors"
	"github.com/amante/clinic-booking-api/pkg/logger"
	"github.com/amante/clinic-booking-api/pkg/security"
)

// Service registers accounts and issues tokens. Registration creates both
// the user row and the role profile in one call.
type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwt    auth.JWTService
	logger *logger.Logger
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService, log *logger.Logger) *Service {
	return &Service{users: users, hasher: hasher, jwt: jwt, logger: log}
}

type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*AuthResult, error) {
	existing, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Internal(err)
	}
	if existing != nil {
		return nil, errors.Conflict("email already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.Validation(err.Error(), nil)
		}
		return nil, errors.Internal(err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Base:         model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, errors.Internal(err)
	}

	switch req.Role {
	case model.RoleProvider:
		provider := &model.Provider{
			Base:      model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			UserID:    user.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		}
		if err := s.users.CreateProvider(ctx, provider); err != nil {
			return nil, errors.Internal(err)
		}
	case model.RolePatient:
		patient := &model.Patient{
			Base:      model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			UserID:    user.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		}
		if err := s.users.CreatePatient(ctx, patient); err != nil {
			return nil, errors.Internal(err)
		}
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "role", string(user.Role))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Unauthorized("invalid email or password")
		}
		return nil, errors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, errors.Unauthorized("invalid email or password")
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
