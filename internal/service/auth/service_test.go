package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amante/clinic-booking-api/internal/model"
	pkgauth "github.com/amante/clinic-booking-api/pkg/auth"
	"github.com/amante/clinic-booking-api/pkg/errors"
	"github.com/amante/clinic-booking-api/pkg/logger"
	"github.com/amante/clinic-booking-api/pkg/security"
)

type fakeUserRepo struct {
	users     map[string]*model.User
	providers []*model.Provider
	patients  []*model.Patient
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	f.users[user.Email] = user
	return nil
}
func (f *fakeUserRepo) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) CreateProvider(ctx context.Context, provider *model.Provider) error {
	f.providers = append(f.providers, provider)
	return nil
}
func (f *fakeUserRepo) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) UpdateProvider(ctx context.Context, provider *model.Provider) error {
	return nil
}
func (f *fakeUserRepo) ListProviders(ctx context.Context, filters *model.ProviderFilters) ([]*model.Provider, error) {
	return f.providers, nil
}
func (f *fakeUserRepo) CreatePatient(ctx context.Context, patient *model.Patient) error {
	f.patients = append(f.patients, patient)
	return nil
}
func (f *fakeUserRepo) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

func newService(repo *fakeUserRepo) (*Service, pkgauth.JWTService) {
	jwtSvc := pkgauth.NewJWTService("test-secret", time.Hour)
	return NewService(repo, security.NewBcryptHasher(4), jwtSvc, logger.NewLogger(nil)), jwtSvc
}

func TestRegister_CreatesUserAndProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc, jwtSvc := newService(repo)

	result, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "s3cret-pass",
		Role:      model.RoleProvider,
		FirstName: "Ada",
		LastName:  "Wong",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, model.RoleProvider, result.User.Role)
	require.Len(t, repo.providers, 1)
	assert.Equal(t, result.User.ID, repo.providers[0].UserID)

	claims, err := jwtSvc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, model.RoleProvider, claims.Role)
}

func TestRegister_PatientProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newService(repo)

	result, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:     "pat@example.com",
		Password:  "s3cret-pass",
		Role:      model.RolePatient,
		FirstName: "Pat",
		LastName:  "Ng",
	})
	require.NoError(t, err)
	require.Len(t, repo.patients, 1)
	assert.Equal(t, result.User.ID, repo.patients[0].UserID)
	assert.Empty(t, repo.providers)
}

func TestRegister_ShortPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "short",
		Role:      model.RolePatient,
		FirstName: "A",
		LastName:  "B",
	})
	assert.True(t, errors.IsKind(err, errors.ErrValidation))
	assert.Empty(t, repo.users)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newService(repo)

	req := &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "s3cret-pass",
		Role:      model.RolePatient,
		FirstName: "A",
		LastName:  "B",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.True(t, errors.IsKind(err, errors.ErrConflict))
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "s3cret-pass",
		Role:      model.RolePatient,
		FirstName: "A",
		LastName:  "B",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@example.com",
		Password: "wrong-pass",
	})
	assert.True(t, errors.IsKind(err, errors.ErrUnauthorized))

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret-pass",
	})
	assert.True(t, errors.IsKind(err, errors.ErrUnauthorized))
}
