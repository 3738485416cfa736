package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/amante/clinic-booking-api/internal/model"
)

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM users WHERE id = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM users WHERE email = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) CreateProvider(ctx context.Context, provider *model.Provider) error {
	query := `
		INSERT INTO providers (
			id, user_id, first_name, last_name, specialization, bio,
			consultation_fee, currency, country, city, address,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		provider.ID,
		provider.UserID,
		provider.FirstName,
		provider.LastName,
		provider.Specialization,
		provider.Bio,
		provider.ConsultationFee,
		provider.Currency,
		provider.Country,
		provider.City,
		provider.Address,
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *userRepository) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	query := providerSelect + ` WHERE id = $1`
	var provider model.Provider
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *userRepository) GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	query := providerSelect + ` WHERE user_id = $1`
	var provider model.Provider
	if err := r.db.GetContext(ctx, &provider, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get provider by user: %w", err)
	}
	return &provider, nil
}

func (r *userRepository) UpdateProvider(ctx context.Context, provider *model.Provider) error {
	query := `
		UPDATE providers
		SET first_name = $1, last_name = $2, specialization = $3, bio = $4,
		    consultation_fee = $5, currency = $6, country = $7, city = $8,
		    address = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		provider.FirstName,
		provider.LastName,
		provider.Specialization,
		provider.Bio,
		provider.ConsultationFee,
		provider.Currency,
		provider.Country,
		provider.City,
		provider.Address,
		provider.UpdatedAt,
		provider.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	return requireRow(result)
}

func (r *userRepository) ListProviders(ctx context.Context, filters *model.ProviderFilters) ([]*model.Provider, error) {
	query := providerSelect + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Country != "" {
			query += fmt.Sprintf(" AND country = $%d", argCount)
			args = append(args, filters.Country)
			argCount++
		}
		if filters.City != "" {
			query += fmt.Sprintf(" AND city = $%d", argCount)
			args = append(args, filters.City)
			argCount++
		}
		if filters.Specialization != "" {
			query += fmt.Sprintf(" AND specialization ILIKE $%d", argCount)
			args = append(args, "%"+filters.Specialization+"%")
			argCount++
		}
	}

	query += " ORDER BY last_name ASC, first_name ASC"

	var providers []*model.Provider
	if err := r.db.SelectContext(ctx, &providers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

func (r *userRepository) CreatePatient(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, user_id, first_name, last_name, phone, gender,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.UserID,
		patient.FirstName,
		patient.LastName,
		patient.Phone,
		patient.Gender,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *userRepository) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := patientSelect + ` WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *userRepository) GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := patientSelect + ` WHERE user_id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

const providerSelect = `
	SELECT id, user_id, first_name, last_name, specialization, bio,
	       consultation_fee, currency, country, city, address,
	       created_at, updated_at
	FROM providers`

const patientSelect = `
	SELECT id, user_id, first_name, last_name, phone, gender,
	       created_at, updated_at
	FROM patients`
