package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/repository"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{BaseRepository: NewBaseRepository(db)}
}

const doctorColumns = `
	id, name, email, password_hash, speciality, degree, experience, about,
	fees, address, image, available, slots_booked, created_at, updated_at
`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, name, email, password_hash, speciality, degree, experience,
			about, fees, address, image, available, slots_booked,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt
	if doctor.SlotsBooked == nil {
		doctor.SlotsBooked = model.SlotsBooked{}
	}

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Email,
		doctor.PasswordHash,
		doctor.Speciality,
		doctor.Degree,
		doctor.Experience,
		doctor.About,
		doctor.Fees,
		doctor.Address,
		doctor.Image,
		doctor.Available,
		doctor.SlotsBooked,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT` + doctorColumns + `FROM doctors WHERE id = $1`

	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	query := `SELECT` + doctorColumns + `FROM doctors WHERE email = $1`

	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor by email: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `SELECT` + doctorColumns + `FROM doctors ORDER BY created_at DESC`

	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) ListAvailableBySpeciality(ctx context.Context, speciality string) ([]*model.Doctor, error) {
	query := `SELECT` + doctorColumns + `
		FROM doctors
		WHERE speciality = $1 AND available = TRUE
		ORDER BY created_at DESC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, speciality); err != nil {
		return nil, fmt.Errorf("failed to list doctors by speciality: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorProfileRequest) error {
	query := `
		UPDATE doctors
		SET fees = COALESCE($1, fees),
			address = COALESCE($2, address),
			available = COALESCE($3, available),
			updated_at = $4
		WHERE id = $5
	`
	var address interface{}
	if req.Address != nil {
		address = req.Address
	}

	result, err := r.db.ExecContext(ctx, query, req.Fees, address, req.Available, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor")
	}
	return nil
}

func (r *doctorRepository) ToggleAvailability(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE doctors
		SET available = NOT available, updated_at = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to toggle availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor")
	}
	return nil
}

func (r *doctorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM doctors`); err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return count, nil
}
