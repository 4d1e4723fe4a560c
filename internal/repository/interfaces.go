package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/docbook/docbook-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
	ListAvailableBySpeciality(ctx context.Context, speciality string) ([]*model.Doctor, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorProfileRequest) error
	ToggleAvailability(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type AppointmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
	ListByDoctor(ctx context.Context, docID uuid.UUID) ([]*model.Appointment, error)
	ListAll(ctx context.Context) ([]*model.Appointment, error)

	// Book claims the slot with a conditional update and records the
	// appointment plus its outbox event in one transaction.
	Book(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error

	// Cancel flags the appointment and releases the doctor's slot in one
	// transaction. Releasing an already-released slot is a no-op.
	Cancel(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error

	SetCompleted(ctx context.Context, id uuid.UUID) error
}

type OutboxRepository interface {
	GetPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
