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

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

const appointmentColumns = `
	id, user_id, doc_id, user_data, doc_data, slot_date, slot_time, amount,
	cancelled, is_completed, payment, booked_at, created_at, updated_at
`

// claimSlotQuery appends the slot time to the doctor's list for that date
// only if the doctor is available and the slot is still free. The check
// and the write are one statement, so two concurrent bookings of the same
// slot can never both succeed.
const claimSlotQuery = `
	UPDATE doctors
	SET slots_booked = jsonb_set(
			slots_booked,
			ARRAY[$2],
			COALESCE(slots_booked->$2, '[]'::jsonb) || to_jsonb($3::text),
			true),
		updated_at = $4
	WHERE id = $1
	  AND available = TRUE
	  AND NOT COALESCE(slots_booked->$2, '[]'::jsonb) ? $3
`

// releaseSlotQuery filters the slot time out of the date's list. The date
// key stays present, possibly as an empty list. Filtering an absent value
// is a no-op, which keeps re-cancellation harmless.
const releaseSlotQuery = `
	UPDATE doctors
	SET slots_booked = jsonb_set(
			slots_booked,
			ARRAY[$2],
			(SELECT COALESCE(jsonb_agg(t.value), '[]'::jsonb)
			   FROM jsonb_array_elements_text(COALESCE(slots_booked->$2, '[]'::jsonb)) AS t(value)
			  WHERE t.value <> $3),
			true),
		updated_at = $4
	WHERE id = $1
`

func (r *appointmentRepository) Book(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.BookedAt = time.Now()
	apt.CreatedAt = apt.BookedAt
	apt.UpdatedAt = apt.BookedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, claimSlotQuery, apt.DocID, apt.SlotDate, apt.SlotTime, time.Now())
		if err != nil {
			return fmt.Errorf("failed to claim slot: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return r.explainClaimFailure(ctx, tx, apt.DocID, apt.SlotDate, apt.SlotTime)
		}

		insertQuery := `
			INSERT INTO appointments (
				id, user_id, doc_id, user_data, doc_data, slot_date,
				slot_time, amount, cancelled, is_completed, payment,
				booked_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, FALSE, FALSE, $9, $10, $11)
		`
		_, err = tx.ExecContext(ctx, insertQuery,
			apt.ID,
			apt.UserID,
			apt.DocID,
			apt.UserData,
			apt.DocData,
			apt.SlotDate,
			apt.SlotTime,
			apt.Amount,
			apt.BookedAt,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return r.insertOutboxTx(ctx, tx, event)
	})
}

// explainClaimFailure re-reads the doctor inside the transaction to turn a
// zero-row conditional update into the precondition error the caller
// expects, in the order the contract specifies.
func (r *appointmentRepository) explainClaimFailure(ctx context.Context, tx *sqlx.Tx, docID uuid.UUID, slotDate, slotTime string) error {
	var doctor struct {
		Available   bool              `db:"available"`
		SlotsBooked model.SlotsBooked `db:"slots_booked"`
	}
	err := tx.GetContext(ctx, &doctor, `SELECT available, slots_booked FROM doctors WHERE id = $1`, docID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("doctor")
	}
	if err != nil {
		return fmt.Errorf("failed to get doctor: %w", err)
	}
	if !doctor.Available {
		return apperrors.Conflict("doctor not available")
	}
	if doctor.SlotsBooked.Contains(slotDate, slotTime) {
		return apperrors.Conflict("slot already booked")
	}
	return fmt.Errorf("failed to claim slot for doctor %s", docID)
}

func (r *appointmentRepository) Cancel(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()

		_, err := tx.ExecContext(ctx,
			`UPDATE appointments SET cancelled = TRUE, updated_at = $1 WHERE id = $2`,
			now, apt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}

		_, err = tx.ExecContext(ctx, releaseSlotQuery, apt.DocID, apt.SlotDate, apt.SlotTime, now)
		if err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}

		return r.insertOutboxTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) SetCompleted(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET is_completed = TRUE, updated_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `FROM appointments WHERE id = $1`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `FROM appointments WHERE user_id = $1 ORDER BY booked_at DESC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, docID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `FROM appointments WHERE doc_id = $1 ORDER BY booked_at DESC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, docID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `FROM appointments ORDER BY booked_at DESC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) insertOutboxTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if event == nil {
		return nil
	}

	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`
	_, err := tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}
