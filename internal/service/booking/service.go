package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/repository"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

// Clinic hours: 30-minute slots from 10:00 through 18:00 inclusive, for
// the next 7 calendar days starting today.
const (
	slotOpenHour    = 10
	slotCloseHour   = 18
	slotInterval    = 30 * time.Minute
	bookingDays     = 7
	latestDashboard = 5
)

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	users        repository.UserRepository

	// now is swapped out in tests
	now func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	users repository.UserRepository,
) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		users:        users,
		now:          time.Now,
	}
}

// DateKey renders the map key for a calendar day: D-M-YYYY, non-padded.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year())
}

// TimeLabel renders a slot time as the clients display it: hh:mm AM/PM.
func TimeLabel(t time.Time) string {
	return t.Format("03:04 PM")
}

// AvailableSlots derives the bookable slot grid for a doctor from the
// live slots_booked map: one ordered bucket per day, each slot present
// iff its (date, time) pair is not occupied. On the current day slots in
// the past are skipped; generation starts at the next aligned boundary.
// The grid is advisory only, the booking path re-validates atomically.
func (s *Service) AvailableSlots(ctx context.Context, docID uuid.UUID) ([]model.DaySlots, error) {
	doctor, err := s.doctors.Get(ctx, docID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	grid := make([]model.DaySlots, 0, bookingDays)

	for i := 0; i < bookingDays; i++ {
		day := now.AddDate(0, 0, i)
		start := time.Date(day.Year(), day.Month(), day.Day(), slotOpenHour, 0, 0, 0, day.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), slotCloseHour, 0, 0, 0, day.Location())

		if i == 0 && now.After(start) {
			start = nextAligned(now)
		}

		slots := model.DaySlots{}
		dateKey := DateKey(day)
		for t := start; !t.After(end); t = t.Add(slotInterval) {
			label := TimeLabel(t)
			if doctor.SlotsBooked.Contains(dateKey, label) {
				continue
			}
			slots = append(slots, model.Slot{Datetime: t, Time: label})
		}
		grid = append(grid, slots)
	}

	return grid, nil
}

// nextAligned rounds up to the next slot boundary strictly aligned to the
// half hour; a time already on a boundary maps to itself.
func nextAligned(t time.Time) time.Time {
	aligned := t.Truncate(slotInterval)
	if aligned.Before(t) {
		aligned = aligned.Add(slotInterval)
	}
	return aligned
}

// Book validates the slot request and claims it. Precondition order:
// doctor exists, doctor is available, slot is free. The repository
// re-runs all three checks inside one conditional update, so a stale
// read here can only produce an earlier error, never a double booking.
func (s *Service) Book(ctx context.Context, userID, docID uuid.UUID, slotDate, slotTime string) (*model.Appointment, error) {
	doctor, err := s.doctors.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		return nil, apperrors.Conflict("doctor not available")
	}
	if doctor.SlotsBooked.Contains(slotDate, slotTime) {
		return nil, apperrors.Conflict("slot already booked")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	docData, err := snapshotDoctor(doctor)
	if err != nil {
		return nil, err
	}
	userData, err := model.NewSnapshot(user)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		Base:     model.Base{ID: uuid.New()},
		UserID:   userID,
		DocID:    docID,
		UserData: userData,
		DocData:  docData,
		SlotDate: slotDate,
		SlotTime: slotTime,
		Amount:   doctor.Fees,
	}

	event, err := appointmentEvent(model.EventAppointmentBooked, apt, user, doctor)
	if err != nil {
		return nil, err
	}

	if err := s.appointments.Book(ctx, apt, event); err != nil {
		return nil, err
	}
	return apt, nil
}

// CancelForUser is the self-service path: only the booking user may
// cancel. Re-cancelling is permitted and reports success; the slot
// release is a no-op the second time.
func (s *Service) CancelForUser(ctx context.Context, userID, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	if apt.UserID != userID {
		return apperrors.Unauthorized("unauthorized user")
	}
	return s.cancel(ctx, apt)
}

// CancelForDoctor lets a doctor cancel appointments booked with them.
func (s *Service) CancelForDoctor(ctx context.Context, docID, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	if apt.DocID != docID {
		return apperrors.Unauthorized("cancellation failed")
	}
	return s.cancel(ctx, apt)
}

// CancelOverride is the admin path: no ownership rule.
func (s *Service) CancelOverride(ctx context.Context, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	return s.cancel(ctx, apt)
}

func (s *Service) cancel(ctx context.Context, apt *model.Appointment) error {
	var user model.User
	if err := json.Unmarshal(apt.UserData, &user); err != nil {
		return fmt.Errorf("failed to read user snapshot: %w", err)
	}
	var doctor model.Doctor
	if err := json.Unmarshal(apt.DocData, &doctor); err != nil {
		return fmt.Errorf("failed to read doctor snapshot: %w", err)
	}

	event, err := appointmentEvent(model.EventAppointmentCancelled, apt, &user, &doctor)
	if err != nil {
		return err
	}
	return s.appointments.Cancel(ctx, apt, event)
}

// Complete marks the appointment finished. Only the doctor it was booked
// with may complete it. Completion and cancellation are independent
// flags; neither clears the other.
func (s *Service) Complete(ctx context.Context, docID, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	if apt.DocID != docID {
		return apperrors.Unauthorized("unauthorized user")
	}
	return s.appointments.SetCompleted(ctx, appointmentID)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

func (s *Service) ListForDoctor(ctx context.Context, docID uuid.UUID) ([]*model.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, docID)
}

func (s *Service) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	return s.appointments.ListAll(ctx)
}

// AdminDashboard aggregates platform-wide counts and the latest bookings.
func (s *Service) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	doctors, err := s.doctors.Count(ctx)
	if err != nil {
		return nil, err
	}
	patients, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	latest := appointments
	if len(latest) > latestDashboard {
		latest = latest[:latestDashboard]
	}

	return &model.AdminDashboard{
		Doctors:            doctors,
		Patients:           patients,
		Appointments:       len(appointments),
		LatestAppointments: latest,
	}, nil
}

// DoctorDashboard aggregates one doctor's earnings and patient counts.
// Earnings count appointments that are completed or paid.
func (s *Service) DoctorDashboard(ctx context.Context, docID uuid.UUID) (*model.DoctorDashboard, error) {
	appointments, err := s.appointments.ListByDoctor(ctx, docID)
	if err != nil {
		return nil, err
	}

	var earnings float64
	patients := make(map[uuid.UUID]struct{})
	for _, apt := range appointments {
		if apt.IsCompleted || apt.Payment {
			earnings += apt.Amount
		}
		patients[apt.UserID] = struct{}{}
	}

	latest := appointments
	if len(latest) > latestDashboard {
		latest = latest[:latestDashboard]
	}

	return &model.DoctorDashboard{
		Earnings:           earnings,
		Appointments:       len(appointments),
		Patients:           len(patients),
		LatestAppointments: latest,
	}, nil
}

// snapshotDoctor captures the doctor for the receipt, minus credentials
// and the live slot map.
func snapshotDoctor(doctor *model.Doctor) (model.Snapshot, error) {
	copied := *doctor
	copied.PasswordHash = ""
	copied.SlotsBooked = nil
	return model.NewSnapshot(copied)
}

func appointmentEvent(eventType string, apt *model.Appointment, user *model.User, doctor *model.Doctor) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(model.AppointmentEvent{
		AppointmentID: apt.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		DoctorName:    doctor.Name,
		SlotDate:      apt.SlotDate,
		SlotTime:      apt.SlotTime,
		Amount:        apt.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &model.OutboxEvent{EventType: eventType, Payload: payload}, nil
}
