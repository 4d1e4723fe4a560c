package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbook/docbook-api/internal/model"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	f.doctors[d.ID] = d
	return nil
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor")
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, apperrors.NotFound("doctor")
}

func (f *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	out := make([]*model.Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDoctorRepo) ListAvailableBySpeciality(_ context.Context, speciality string) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range f.doctors {
		if d.Available && d.Speciality == speciality {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDoctorRepo) UpdateProfile(context.Context, uuid.UUID, *model.UpdateDoctorProfileRequest) error {
	return nil
}

func (f *fakeDoctorRepo) ToggleAvailability(_ context.Context, id uuid.UUID) error {
	f.doctors[id].Available = !f.doctors[id].Available
	return nil
}

func (f *fakeDoctorRepo) Count(_ context.Context) (int, error) { return len(f.doctors), nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (f *fakeUserRepo) UpdateProfile(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) Count(_ context.Context) (int, error) { return len(f.users), nil }

// fakeAppointmentRepo mirrors the transactional repository: Book claims
// the slot in the doctor's map, Cancel releases it.
type fakeAppointmentRepo struct {
	doctors      *fakeDoctorRepo
	appointments map[uuid.UUID]*model.Appointment
	events       []*model.OutboxEvent
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment")
	}
	return apt, nil
}

func (f *fakeAppointmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.UserID == userID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByDoctor(_ context.Context, docID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.DocID == docID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListAll(_ context.Context) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		out = append(out, apt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Book(_ context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	doctor, ok := f.doctors.doctors[apt.DocID]
	if !ok {
		return apperrors.NotFound("doctor")
	}
	if !doctor.Available {
		return apperrors.Conflict("doctor not available")
	}
	if doctor.SlotsBooked.Contains(apt.SlotDate, apt.SlotTime) {
		return apperrors.Conflict("slot already booked")
	}
	if doctor.SlotsBooked == nil {
		doctor.SlotsBooked = model.SlotsBooked{}
	}
	doctor.SlotsBooked[apt.SlotDate] = append(doctor.SlotsBooked[apt.SlotDate], apt.SlotTime)
	f.appointments[apt.ID] = apt
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAppointmentRepo) Cancel(_ context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	apt.Cancelled = true
	if doctor, ok := f.doctors.doctors[apt.DocID]; ok {
		times := doctor.SlotsBooked[apt.SlotDate]
		kept := times[:0]
		for _, t := range times {
			if t != apt.SlotTime {
				kept = append(kept, t)
			}
		}
		doctor.SlotsBooked[apt.SlotDate] = kept
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAppointmentRepo) SetCompleted(_ context.Context, id uuid.UUID) error {
	apt, ok := f.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment")
	}
	apt.IsCompleted = true
	return nil
}

func newTestService(now time.Time) (*Service, *fakeDoctorRepo, *fakeUserRepo, *fakeAppointmentRepo) {
	doctors := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{}}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	appointments := &fakeAppointmentRepo{doctors: doctors, appointments: map[uuid.UUID]*model.Appointment{}}

	svc := NewService(appointments, doctors, users)
	svc.now = func() time.Time { return now }
	return svc, doctors, users, appointments
}

func seedDoctor(doctors *fakeDoctorRepo) *model.Doctor {
	d := &model.Doctor{
		Base:        model.Base{ID: uuid.New()},
		Name:        "Dr. Richard James",
		Email:       "richard@docbook.dev",
		Speciality:  "General physician",
		Fees:        50,
		Available:   true,
		SlotsBooked: model.SlotsBooked{},
	}
	doctors.doctors[d.ID] = d
	return d
}

func seedUser(users *fakeUserRepo) *model.User {
	u := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Name:  "Jane Roe",
		Email: "jane@example.com",
	}
	users.users[u.ID] = u
	return u
}

func TestDateKey(t *testing.T) {
	day := time.Date(2025, time.June, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "5-6-2025", DateKey(day))

	day = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "31-12-2025", DateKey(day))
}

func TestTimeLabel(t *testing.T) {
	assert.Equal(t, "10:00 AM", TimeLabel(time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "01:30 PM", TimeLabel(time.Date(2025, 6, 5, 13, 30, 0, 0, time.UTC)))
	assert.Equal(t, "06:00 PM", TimeLabel(time.Date(2025, 6, 5, 18, 0, 0, 0, time.UTC)))
}

func TestAvailableSlotsFullGrid(t *testing.T) {
	// Before opening, so day one carries the full grid.
	now := time.Date(2025, time.June, 5, 8, 0, 0, 0, time.UTC)
	svc, doctors, _, _ := newTestService(now)
	doc := seedDoctor(doctors)

	grid, err := svc.AvailableSlots(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, grid, 7)

	// 10:00 through 18:00 inclusive at 30 minutes is 17 slots.
	for _, day := range grid {
		assert.Len(t, day, 17)
	}
	assert.Equal(t, "10:00 AM", grid[0][0].Time)
	assert.Equal(t, "06:00 PM", grid[0][16].Time)
}

func TestAvailableSlotsExcludesBooked(t *testing.T) {
	now := time.Date(2025, time.June, 5, 8, 0, 0, 0, time.UTC)
	svc, doctors, _, _ := newTestService(now)
	doc := seedDoctor(doctors)
	doc.SlotsBooked["5-6-2025"] = []string{"10:00 AM"}

	grid, err := svc.AvailableSlots(context.Background(), doc.ID)
	require.NoError(t, err)

	require.Len(t, grid[0], 16)
	assert.Equal(t, "10:30 AM", grid[0][0].Time)
	// Other days are unaffected.
	assert.Len(t, grid[1], 17)
}

func TestAvailableSlotsSkipsPastSlotsToday(t *testing.T) {
	// 13:10 rounds up to the 13:30 boundary.
	now := time.Date(2025, time.June, 5, 13, 10, 0, 0, time.UTC)
	svc, doctors, _, _ := newTestService(now)
	doc := seedDoctor(doctors)

	grid, err := svc.AvailableSlots(context.Background(), doc.ID)
	require.NoError(t, err)

	require.NotEmpty(t, grid[0])
	assert.Equal(t, "01:30 PM", grid[0][0].Time)
	assert.Len(t, grid[1], 17)
}

func TestAvailableSlotsUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newTestService(time.Now())

	_, err := svc.AvailableSlots(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestBook(t *testing.T) {
	svc, doctors, users, repo := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	assert.Equal(t, doc.Fees, apt.Amount)
	assert.True(t, doc.SlotsBooked.Contains("5-6-2025", "10:00 AM"))

	// Snapshots must not leak credentials or the live slot map.
	assert.NotContains(t, string(apt.DocData), "password_hash")
	assert.NotContains(t, string(apt.DocData), "slots_booked")
	assert.NotContains(t, string(apt.UserData), "password_hash")

	require.Len(t, repo.events, 1)
	assert.Equal(t, model.EventAppointmentBooked, repo.events[0].EventType)
}

func TestBookSlotTaken(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	_, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "slot already booked")

	// Same doctor, different time still works.
	_, err = svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:30 AM")
	assert.NoError(t, err)
}

func TestBookDoctorUnavailable(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	doc.Available = false
	usr := seedUser(users)

	_, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor not available")
}

func TestBookUnknownDoctor(t *testing.T) {
	svc, _, users, _ := newTestService(time.Now())
	usr := seedUser(users)

	_, err := svc.Book(context.Background(), usr.ID, uuid.New(), "5-6-2025", "10:00 AM")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCancelForUser(t *testing.T) {
	svc, doctors, users, repo := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	require.NoError(t, svc.CancelForUser(context.Background(), usr.ID, apt.ID))
	assert.True(t, apt.Cancelled)
	assert.False(t, doc.SlotsBooked.Contains("5-6-2025", "10:00 AM"))

	require.Len(t, repo.events, 2)
	assert.Equal(t, model.EventAppointmentCancelled, repo.events[1].EventType)

	// The freed slot can be booked again.
	_, err = svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	assert.NoError(t, err)
}

func TestCancelForUserRepeat(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)
	require.NoError(t, svc.CancelForUser(context.Background(), usr.ID, apt.ID))

	// Cancelling again still reports success; the appointment stays
	// cancelled and releasing the already-freed slot changes nothing.
	require.NoError(t, svc.CancelForUser(context.Background(), usr.ID, apt.ID))
	assert.True(t, apt.Cancelled)
	assert.False(t, doc.SlotsBooked.Contains("5-6-2025", "10:00 AM"))
	assert.Empty(t, doc.SlotsBooked["5-6-2025"])
}

func TestCancelForUserWrongOwner(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)
	other := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	err = svc.CancelForUser(context.Background(), other.ID, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.False(t, apt.Cancelled)
}

func TestCancelForDoctorWrongDoctor(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	err = svc.CancelForDoctor(context.Background(), uuid.New(), apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestCancelOverride(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	require.NoError(t, svc.CancelOverride(context.Background(), apt.ID))
	assert.True(t, apt.Cancelled)
}

func TestComplete(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	apt, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), doc.ID, apt.ID))
	assert.True(t, apt.IsCompleted)

	err = svc.Complete(context.Background(), uuid.New(), apt.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestAdminDashboard(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)

	for _, slot := range []string{"10:00 AM", "10:30 AM", "11:00 AM"} {
		_, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", slot)
		require.NoError(t, err)
	}

	dash, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, dash.Doctors)
	assert.Equal(t, 1, dash.Patients)
	assert.Equal(t, 3, dash.Appointments)
	assert.Len(t, dash.LatestAppointments, 3)
}

func TestDoctorDashboardEarnings(t *testing.T) {
	svc, doctors, users, _ := newTestService(time.Now())
	doc := seedDoctor(doctors)
	usr := seedUser(users)
	other := seedUser(users)

	completed, err := svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "10:00 AM")
	require.NoError(t, err)
	require.NoError(t, svc.Complete(context.Background(), doc.ID, completed.ID))

	paid, err := svc.Book(context.Background(), other.ID, doc.ID, "5-6-2025", "10:30 AM")
	require.NoError(t, err)
	paid.Payment = true

	// Pending appointment contributes nothing to earnings.
	_, err = svc.Book(context.Background(), usr.ID, doc.ID, "5-6-2025", "11:00 AM")
	require.NoError(t, err)

	dash, err := svc.DoctorDashboard(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(100), dash.Earnings)
	assert.Equal(t, 3, dash.Appointments)
	assert.Equal(t, 2, dash.Patients)
}
