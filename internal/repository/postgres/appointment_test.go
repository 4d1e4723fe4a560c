package postgres

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbook/docbook-api/internal/model"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func testAppointment() *model.Appointment {
	return &model.Appointment{
		Base:     model.Base{ID: uuid.New()},
		UserID:   uuid.New(),
		DocID:    uuid.New(),
		UserData: model.Snapshot(`{"name":"Jane"}`),
		DocData:  model.Snapshot(`{"name":"Dr. James"}`),
		SlotDate: "5-6-2025",
		SlotTime: "10:00 AM",
		Amount:   50,
	}
}

func testEvent() *model.OutboxEvent {
	return &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   json.RawMessage(`{}`),
	}
}

func TestBookClaimsSlotAndWritesOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	apt := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Book(context.Background(), apt, testEvent())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotAlreadyTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	apt := testAppointment()

	slots, _ := json.Marshal(map[string][]string{"5-6-2025": {"10:00 AM"}})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available, slots_booked FROM doctors").
		WillReturnRows(sqlmock.NewRows([]string{"available", "slots_booked"}).AddRow(true, slots))
	mock.ExpectRollback()

	err := repo.Book(context.Background(), apt, testEvent())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "slot already booked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookDoctorUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	apt := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available, slots_booked FROM doctors").
		WillReturnRows(sqlmock.NewRows([]string{"available", "slots_booked"}).AddRow(false, []byte(`{}`)))
	mock.ExpectRollback()

	err := repo.Book(context.Background(), apt, testEvent())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "doctor not available")
}

func TestBookUnknownDoctor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	apt := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available, slots_booked FROM doctors").
		WillReturnRows(sqlmock.NewRows([]string{"available", "slots_booked"}))
	mock.ExpectRollback()

	err := repo.Book(context.Background(), apt, testEvent())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCancelReleasesSlot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	apt := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments SET cancelled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE doctors").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	event := testEvent()
	event.EventType = model.EventAppointmentCancelled

	err := repo.Cancel(context.Background(), apt, event)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCompletedNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("UPDATE appointments SET is_completed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetCompleted(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
