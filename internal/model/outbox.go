package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Outbox event types emitted by the booking service.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentEvent is the payload published for booking and cancellation.
type AppointmentEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	DoctorName    string    `json:"doctor_name"`
	SlotDate      string    `json:"slot_date"`
	SlotTime      string    `json:"slot_time"`
	Amount        float64   `json:"amount"`
}
