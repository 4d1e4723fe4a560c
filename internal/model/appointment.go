package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a receipt-style record of one booking. UserData and
// DocData are snapshots captured at booking time and go stale when the
// profiles are later edited. The three flags are independent; rows are
// never deleted.
type Appointment struct {
	Base
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	DocID       uuid.UUID `db:"doc_id" json:"docId"`
	UserData    Snapshot  `db:"user_data" json:"userData"`
	DocData     Snapshot  `db:"doc_data" json:"docData"`
	SlotDate    string    `db:"slot_date" json:"slotDate"`
	SlotTime    string    `db:"slot_time" json:"slotTime"`
	Amount      float64   `db:"amount" json:"amount"`
	Cancelled   bool      `db:"cancelled" json:"cancelled"`
	IsCompleted bool      `db:"is_completed" json:"isCompleted"`
	Payment     bool      `db:"payment" json:"payment"`
	BookedAt    time.Time `db:"booked_at" json:"date"`
}

type BookAppointmentRequest struct {
	DocID    string `json:"docId" binding:"required,uuid"`
	SlotDate string `json:"slotDate" binding:"required,slotdate"`
	SlotTime string `json:"slotTime" binding:"required,slottime"`
}

type CancelAppointmentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`
}

type CompleteAppointmentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`
}

// Slot is one bookable 30-minute unit offered to the client.
type Slot struct {
	Datetime time.Time `json:"datetime"`
	Time     string    `json:"time"`
}

// DaySlots is the ordered slot list for a single calendar day; it may be
// empty when every slot of that day is taken.
type DaySlots []Slot

// AdminDashboard aggregates the admin panel figures.
type AdminDashboard struct {
	Doctors            int            `json:"doctors"`
	Patients           int            `json:"patients"`
	Appointments       int            `json:"appointments"`
	LatestAppointments []*Appointment `json:"latestAppointments"`
}
