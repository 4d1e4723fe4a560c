package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SlotsBooked maps a date key (D-M-YYYY, non-zero-padded) to the list of
// occupied slot times (hh:mm AM/PM) on that date. It is the single source
// of truth for slot occupancy; appointment rows are derived receipts.
type SlotsBooked map[string][]string

func (s SlotsBooked) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *SlotsBooked) Scan(src interface{}) error {
	if src == nil {
		*s = SlotsBooked{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SlotsBooked", src)
	}
	return json.Unmarshal(b, s)
}

// Contains reports whether the given slot is already occupied.
func (s SlotsBooked) Contains(slotDate, slotTime string) bool {
	for _, t := range s[slotDate] {
		if t == slotTime {
			return true
		}
	}
	return false
}

type Doctor struct {
	Base
	Name         string      `db:"name" json:"name"`
	Email        string      `db:"email" json:"email,omitempty"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Speciality   string      `db:"speciality" json:"speciality"`
	Degree       string      `db:"degree" json:"degree"`
	Experience   string      `db:"experience" json:"experience"`
	About        string      `db:"about" json:"about"`
	Fees         float64     `db:"fees" json:"fees"`
	Address      JSONMap     `db:"address" json:"address"`
	Image        string      `db:"image" json:"image"`
	Available    bool        `db:"available" json:"available"`
	SlotsBooked  SlotsBooked `db:"slots_booked" json:"slots_booked,omitempty"`
}

type AddDoctorRequest struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	Speciality string  `json:"speciality" binding:"required"`
	Degree     string  `json:"degree" binding:"required"`
	Experience string  `json:"experience" binding:"required"`
	About      string  `json:"about" binding:"required"`
	Fees       float64 `json:"fees" binding:"required,gt=0"`
	Address    JSONMap `json:"address"`
	Image      string  `json:"image"`
}

type UpdateDoctorProfileRequest struct {
	Fees      *float64 `json:"fees" binding:"omitempty,gt=0"`
	Address   JSONMap  `json:"address"`
	Available *bool    `json:"available"`
}

type ChangeAvailabilityRequest struct {
	DocID string `json:"docId" binding:"required,uuid"`
}

type MatchSpecialityRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
}

type DoctorLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// DoctorDashboard aggregates the doctor panel figures. Earnings count
// appointments that are completed or paid.
type DoctorDashboard struct {
	Earnings           float64        `json:"earning"`
	Appointments       int            `json:"appointments"`
	Patients           int            `json:"patients"`
	LatestAppointments []*Appointment `json:"latestAppointments"`
}
