package domain

import "time"

// Doctor represents a listed practitioner. Photo holds an opaque encoded
// image payload (data URL) when one was uploaded.
type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Phone          string `json:"phone"`
	Bio            string `json:"bio,omitempty"`
	Photo          string `json:"photo,omitempty"`
}

// AppointmentStatusConfirmed is the only status ever written. There is no
// pending/completed state machine.
const AppointmentStatusConfirmed = "confirmed"

// Appointment links a user to a doctor for a calendar date and time slot.
// Date is a plain "2006-01-02" calendar day with no time zone semantics.
// DoctorID is resolved by lookup at read time; deleting a doctor leaves
// existing appointments orphaned.
type Appointment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DoctorID  string    `json:"doctorId"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"timeSlot"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
