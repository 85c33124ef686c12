package models

import "time"

// TVStatus tracks the tele-verification sub-record lifecycle.
type TVStatus string

const (
	TVStatusAssigned TVStatus = "ASSIGNED"
	TVStatusPending  TVStatus = "PENDING"
	TVStatusVerified TVStatus = "VERIFIED"
	TVStatusRejected TVStatus = "REJECTED"
)

// TVSuggestion is the TV volunteer's forward recommendation, reviewed by the
// admin before the student moves to physical verification.
type TVSuggestion string

const (
	TVSuggestionSelect TVSuggestion = "SELECT"
	TVSuggestionReject TVSuggestion = "REJECT"
	TVSuggestionOnHold TVSuggestion = "ON_HOLD"
)

// TeleVerification is the phone-call verification record. A student has at
// most one row; reassignment overwrites the volunteer in place.
type TeleVerification struct {
	TeleID           int64        `db:"tele_id" json:"teleId"`
	StudentID        string       `db:"student_id" json:"studentId"`
	VolunteerID      string       `db:"volunteer_id" json:"volunteerId"`
	Status           TVStatus     `db:"status" json:"status"`
	Comments         *string      `db:"comments" json:"comments,omitempty"`
	Suggestion       *TVSuggestion `db:"suggestion" json:"suggestion,omitempty"`
	VerificationDate *time.Time   `db:"verification_date" json:"verificationDate,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// TVReportView joins a submitted TV report with student and volunteer names
// for the admin review queue.
type TVReportView struct {
	TeleVerification
	StudentName   string `db:"student_name" json:"studentName"`
	District      string `db:"district" json:"district"`
	VolunteerName string `db:"volunteer_name" json:"volunteerName"`
}

// AssignedStudentView lists a stage assignment with basic student fields for
// a volunteer's queue.
type AssignedStudentView struct {
	StudentID string  `db:"student_id" json:"studentId"`
	Name      string  `db:"name" json:"name"`
	Phone     string  `db:"phone" json:"phone"`
	District  string  `db:"district" json:"district"`
	Status    *string `db:"status" json:"status,omitempty"`
}

// StageStats summarises a volunteer's or stage's workload.
type StageStats struct {
	TotalAssigned int `db:"total_assigned" json:"total_assigned"`
	Completed     int `db:"completed" json:"completed"`
	Pending       int `db:"pending" json:"pending"`
}
