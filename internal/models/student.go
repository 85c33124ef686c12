package models

import "time"

// StudentStatus is the application-level stage tag on a student record.
// It moves forward only: NEW → TV → PV → PENDING → APPROVED | REJECTED.
type StudentStatus string

const (
	StudentStatusNew      StudentStatus = "NEW"
	StudentStatusTV       StudentStatus = "TV"
	StudentStatusPV       StudentStatus = "PV"
	StudentStatusPending  StudentStatus = "PENDING"
	StudentStatusApproved StudentStatus = "APPROVED"
	StudentStatusRejected StudentStatus = "REJECTED"
)

// FinalDecision values recorded by the superadmin at the end of the pipeline.
type FinalDecision string

const (
	FinalDecisionSelected FinalDecision = "SELECTED"
	FinalDecisionRejected FinalDecision = "REJECTED"
)

// Student represents a scholarship applicant moving through the review
// pipeline. Applications are created upstream and never deleted here.
type Student struct {
	StudentID         string        `db:"student_id" json:"studentId"`
	Name              string        `db:"name" json:"name"`
	District          string        `db:"district" json:"district"`
	Phone             string        `db:"phone" json:"phone"`
	Email             string        `db:"email" json:"email"`
	Gender            string        `db:"gender" json:"gender"`
	Status            StudentStatus `db:"status" json:"status"`
	AdminRemarks      *string       `db:"admin_remarks" json:"admin_remarks,omitempty"`
	Selected          bool          `db:"selected" json:"selected"`
	FinalDecision     *FinalDecision `db:"final_decision" json:"finalDecision,omitempty"`
	FinalRemarks      *string       `db:"final_remarks" json:"finalRemarks,omitempty"`
	FinalDecisionDate *time.Time    `db:"final_decision_date" json:"finalDecisionDate,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for the student listings.
type StudentFilter struct {
	Status   StudentStatus
	District string
	Search   string
	Page     int
	PageSize int
}

// Marks holds a per-student academic marks bundle (10th or 12th standard).
type Marks struct {
	StudentID  string  `db:"student_id" json:"studentId"`
	Standard   string  `db:"standard" json:"standard"`
	Board      string  `db:"board" json:"board"`
	School     string  `db:"school" json:"school"`
	Percentage float64 `db:"percentage" json:"percentage"`
	YearOfPass int     `db:"year_of_pass" json:"yearOfPass"`
}

// StudentBundle is the full detail view returned to reviewers: the student
// plus every stage record accumulated so far.
type StudentBundle struct {
	Student  Student               `json:"student"`
	TV       *TeleVerification     `json:"tv,omitempty"`
	PV       *PhysicalVerification `json:"pv,omitempty"`
	Marks10  *Marks                `json:"marks10,omitempty"`
	Marks12  *Marks                `json:"marks12,omitempty"`
	Images   []ImageView           `json:"images"`
	AudioURL *string               `json:"audio_url,omitempty"`
}
