package models

import "time"

// VIStatus tracks the virtual-interview sub-record lifecycle.
type VIStatus string

const (
	VIStatusPending        VIStatus = "PENDING"
	VIStatusRecommended    VIStatus = "RECOMMENDED"
	VIStatusNotRecommended VIStatus = "NOT_RECOMMENDED"
	VIStatusOnHold         VIStatus = "ON_HOLD"
)

// Terminal reports whether the interview has been submitted; terminal
// records are excluded from the assignable pool.
func (s VIStatus) Terminal() bool {
	return s == VIStatusRecommended || s == VIStatusNotRecommended || s == VIStatusOnHold
}

// VIRecommendation is the interviewer's verdict.
type VIRecommendation string

const (
	VIRecommendationSelect VIRecommendation = "SELECT"
	VIRecommendationReject VIRecommendation = "REJECT"
	VIRecommendationOnHold VIRecommendation = "ON_HOLD"
)

// VirtualInterview is the remote interview record. One row per student;
// reassignment overwrites the volunteer and resets the status to PENDING.
type VirtualInterview struct {
	VIID                  int64      `db:"vi_id" json:"viId"`
	StudentID             string     `db:"student_id" json:"studentId"`
	VolunteerID           string     `db:"volunteer_id" json:"volunteerId"`
	AssignedDate          time.Time  `db:"assigned_date" json:"assignedDate"`
	InterviewDate         *time.Time `db:"interview_date" json:"interviewDate,omitempty"`
	Status                VIStatus   `db:"status" json:"status"`
	OverallRecommendation *string    `db:"overall_recommendation" json:"overallRecommendation,omitempty"`
	Comments              *string    `db:"comments" json:"comments,omitempty"`
}

// RIStatus tracks the real-interview sub-record lifecycle. The interview
// itself happens offline; COMPLETED is recorded when the superadmin enters
// the paper outcome at final-decision time.
type RIStatus string

const (
	RIStatusPending   RIStatus = "PENDING"
	RIStatusCompleted RIStatus = "COMPLETED"
)

// RealInterview is the in-person interview record.
type RealInterview struct {
	RIID                  int64      `db:"ri_id" json:"riId"`
	StudentID             string     `db:"student_id" json:"studentId"`
	VolunteerID           string     `db:"volunteer_id" json:"volunteerId"`
	AssignedDate          time.Time  `db:"assigned_date" json:"assignedDate"`
	InterviewDate         *time.Time `db:"interview_date" json:"interviewDate,omitempty"`
	Status                RIStatus   `db:"status" json:"status"`
	OverallRecommendation *string    `db:"overall_recommendation" json:"overallRecommendation,omitempty"`
	Remarks               *string    `db:"remarks" json:"remarks,omitempty"`
}

// InterviewAssignmentView joins an interview assignment with student and
// volunteer identity for superadmin dashboards.
type InterviewAssignmentView struct {
	StudentID      string     `db:"student_id" json:"studentId"`
	StudentName    string     `db:"student_name" json:"studentName"`
	District       string     `db:"district" json:"district"`
	Phone          string     `db:"phone" json:"phone"`
	VolunteerID    *string    `db:"volunteer_id" json:"assigned_volunteer_id,omitempty"`
	VolunteerName  *string    `db:"volunteer_name" json:"volunteer_name,omitempty"`
	VolunteerEmail *string    `db:"volunteer_email" json:"volunteer_email,omitempty"`
	AssignedDate   *time.Time `db:"assigned_date" json:"assignedDate,omitempty"`
	InterviewDate  *time.Time `db:"interview_date" json:"interviewDate,omitempty"`
	Status         *string    `db:"status" json:"status,omitempty"`
	Recommendation *string    `db:"recommendation" json:"recommendation,omitempty"`
	Comments       *string    `db:"comments" json:"comments,omitempty"`
}

// RIStats summarises the real-interview pipeline for the dashboard.
type RIStats struct {
	Eligible  int `json:"eligible"`
	Assigned  int `json:"assigned"`
	Completed int `json:"completed"`
}
