package models

import "time"

// EducationalDetails captures the college placement of a SELECTED student.
// One row per student; resubmission updates in place.
type EducationalDetails struct {
	ID            int64     `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"studentId"`
	CollegeName   string    `db:"college_name" json:"collegeName"`
	Degree        string    `db:"degree" json:"degree"`
	Stream        string    `db:"stream" json:"stream"`
	Branch        string    `db:"branch" json:"branch"`
	YearOfPassing int       `db:"year_of_passing" json:"yearOfPassing"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ScholarshipDetails records the scholarship grant particulars for an
// approved student. Upsert semantics, keyed by student.
type ScholarshipDetails struct {
	ID            int64      `db:"id" json:"id"`
	StudentID     string     `db:"student_id" json:"studentId"`
	Batch         string     `db:"batch" json:"batch"`
	College       string     `db:"college" json:"college"`
	Branch        string     `db:"branch" json:"branch"`
	Stream        string     `db:"stream" json:"stream"`
	AdmissionDate *time.Time `db:"admission_date" json:"admissionDate,omitempty"`
	Remarks       string     `db:"remarks" json:"remarks"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// SelectedStudentView lists a decided student with their educational details
// for the selected-students dashboard and exports.
type SelectedStudentView struct {
	StudentID         string         `db:"student_id" json:"studentId"`
	Name              string         `db:"name" json:"name"`
	District          string         `db:"district" json:"district"`
	Phone             string         `db:"phone" json:"phone"`
	Email             string         `db:"email" json:"email"`
	FinalDecision     *FinalDecision `db:"final_decision" json:"finalDecision,omitempty"`
	FinalDecisionDate *time.Time     `db:"final_decision_date" json:"finalDecisionDate,omitempty"`
	CollegeName       *string        `db:"college_name" json:"collegeName,omitempty"`
	Degree            *string        `db:"degree" json:"degree,omitempty"`
	Stream            *string        `db:"stream" json:"stream,omitempty"`
	Branch            *string        `db:"branch" json:"branch,omitempty"`
	YearOfPassing     *int           `db:"year_of_passing" json:"yearOfPassing,omitempty"`
}

// StudentProfile is the full cross-stage profile assembled for the
// superadmin profile view.
type StudentProfile struct {
	Student   Student               `json:"student"`
	TV        *TeleVerification     `json:"tv,omitempty"`
	PV        *PhysicalVerification `json:"pv,omitempty"`
	VI        *VirtualInterview     `json:"vi,omitempty"`
	RI        *RealInterview        `json:"ri,omitempty"`
	Education *EducationalDetails   `json:"education,omitempty"`
}
