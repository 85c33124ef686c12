package models

import "time"

// PVStatus tracks the physical-verification sub-record lifecycle. ASSIGNED
// and PROCESSING are transient; the final statuses mirror the volunteer's
// recommendation once the analysis pipeline completes.
type PVStatus string

const (
	PVStatusAssigned   PVStatus = "ASSIGNED"
	PVStatusProcessing PVStatus = "PROCESSING"
	PVStatusSelect     PVStatus = "SELECT"
	PVStatusReject     PVStatus = "REJECT"
	PVStatusOnHold     PVStatus = "ON_HOLD"
)

// PVRecommendation is the field volunteer's verdict from the home visit.
type PVRecommendation string

const (
	PVRecommendationSelect PVRecommendation = "SELECT_FOR_SCHOLARSHIP"
	PVRecommendationReject PVRecommendation = "REJECT"
	PVRecommendationOnHold PVRecommendation = "ON_HOLD"
)

// FinalStatus maps a recommendation to the PV status recorded after the
// analysis pipeline finishes.
func (r PVRecommendation) FinalStatus() PVStatus {
	switch r {
	case PVRecommendationSelect:
		return PVStatusSelect
	case PVRecommendationReject:
		return PVStatusReject
	default:
		return PVStatusOnHold
	}
}

// PhysicalVerification is the in-person home visit record, enriched by the
// external sentiment/summary analysis after submission.
type PhysicalVerification struct {
	PVID             int64      `db:"pv_id" json:"pvId"`
	StudentID        string     `db:"student_id" json:"studentId"`
	VolunteerID      string     `db:"volunteer_id" json:"volunteerId"`
	Status           PVStatus   `db:"status" json:"status"`
	PropertyType     *string    `db:"property_type" json:"propertyType,omitempty"`
	WhatYouSaw       *string    `db:"what_you_saw" json:"whatYouSaw,omitempty"`
	Comment          *string    `db:"comment" json:"comment,omitempty"`
	Sentiment        *string    `db:"sentiment" json:"sentiment,omitempty"`
	SentimentScore   *float64   `db:"sentiment_score" json:"sentimentScore,omitempty"`
	ElementsSummary  *string    `db:"elements_summary" json:"elementsSummary,omitempty"`
	AudioURL         *string    `db:"audio_url" json:"audioUrl,omitempty"`
	VerificationDate *time.Time `db:"verification_date" json:"verificationDate,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// InProgress reports whether the record is still awaiting a volunteer report
// or pipeline completion.
func (pv *PhysicalVerification) InProgress() bool {
	if pv == nil {
		return false
	}
	return pv.Status == PVStatusAssigned || pv.Status == PVStatusProcessing
}

// PVReportView joins a completed PV report with student fields for the admin
// review queue.
type PVReportView struct {
	PhysicalVerification
	StudentName   string        `db:"student_name" json:"studentName"`
	District      string        `db:"district" json:"district"`
	StudentStatus StudentStatus `db:"student_status" json:"studentStatus"`
	VolunteerName string        `db:"volunteer_name" json:"volunteerName"`
}
