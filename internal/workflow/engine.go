// Package workflow centralizes the student application state machine.
//
// Every dashboard and service derives stage membership and transition
// legality from this single package instead of re-filtering raw status
// fields, so the pipeline ordering (TV → PV → admin review → VI → RI →
// final decision → educational capture) is enforced in exactly one place.
package workflow

import (
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"

	"github.com/maatram/scholarship-review-api/internal/models"
)

// Stage is the coarse position of a student application in the pipeline.
type Stage string

const (
	StageNew               Stage = "NEW"
	StageTVPending         Stage = "TV_PENDING"
	StageTVReviewed        Stage = "TV_REVIEWED"
	StagePVPending         Stage = "PV_PENDING"
	StagePVProcessing      Stage = "PV_PROCESSING"
	StagePVReviewed        Stage = "PV_REVIEWED"
	StageAdminApproved     Stage = "ADMIN_APPROVED"
	StageVIPending         Stage = "VI_PENDING"
	StageVIReviewed        Stage = "VI_REVIEWED"
	StageRIPending         Stage = "RI_PENDING"
	StageFinalDecided      Stage = "FINAL_DECIDED"
	StageEducationCaptured Stage = "EDUCATION_CAPTURED"
	StageRejected          Stage = "REJECTED"
)

// Snapshot is the per-student view of all stage sub-records the engine
// needs to derive the current stage and validate transitions.
type Snapshot struct {
	Student        models.Student
	TV             *models.TeleVerification
	PV             *models.PhysicalVerification
	AcceptedImages int
	VI             *models.VirtualInterview
	RI             *models.RealInterview
	Education      *models.EducationalDetails
}

// StageOf derives the current stage from a snapshot. The derivation walks
// the pipeline back to front so later records always win.
func StageOf(s Snapshot) Stage {
	if s.Student.Status == models.StudentStatusRejected {
		return StageRejected
	}
	if s.Education != nil {
		return StageEducationCaptured
	}
	if s.Student.FinalDecision != nil {
		return StageFinalDecided
	}
	if s.RI != nil {
		return StageRIPending
	}
	if s.VI != nil {
		if s.VI.Status.Terminal() {
			return StageVIReviewed
		}
		return StageVIPending
	}
	if s.Student.Status == models.StudentStatusApproved {
		return StageAdminApproved
	}
	if s.PV != nil {
		switch s.PV.Status {
		case models.PVStatusAssigned:
			return StagePVPending
		case models.PVStatusProcessing:
			return StagePVProcessing
		default:
			return StagePVReviewed
		}
	}
	if s.Student.Status == models.StudentStatusPV {
		// Admin selected the TV report; waiting for a PV volunteer.
		return StageTVReviewed
	}
	if s.TV != nil {
		switch s.TV.Status {
		case models.TVStatusVerified, models.TVStatusRejected:
			return StageTVReviewed
		default:
			return StageTVPending
		}
	}
	return StageNew
}

// Rejected reports whether the application is in a terminal rejected state.
// Rejected students stay queryable but accept no further transitions.
func Rejected(s Snapshot) bool {
	return StageOf(s) == StageRejected
}

// CanAssignTV validates rule: NEW students enter the tele-verification
// queue via admin assignment.
func CanAssignTV(s Snapshot) error {
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	if s.TV != nil && (s.TV.Status == models.TVStatusVerified || s.TV.Status == models.TVStatusRejected) {
		return appErrors.Clone(appErrors.ErrStageConflict, "tele-verification already submitted")
	}
	return nil
}

// CanSubmitTV validates a TV volunteer's report submission.
func CanSubmitTV(s Snapshot, volunteerID string) error {
	if s.TV == nil {
		return appErrors.Clone(appErrors.ErrStageConflict, "student has no tele-verification assignment")
	}
	if s.TV.VolunteerID != volunteerID {
		return appErrors.Clone(appErrors.ErrNotAssigned, "student not assigned to you")
	}
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	return nil
}

// CanReviewTV validates the admin's review of a submitted TV report.
func CanReviewTV(s Snapshot) error {
	if s.TV == nil || (s.TV.Status != models.TVStatusVerified && s.TV.Status != models.TVStatusRejected) {
		return appErrors.Clone(appErrors.ErrPrecondition, "tele-verification report not submitted yet")
	}
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	if s.Student.Status != models.StudentStatusTV {
		return appErrors.Clone(appErrors.ErrStageConflict, "tele-verification already reviewed")
	}
	return nil
}

// CanAssignPV validates assignment of a physical-verification volunteer.
// Reassignment while the visit is pending is allowed and overwrites.
func CanAssignPV(s Snapshot) error {
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	if s.Student.Status != models.StudentStatusPV {
		return appErrors.Clone(appErrors.ErrPrecondition, "student not cleared for physical verification")
	}
	if s.PV != nil && !s.PV.InProgress() {
		return appErrors.Clone(appErrors.ErrStageConflict, "physical verification already completed")
	}
	if s.PV != nil && s.PV.Status == models.PVStatusProcessing {
		return appErrors.Clone(appErrors.ErrStageConflict, "physical verification report is being processed")
	}
	return nil
}

// CanSubmitPV validates a PV volunteer's report submission. minImages is the
// quality-accepted image floor.
func CanSubmitPV(s Snapshot, volunteerID string, minImages int) error {
	if s.PV == nil {
		return appErrors.Clone(appErrors.ErrStageConflict, "student has no physical-verification assignment")
	}
	if s.PV.VolunteerID != volunteerID {
		return appErrors.Clone(appErrors.ErrNotAssigned, "student not assigned to you")
	}
	if s.PV.Status != models.PVStatusAssigned {
		return appErrors.Clone(appErrors.ErrStageConflict, "physical verification already submitted")
	}
	if minImages < 1 {
		minImages = 1
	}
	if s.AcceptedImages < minImages {
		return appErrors.Clone(appErrors.ErrPrecondition, "minimum quality-accepted image count not met")
	}
	return nil
}

// CanDecideAdmin validates the admin's final status update after PV review.
func CanDecideAdmin(s Snapshot) error {
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	if s.PV == nil || s.PV.InProgress() {
		return appErrors.Clone(appErrors.ErrPrecondition, "physical verification not completed")
	}
	if s.Student.Status == models.StudentStatusApproved {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already approved")
	}
	return nil
}

// CanAssignVI validates (re)assignment of a virtual-interview volunteer.
// Only admin-approved students are assignable, and submitted interviews
// leave the pool.
func CanAssignVI(s Snapshot) error {
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	if s.Student.Status != models.StudentStatusApproved {
		return appErrors.Clone(appErrors.ErrPrecondition, "student not approved for virtual interview")
	}
	if s.VI != nil && s.VI.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrStageConflict, "virtual interview already submitted")
	}
	return nil
}

// CanSubmitVI validates a VI volunteer's interview submission.
func CanSubmitVI(s Snapshot, volunteerID string) error {
	if s.VI == nil {
		return appErrors.Clone(appErrors.ErrStageConflict, "student has no virtual-interview assignment")
	}
	if s.VI.VolunteerID != volunteerID {
		return appErrors.Clone(appErrors.ErrNotAssigned, "student not assigned to you")
	}
	if s.VI.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrStageConflict, "virtual interview already submitted")
	}
	return nil
}

// RIEligible reports whether a student qualifies for a real interview: the
// virtual interviewer recommended them, the admin approval stands, and no
// completed real interview exists yet.
func RIEligible(s Snapshot) bool {
	if s.Student.Status != models.StudentStatusApproved {
		return false
	}
	if s.VI == nil || s.VI.Status != models.VIStatusRecommended {
		return false
	}
	if s.RI != nil && s.RI.Status == models.RIStatusCompleted {
		return false
	}
	return true
}

// CanAssignRI validates (re)assignment of a real-interview volunteer.
func CanAssignRI(s Snapshot) error {
	if !RIEligible(s) {
		return appErrors.Clone(appErrors.ErrPrecondition, "student not eligible for real interview")
	}
	return nil
}

// CanDecideFinal validates the superadmin's final scholarship decision. The
// offline real-interview outcome is entered in the same call, so a pending
// RI assignment must exist.
func CanDecideFinal(s Snapshot) error {
	if Rejected(s) {
		return appErrors.Clone(appErrors.ErrStageConflict, "student already rejected")
	}
	if s.Student.FinalDecision != nil {
		return appErrors.Clone(appErrors.ErrStageConflict, "final decision already recorded")
	}
	if s.RI == nil {
		return appErrors.Clone(appErrors.ErrPrecondition, "real interview not assigned")
	}
	return nil
}

// CanCaptureEducation validates the educational-details upsert; only
// SELECTED students have details captured. Re-submission is allowed.
func CanCaptureEducation(s Snapshot) error {
	if s.Student.FinalDecision == nil || *s.Student.FinalDecision != models.FinalDecisionSelected {
		return appErrors.Clone(appErrors.ErrPrecondition, "student not selected for scholarship")
	}
	return nil
}
