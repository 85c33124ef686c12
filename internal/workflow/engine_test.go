package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/models"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

func tv(status models.TVStatus, volunteerID string) *models.TeleVerification {
	return &models.TeleVerification{StudentID: "MTR001", VolunteerID: volunteerID, Status: status}
}

func pv(status models.PVStatus, volunteerID string) *models.PhysicalVerification {
	return &models.PhysicalVerification{StudentID: "MTR001", VolunteerID: volunteerID, Status: status}
}

func vi(status models.VIStatus, volunteerID string) *models.VirtualInterview {
	return &models.VirtualInterview{StudentID: "MTR001", VolunteerID: volunteerID, Status: status}
}

func decided(d models.FinalDecision) *models.FinalDecision {
	return &d
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, code, appErr.Code)
}

func TestStageOf(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want Stage
	}{
		{
			name: "fresh student",
			snap: Snapshot{Student: models.Student{Status: models.StudentStatusNew}},
			want: StageNew,
		},
		{
			name: "tv assigned",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusTV},
				TV:      tv(models.TVStatusAssigned, "TV001"),
			},
			want: StageTVPending,
		},
		{
			name: "tv submitted awaiting admin",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusTV},
				TV:      tv(models.TVStatusVerified, "TV001"),
			},
			want: StageTVReviewed,
		},
		{
			name: "admin moved to pv, unassigned",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusPV},
				TV:      tv(models.TVStatusVerified, "TV001"),
			},
			want: StageTVReviewed,
		},
		{
			name: "pv assigned",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusPV},
				PV:      pv(models.PVStatusAssigned, "PV001"),
			},
			want: StagePVPending,
		},
		{
			name: "pv report being analyzed",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusPV},
				PV:      pv(models.PVStatusProcessing, "PV001"),
			},
			want: StagePVProcessing,
		},
		{
			name: "pv reviewed awaiting admin decision",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusPending},
				PV:      pv(models.PVStatusSelect, "PV001"),
			},
			want: StagePVReviewed,
		},
		{
			name: "admin approved",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusApproved},
				PV:      pv(models.PVStatusSelect, "PV001"),
			},
			want: StageAdminApproved,
		},
		{
			name: "vi pending",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusApproved},
				VI:      vi(models.VIStatusPending, "VI001"),
			},
			want: StageVIPending,
		},
		{
			name: "vi recommended",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusApproved},
				VI:      vi(models.VIStatusRecommended, "VI001"),
			},
			want: StageVIReviewed,
		},
		{
			name: "ri assigned",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusApproved},
				VI:      vi(models.VIStatusRecommended, "VI001"),
				RI:      &models.RealInterview{StudentID: "MTR001", Status: models.RIStatusPending},
			},
			want: StageRIPending,
		},
		{
			name: "final decision recorded",
			snap: Snapshot{
				Student: models.Student{
					Status:        models.StudentStatusApproved,
					FinalDecision: decided(models.FinalDecisionSelected),
				},
			},
			want: StageFinalDecided,
		},
		{
			name: "education captured",
			snap: Snapshot{
				Student: models.Student{
					Status:        models.StudentStatusApproved,
					FinalDecision: decided(models.FinalDecisionSelected),
				},
				Education: &models.EducationalDetails{StudentID: "MTR001"},
			},
			want: StageEducationCaptured,
		},
		{
			name: "rejected wins over everything",
			snap: Snapshot{
				Student: models.Student{Status: models.StudentStatusRejected},
				VI:      vi(models.VIStatusRecommended, "VI001"),
			},
			want: StageRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StageOf(tt.snap))
		})
	}
}

func TestCanAssignTV(t *testing.T) {
	err := CanAssignTV(Snapshot{Student: models.Student{Status: models.StudentStatusNew}})
	assert.NoError(t, err)

	// reassignment while still pending is an overwrite, not a conflict
	err = CanAssignTV(Snapshot{
		Student: models.Student{Status: models.StudentStatusTV},
		TV:      tv(models.TVStatusAssigned, "TV001"),
	})
	assert.NoError(t, err)

	err = CanAssignTV(Snapshot{
		Student: models.Student{Status: models.StudentStatusTV},
		TV:      tv(models.TVStatusVerified, "TV001"),
	})
	assertCode(t, err, "STAGE_CONFLICT")

	err = CanAssignTV(Snapshot{Student: models.Student{Status: models.StudentStatusRejected}})
	assertCode(t, err, "STAGE_CONFLICT")
}

func TestCanSubmitTV(t *testing.T) {
	snap := Snapshot{
		Student: models.Student{Status: models.StudentStatusTV},
		TV:      tv(models.TVStatusAssigned, "TV001"),
	}

	assert.NoError(t, CanSubmitTV(snap, "TV001"))
	assertCode(t, CanSubmitTV(snap, "TV002"), "NOT_ASSIGNED")

	assertCode(t, CanSubmitTV(Snapshot{
		Student: models.Student{Status: models.StudentStatusNew},
	}, "TV001"), "STAGE_CONFLICT")
}

func TestCanAssignPV(t *testing.T) {
	assert.NoError(t, CanAssignPV(Snapshot{
		Student: models.Student{Status: models.StudentStatusPV},
	}))

	// reassign while the visit is still pending
	assert.NoError(t, CanAssignPV(Snapshot{
		Student: models.Student{Status: models.StudentStatusPV},
		PV:      pv(models.PVStatusAssigned, "PV001"),
	}))

	assertCode(t, CanAssignPV(Snapshot{
		Student: models.Student{Status: models.StudentStatusTV},
	}), "PRECONDITION_FAILED")

	assertCode(t, CanAssignPV(Snapshot{
		Student: models.Student{Status: models.StudentStatusPV},
		PV:      pv(models.PVStatusProcessing, "PV001"),
	}), "STAGE_CONFLICT")

	assertCode(t, CanAssignPV(Snapshot{
		Student: models.Student{Status: models.StudentStatusPV},
		PV:      pv(models.PVStatusSelect, "PV001"),
	}), "STAGE_CONFLICT")
}

func TestCanSubmitPV(t *testing.T) {
	base := Snapshot{
		Student:        models.Student{Status: models.StudentStatusPV},
		PV:             pv(models.PVStatusAssigned, "PV001"),
		AcceptedImages: 3,
	}

	assert.NoError(t, CanSubmitPV(base, "PV001", 1))
	assertCode(t, CanSubmitPV(base, "PV002", 1), "NOT_ASSIGNED")

	short := base
	short.AcceptedImages = 0
	assertCode(t, CanSubmitPV(short, "PV001", 1), "PRECONDITION_FAILED")

	done := base
	done.PV = pv(models.PVStatusSelect, "PV001")
	assertCode(t, CanSubmitPV(done, "PV001", 1), "STAGE_CONFLICT")
}

func TestCanDecideAdmin(t *testing.T) {
	assert.NoError(t, CanDecideAdmin(Snapshot{
		Student: models.Student{Status: models.StudentStatusPending},
		PV:      pv(models.PVStatusSelect, "PV001"),
	}))

	assertCode(t, CanDecideAdmin(Snapshot{
		Student: models.Student{Status: models.StudentStatusPV},
		PV:      pv(models.PVStatusProcessing, "PV001"),
	}), "PRECONDITION_FAILED")

	assertCode(t, CanDecideAdmin(Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
		PV:      pv(models.PVStatusSelect, "PV001"),
	}), "STAGE_CONFLICT")
}

func TestCanAssignVI(t *testing.T) {
	assert.NoError(t, CanAssignVI(Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
	}))

	// reassignment of a pending interview overwrites
	assert.NoError(t, CanAssignVI(Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
		VI:      vi(models.VIStatusPending, "VI001"),
	}))

	assertCode(t, CanAssignVI(Snapshot{
		Student: models.Student{Status: models.StudentStatusPending},
	}), "PRECONDITION_FAILED")

	assertCode(t, CanAssignVI(Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
		VI:      vi(models.VIStatusRecommended, "VI001"),
	}), "STAGE_CONFLICT")
}

func TestCanSubmitVI(t *testing.T) {
	snap := Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
		VI:      vi(models.VIStatusPending, "VI001"),
	}

	assert.NoError(t, CanSubmitVI(snap, "VI001"))
	assertCode(t, CanSubmitVI(snap, "VI002"), "NOT_ASSIGNED")

	done := snap
	done.VI = vi(models.VIStatusRecommended, "VI001")
	assertCode(t, CanSubmitVI(done, "VI001"), "STAGE_CONFLICT")
}

func TestRIEligible(t *testing.T) {
	eligible := Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
		VI:      vi(models.VIStatusRecommended, "VI001"),
	}
	assert.True(t, RIEligible(eligible))

	notRecommended := eligible
	notRecommended.VI = vi(models.VIStatusNotRecommended, "VI001")
	assert.False(t, RIEligible(notRecommended))

	notApproved := eligible
	notApproved.Student.Status = models.StudentStatusPending
	assert.False(t, RIEligible(notApproved))

	// pending RI keeps the student in the pool so reassignment works
	pendingRI := eligible
	pendingRI.RI = &models.RealInterview{StudentID: "MTR001", Status: models.RIStatusPending}
	assert.True(t, RIEligible(pendingRI))

	completedRI := eligible
	completedRI.RI = &models.RealInterview{StudentID: "MTR001", Status: models.RIStatusCompleted}
	assert.False(t, RIEligible(completedRI))
}

func TestCanDecideFinal(t *testing.T) {
	snap := Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
		VI:      vi(models.VIStatusRecommended, "VI001"),
		RI:      &models.RealInterview{StudentID: "MTR001", Status: models.RIStatusPending},
	}
	assert.NoError(t, CanDecideFinal(snap))

	noRI := snap
	noRI.RI = nil
	assertCode(t, CanDecideFinal(noRI), "PRECONDITION_FAILED")

	already := snap
	already.Student.FinalDecision = decided(models.FinalDecisionSelected)
	assertCode(t, CanDecideFinal(already), "STAGE_CONFLICT")
}

func TestCanCaptureEducation(t *testing.T) {
	assert.NoError(t, CanCaptureEducation(Snapshot{
		Student: models.Student{
			Status:        models.StudentStatusApproved,
			FinalDecision: decided(models.FinalDecisionSelected),
		},
	}))

	assertCode(t, CanCaptureEducation(Snapshot{
		Student: models.Student{Status: models.StudentStatusApproved},
	}), "PRECONDITION_FAILED")

	assertCode(t, CanCaptureEducation(Snapshot{
		Student: models.Student{
			Status:        models.StudentStatusRejected,
			FinalDecision: decided(models.FinalDecisionRejected),
		},
	}), "PRECONDITION_FAILED")
}
