package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maatram/scholarship-review-api/internal/models"
)

func TestEducationalRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEducationalRepository(db)

	mock.ExpectExec("INSERT INTO educational_details").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	details := &models.EducationalDetails{
		StudentID:     "MTR001",
		CollegeName:   "Anna University",
		Degree:        "BE",
		Stream:        "Engineering",
		Branch:        "CSE",
		YearOfPassing: 2028,
	}
	err := repo.Upsert(context.Background(), details)
	require.NoError(t, err)
	assert.False(t, details.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEducationalRepositoryFindByStudentMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEducationalRepository(db)

	mock.ExpectQuery("SELECT id, student_id, college_name").
		WithArgs("MTR404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	details, err := repo.FindByStudent(context.Background(), "MTR404")
	require.NoError(t, err)
	assert.Nil(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEducationalRepositoryListSelected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEducationalRepository(db)

	decisionDate := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"student_id", "name", "district", "phone", "email",
		"final_decision", "final_decision_date",
		"college_name", "degree", "stream", "branch", "year_of_passing",
	}).AddRow("MTR001", "Kavya", "Chennai", "9876543210", "kavya@example.com",
		string(models.FinalDecisionSelected), decisionDate,
		"Anna University", "BE", "Engineering", "CSE", 2028)

	mock.ExpectQuery("SELECT s.student_id, s.name, s.district").
		WithArgs(models.FinalDecisionSelected).
		WillReturnRows(rows)

	selected, err := repo.ListSelected(context.Background(), models.FinalDecisionSelected)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "MTR001", selected[0].StudentID)
	require.NotNil(t, selected[0].CollegeName)
	assert.Equal(t, "Anna University", *selected[0].CollegeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
