package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/internal/workflow"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
)

type mockSnapshotLoader struct {
	snapshots map[string]*workflow.Snapshot
	err       error
}

func (m *mockSnapshotLoader) Load(ctx context.Context, studentID string) (*workflow.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	if snap, ok := m.snapshots[studentID]; ok {
		return snap, nil
	}
	return nil, sql.ErrNoRows
}

type mockVolunteerFinder struct {
	volunteers map[string]*models.Volunteer
}

func (m *mockVolunteerFinder) FindByID(ctx context.Context, volunteerID string) (*models.Volunteer, error) {
	return m.volunteers[volunteerID], nil
}

func (m *mockVolunteerFinder) FindByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	for _, v := range m.volunteers {
		if v != nil && v.Email == email {
			return v, nil
		}
	}
	return nil, nil
}

type mockAuditRepo struct {
	entries []*models.AuditLog
	err     error
}

func (m *mockAuditRepo) Insert(ctx context.Context, entry *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.AuditLog, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, *m.entries[i])
	}
	return out, nil
}

type mockCache struct {
	store           map[string][]byte
	deletedPatterns []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = raw
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deletedPatterns = append(m.deletedPatterns, pattern)
	return nil
}

func activeVolunteer(id string, role models.Role) *models.Volunteer {
	return &models.Volunteer{VolunteerID: id, Name: "Volunteer " + id, Role: role, Active: true}
}

func approvedSnapshot() *workflow.Snapshot {
	return &workflow.Snapshot{Student: models.Student{StudentID: "MTR001", Status: models.StudentStatusApproved}}
}
