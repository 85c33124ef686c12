package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded for workflow mutations.
const (
	AuditActionLogin         = "LOGIN"
	AuditActionLogout        = "LOGOUT"
	AuditActionAssign        = "ASSIGN"
	AuditActionSubmitReport  = "SUBMIT_REPORT"
	AuditActionReview        = "REVIEW"
	AuditActionFinalDecision = "FINAL_DECISION"
)

// AuditLog records who changed what during the review pipeline.
type AuditLog struct {
	ID         int64           `db:"id" json:"id"`
	ActorID    *string         `db:"actor_id" json:"actorId,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resourceId,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ipAddress"`
	UserAgent  string          `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
