package models

import (
	"encoding/json"
	"time"
)

// ImageQuality is the verdict of the external quality-check service.
type ImageQuality string

const (
	ImageQualityGood ImageQuality = "GOOD"
	ImageQualityBad  ImageQuality = "BAD"
)

// FinalImage is a quality-accepted verification photo stored for a student.
type FinalImage struct {
	ImageID         int64           `db:"image_id" json:"imageId"`
	StudentID       string          `db:"student_id" json:"studentId"`
	ImageKey        string          `db:"image_key" json:"imageKey"`
	QualityStatus   ImageQuality    `db:"quality_status" json:"qualityStatus"`
	ConditionResult *string         `db:"condition_result" json:"conditionResult,omitempty"`
	IssuesFound     json.RawMessage `db:"issues_found" json:"issuesFound,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// ImageView is the reviewer-facing projection: a signed download URL plus the
// analysis annotations.
type ImageView struct {
	URL       string       `json:"url"`
	Condition *string      `json:"condition,omitempty"`
	Issues    []string     `json:"issues"`
	Quality   ImageQuality `json:"quality"`
}

// QualityCheckResult is the per-file outcome of a batch quality check.
type QualityCheckResult struct {
	Filename string       `json:"filename"`
	Status   ImageQuality `json:"status"`
	Reason   string       `json:"reason,omitempty"`
}
