package models

// AnalyticsOverview summarises the pipeline outcome for students that
// reached physical verification.
type AnalyticsOverview struct {
	Total    int `db:"total" json:"total"`
	Selected int `db:"selected" json:"selected"`
	Rejected int `db:"rejected" json:"rejected"`
	Pending  int `db:"pending" json:"pending"`
}

// AIAccuracy compares the sentiment model's verdict with the admin decision.
type AIAccuracy struct {
	Total           int     `db:"total" json:"total"`
	Correct         int     `db:"correct" json:"correct"`
	Wrong           int     `db:"wrong" json:"wrong"`
	AccuracyPercent float64 `json:"accuracy_percent"`
}

// DistributionBucket is a generic labelled count used by the distribution
// endpoints (gender, rejection stage, yearly trends).
type DistributionBucket struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}
