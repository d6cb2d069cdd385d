package model

import "time"

// User represents an account in the system. Authentication and sessions are
// handled by an external collaborator; the server only keeps the profile row
// that risk records and alerts reference.
type User struct {
	UserID       string     `json:"userId"`
	Email        string     `json:"email"`
	DisplayName  *string    `json:"displayName,omitempty"`
	Region       string     `json:"region,omitempty"`
	Status       string     `json:"status"`
	CreationTime time.Time  `json:"creationTime"`
	LastSeenTime *time.Time `json:"lastSeenTime,omitempty"`
}

// RiskRecord is a single detected risk-signal event tied to a user.
// Records are immutable after creation; there are no update or delete paths.
type RiskRecord struct {
	RiskID      string    `json:"riskId"`
	UserID      string    `json:"userId"`
	RiskLevel   string    `json:"riskLevel"`
	RiskScore   float64   `json:"riskScore"`
	RiskType    string    `json:"riskType"`
	Indicator   *string   `json:"indicator,omitempty"`
	ActionTaken *string   `json:"actionTaken,omitempty"`
	DetectedAt  time.Time `json:"detectedAt"`
}

// Triage states assigned through the alert status workflow. The store accepts
// any non-empty status string; these are the states the strict transition
// table recognises.
const (
	AlertStatusNew       = "new"
	AlertStatusInReview  = "in_review"
	AlertStatusEscalated = "escalated"
	AlertStatusResolved  = "resolved"
)

// EmergencyAlert is an escalated conversational event awaiting human triage.
type EmergencyAlert struct {
	AlertID   string                 `json:"alertId"`
	UserID    string                 `json:"userId"`
	RiskLevel string                 `json:"riskLevel"`
	IsHeavy   bool                   `json:"isHeavy"`
	Excerpt   string                 `json:"excerpt"`
	FullText  string                 `json:"fullText"`
	Status    string                 `json:"status"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ListRisksRequest captures filters used when listing risk records.
type ListRisksRequest struct {
	UserID string
	Limit  int
}

// ExcerptLimit caps EmergencyAlert.Excerpt length in runes.
const ExcerptLimit = 240
