package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
)

// DefaultAlertListLimit caps ListAlerts when the caller supplies no limit.
const DefaultAlertListLimit = 200

// CreateAlertInput accepts both accepted wire shapes in one struct:
// the canonical {userId, riskLevel, isHeavy, excerpt, fullText} and the
// legacy {userId, userMessage, moodLevel, hasGrowth}. Legacy fields have no
// canonical mapping beyond userMessage -> fullText; moodLevel/hasGrowth are
// preserved in the alert's meta object.
type CreateAlertInput struct {
	UserID    interface{} `json:"userId"`
	RiskLevel *string     `json:"riskLevel,omitempty"`
	IsHeavy   *bool       `json:"isHeavy,omitempty"`
	Excerpt   *string     `json:"excerpt,omitempty"`
	FullText  *string     `json:"fullText,omitempty"`

	// Legacy shape
	UserMessage *string     `json:"userMessage,omitempty"`
	MoodLevel   interface{} `json:"moodLevel,omitempty"`
	HasGrowth   *bool       `json:"hasGrowth,omitempty"`
}

// transitions is the strict triage table. Resolved is terminal.
var transitions = map[string][]string{
	model.AlertStatusNew:       {model.AlertStatusInReview, model.AlertStatusEscalated, model.AlertStatusResolved},
	model.AlertStatusInReview:  {model.AlertStatusEscalated, model.AlertStatusResolved},
	model.AlertStatusEscalated: {model.AlertStatusInReview, model.AlertStatusResolved},
	model.AlertStatusResolved:  {},
}

// AlertService handles emergency-alert intake and the triage workflow.
type AlertService struct {
	store store.Store
	log   zerolog.Logger

	// strictTriage enforces the transition table. Off by default: the
	// compatibility behavior accepts any non-empty status string.
	strictTriage bool
}

func NewAlertService(s store.Store, log zerolog.Logger, strictTriage bool) *AlertService {
	return &AlertService{store: s, log: log, strictTriage: strictTriage}
}

// CreateAlert normalizes a tracking payload into a canonical alert and
// persists it with status "new". Returns the stored alert's identifier.
func (s *AlertService) CreateAlert(ctx context.Context, in CreateAlertInput) (string, error) {
	userID, err := NormalizeUserID(in.UserID)
	if err != nil {
		return "", err
	}

	alert := normalizeAlert(userID, in)
	out, err := s.store.Alerts().Create(ctx, alert)
	if err != nil {
		s.log.Error().Stack().Err(err).Str("userId", userID).Msg("CreateAlert failed")
		return "", err
	}
	s.log.Info().
		Str("alertId", out.AlertID).
		Str("userId", userID).
		Str("riskLevel", out.RiskLevel).
		Bool("isHeavy", out.IsHeavy).
		Msg("emergency alert created")
	return out.AlertID, nil
}

// normalizeAlert reconciles the canonical and legacy payload shapes.
// Resolution order matters: fullText before excerpt, riskLevel before
// heaviness.
func normalizeAlert(userID string, in CreateAlertInput) *model.EmergencyAlert {
	fullText := ""
	switch {
	case in.FullText != nil:
		fullText = *in.FullText
	case in.UserMessage != nil:
		fullText = *in.UserMessage
	}

	excerpt := truncate(fullText, model.ExcerptLimit)
	if in.Excerpt != nil {
		excerpt = truncate(*in.Excerpt, model.ExcerptLimit)
	}

	// Only an absent riskLevel defaults to "low"; an explicit empty string
	// is kept and therefore counts as heavy below.
	riskLevel := "low"
	if in.RiskLevel != nil {
		riskLevel = *in.RiskLevel
	}

	isHeavy := riskLevel != "low"
	if in.IsHeavy != nil && *in.IsHeavy {
		isHeavy = true
	}

	var meta map[string]interface{}
	if in.MoodLevel != nil || in.HasGrowth != nil {
		meta = map[string]interface{}{}
		if in.MoodLevel != nil {
			meta["moodLevel"] = in.MoodLevel
		}
		if in.HasGrowth != nil {
			meta["hasGrowth"] = *in.HasGrowth
		}
	}

	return &model.EmergencyAlert{
		UserID:    userID,
		RiskLevel: riskLevel,
		IsHeavy:   isHeavy,
		Excerpt:   excerpt,
		FullText:  fullText,
		Status:    model.AlertStatusNew,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}
}

// ListAlerts returns up to limit alerts across all users, createdAt
// descending. Access control is the caller's responsibility.
func (s *AlertService) ListAlerts(ctx context.Context, limit int) ([]*model.EmergencyAlert, error) {
	if limit <= 0 {
		limit = DefaultAlertListLimit
	}
	alerts, err := s.store.Alerts().List(ctx, limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("ListAlerts failed")
	}
	return alerts, err
}

// UpdateStatus advances an alert's triage status. The id accepts the same
// loose typing as intake userIds (string or JSON number). In compatibility
// mode any non-empty status overwrites unconditionally; in strict mode the
// transition table is enforced.
func (s *AlertService) UpdateStatus(ctx context.Context, id interface{}, status string) error {
	alertID, err := normalizeID("id", id)
	if err != nil {
		return err
	}
	if status == "" {
		return model.NewValidationError("status", "status is required")
	}

	if s.strictTriage {
		cur, err := s.store.Alerts().Get(ctx, alertID)
		if err != nil {
			return err
		}
		if !transitionAllowed(cur.Status, status) {
			return model.NewValidationError("status",
				fmt.Sprintf("transition %s -> %s is not allowed", cur.Status, status))
		}
	}

	if err := s.store.Alerts().UpdateStatus(ctx, alertID, status); err != nil {
		if !model.IsNotFoundError(err) {
			s.log.Error().Stack().Err(err).Str("alertId", alertID).Msg("UpdateStatus failed")
		}
		return err
	}
	s.log.Info().Str("alertId", alertID).Str("status", status).Msg("alert status updated")
	return nil
}

func transitionAllowed(from, to string) bool {
	next, ok := transitions[from]
	if !ok {
		// Row carries a status outside the strict set (written in
		// compatibility mode); allow triage to reclaim it.
		return true
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// truncate limits s to n runes without splitting a multi-byte character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
