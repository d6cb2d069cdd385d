package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
)

// DefaultRiskListLimit caps ListRisks when the caller supplies no limit.
const DefaultRiskListLimit = 10

// RecordRiskInput carries raw intake values before normalization.
// UserID and RiskScore accept any JSON type: upstream conversation analysis
// sends numbers where manual entry sends strings.
type RecordRiskInput struct {
	UserID      interface{} `json:"userId"`
	RiskLevel   string      `json:"riskLevel"`
	RiskType    string      `json:"riskType"`
	RiskScore   interface{} `json:"riskScore,omitempty"`
	Indicator   *string     `json:"indicator,omitempty"`
	ActionTaken *string     `json:"actionTaken,omitempty"`
}

// RiskService handles risk-record intake and trend listing.
// Records are read-only after creation.
type RiskService struct {
	store store.Store
	log   zerolog.Logger
}

func NewRiskService(s store.Store, log zerolog.Logger) *RiskService {
	return &RiskService{store: s, log: log}
}

// RecordRisk validates and normalizes a risk signal, then persists it.
// DetectedAt is always server-assigned; caller-supplied values are ignored.
func (s *RiskService) RecordRisk(ctx context.Context, in RecordRiskInput) (*model.RiskRecord, error) {
	userID, err := NormalizeUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	if in.RiskLevel == "" {
		return nil, model.NewValidationError("riskLevel", "riskLevel is required")
	}
	if in.RiskType == "" {
		return nil, model.NewValidationError("riskType", "riskType is required")
	}

	rec := &model.RiskRecord{
		UserID:      userID,
		RiskLevel:   in.RiskLevel,
		RiskScore:   coerceScore(in.RiskScore),
		RiskType:    in.RiskType,
		Indicator:   in.Indicator,
		ActionTaken: in.ActionTaken,
		DetectedAt:  time.Now().UTC(),
	}

	out, err := s.store.Risks().Create(ctx, rec)
	if err != nil {
		s.log.Error().Stack().Err(err).Str("userId", userID).Msg("RecordRisk failed")
		return nil, err
	}
	s.log.Info().
		Str("userId", userID).
		Str("riskLevel", out.RiskLevel).
		Str("riskType", out.RiskType).
		Float64("riskScore", out.RiskScore).
		Msg("risk recorded")
	return out, nil
}

// ListRisks returns up to limit most-recent records for the user,
// detectedAt descending. limit <= 0 falls back to DefaultRiskListLimit.
func (s *RiskService) ListRisks(ctx context.Context, userID string, limit int) ([]*model.RiskRecord, error) {
	uid, err := NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRiskListLimit
	}
	recs, err := s.store.Risks().List(ctx, model.ListRisksRequest{UserID: uid, Limit: limit})
	if err != nil {
		s.log.Warn().Err(err).Str("userId", uid).Msg("ListRisks failed")
	}
	return recs, err
}

// NormalizeUserID resolves the loosely typed userId carried by intake
// payloads into a non-empty identifier string. Numeric identifiers must be
// positive integers.
func NormalizeUserID(v interface{}) (string, error) {
	return normalizeID("userId", v)
}

// normalizeID is shared by every identifier field that arrives as either a
// JSON string or a JSON number (userId on intake, id on triage updates).
func normalizeID(field string, v interface{}) (string, error) {
	switch id := v.(type) {
	case string:
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return "", model.NewValidationError(field, field+" is required")
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return numericID(field, n)
		}
		return trimmed, nil
	case float64:
		return numericID(field, id)
	case int:
		return numericID(field, float64(id))
	case nil:
		return "", model.NewValidationError(field, field+" is required")
	default:
		return "", model.NewValidationError(field, field+" must be a string or number")
	}
}

func numericID(field string, n float64) (string, error) {
	if n <= 0 || n != float64(int64(n)) {
		return "", model.NewValidationError(field, field+" must be a positive identifier")
	}
	return strconv.FormatInt(int64(n), 10), nil
}

// coerceScore maps the caller-supplied score onto a float: numeric values
// pass through, anything else (absent, strings, objects) becomes 1.
func coerceScore(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 1
	}
}
