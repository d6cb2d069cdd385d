package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
	"github.com/mindcare/mindcare-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.EnsureSchema(context.Background()))
	return st
}

func TestNormalizeUserID(t *testing.T) {
	cases := []struct {
		name    string
		in      interface{}
		want    string
		wantErr bool
	}{
		{name: "plain string", in: "user-1", want: "user-1"},
		{name: "string with spaces", in: "  user-1  ", want: "user-1"},
		{name: "json number", in: float64(5), want: "5"},
		{name: "numeric string", in: "42", want: "42"},
		{name: "int", in: 7, want: "7"},
		{name: "zero", in: float64(0), wantErr: true},
		{name: "negative", in: float64(-3), wantErr: true},
		{name: "fractional", in: 2.5, wantErr: true},
		{name: "empty string", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "nil", in: nil, wantErr: true},
		{name: "bool", in: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeUserID(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, model.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoerceScore(t *testing.T) {
	assert.Equal(t, 0.7, coerceScore(0.7))
	assert.Equal(t, float64(3), coerceScore(3))
	assert.Equal(t, float64(1), coerceScore(nil))
	assert.Equal(t, float64(1), coerceScore("high"))
	assert.Equal(t, float64(1), coerceScore(map[string]interface{}{"x": 1}))
}

func TestRecordRiskValidation(t *testing.T) {
	svc := NewRiskService(newTestStore(t), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.RecordRisk(ctx, RecordRiskInput{RiskLevel: "high", RiskType: "self_harm"})
	assert.True(t, model.IsValidationError(err), "missing userId")

	_, err = svc.RecordRisk(ctx, RecordRiskInput{UserID: "u1", RiskType: "self_harm"})
	assert.True(t, model.IsValidationError(err), "missing riskLevel")

	_, err = svc.RecordRisk(ctx, RecordRiskInput{UserID: "u1", RiskLevel: "high"})
	assert.True(t, model.IsValidationError(err), "missing riskType")
}

func TestRecordRiskNormalizesAndPersists(t *testing.T) {
	st := newTestStore(t)
	svc := NewRiskService(st, zerolog.Nop())
	ctx := context.Background()

	indicator := "mentions of hopelessness"
	rec, err := svc.RecordRisk(ctx, RecordRiskInput{
		UserID:    float64(5),
		RiskLevel: "high",
		RiskType:  "self_harm",
		RiskScore: "not-a-number",
		Indicator: &indicator,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.RiskID)
	assert.Equal(t, "5", rec.UserID)
	assert.Equal(t, float64(1), rec.RiskScore, "non-numeric score coerces to 1")
	assert.False(t, rec.DetectedAt.IsZero())

	recs, err := svc.ListRisks(ctx, "5", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.RiskID, recs[0].RiskID)
}

func TestListRisksDefaultLimit(t *testing.T) {
	st := newTestStore(t)
	svc := NewRiskService(st, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < DefaultRiskListLimit+5; i++ {
		_, err := svc.RecordRisk(ctx, RecordRiskInput{UserID: "u1", RiskLevel: "low", RiskType: "mood"})
		require.NoError(t, err)
	}

	recs, err := svc.ListRisks(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, recs, DefaultRiskListLimit)
}
