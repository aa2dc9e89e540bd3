package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leasing-catalog-api/internal/model"
)

func TestNextAttempt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		errorType string
		want      *time.Duration
	}{
		{model.ErrorTypeValidation, nil},
		{model.ErrorTypeNoOffers, nil},
		{model.ErrorTypeMissingRetailPrice, nil},
		{model.ErrorTypeCancelled, durationPtr(0)},
		{model.ErrorTypeDatabase, durationPtr(5 * time.Minute)},
		{model.ErrorTypePanic, durationPtr(30 * time.Minute)},
		{model.ErrorTypeUnknown, durationPtr(30 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			got := NextAttempt(tt.errorType, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, now.Add(*tt.want), *got)
		})
	}
}

func TestDecodeOffers(t *testing.T) {
	offers, err := decodeOffers([]byte(`[{"monthly_price":3500,"first_payment":0,"period_months":36,"mileage_per_year":15000}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.Offer{{MonthlyPrice: 3500, PeriodMonths: 36, MileagePerYear: 15000}}, offers)

	offers, err = decodeOffers([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, offers)

	_, err = decodeOffers([]byte(`{`))
	assert.Error(t, err)
}

func TestMarshalBreakdown_IncludesSelectedOffer(t *testing.T) {
	data, err := marshalBreakdown(model.StoredLeaseScore{
		ListingID: "l-1",
		Score:     77,
		Breakdown: model.LeaseScoreBreakdown{TotalScore: 77, MonthlyRateScore: 80, MonthlyRatePercent: 1.17},
		Selected:  model.Offer{MonthlyPrice: 3500, PeriodMonths: 36, MileagePerYear: 15000},
	})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(77), got["total_score"])
	assert.Equal(t, 1.17, got["monthly_rate_percent"])
	selected := got["selected_offer"].(map[string]interface{})
	assert.Equal(t, float64(3500), selected["monthly_price"])
}

func durationPtr(d time.Duration) *time.Duration { return &d }
