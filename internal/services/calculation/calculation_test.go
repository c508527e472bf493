package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
)

func testPolicy() *models.PolicySettings {
	return &models.PolicySettings{
		AdminPercentage:          decimal.NewFromFloat(6.00),
		InsurancePercentage:      decimal.NewFromFloat(2.00),
		LeavePercentage:          decimal.NewFromFloat(14.54),
		StatutoryPercentage:      decimal.NewFromFloat(11.25),
		PensionPercentage:        decimal.NewFromFloat(1.50),
		WeeksPerYear:             45,
		FirstContractCommission:  decimal.NewFromFloat(15.00),
		SecondContractCommission: decimal.NewFromFloat(10.00),
		ThirdContractCommission:  decimal.NewFromFloat(8.00),
	}
}

func contractorPlacement(sequence int) *models.Placement {
	return &models.Placement{
		PlacementType:       models.PlacementContractor,
		AnnualSalary:        decimal.NewFromInt(55000),
		HoursPerWeek:        decimal.NewFromInt(39),
		BillRate:            decimal.NewFromFloat(40.28),
		AdminPercentage:     decimal.NewFromFloat(6.00),
		InsurancePercentage: decimal.NewFromFloat(2.00),
		FixedCosts:          decimal.Zero,
		SequenceNumber:      sequence,
	}
}

func TestHourlyPayCost(t *testing.T) {
	cost, err := HourlyPayCost(decimal.NewFromInt(55000), decimal.NewFromInt(39), testPolicy())
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromFloat(35.08)), "got %s", cost)
}

func TestHourlyPayCostRejectsZeroHours(t *testing.T) {
	_, err := HourlyPayCost(decimal.NewFromInt(55000), decimal.Zero, testPolicy())
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))

	_, err = HourlyPayCost(decimal.NewFromInt(55000), decimal.NewFromInt(-5), testPolicy())
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))
}

func TestContractorCommissionFirstContract(t *testing.T) {
	placement := contractorPlacement(1)
	require.NoError(t, CalculateContractorCommission(placement, testPolicy()))

	assert.True(t, placement.HourlyPayCost.Equal(decimal.NewFromFloat(35.08)), "hourlyPayCost %s", placement.HourlyPayCost)
	assert.True(t, placement.MarginPerHour.Equal(decimal.NewFromFloat(5.20)), "marginPerHour %s", placement.MarginPerHour)
	assert.True(t, placement.WeeklyMargin.Equal(decimal.NewFromFloat(202.80)), "weeklyMargin %s", placement.WeeklyMargin)
	assert.True(t, placement.GrossAnnualMargin.Equal(decimal.NewFromFloat(9126.00)), "grossAnnualMargin %s", placement.GrossAnnualMargin)
	assert.True(t, placement.NetAnnualMargin.Equal(decimal.NewFromFloat(8395.92)), "netAnnualMargin %s", placement.NetAnnualMargin)
	assert.True(t, placement.CommissionPercentage.Equal(decimal.NewFromFloat(15.00)))
	assert.True(t, placement.CommissionTotal.Equal(decimal.NewFromFloat(1259.39)), "commissionTotal %s", placement.CommissionTotal)
}

func TestContractorCommissionTiers(t *testing.T) {
	cases := []struct {
		sequence int
		pct      string
		total    string
	}{
		{1, "15", "1259.39"},
		{2, "10", "839.59"},
		{3, "8", "671.67"},
		{7, "8", "671.67"},
	}
	for _, tc := range cases {
		placement := contractorPlacement(tc.sequence)
		require.NoError(t, CalculateContractorCommission(placement, testPolicy()))
		assert.True(t, placement.CommissionPercentage.Equal(decimal.RequireFromString(tc.pct)),
			"sequence %d percentage %s", tc.sequence, placement.CommissionPercentage)
		assert.True(t, placement.CommissionTotal.Equal(decimal.RequireFromString(tc.total)),
			"sequence %d total %s", tc.sequence, placement.CommissionTotal)
	}
}

func TestPermanentCommission(t *testing.T) {
	placement := &models.Placement{
		PlacementType:  models.PlacementPermanent,
		PlacementFee:   decimal.NewFromInt(10000),
		SequenceNumber: 1,
	}
	require.NoError(t, CalculatePermanentCommission(placement, testPolicy()))

	assert.True(t, placement.NetAnnualMargin.Equal(decimal.NewFromFloat(10000.00)))
	assert.True(t, placement.CommissionTotal.Equal(decimal.NewFromFloat(1500.00)), "commissionTotal %s", placement.CommissionTotal)
}

func TestNegativeMarginIsNotAnError(t *testing.T) {
	placement := contractorPlacement(1)
	placement.BillRate = decimal.NewFromFloat(30.00)
	require.NoError(t, CalculateContractorCommission(placement, testPolicy()))

	assert.True(t, placement.MarginPerHour.IsNegative(), "marginPerHour %s", placement.MarginPerHour)
	assert.True(t, placement.CommissionTotal.IsNegative(), "commissionTotal %s", placement.CommissionTotal)
}

func TestCommissionTotalFormula(t *testing.T) {
	// commissionTotal = netMargin x pct/100, rounded half-up to cents
	net := decimal.NewFromFloat(8395.92)
	for _, pct := range []string{"15", "10", "8"} {
		expected := net.Mul(decimal.RequireFromString(pct)).Div(decimal.NewFromInt(100)).Round(2)
		got := CommissionTotal(net, decimal.RequireFromString(pct))
		assert.True(t, got.Equal(expected), "pct %s got %s want %s", pct, got, expected)
	}
}

func TestWeeksPerYearOverride(t *testing.T) {
	placement := contractorPlacement(1)
	weeks := 40
	placement.WeeksPerYear = &weeks
	require.NoError(t, CalculateContractorCommission(placement, testPolicy()))

	// 202.80 x 40 instead of the policy's 45
	assert.True(t, placement.GrossAnnualMargin.Equal(decimal.NewFromFloat(8112.00)), "grossAnnualMargin %s", placement.GrossAnnualMargin)
}
