// Package calculation implements the placement pricing and commission
// arithmetic. All functions are pure: they take the placement terms and a
// policy settings snapshot and return decimal results rounded half-up to
// 2 decimal places, with divisions carried at 10 fractional digits.
package calculation

import (
	"github.com/shopspring/decimal"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
)

const divScale = 10

var (
	fiftyTwo   = decimal.NewFromInt(52)
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

func pctMultiplier(pct decimal.Decimal) decimal.Decimal {
	return one.Add(pct.DivRound(oneHundred, divScale))
}

// HourlyPayCost = (annualSalary / 52 / hoursPerWeek) x (1+leave%) x
// (1+statutory%) x (1+pension%).
func HourlyPayCost(annualSalary, hoursPerWeek decimal.Decimal, settings *models.PolicySettings) (decimal.Decimal, error) {
	if hoursPerWeek.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperr.InvalidInput("hours per week must be positive, got %s", hoursPerWeek)
	}

	baseHourlyRate := annualSalary.
		DivRound(fiftyTwo, divScale).
		DivRound(hoursPerWeek, divScale)

	cost := baseHourlyRate.
		Mul(pctMultiplier(settings.LeavePercentage)).
		Mul(pctMultiplier(settings.StatutoryPercentage)).
		Mul(pctMultiplier(settings.PensionPercentage))

	return cost.Round(2), nil
}

// MarginPerHour may be negative; a loss-making placement is a valid,
// flagged business outcome, not an error.
func MarginPerHour(billRate, hourlyPayCost decimal.Decimal) decimal.Decimal {
	return billRate.Sub(hourlyPayCost).Round(2)
}

func WeeklyMargin(marginPerHour, hoursPerWeek decimal.Decimal) decimal.Decimal {
	return marginPerHour.Mul(hoursPerWeek).Round(2)
}

func GrossAnnualMargin(weeklyMargin decimal.Decimal, weeksPerYear int) decimal.Decimal {
	return weeklyMargin.Mul(decimal.NewFromInt(int64(weeksPerYear))).Round(2)
}

// NetAnnualMargin deducts the percentage overheads and fixed costs from the
// gross margin.
func NetAnnualMargin(grossMargin, adminPercentage, insurancePercentage, fixedCosts decimal.Decimal) decimal.Decimal {
	adminCost := grossMargin.Mul(adminPercentage.DivRound(oneHundred, divScale)).Round(2)
	insuranceCost := grossMargin.Mul(insurancePercentage.DivRound(oneHundred, divScale)).Round(2)
	totalOverheads := adminCost.Add(insuranceCost).Add(fixedCosts).Round(2)

	return grossMargin.Sub(totalOverheads).Round(2)
}

// CommissionPercentage maps the placement sequence number to the policy's
// commission tier: 1 -> first contract, 2 -> second, 3+ -> third.
func CommissionPercentage(sequenceNumber int, settings *models.PolicySettings) decimal.Decimal {
	switch {
	case sequenceNumber <= 1:
		return settings.FirstContractCommission
	case sequenceNumber == 2:
		return settings.SecondContractCommission
	default:
		return settings.ThirdContractCommission
	}
}

func CommissionTotal(netMargin, commissionPercentage decimal.Decimal) decimal.Decimal {
	return netMargin.Mul(commissionPercentage.DivRound(oneHundred, divScale)).Round(2)
}

// CalculateContractorCommission runs the seven-step contractor pipeline and
// stores every intermediate figure on the placement.
func CalculateContractorCommission(placement *models.Placement, settings *models.PolicySettings) error {
	hourlyPayCost, err := HourlyPayCost(placement.AnnualSalary, placement.HoursPerWeek, settings)
	if err != nil {
		return err
	}
	placement.HourlyPayCost = hourlyPayCost

	placement.MarginPerHour = MarginPerHour(placement.BillRate, hourlyPayCost)
	placement.WeeklyMargin = WeeklyMargin(placement.MarginPerHour, placement.HoursPerWeek)

	weeksPerYear := settings.WeeksPerYear
	if placement.WeeksPerYear != nil {
		weeksPerYear = *placement.WeeksPerYear
	}
	placement.GrossAnnualMargin = GrossAnnualMargin(placement.WeeklyMargin, weeksPerYear)

	placement.NetAnnualMargin = NetAnnualMargin(
		placement.GrossAnnualMargin,
		placement.AdminPercentage,
		placement.InsurancePercentage,
		placement.FixedCosts,
	)

	placement.CommissionPercentage = CommissionPercentage(placement.SequenceNumber, settings)
	placement.CommissionTotal = CommissionTotal(placement.NetAnnualMargin, placement.CommissionPercentage)

	return nil
}

// CalculatePermanentCommission prices a permanent placement: the fee is the
// net margin (no overhead deduction), then the same tiers apply.
func CalculatePermanentCommission(placement *models.Placement, settings *models.PolicySettings) error {
	netMargin := placement.PlacementFee.Round(2)
	placement.NetAnnualMargin = netMargin

	placement.CommissionPercentage = CommissionPercentage(placement.SequenceNumber, settings)
	placement.CommissionTotal = CommissionTotal(netMargin, placement.CommissionPercentage)

	return nil
}
