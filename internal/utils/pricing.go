package utils

import (
	"math"

	"toolshed-backend/internal/domain"
)

const daysPerWeek = 7

// MaxPriceCents is the largest price a rental or transaction row can store.
const MaxPriceCents = math.MaxInt32

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	Days             int   `json:"days"`
	BillableWeeks    int   `json:"billable_weeks"`
	WeeklyPriceCents int32 `json:"weekly_price_cents"`
	TotalCost        int64 `json:"total_cost_cents"`
}

// CalculateRentalCost returns the price of renting a tool from startDate to
// endDate at the given weekly rate. Partial weeks round up and at least one week
// is always charged. A missing date, a negative price or an end date before the
// start date yield 0: the cost is not computable yet. The result is exact and may
// exceed MaxPriceCents for very long rentals; callers storing it must check.
func CalculateRentalCost(startDate, endDate *domain.Date, weeklyPriceCents int32) int64 {
	return CalculateRentalCostWithBreakdown(startDate, endDate, weeklyPriceCents).TotalCost
}

// CalculateRentalCostWithBreakdown is CalculateRentalCost with the intermediate
// day and week counts exposed for display.
func CalculateRentalCostWithBreakdown(startDate, endDate *domain.Date, weeklyPriceCents int32) RentalCostBreakdown {
	breakdown := RentalCostBreakdown{WeeklyPriceCents: weeklyPriceCents}
	if startDate == nil || endDate == nil || weeklyPriceCents < 0 {
		return breakdown
	}

	days := startDate.DaysUntil(*endDate)
	if days < 0 {
		return breakdown
	}

	// Round up to nearest full week
	weeks := days / daysPerWeek
	if days%daysPerWeek > 0 {
		weeks++
	}
	if weeks < 1 {
		weeks = 1
	}

	breakdown.Days = days
	breakdown.BillableWeeks = weeks
	breakdown.TotalCost = int64(weeks) * int64(weeklyPriceCents)
	return breakdown
}
