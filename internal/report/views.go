package report

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Dashboard is everything the dashboard page shows.
type Dashboard struct {
	Totals    Totals
	Series    Series
	Summary30 Summary30
}

// Overview is everything the reports page shows.
type Overview struct {
	Categories      []CategoryTotal
	Monthly         []MonthFlow
	InvestmentTotal decimal.Decimal
}

func BuildDashboard(l core.Ledger, today time.Time) Dashboard {
	return Dashboard{
		Totals:    ComputeTotals(l.Transactions),
		Series:    ComputeSeries30(l.Transactions, today),
		Summary30: ComputeSummary30(l.Transactions, today),
	}
}

func BuildReport(l core.Ledger) Overview {
	return Overview{
		Categories:      ComputeCategoryBreakdown(l.Transactions),
		Monthly:         ComputeMonthlyFlow(l.Transactions),
		InvestmentTotal: ComputeInvestmentTotal(l.Investments),
	}
}
