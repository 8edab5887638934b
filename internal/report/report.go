// Package report derives read-only views from a ledger: running totals, the
// 30-day balance series and summary, monthly income/expense flow and the
// expense breakdown by category.
//
// Every function is a single linear scan over its input and never mutates
// it. Records whose amount, type or date cannot be parsed are skipped, so a
// damaged record degrades a view instead of failing it.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	// WindowDays is the length of the rolling dashboard window, today included.
	WindowDays = 30
	// MonthlyFlowMonths caps the monthly flow to the most recent months.
	MonthlyFlowMonths = 6

	seriesLabelLayout = "02/01"
	monthKeyLayout    = "2006-01"
	monthLabelLayout  = "01/2006"
)

type (
	Totals struct {
		Balance      decimal.Decimal
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
	}

	// Series is one cumulative balance point per day of the window, oldest first.
	Series struct {
		Labels   []string
		Balances []decimal.Decimal
	}

	Summary30 struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	MonthFlow struct {
		Month   string // MM/YYYY
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	CategoryTotal struct {
		Category string
		Total    decimal.Decimal
	}
)

// parsed returns the amount of t when both its type and amount are usable.
func parsed(t core.Transaction) (decimal.Decimal, bool) {
	if !t.Type.Valid() {
		return decimal.Zero, false
	}
	amt, err := t.Amount.Decimal()
	if err != nil {
		return decimal.Zero, false
	}
	return amt, true
}

// Window returns the first and last day of the rolling window ending at today.
func Window(today time.Time) (start, end time.Time) {
	end = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start = end.AddDate(0, 0, -(WindowDays - 1))
	return start, end
}

func inWindow(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// ComputeTotals returns the all-time balance, income and expense.
func ComputeTotals(txs []core.Transaction) Totals {
	tot := Totals{Balance: decimal.Zero, TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, t := range txs {
		amt, ok := parsed(t)
		if !ok {
			continue
		}
		switch t.Type {
		case core.Income:
			tot.Balance = tot.Balance.Add(amt)
			tot.TotalIncome = tot.TotalIncome.Add(amt)
		case core.Expense:
			tot.Balance = tot.Balance.Sub(amt)
			tot.TotalExpense = tot.TotalExpense.Add(amt)
		}
	}
	return tot
}

// ComputeSeries30 returns the cumulative net balance for each of the
// WindowDays days ending at today. The series starts at zero on the first day
// of the window; days without transactions carry the previous value.
func ComputeSeries30(txs []core.Transaction, today time.Time) Series {
	start, end := Window(today)

	net := make(map[time.Time]decimal.Decimal)
	for _, t := range txs {
		amt, ok := parsed(t)
		if !ok {
			continue
		}
		d, err := t.Day()
		if err != nil || !inWindow(d, start, end) {
			continue
		}
		if t.Type == core.Expense {
			amt = amt.Neg()
		}
		net[d] = net[d].Add(amt)
	}

	s := Series{
		Labels:   make([]string, 0, WindowDays),
		Balances: make([]decimal.Decimal, 0, WindowDays),
	}
	running := decimal.Zero
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if v, ok := net[d]; ok {
			running = running.Add(v)
		}
		s.Labels = append(s.Labels, d.Format(seriesLabelLayout))
		s.Balances = append(s.Balances, running)
	}
	return s
}

// Points returns the balances as floats for charting.
func (s Series) Points() []float64 {
	out := make([]float64, len(s.Balances))
	for i, b := range s.Balances {
		out[i] = b.InexactFloat64()
	}
	return out
}

// ComputeSummary30 sums income and expense inside the rolling window.
func ComputeSummary30(txs []core.Transaction, today time.Time) Summary30 {
	start, end := Window(today)
	sum := Summary30{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txs {
		amt, ok := parsed(t)
		if !ok {
			continue
		}
		d, err := t.Day()
		if err != nil || !inWindow(d, start, end) {
			continue
		}
		if t.Type == core.Income {
			sum.Income = sum.Income.Add(amt)
		} else {
			sum.Expense = sum.Expense.Add(amt)
		}
	}
	return sum
}

// ComputeMonthlyFlow buckets income and expense by the year-month prefix of
// each date and returns the most recent MonthlyFlowMonths buckets, oldest
// first.
func ComputeMonthlyFlow(txs []core.Transaction) []MonthFlow {
	type bucket struct {
		month           time.Time
		income, expense decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	for _, t := range txs {
		amt, ok := parsed(t)
		if !ok || len(t.Date) < len(monthKeyLayout) {
			continue
		}
		key := t.Date[:len(monthKeyLayout)]
		b, found := buckets[key]
		if !found {
			m, err := time.Parse(monthKeyLayout, key)
			if err != nil {
				continue
			}
			b = &bucket{month: m, income: decimal.Zero, expense: decimal.Zero}
			buckets[key] = b
		}
		if t.Type == core.Income {
			b.income = b.income.Add(amt)
		} else {
			b.expense = b.expense.Add(amt)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MonthlyFlowMonths {
		keys = keys[len(keys)-MonthlyFlowMonths:]
	}

	out := make([]MonthFlow, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, MonthFlow{
			Month:   b.month.Format(monthLabelLayout),
			Income:  b.income,
			Expense: b.expense,
		})
	}
	return out
}

// ComputeCategoryBreakdown sums expenses per category in first-seen order.
func ComputeCategoryBreakdown(txs []core.Transaction) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		amt, ok := parsed(t)
		if !ok {
			continue
		}
		i, found := index[t.Category]
		if !found {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(amt)
	}
	return out
}

// ComputeInvestmentTotal sums the parseable investment amounts.
func ComputeInvestmentTotal(invs []core.Investment) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invs {
		amt, err := inv.Amount.Decimal()
		if err != nil {
			continue
		}
		total = total.Add(amt)
	}
	return total
}

// ByDateDesc returns a copy of txs ordered by date, newest first. Records with
// equal dates keep their insertion order.
func ByDateDesc(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
