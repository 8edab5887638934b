package http

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

// page carries what the shared layout needs.
type page struct {
	Title       string
	Active      string
	Username    string
	DisplayName string
	Error       string
}

type (
	authPage struct {
		page
		Register bool
		Form     struct{ Username string }
	}

	typeOption struct {
		Value      string
		Label      string
		Categories []string
	}

	dashboardPage struct {
		page
		Balance         string
		BalanceNegative bool
		TotalIncome     string
		TotalExpense    string
		Income30        string
		Expense30       string
		Chart           balanceChart
		Today           string
		Types           []typeOption
		Taxonomy        map[string][]string
		Form            services.TransactionInput
	}

	balanceChart struct {
		Labels   []string  `json:"labels"`
		Balances []float64 `json:"balances"`
	}

	transactionRow struct {
		ID            string
		Date          string
		Type          string
		IsIncome      bool
		Category      string
		Description   string
		Amount        string
		PaymentMethod string
	}

	transactionsPage struct {
		page
		Rows []transactionRow
	}

	investmentRow struct {
		ID          string
		Name        string
		Type        string
		Amount      string
		Description string
		CreatedDate string
	}

	investmentsPage struct {
		page
		Rows  []investmentRow
		Total string
		Form  services.InvestmentInput
	}

	categoryRow struct {
		Category string
		Total    string
	}

	monthRow struct {
		Month   string
		Income  string
		Expense string
	}

	reportsPage struct {
		page
		Categories      []categoryRow
		Monthly         []monthRow
		InvestmentTotal string
		Chart           reportsChart
	}

	reportsChart struct {
		Categories struct {
			Labels []string  `json:"labels"`
			Values []float64 `json:"values"`
		} `json:"categories"`
		Monthly struct {
			Labels  []string  `json:"labels"`
			Income  []float64 `json:"income"`
			Expense []float64 `json:"expense"`
		} `json:"monthly"`
	}

	dangerOption struct {
		Mode    string
		Label   string
		Confirm string
	}

	settingsPage struct {
		page
		Saved   bool
		Actions []dangerOption
	}
)

var dangerOptions = []dangerOption{
	{string(core.ClearTransactions), "Apagar todas as transações", "Apagar todas as transações? Esta ação não pode ser desfeita."},
	{string(core.ClearInvestments), "Apagar todos os investimentos", "Apagar todos os investimentos? Esta ação não pode ser desfeita."},
	{string(core.FactoryReset), "Restaurar padrão de fábrica", "Apagar todos os dados? Esta ação não pode ser desfeita."},
}

func newPage(ctx context.Context, l core.Ledger, title, active string) page {
	username, _ := session.UserFrom(ctx)
	return page{
		Title:       title,
		Active:      active,
		Username:    username,
		DisplayName: l.Config.DisplayName,
	}
}

func typeOptions() []typeOption {
	return []typeOption{
		{Value: string(core.Expense), Label: core.Expense.Label(), Categories: core.Categories(core.Expense)},
		{Value: string(core.Income), Label: core.Income.Label(), Categories: core.Categories(core.Income)},
	}
}

func taxonomyByType() map[string][]string {
	out := make(map[string][]string, 2)
	for _, o := range typeOptions() {
		out[o.Value] = o.Categories
	}
	return out
}

func newDashboardPage(ctx context.Context, l core.Ledger, today time.Time) dashboardPage {
	d := report.BuildDashboard(l, today)
	return dashboardPage{
		page:            newPage(ctx, l, "Painel", "dashboard"),
		Balance:         report.FormatBRL(d.Totals.Balance),
		BalanceNegative: d.Totals.Balance.IsNegative(),
		TotalIncome:     report.FormatBRL(d.Totals.TotalIncome),
		TotalExpense:    report.FormatBRL(d.Totals.TotalExpense),
		Income30:        report.FormatBRL(d.Summary30.Income),
		Expense30:       report.FormatBRL(d.Summary30.Expense),
		Chart:           balanceChart{Labels: d.Series.Labels, Balances: d.Series.Points()},
		Today:           today.Format(core.DateLayout),
		Types:           typeOptions(),
		Taxonomy:        taxonomyByType(),
		Form:            services.TransactionInput{Type: string(core.Expense), Date: today.Format(core.DateLayout)},
	}
}

func newTransactionsPage(ctx context.Context, l core.Ledger) transactionsPage {
	p := transactionsPage{page: newPage(ctx, l, "Transações", "transactions")}
	for _, t := range report.ByDateDesc(l.Transactions) {
		p.Rows = append(p.Rows, transactionRow{
			ID:            t.ID,
			Date:          formatDate(t.Date),
			Type:          t.Type.Label(),
			IsIncome:      t.Type == core.Income,
			Category:      t.Category,
			Description:   t.Description,
			Amount:        formatAmount(t.Amount),
			PaymentMethod: t.PaymentMethod,
		})
	}
	return p
}

func newInvestmentsPage(ctx context.Context, l core.Ledger) investmentsPage {
	p := investmentsPage{
		page:  newPage(ctx, l, "Investimentos", "investments"),
		Total: report.FormatBRL(report.ComputeInvestmentTotal(l.Investments)),
	}
	for _, inv := range l.Investments {
		p.Rows = append(p.Rows, investmentRow{
			ID:          inv.ID,
			Name:        inv.Name,
			Type:        inv.Type,
			Amount:      formatAmount(inv.Amount),
			Description: inv.Description,
			CreatedDate: formatDate(inv.CreatedDate),
		})
	}
	return p
}

func newReportsPage(ctx context.Context, l core.Ledger) reportsPage {
	o := report.BuildReport(l)
	p := reportsPage{
		page:            newPage(ctx, l, "Relatórios", "reports"),
		InvestmentTotal: report.FormatBRL(o.InvestmentTotal),
	}
	for _, c := range o.Categories {
		p.Categories = append(p.Categories, categoryRow{Category: c.Category, Total: report.FormatBRL(c.Total)})
		p.Chart.Categories.Labels = append(p.Chart.Categories.Labels, c.Category)
		p.Chart.Categories.Values = append(p.Chart.Categories.Values, c.Total.InexactFloat64())
	}
	for _, m := range o.Monthly {
		p.Monthly = append(p.Monthly, monthRow{Month: m.Month, Income: report.FormatBRL(m.Income), Expense: report.FormatBRL(m.Expense)})
		p.Chart.Monthly.Labels = append(p.Chart.Monthly.Labels, m.Month)
		p.Chart.Monthly.Income = append(p.Chart.Monthly.Income, m.Income.InexactFloat64())
		p.Chart.Monthly.Expense = append(p.Chart.Monthly.Expense, m.Expense.InexactFloat64())
	}
	return p
}

func newSettingsPage(ctx context.Context, l core.Ledger) settingsPage {
	return settingsPage{
		page:    newPage(ctx, l, "Configurações", "settings"),
		Actions: dangerOptions,
	}
}
