package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

// Commands is the finctl command tree.
type Commands struct {
	Globals

	User       UserCmd       `cmd:"" help:"Manage users."`
	Export     ExportCmd     `cmd:"" help:"Write a user's ledger as CSV."`
	Report     ReportCmd     `cmd:"" help:"Print a user's balance and reports."`
	Reset      ResetCmd      `cmd:"" help:"Clear parts of a user's ledger."`
	Categories CategoriesCmd `cmd:"" help:"List the transaction categories."`
	Sync       SyncCmd       `cmd:"" help:"Push ledgers to the spreadsheet mirror once."`
}

type UserCmd struct {
	Add  UserAddCmd  `cmd:"" help:"Register a user."`
	List UserListCmd `cmd:"" help:"List registered users."`
}

type UserAddCmd struct {
	Username string `arg:"" help:"Login name."`
	Password string `help:"Password; prompted for when empty." env:"FINCTL_PASSWORD"`
}

func (cmd *UserAddCmd) Run(deps *Deps) error {
	ctx := context.Background()
	password := cmd.Password
	if password == "" {
		var err error
		if password, err = readPassword(deps.In, deps.Out, "Senha: "); err != nil {
			return err
		}
	}
	auth := services.NewAuthService(deps.Store, deps.logger())
	if deps.BcryptCost > 0 {
		auth = auth.WithCost(deps.BcryptCost)
	}
	username, err := auth.Register(ctx, cmd.Username, password)
	if err != nil {
		return fmt.Errorf("register %s: %w", cmd.Username, err)
	}
	printSuccess(deps.Out, fmt.Sprintf("user %s created", username))
	return nil
}

type UserListCmd struct{}

func (cmd *UserListCmd) Run(deps *Deps) error {
	users, err := deps.Store.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	sort.Strings(users)
	if len(users) == 0 {
		printInfof(deps.Out, "no users")
		return nil
	}
	for _, u := range users {
		_, _ = fmt.Fprintln(deps.Out, u)
	}
	return nil
}

type ExportCmd struct {
	Username string `arg:"" help:"User whose ledger is exported."`
	Output   string `short:"o" help:"Output file; stdout when empty." type:"path"`
}

func (cmd *ExportCmd) Run(deps *Deps) error {
	ctx := context.Background()
	if err := deps.requireUser(ctx, cmd.Username); err != nil {
		return err
	}
	l, err := deps.Store.Load(ctx, cmd.Username)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if cmd.Output == "" {
		return export.WriteCSV(deps.Out, l)
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.WriteCSV(f, l); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	printSuccess(deps.Out, fmt.Sprintf("wrote %s", cmd.Output))
	return nil
}

type ReportCmd struct {
	Username string `arg:"" help:"User to report on."`
}

func (cmd *ReportCmd) Run(deps *Deps) error {
	ctx := context.Background()
	if err := deps.requireUser(ctx, cmd.Username); err != nil {
		return err
	}
	l, err := deps.Store.Load(ctx, cmd.Username)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	d := report.BuildDashboard(l, deps.now())
	o := report.BuildReport(l)

	out := deps.Out
	_, _ = fmt.Fprintln(out, titleStyle.Render(l.Config.DisplayName))
	_, _ = fmt.Fprintln(out, newTable().Rows(
		[]string{"Saldo", report.FormatBRL(d.Totals.Balance)},
		[]string{"Receitas", report.FormatBRL(d.Totals.TotalIncome)},
		[]string{"Despesas", report.FormatBRL(d.Totals.TotalExpense)},
		[]string{"Receitas (30 dias)", report.FormatBRL(d.Summary30.Income)},
		[]string{"Despesas (30 dias)", report.FormatBRL(d.Summary30.Expense)},
		[]string{"Total investido", report.FormatBRL(o.InvestmentTotal)},
	).String())

	if len(o.Categories) > 0 {
		t := newTable("Categoria", "Despesas")
		for _, c := range o.Categories {
			t.Row(c.Category, report.FormatBRL(c.Total))
		}
		_, _ = fmt.Fprintln(out, t.String())
	}
	if len(o.Monthly) > 0 {
		t := newTable("Mês", "Receitas", "Despesas")
		for _, m := range o.Monthly {
			t.Row(m.Month, report.FormatBRL(m.Income), report.FormatBRL(m.Expense))
		}
		_, _ = fmt.Fprintln(out, t.String())
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle)
	if len(headers) > 0 {
		t = t.Headers(headers...)
	}
	return t
}

type ResetCmd struct {
	Username string `arg:"" help:"User whose ledger is cleared."`
	Mode     string `arg:"" enum:"clear-transactions,clear-investments,factory-reset" help:"What to clear: ${enum}."`
	Yes      bool   `short:"y" help:"Do not ask for confirmation."`
}

func (cmd *ResetCmd) Run(deps *Deps) error {
	ctx := context.Background()
	if err := deps.requireUser(ctx, cmd.Username); err != nil {
		return err
	}
	if !cmd.Yes && !confirm(deps.In, deps.Out, fmt.Sprintf("Aplicar %s ao usuário %s?", cmd.Mode, cmd.Username)) {
		return ErrAborted
	}
	svc, userCtx := deps.ledgerService(ctx, cmd.Username)
	known, err := svc.Reset(userCtx, core.DangerAction(cmd.Mode))
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("unknown reset mode %q", cmd.Mode)
	}
	printSuccess(deps.Out, fmt.Sprintf("%s applied to %s", cmd.Mode, cmd.Username))
	return nil
}

type CategoriesCmd struct{}

func (cmd *CategoriesCmd) Run(deps *Deps) error {
	tax := core.Taxonomy()
	labels := make([]string, 0, len(tax))
	for label := range tax {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		_, _ = fmt.Fprintln(deps.Out, titleStyle.Render(label))
		for _, c := range tax[label] {
			_, _ = fmt.Fprintf(deps.Out, "  %s\n", c)
		}
	}
	return nil
}

type SyncCmd struct {
	Username string `arg:"" optional:"" help:"Only this user; every user when omitted."`
}

func (cmd *SyncCmd) Run(deps *Deps) error {
	if deps.Sheets == nil {
		return errors.New("spreadsheet mirror not configured: set GOOGLE_SPREADSHEET_ID and service account credentials")
	}
	ctx := context.Background()
	writer, err := deps.Sheets(ctx)
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	w := worker.NewExportWorker(deps.Store, writer, deps.logger(), deps.ExportConcurrency)

	if cmd.Username != "" {
		if err := deps.requireUser(ctx, cmd.Username); err != nil {
			return err
		}
		if err := w.Export(ctx, cmd.Username); err != nil {
			return err
		}
		printSuccess(deps.Out, fmt.Sprintf("synced %s", cmd.Username))
		return nil
	}
	if err := w.ExportAll(ctx); err != nil {
		return err
	}
	printSuccess(deps.Out, "synced all users")
	return nil
}
