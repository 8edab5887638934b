package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

// Reasons attached to ledger change events.
const (
	ReasonTransactionAdded   = "transaction.added"
	ReasonTransactionDeleted = "transaction.deleted"
	ReasonInvestmentAdded    = "investment.added"
	ReasonInvestmentDeleted  = "investment.deleted"
	ReasonSettingsUpdated    = "settings.updated"
	ReasonReset              = "ledger.reset"
)

// ChangePublisher announces that a user's ledger changed. It is optional:
// a nil publisher disables change events.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, username, reason string) error
}

type (
	// TransactionInput is a transaction as typed into the add form.
	TransactionInput struct {
		Type          string
		Date          string
		Description   string
		Amount        string
		Category      string
		PaymentMethod string
	}

	// InvestmentInput is an investment as typed into the add form. The
	// creation date is stamped by the service.
	InvestmentInput struct {
		Name        string
		Type        string
		Amount      string
		Description string
	}
)

// LedgerService applies every user-facing mutation through the store's
// serialized Update and announces the change afterwards. The acting user is
// always taken from the context.
type LedgerService struct {
	store     storage.LedgerStore
	publisher ChangePublisher
	logger    *log.Logger
	sl        *log.StructuredLogger
	now       func() time.Time
}

type Option func(*LedgerService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(store storage.LedgerStore, publisher ChangePublisher, logger *log.Logger, opts ...Option) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentLedger)
	s := &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		sl:        log.NewStructuredLogger(logger),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the server's current calendar day.
func (s *LedgerService) Today() time.Time {
	return s.now()
}

func user(ctx context.Context) (string, error) {
	u, ok := session.UserFrom(ctx)
	if !ok {
		return "", ErrNoUser
	}
	return u, nil
}

// Ledger returns the acting user's ledger.
func (s *LedgerService) Ledger(ctx context.Context) (core.Ledger, error) {
	username, err := user(ctx)
	if err != nil {
		return core.Ledger{}, err
	}
	l, err := s.store.Load(ctx, username)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}

// ParseTransaction turns form input into a validated transaction without an id.
func ParseTransaction(in TransactionInput) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, invalid("type", err)
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, invalid("amount", err)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, invalid("date", err)
	}
	t := core.Transaction{
		Type:          typ,
		Date:          date.Format(core.DateLayout),
		Description:   strings.TrimSpace(in.Description),
		Amount:        core.NewAmount(amount),
		Category:      strings.TrimSpace(in.Category),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid("transaction", err)
	}
	return t, nil
}

func (s *LedgerService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t, err := ParseTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}
	username, err := user(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	var added core.Transaction
	if _, err := s.store.Update(ctx, username, func(l *core.Ledger) error {
		added = l.AddTransaction(t)
		return nil
	}); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.sl.LogLedgerChange(ctx, username, log.OpCreate, log.NewFields().
		WithRecord("transaction", added.ID).
		WithTransaction(string(added.Type), added.Amount.String(), added.Category))
	s.publish(ctx, username, ReasonTransactionAdded)
	return added, nil
}

// DeleteTransaction removes a transaction by id. Unknown ids are not an
// error; found reports whether anything was removed.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (found bool, err error) {
	username, err := user(ctx)
	if err != nil {
		return false, err
	}
	if _, err := s.store.Update(ctx, username, func(l *core.Ledger) error {
		found = l.DeleteTransaction(id)
		return nil
	}); err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if found {
		s.sl.LogLedgerChange(ctx, username, log.OpDelete, log.NewFields().WithRecord("transaction", id))
		s.publish(ctx, username, ReasonTransactionDeleted)
	}
	return found, nil
}

// ParseInvestment turns form input into a validated investment created on day.
func ParseInvestment(in InvestmentInput, day time.Time) (core.Investment, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Investment{}, invalid("amount", err)
	}
	inv := core.Investment{
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Amount:      core.NewAmount(amount),
		Description: strings.TrimSpace(in.Description),
		CreatedDate: day.Format(core.DateLayout),
	}
	if err := inv.Validate(); err != nil {
		return core.Investment{}, invalid("investment", err)
	}
	return inv, nil
}

func (s *LedgerService) AddInvestment(ctx context.Context, in InvestmentInput) (core.Investment, error) {
	inv, err := ParseInvestment(in, s.Today())
	if err != nil {
		return core.Investment{}, err
	}
	username, err := user(ctx)
	if err != nil {
		return core.Investment{}, err
	}

	var added core.Investment
	if _, err := s.store.Update(ctx, username, func(l *core.Ledger) error {
		added = l.AddInvestment(inv)
		return nil
	}); err != nil {
		return core.Investment{}, fmt.Errorf("add investment: %w", err)
	}

	s.sl.LogLedgerChange(ctx, username, log.OpCreate, log.NewFields().WithRecord("investment", added.ID))
	s.publish(ctx, username, ReasonInvestmentAdded)
	return added, nil
}

func (s *LedgerService) DeleteInvestment(ctx context.Context, id string) (found bool, err error) {
	username, err := user(ctx)
	if err != nil {
		return false, err
	}
	if _, err := s.store.Update(ctx, username, func(l *core.Ledger) error {
		found = l.DeleteInvestment(id)
		return nil
	}); err != nil {
		return false, fmt.Errorf("delete investment: %w", err)
	}
	if found {
		s.sl.LogLedgerChange(ctx, username, log.OpDelete, log.NewFields().WithRecord("investment", id))
		s.publish(ctx, username, ReasonInvestmentDeleted)
	}
	return found, nil
}

// UpdateSettings saves the display name. A blank name resets it to the
// username.
func (s *LedgerService) UpdateSettings(ctx context.Context, displayName string) error {
	username, err := user(ctx)
	if err != nil {
		return err
	}
	if _, err := s.store.Update(ctx, username, func(l *core.Ledger) error {
		l.SetDisplayName(displayName, username)
		return nil
	}); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	s.sl.LogLedgerChange(ctx, username, log.OpUpdate, nil)
	s.publish(ctx, username, ReasonSettingsUpdated)
	return nil
}

// Reset applies a danger-zone action. Unknown actions rewrite the ledger
// unchanged and report false.
func (s *LedgerService) Reset(ctx context.Context, action core.DangerAction) (known bool, err error) {
	username, err := user(ctx)
	if err != nil {
		return false, err
	}
	if _, err := s.store.Update(ctx, username, func(l *core.Ledger) error {
		known = l.ApplyDangerAction(action)
		return nil
	}); err != nil {
		return false, fmt.Errorf("reset ledger: %w", err)
	}
	if !known {
		s.logger.WarnContext(ctx, "Unknown reset action ignored", log.FieldUsername, username, log.FieldAction, string(action))
		return false, nil
	}
	s.sl.LogLedgerChange(ctx, username, log.OpReset, log.LogFields{log.FieldAction: string(action)})
	s.publish(ctx, username, ReasonReset)
	return true, nil
}

// publish never fails the request: the ledger is already saved, and the
// mirror catches up on the next change or the worker's startup pass.
func (s *LedgerService) publish(ctx context.Context, username, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, username, reason); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldUsername, username, "reason", reason, log.FieldError, err)
	}
}
