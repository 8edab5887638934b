package core

import "strings"

// DangerAction selects what a settings-page reset clears.
type DangerAction string

const (
	ClearTransactions DangerAction = "clear-transactions"
	ClearInvestments  DangerAction = "clear-investments"
	FactoryReset      DangerAction = "factory-reset"
)

// Ledger is the full per-user record. It is always loaded and saved whole.
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Investments  []Investment  `json:"investments"`
	Config       Config        `json:"config"`
}

// NewLedger returns the empty default ledger for username.
func NewLedger(username string) Ledger {
	return Ledger{
		Transactions: []Transaction{},
		Investments:  []Investment{},
		Config:       Config{DisplayName: username},
	}
}

// Normalize backfills what a partial or legacy document is missing: empty
// lists, the display name and record ids. It reports whether anything changed.
func (l *Ledger) Normalize(username string) bool {
	changed := false
	if l.Transactions == nil {
		l.Transactions = []Transaction{}
		changed = true
	}
	if l.Investments == nil {
		l.Investments = []Investment{}
		changed = true
	}
	if l.Config.DisplayName == "" {
		l.Config.DisplayName = username
		changed = true
	}
	for i := range l.Transactions {
		if l.Transactions[i].ID == "" {
			l.Transactions[i].ID = NewID()
			changed = true
		}
	}
	for i := range l.Investments {
		if l.Investments[i].ID == "" {
			l.Investments[i].ID = NewID()
			changed = true
		}
	}
	return changed
}

// AddTransaction appends t, assigning an id when it has none.
func (l *Ledger) AddTransaction(t Transaction) Transaction {
	if t.ID == "" {
		t.ID = NewID()
	}
	l.Transactions = append(l.Transactions, t)
	return t
}

// DeleteTransaction removes the transaction with the given id. Unknown ids
// leave the ledger unchanged.
func (l *Ledger) DeleteTransaction(id string) bool {
	for i, t := range l.Transactions {
		if t.ID == id {
			l.Transactions = append(l.Transactions[:i], l.Transactions[i+1:]...)
			return true
		}
	}
	return false
}

// AddInvestment appends inv, assigning an id when it has none.
func (l *Ledger) AddInvestment(inv Investment) Investment {
	if inv.ID == "" {
		inv.ID = NewID()
	}
	l.Investments = append(l.Investments, inv)
	return inv
}

// DeleteInvestment removes the investment with the given id. Unknown ids
// leave the ledger unchanged.
func (l *Ledger) DeleteInvestment(id string) bool {
	for i, inv := range l.Investments {
		if inv.ID == id {
			l.Investments = append(l.Investments[:i], l.Investments[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Ledger) ClearTransactions() {
	l.Transactions = []Transaction{}
}

func (l *Ledger) ClearInvestments() {
	l.Investments = []Investment{}
}

// ApplyDangerAction clears the lists selected by action. Unknown actions are
// a no-op and report false.
func (l *Ledger) ApplyDangerAction(action DangerAction) bool {
	switch action {
	case ClearTransactions:
		l.ClearTransactions()
	case ClearInvestments:
		l.ClearInvestments()
	case FactoryReset:
		l.ClearTransactions()
		l.ClearInvestments()
	default:
		return false
	}
	return true
}

// SetDisplayName updates the greeting name. A blank name falls back to the
// username.
func (l *Ledger) SetDisplayName(name, username string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}
	l.Config.DisplayName = name
}
