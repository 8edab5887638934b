package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-03-01", true},
		{"2024-12-31", true},
		{" 2024-01-05 ", true},
		{"2024-02-30", false},
		{"01/03/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:        Expense,
		Date:        "2024-03-02",
		Description: "mercado",
		Amount:      NewAmount(decimal.NewFromInt(120)),
		Category:    "Alimentação",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = RawAmount("0")
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []struct {
		name string
		mod  func(*Transaction)
		want error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "Transfer" }, ErrInvalidType},
		{"bad date", func(tx *Transaction) { tx.Date = "2024-13-01" }, ErrInvalidDate},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"negative amount", func(tx *Transaction) { tx.Amount = RawAmount("-5") }, ErrInvalidAmount},
		{"category of other type", func(tx *Transaction) { tx.Category = "Salário" }, ErrUnknownCategory},
	}
	for _, tc := range bads {
		tx := good
		tc.mod(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestInvestmentValidate(t *testing.T) {
	inv := Investment{Name: "Tesouro", Type: "Renda Fixa", Amount: RawAmount("1000"), CreatedDate: "2024-03-01"}
	if err := inv.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	inv.Name = ""
	if err := inv.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestParseTransactionType(t *testing.T) {
	for in, want := range map[string]TransactionType{
		"Income": Income, "Receita": Income, "Expense": Expense, "Despesa": Expense,
	} {
		got, err := ParseTransactionType(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q err=%v", in, got, err)
		}
	}
	if _, err := ParseTransactionType("Gift"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"ana", "joao.silva", "user_01"} {
		if err := ValidateUsername(ok); err != nil {
			t.Fatalf("%q expected ok, got %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", "../etc", ".hidden", "a/b", "nome com espaço"} {
		if err := ValidateUsername(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestTaxonomy(t *testing.T) {
	if !IsValidCategory(Income, "Salário") || IsValidCategory(Expense, "Salário") {
		t.Fatalf("unexpected taxonomy membership for Salário")
	}
	tax := Taxonomy()
	if len(tax["Despesa"]) != 9 || len(tax["Receita"]) != 6 {
		t.Fatalf("unexpected taxonomy sizes: %v", tax)
	}
	cats := Categories(Expense)
	cats[0] = "mutated"
	if Categories(Expense)[0] != "Alimentação" {
		t.Fatalf("Categories must return a copy")
	}
}

func TestLedgerJSONBackfill(t *testing.T) {
	var l Ledger
	if err := json.Unmarshal([]byte(`{"transactions":[{"type":"Income","date":"2024-03-01","amount":"abc"}]}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !l.Normalize("ana") {
		t.Fatalf("expected Normalize to report changes")
	}
	if l.Investments == nil || l.Config.DisplayName != "ana" {
		t.Fatalf("defaults not backfilled: %+v", l)
	}
	if l.Transactions[0].ID == "" {
		t.Fatalf("missing id not assigned")
	}
	if l.Transactions[0].Amount.String() != "abc" {
		t.Fatalf("malformed amount should be kept verbatim, got %q", l.Transactions[0].Amount.String())
	}
	if l.Normalize("ana") {
		t.Fatalf("second Normalize should be a no-op")
	}
}
