package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func sampleLedger() core.Ledger {
	l := core.NewLedger("ana")
	l.AddTransaction(core.Transaction{Type: core.Income, Date: "2024-03-01", Description: "salário", Amount: core.RawAmount("500"), Category: "Salário"})
	l.AddTransaction(core.Transaction{Type: core.Expense, Date: "2024-03-02", Description: "mercado", Amount: core.RawAmount("120.5"), Category: "Alimentação", PaymentMethod: "Pix"})
	return l
}

func TestRowsPadsInvestmentSide(t *testing.T) {
	rows := Rows(sampleLedger())
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(Header) {
			t.Fatalf("row %d has %d columns, want %d", i, len(row), len(Header))
		}
		for j := txColumns; j < len(row); j++ {
			if row[j] != "" {
				t.Fatalf("row %d column %d should be blank, got %q", i, j, row[j])
			}
		}
	}
	want := []string{"2024-03-02", "Despesa", "Alimentação", "mercado", "120,50", "Pix"}
	for j, w := range want {
		if rows[1][j] != w {
			t.Fatalf("column %d: got %q want %q", j, rows[1][j], w)
		}
	}
}

func TestRowsPadsTransactionSide(t *testing.T) {
	l := core.NewLedger("ana")
	l.AddInvestment(core.Investment{Name: "Tesouro", Type: "Renda Fixa", Amount: core.RawAmount("1000"), Description: "reserva", CreatedDate: "2024-03-01"})
	rows := Rows(l)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := strings.Join(rows[0], ";")
	if got != ";;;;;;;2024-03-01;Tesouro;Renda Fixa;1000,00;reserva" {
		t.Fatalf("unexpected row %q", got)
	}
}

func TestRowsEmptyLedger(t *testing.T) {
	if rows := Rows(core.NewLedger("ana")); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleLedger()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("missing UTF-8 BOM: % x", out[:3])
	}

	r := csv.NewReader(bytes.NewReader(out[3:]))
	r.Comma = Separator
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ";") != "DATA;TIPO;CATEGORIA;DESCRIÇÃO;VALOR;PAGAMENTO;;DATA CRIAÇÃO;ATIVO;TIPO INVEST;VALOR ATUAL;NOTA" {
		t.Fatalf("unexpected header %q", records[0])
	}
	if records[1][4] != "500,00" {
		t.Fatalf("amount not rendered with comma: %q", records[1][4])
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("ana"); got != "relatorio_ana.csv" {
		t.Fatalf("got %q", got)
	}
}
