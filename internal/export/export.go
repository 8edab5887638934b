// Package export renders a ledger as the side-by-side spreadsheet layout:
// transactions on the left, investments on the right, one blank column
// between them.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"fintrack/internal/core"
)

const (
	// Separator is the field delimiter spreadsheet apps in pt-BR locales
	// detect by default.
	Separator = ';'
	// ContentType is the media type of WriteCSV output.
	ContentType = "text/csv; charset=utf-8"

	txColumns  = 6
	invColumns = 5
)

// Header is the first row of every export.
var Header = []string{
	"DATA", "TIPO", "CATEGORIA", "DESCRIÇÃO", "VALOR", "PAGAMENTO",
	"",
	"DATA CRIAÇÃO", "ATIVO", "TIPO INVEST", "VALOR ATUAL", "NOTA",
}

// FileName returns the download name of a user's export.
func FileName(username string) string {
	return fmt.Sprintf("relatorio_%s.csv", username)
}

// Rows returns the data rows of l, without the header. Row i pairs
// transaction i with investment i; the shorter side is padded with empty
// cells.
func Rows(l core.Ledger) [][]string {
	n := max(len(l.Transactions), len(l.Investments))
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(Header))
		if i < len(l.Transactions) {
			row = append(row, transactionCells(l.Transactions[i])...)
		} else {
			row = append(row, make([]string, txColumns)...)
		}
		row = append(row, "")
		if i < len(l.Investments) {
			row = append(row, investmentCells(l.Investments[i])...)
		} else {
			row = append(row, make([]string, invColumns)...)
		}
		rows = append(rows, row)
	}
	return rows
}

// Table returns the header followed by the data rows.
func Table(l core.Ledger) [][]string {
	return append([][]string{Header}, Rows(l)...)
}

func transactionCells(t core.Transaction) []string {
	return []string{
		t.Date,
		t.Type.Label(),
		t.Category,
		t.Description,
		t.Amount.Comma(),
		t.PaymentMethod,
	}
}

func investmentCells(inv core.Investment) []string {
	return []string{
		inv.CreatedDate,
		inv.Name,
		inv.Type,
		inv.Amount.Comma(),
		inv.Description,
	}
}

// WriteCSV writes the full table to w as UTF-8 with a byte order mark, which
// spreadsheet apps need to pick the right encoding for accented headers.
func WriteCSV(w io.Writer, l core.Ledger) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)
	cw.Comma = Separator
	if err := cw.WriteAll(Table(l)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
