package memory

import (
	"context"
	"errors"
	"testing"
)

func TestWriter_WriteReport(t *testing.T) {
	w := New()
	rows := [][]string{{"DATA", "TIPO"}, {"2024-03-01", "Receita"}}
	if err := w.WriteReport(context.Background(), "ana", rows); err != nil {
		t.Fatal(err)
	}
	rows[1][0] = "mutated"

	got, ok := w.Report("ana")
	if !ok || len(got) != 2 || got[1][0] != "2024-03-01" {
		t.Fatalf("unexpected report %v", got)
	}
	if tabs := w.Tabs(); len(tabs) != 1 || tabs[0] != "fintrack_ana" {
		t.Fatalf("unexpected tabs %v", tabs)
	}

	if err := w.WriteReport(context.Background(), "ana", [][]string{{"DATA"}}); err != nil {
		t.Fatal(err)
	}
	if got, _ := w.Report("ana"); len(got) != 1 {
		t.Fatalf("second write must replace the report, got %v", got)
	}
	if w.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", w.Writes())
	}
}

func TestWriter_Failures(t *testing.T) {
	w := New()
	boom := errors.New("boom")
	w.FailWith(boom)
	if err := w.WriteReport(context.Background(), "ana", nil); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	w.FailWith(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.WriteReport(ctx, "ana", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := w.Report("ana"); ok {
		t.Fatal("failed writes must not store anything")
	}
}
