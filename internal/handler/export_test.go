package handler

import (
	"testing"

	"github.com/alves212/gastos/internal/ledger"
)

func TestExportRow(t *testing.T) {
	cases := []struct {
		item ledger.LineItem
		want [4]string
	}{
		{
			item: ledger.LineItem{Description: "salário", Amount: 1200.5, Sign: ledger.SignCredit},
			want: [4]string{"Receita", "salário", "1200.50", "não"},
		},
		{
			item: ledger.LineItem{Description: "mercado", Amount: 89.9, Sign: ledger.SignDebit, Checked: true},
			want: [4]string{"Despesa", "mercado", "89.90", "sim"},
		},
		{
			item: ledger.LineItem{Sign: ledger.SignDebit},
			want: [4]string{"Despesa", "", "0.00", "não"},
		},
	}

	for _, tc := range cases {
		got := exportRow(tc.item)
		if len(got) != 4 {
			t.Fatalf("exportRow returned %d columns, want 4", len(got))
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("exportRow(%q) col %d = %q, want %q", tc.item.Description, i, got[i], tc.want[i])
			}
		}
	}
}
