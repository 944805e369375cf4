package ledger

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Totals are the derived aggregates of the full, unfiltered ledger.
// They are a pure function of the items and are never persisted.
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

func computeTotals(items []LineItem) Totals {
	income := decimal.Zero
	expenses := decimal.Zero
	for i := range items {
		amount := decimal.NewFromFloat(items[i].Amount)
		switch items[i].Sign {
		case SignCredit:
			income = income.Add(amount)
		case SignDebit:
			expenses = expenses.Add(amount)
		}
	}
	return Totals{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// FormattedTotals carries the three figures rendered in the configured
// currency, e.g. "R$12,50" for BRL. Presentation only.
type FormattedTotals struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

// Formatted renders the totals with the currency's regional format.
func (t Totals) Formatted(currencyCode string) FormattedTotals {
	return FormattedTotals{
		Income:   formatAmount(t.Income, currencyCode),
		Expenses: formatAmount(t.Expenses, currencyCode),
		Balance:  formatAmount(t.Balance, currencyCode),
	}
}

func formatAmount(amount decimal.Decimal, currencyCode string) string {
	cur := money.GetCurrency(currencyCode)
	if cur == nil {
		return amount.StringFixed(2)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, currencyCode).Display()
}
