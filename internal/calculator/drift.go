package calculator

import "github.com/shopspring/decimal"

// OwedByDrift returns total minus the sum of the owed-by entries, rounded to
// cents. A non-zero drift is reported to callers and never corrected here.
func OwedByDrift(expense ExpenseForBalance) float64 {
	sum := decimal.Zero
	for _, s := range expense.OwedBy {
		sum = sum.Add(decimal.NewFromFloat(s.Amount))
	}
	drift := decimal.NewFromFloat(expense.Amount).Sub(sum).Round(2)
	f, _ := drift.Float64()
	return f
}

// RoundCents rounds an amount to two decimal places for display.
func RoundCents(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}
