package entity

import "github.com/shopspring/decimal"

// RecalculateTotals recomputes the derived header totals from the item list.
// It is idempotent and safe to run on every read: stale totals self-heal the
// next time the report is fetched.
//
// totalAmount sums each item's INR amount (raw amount when no conversion is
// recorded); the card/personal splits sum by payment method; net
// reimbursement is personal spend minus the non-reimbursable amount.
func RecalculateTotals(r *ExpenseReport) {
	if len(r.Items) == 0 {
		r.TotalAmount = decimal.Zero
		r.UniversityCardAmount = decimal.Zero
		r.PersonalAmount = decimal.Zero
		r.NetReimbursement = decimal.Zero
		return
	}

	total := decimal.Zero
	card := decimal.Zero
	personal := decimal.Zero

	for _, item := range r.Items {
		amount := item.EffectiveAmount()
		total = total.Add(amount)

		switch item.PaymentMethod {
		case PaymentUniversityCard:
			card = card.Add(amount)
		case PaymentPersonalFunds:
			personal = personal.Add(amount)
		}
	}

	r.TotalAmount = total
	r.UniversityCardAmount = card
	r.PersonalAmount = personal
	r.NetReimbursement = personal.Sub(r.NonReimbursableAmount)
}
