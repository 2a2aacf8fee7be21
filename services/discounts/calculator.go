package discounts

import "linguadesk_go/models"

// Result is the outcome of applying a student's active discounts to a charge.
type Result struct {
	OriginalAmount float64 `json:"original_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

// Calculate sums the contribution of every active discount and clamps the
// result so a charge never goes below zero. Percentage discounts contribute
// originalAmount*value/100, fixed discounts contribute value. The sum is
// commutative, so the order of discounts does not matter.
func Calculate(originalAmount float64, list []models.Discount) Result {
	if originalAmount <= 0 {
		return Result{OriginalAmount: originalAmount}
	}

	var total float64
	for _, d := range list {
		if !d.IsActive {
			continue
		}
		if d.IsPercentage {
			total += originalAmount * d.DiscountValue / 100
		} else {
			total += d.DiscountValue
		}
	}

	discount := total
	if discount > originalAmount {
		discount = originalAmount
	}
	final := originalAmount - total
	if final < 0 {
		final = 0
	}

	return Result{
		OriginalAmount: originalAmount,
		DiscountAmount: discount,
		FinalAmount:    final,
	}
}
