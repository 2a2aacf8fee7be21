package discounts

import (
	"testing"

	"linguadesk_go/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		originalAmount float64
		discounts      []models.Discount
		wantDiscount   float64
		wantFinal      float64
	}{
		{
			name:           "no discounts",
			originalAmount: 100,
			discounts:      nil,
			wantDiscount:   0,
			wantFinal:      100,
		},
		{
			name:           "percentage and fixed stack additively",
			originalAmount: 100,
			discounts: []models.Discount{
				{IsPercentage: true, DiscountValue: 10, IsActive: true},
				{IsPercentage: false, DiscountValue: 5, IsActive: true},
			},
			wantDiscount: 15,
			wantFinal:    85,
		},
		{
			name:           "order does not matter",
			originalAmount: 100,
			discounts: []models.Discount{
				{IsPercentage: false, DiscountValue: 5, IsActive: true},
				{IsPercentage: true, DiscountValue: 10, IsActive: true},
			},
			wantDiscount: 15,
			wantFinal:    85,
		},
		{
			name:           "inactive discounts are ignored",
			originalAmount: 200,
			discounts: []models.Discount{
				{IsPercentage: true, DiscountValue: 50, IsActive: false},
				{IsPercentage: false, DiscountValue: 20, IsActive: true},
			},
			wantDiscount: 20,
			wantFinal:    180,
		},
		{
			name:           "discount exceeding charge clamps to zero",
			originalAmount: 100,
			discounts: []models.Discount{
				{IsPercentage: false, DiscountValue: 150, IsActive: true},
			},
			wantDiscount: 100,
			wantFinal:    0,
		},
		{
			name:           "full percentage discount",
			originalAmount: 80,
			discounts: []models.Discount{
				{IsPercentage: true, DiscountValue: 100, IsActive: true},
			},
			wantDiscount: 80,
			wantFinal:    0,
		},
		{
			name:           "zero amount yields zero result",
			originalAmount: 0,
			discounts: []models.Discount{
				{IsPercentage: false, DiscountValue: 10, IsActive: true},
			},
			wantDiscount: 0,
			wantFinal:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.originalAmount, tt.discounts)
			if got.OriginalAmount != tt.originalAmount {
				t.Errorf("OriginalAmount = %v, want %v", got.OriginalAmount, tt.originalAmount)
			}
			if got.DiscountAmount != tt.wantDiscount {
				t.Errorf("DiscountAmount = %v, want %v", got.DiscountAmount, tt.wantDiscount)
			}
			if got.FinalAmount != tt.wantFinal {
				t.Errorf("FinalAmount = %v, want %v", got.FinalAmount, tt.wantFinal)
			}
		})
	}
}
