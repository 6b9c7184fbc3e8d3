package scorer

import (
	// Go Internal Packages
	"strings"
	"testing"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category models.Category
		want     float64
	}{
		{"upi with vpa and ref clamps", "Rs 500.00 debited via UPI on 15-May-25 to VPA shop@upi. Ref No 123", models.CategoryUPIDebit, 1.0},
		{"upi without ref", "Rs 99 paid via UPI Lite", models.CategoryUPIDebit, 0.7},
		{"neft with account and ref", "INR 25,000 credited to A/c XX1234 by NEFT. Ref 99", models.CategoryBankCredit, 0.9},
		{"card statement", "Credit Card XX1234 statement: Total Amt Due Rs 4,500, Min Amt Due Rs 225, Due Date 05-Jul-25", models.CategoryCreditCardBill, 1.0},
		{"card payment", "Payment of Rs 4,500 received towards your Credit Card XX1234", models.CategoryCreditCardPayment, 0.9},
		{"atm", "Rs 2,000 withdrawn at ATM", models.CategoryATMWithdrawal, 0.8},
		{"merchant on card", "Rs 1,499 spent on your card at AMAZON", models.CategoryShopping, 0.8},
		{"merchant plain", "Rs 350 at SWIGGY", models.CategoryFoodDining, 0.7},
		{"salary", "Salary of Rs 85,000 credited", models.CategorySalaryIncome, 0.7},
		{"generic debit", "Your a/c is debited for Rs 750", models.CategoryDebit, 0.6},
		{"unknown", "Your OTP is 123456", models.CategoryUnknown, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(strings.ToLower(tt.text), tt.category), 1e-9)
		})
	}
}

func TestScoreIsBounded(t *testing.T) {
	cats := []models.Category{
		models.CategoryUPIDebit, models.CategoryBankDebit, models.CategoryCreditCardBill,
		models.CategoryShopping, models.CategoryDebit, models.CategoryUnknown,
	}
	text := "upi vpa ref no neft account a/c credit card statement due date minimum payment received card atm withdrawn credited"
	for _, c := range cats {
		got := Score(text, c)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}
