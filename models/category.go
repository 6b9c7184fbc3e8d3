package models

import "strings"

// Category is the closed set of tags the categorizer can assign.
type Category string

const (
	CategoryUPIDebit          Category = "upi_debit"
	CategoryUPICredit         Category = "upi_credit"
	CategoryBankCredit        Category = "bank_credit"
	CategoryBankDebit         Category = "bank_debit"
	CategoryCreditCardBill    Category = "credit_card_bill"
	CategoryCreditCardPayment Category = "credit_card_payment"
	CategoryATMWithdrawal     Category = "atm_withdrawal"
	CategoryShopping          Category = "shopping"
	CategoryFoodDining        Category = "food_dining"
	CategoryTransportation    Category = "transportation"
	CategoryRecharge          Category = "recharge"
	CategoryBillPayment       Category = "bill_payment"
	CategoryInvestment        Category = "investment"
	CategoryInsurance         Category = "insurance"
	CategoryLoanEMI           Category = "loan_emi"
	CategorySalaryIncome      Category = "salary_income"
	CategoryRefund            Category = "refund"
	CategoryDebit             Category = "Debit"
	CategoryCredit            Category = "Credit"
	CategoryUnknown           Category = "unknown"
)

// Contains reports whether the lower-cased tag contains sub.
func (c Category) Contains(sub string) bool {
	return strings.Contains(strings.ToLower(string(c)), sub)
}

// IsUPI reports whether c is one of the upi_* tags.
func (c Category) IsUPI() bool {
	return c == CategoryUPIDebit || c == CategoryUPICredit
}

// IsBankTransfer reports whether c is one of the bank_* tags.
func (c Category) IsBankTransfer() bool {
	return c == CategoryBankDebit || c == CategoryBankCredit
}
