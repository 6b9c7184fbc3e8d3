package scorer

import (
	// Local Packages
	models "sms-ledger/models"
	utils "sms-ledger/utils"
)

const baseConfidence = 0.5

// signal adds bonus when the category applies and the text corroborates it.
type signal struct {
	applies func(models.Category) bool
	present func(lower string) bool
	bonus   float64
}

func is(cats ...models.Category) func(models.Category) bool {
	return func(c models.Category) bool {
		for _, want := range cats {
			if c == want {
				return true
			}
		}
		return false
	}
}

func allOf(words ...string) func(string) bool {
	return func(lower string) bool { return utils.ContainsAll(lower, words...) }
}

func anyOf(words ...string) func(string) bool {
	return func(lower string) bool { return utils.ContainsAny(lower, words...) }
}

var merchantCategories = is(
	models.CategoryShopping, models.CategoryFoodDining, models.CategoryTransportation,
	models.CategoryRecharge, models.CategoryBillPayment, models.CategoryInvestment,
	models.CategoryInsurance, models.CategoryLoanEMI,
)

var signals = []signal{
	{models.Category.IsUPI, allOf("vpa", "ref no"), 0.3},
	{models.Category.IsUPI, anyOf("upi"), 0.2},
	{models.Category.IsBankTransfer, func(l string) bool {
		return utils.ContainsAny(l, "neft", "imps", "rtgs") && utils.ContainsAny(l, "account", "a/c")
	}, 0.3},
	{models.Category.IsBankTransfer, anyOf("ref"), 0.1},
	{is(models.CategoryCreditCardBill), allOf("credit card", "statement", "due date"), 0.4},
	{is(models.CategoryCreditCardBill), anyOf("minimum", "min amt", "min. amt"), 0.1},
	{is(models.CategoryCreditCardPayment), allOf("payment", "received"), 0.3},
	{is(models.CategoryCreditCardPayment), anyOf("card"), 0.1},
	{is(models.CategoryATMWithdrawal), allOf("atm", "withdrawn"), 0.3},
	{merchantCategories, func(string) bool { return true }, 0.2},
	{merchantCategories, anyOf("card", "upi"), 0.1},
	{is(models.CategorySalaryIncome, models.CategoryRefund), anyOf("credited"), 0.2},
	{is(models.CategoryDebit, models.CategoryCredit), anyOf("a/c", "account"), 0.1},
}

// Score returns an advisory confidence in [0,1] for lower-cased text that
// was classified as category. It starts at 0.5 and adds a fixed bonus for
// every corroborating signal.
func Score(lower string, category models.Category) float64 {
	score := baseConfidence
	for _, s := range signals {
		if s.applies(category) && s.present(lower) {
			score += s.bonus
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
