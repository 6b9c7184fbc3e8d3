package extractor

import (
	// Go Internal Packages
	"regexp"
	"strings"

	// Local Packages
	models "sms-ledger/models"
	utils "sms-ledger/utils"
)

var atmWord = regexp.MustCompile(`\batm\b`)

var methodRules = []struct {
	method models.PaymentMethod
	match  func(lower string) bool
}{
	{models.MethodUPI, func(l string) bool { return strings.Contains(l, "upi") }},
	{models.MethodCreditCard, func(l string) bool { return strings.Contains(l, "credit card") }},
	{models.MethodDebitCard, func(l string) bool { return strings.Contains(l, "debit card") }},
	{models.MethodNetBanking, func(l string) bool { return utils.ContainsAny(l, "neft", "imps", "rtgs") }},
	{models.MethodCash, atmWord.MatchString},
	{models.MethodCash, func(l string) bool { return strings.Contains(l, "cash") }},
	{models.MethodWallet, func(l string) bool { return strings.Contains(l, "wallet") }},
}

// ExtractMethod returns the payment method named in lower-cased text, falling
// back to what the category implies, then to unknown.
func ExtractMethod(lower string, category models.Category) models.PaymentMethod {
	for _, r := range methodRules {
		if r.match(lower) {
			return r.method
		}
	}

	switch {
	case category.IsUPI():
		return models.MethodUPI
	case category == models.CategoryCreditCardBill, category == models.CategoryCreditCardPayment:
		return models.MethodCreditCard
	case category.IsBankTransfer():
		return models.MethodNetBanking
	case category == models.CategoryATMWithdrawal:
		return models.MethodCash
	}
	return models.MethodUnknown
}
