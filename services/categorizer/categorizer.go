package categorizer

import (
	// Go Internal Packages
	"regexp"
	"strings"

	// Local Packages
	models "sms-ledger/models"
	utils "sms-ledger/utils"
)

// rule assigns a category when match reports true for the lower-cased text.
// A rule may resolve to different tags depending on the text (direction
// splits), so it returns the tag rather than carrying a fixed one.
type rule struct {
	name  string
	match func(lower string) (models.Category, bool)
}

func when(c models.Category, pred func(string) bool) func(string) (models.Category, bool) {
	return func(lower string) (models.Category, bool) {
		if pred(lower) {
			return c, true
		}
		return "", false
	}
}

func keywords(c models.Category, words ...string) func(string) (models.Category, bool) {
	return when(c, func(lower string) bool { return utils.ContainsAny(lower, words...) })
}

// words matches short keywords only as whole words, so "emi" does not fire
// on "reminder" nor "lic" on "public".
func words(c models.Category, ws ...string) func(string) (models.Category, bool) {
	re := wordPattern(ws...)
	return when(c, re.MatchString)
}

func wordPattern(ws ...string) *regexp.Regexp {
	quoted := make([]string, len(ws))
	for i, w := range ws {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var atmWord = wordPattern("atm")

func upiDirection(lower string) models.Category {
	switch {
	case strings.Contains(lower, "debited"):
		return models.CategoryUPIDebit
	case utils.ContainsAny(lower, "credited", "received"):
		return models.CategoryUPICredit
	}
	return models.CategoryUPIDebit
}

// rules is evaluated top to bottom and the first match wins. Specific rails
// and card statements come before merchant keywords, which come before the
// bare debited/credited fallback.
var rules = []rule{
	{"upi-vpa", func(lower string) (models.Category, bool) {
		if utils.ContainsAll(lower, "upi", "vpa") {
			return upiDirection(lower), true
		}
		return "", false
	}},
	{"bank-transfer", func(lower string) (models.Category, bool) {
		if !utils.ContainsAny(lower, "neft", "imps", "rtgs") {
			return "", false
		}
		if utils.ContainsAny(lower, "credited", "received") && !strings.Contains(lower, "debited") {
			return models.CategoryBankCredit, true
		}
		return models.CategoryBankDebit, true
	}},
	{"card-payment", when(models.CategoryCreditCardPayment, func(lower string) bool {
		return utils.ContainsAny(lower, "credit card", "card") &&
			strings.Contains(lower, "payment") &&
			utils.ContainsAny(lower, "received", "credited", "thank you")
	})},
	{"card-statement", when(models.CategoryCreditCardBill, func(lower string) bool {
		if strings.Contains(lower, "credit card") && utils.ContainsAny(lower, "statement", "bill", "due") {
			return true
		}
		return strings.Contains(lower, "statement") && utils.ContainsAny(lower, "total amount due", "total amt due")
	})},
	{"atm", when(models.CategoryATMWithdrawal, func(lower string) bool {
		return atmWord.MatchString(lower) && utils.ContainsAny(lower, "withdrawn", "withdrawal", "cash")
	})},
	{"upi", func(lower string) (models.Category, bool) {
		if strings.Contains(lower, "upi") {
			return upiDirection(lower), true
		}
		return "", false
	}},
	{"shopping", keywords(models.CategoryShopping, "amazon", "flipkart", "myntra", "ajio", "meesho")},
	{"food", keywords(models.CategoryFoodDining, "swiggy", "zomato", "dominos", "mcdonald")},
	{"transport", keywords(models.CategoryTransportation, "uber", "rapido", "irctc", "metro")},
	{"transport", words(models.CategoryTransportation, "ola")},
	{"recharge", keywords(models.CategoryRecharge, "recharge", "prepaid", "airtel", "vodafone")},
	{"recharge", words(models.CategoryRecharge, "jio")},
	{"bill-payment", keywords(models.CategoryBillPayment, "electricity", "bbps", "water bill", "gas bill", "broadband")},
	{"investment", keywords(models.CategoryInvestment, "mutual fund", "zerodha", "groww")},
	{"investment", words(models.CategoryInvestment, "sip", "nps")},
	{"insurance", keywords(models.CategoryInsurance, "insurance", "premium")},
	{"insurance", words(models.CategoryInsurance, "lic")},
	{"loan", keywords(models.CategoryLoanEMI, "loan")},
	{"loan", words(models.CategoryLoanEMI, "emi", "emis")},
	{"salary", keywords(models.CategorySalaryIncome, "salary")},
	{"refund", keywords(models.CategoryRefund, "refund", "reversal", "cashback")},
	{"debited", keywords(models.CategoryDebit, "debited")},
	{"credited", keywords(models.CategoryCredit, "credited")},
}

// Categorize maps lower-cased message text to a category. It is a pure
// function: the first rule that matches decides.
func Categorize(lower string) models.Category {
	for _, r := range rules {
		if c, ok := r.match(lower); ok {
			return c
		}
	}
	return models.CategoryUnknown
}

// RuleFor returns the name of the rule that decided lower, or "" when none did.
func RuleFor(lower string) string {
	for _, r := range rules {
		if _, ok := r.match(lower); ok {
			return r.name
		}
	}
	return ""
}
