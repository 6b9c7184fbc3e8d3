package extractor

import (
	// Local Packages
	models "sms-ledger/models"
	utils "sms-ledger/utils"
)

// ExtractDirection resolves debit or credit from lower-cased text. Explicit
// verbs win over hints taken from the category; debit is the default.
func ExtractDirection(lower string, category models.Category) models.Direction {
	switch {
	case utils.ContainsAny(lower, "debited", "withdrawn"):
		return models.Debit
	case utils.ContainsAny(lower, "credited", "received"):
		return models.Credit
	}

	for _, hint := range []string{"credit", "salary", "income", "refund"} {
		if category.Contains(hint) {
			return models.Credit
		}
	}
	for _, hint := range []string{"debit", "withdrawal"} {
		if category.Contains(hint) {
			return models.Debit
		}
	}
	return models.Debit
}
