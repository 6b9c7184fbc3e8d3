package extractor

import (
	// Go Internal Packages
	"strings"

	// Local Packages
	utils "sms-ledger/utils"
)

const UnknownBank = "Unknown Bank"

var banks = []struct {
	name     string
	keywords []string
}{
	{"HDFC Bank", []string{"hdfc"}},
	{"ICICI Bank", []string{"icici"}},
	{"State Bank of India", []string{"sbi", "state bank"}},
	{"Axis Bank", []string{"axis"}},
	{"Kotak Mahindra Bank", []string{"kotak"}},
	{"Yes Bank", []string{"yes bank", "yesbank"}},
	{"IDFC First Bank", []string{"idfc"}},
	{"IndusInd Bank", []string{"indusind"}},
	{"Punjab National Bank", []string{"pnb", "punjab national"}},
	{"Bank of Baroda", []string{"bank of baroda", "bob "}},
	{"Canara Bank", []string{"canara"}},
	{"Union Bank of India", []string{"union bank"}},
	{"Federal Bank", []string{"federal bank"}},
	{"Citibank", []string{"citi"}},
	{"RBL Bank", []string{"rbl"}},
	{"AU Small Finance Bank", []string{"au small finance", "au bank"}},
}

// ExtractBank returns the first listed bank whose keyword occurs in text.
func ExtractBank(text string) string {
	lower := strings.ToLower(text)
	for _, b := range banks {
		if utils.ContainsAny(lower, b.keywords...) {
			return b.name
		}
	}
	return UnknownBank
}
