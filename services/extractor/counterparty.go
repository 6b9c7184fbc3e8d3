package extractor

import (
	// Go Internal Packages
	"regexp"
	"strings"

	// Local Packages
	models "sms-ledger/models"
	utils "sms-ledger/utils"
)

const (
	// nameExpr captures one or more space separated tokens; the first token is
	// greedy, further tokens are added only until a terminator fits.
	nameExpr = `([A-Za-z0-9][A-Za-z0-9@._&'/-]*(?: [A-Za-z0-9@._&'/-]+)*?)`
	termExpr = `(?:\s+(?:on|via|ref|upi|for|at|with|thru|avl|if|not|using|in|info|towards|dated)\b|\s*[,;:()]|\.(?:\s|$)|\s+-\s|$)`
	vpaExpr  = `(?:vpa\s+)?`
)

func counterpartyPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + prefix + vpaExpr + nameExpr + termExpr)
}

// Ordered pattern families per direction; the first acceptable candidate wins.
var (
	creditPatterns = []*regexp.Regexp{
		counterpartyPattern(`\bfrom\s+`),
		counterpartyPattern(`\breceived\s+from\s+`),
		counterpartyPattern(`\bcredited\s+by\s+`),
		counterpartyPattern(`\bsender\s*:\s*`),
	}
	debitPatterns = []*regexp.Regexp{
		counterpartyPattern(`\bto\s+`),
		counterpartyPattern(`\bpaid\s+to\s+`),
		counterpartyPattern(`\bsent\s+to\s+`),
		counterpartyPattern(`\brecipient\s*:\s*`),
		// UPI pass-through narration: "debited ...; SHOP credited" or
		// "debited ... and VPA x@y credited".
		regexp.MustCompile(`(?i)debited.*?(?:;|\band\b)\s*` + vpaExpr + `([A-Za-z0-9][A-Za-z0-9@._&'/ -]*?)\s+credited`),
	}
)

var capitalizedWord = regexp.MustCompile(`\b[A-Z][A-Za-z]+\b`)

var stopWords = map[string]struct{}{}

var holderWords = map[string]struct{}{
	"your": {}, "you": {}, "a/c": {}, "ac": {}, "acct": {}, "account": {}, "self": {},
}

func init() {
	for _, w := range []string{
		"ICICI", "BANK", "ACCT", "UPI", "CALL", "SMS", "BLOCK", "DEAR", "CUSTOMER",
		"YOUR", "YOU", "RS", "INR", "VPA", "REF", "NO", "AVL", "BAL", "LMT", "NOT",
		"TXN", "INFO", "AC", "ON", "IF", "THE", "IS", "HDFC", "SBI", "AXIS", "KOTAK",
		"DEBITED", "CREDITED", "FOR", "TO", "FROM", "VIA", "AT", "ACCOUNT", "CARD",
		"CREDIT", "DEBIT", "OTP", "NEFT", "IMPS", "RTGS", "ATM", "THANK", "PAYMENT",
		"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
	} {
		stopWords[w] = struct{}{}
	}
}

// ExtractCounterparty returns the upper-cased name of the other party, or ""
// when nothing plausible is found.
func ExtractCounterparty(text string, direction models.Direction) string {
	patterns := debitPatterns
	if direction == models.Credit {
		patterns = creditPatterns
	}

	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name, ok := acceptName(m[1]); ok {
				return name
			}
		}
	}

	for _, w := range capitalizedWord.FindAllString(text, -1) {
		upper := strings.ToUpper(w)
		if _, stop := stopWords[upper]; !stop {
			return upper
		}
	}
	return ""
}

// acceptName cleans a captured candidate and rejects ones that point back at
// the account holder or are bare numbers.
func acceptName(raw string) (string, bool) {
	name := strings.TrimRight(utils.CollapseSpaces(raw), ".-/'")
	if name == "" {
		return "", false
	}

	first := strings.ToLower(strings.Fields(name)[0])
	if _, self := holderWords[first]; self {
		return "", false
	}
	if strings.Trim(name, "0123456789") == "" {
		return "", false
	}
	return strings.ToUpper(name), true
}
