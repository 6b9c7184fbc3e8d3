package extractor

import (
	// Go Internal Packages
	"regexp"
	"strings"
	"time"

	// Local Packages
	models "sms-ledger/models"
	utils "sms-ledger/utils"

	// External Packages
	"github.com/shopspring/decimal"
)

// Each field of a card message has its own ordered family of patterns.
// Several bank templates overlap; the first pattern in the list wins.
var (
	cardLast4Patterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)card\s+(?:no\.?\s*)?(?:ending\s+(?:with\s+|in\s+)?)?[x*]+(\d{4})\b`),
		regexp.MustCompile(`(?i)ending\s+(?:with\s+|in\s+)?[x*]*(\d{4})\b`),
		regexp.MustCompile(`(?i)\b[x*]{2,}(\d{4})\b`),
	}
	totalDuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+(?:amt|amount)\.?\s+due\s*(?:is|of)?\s*[:\-]?\s*` + currencyExpr + amountExpr),
		regexp.MustCompile(`(?i)total\s+due\s*[:\-]?\s*` + currencyExpr + amountExpr),
		regexp.MustCompile(`(?i)statement\s+(?:amt|amount)\s*[:\-]?\s*` + currencyExpr + amountExpr),
	}
	minimumDuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)min(?:imum)?\.?\s+(?:amt|amount)\.?\s+due\s*(?:is|of)?\s*[:\-]?\s*` + currencyExpr + amountExpr),
		regexp.MustCompile(`(?i)min(?:imum)?\.?\s+due\s*[:\-]?\s*` + currencyExpr + amountExpr),
	}
	dueDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)due\s+(?:date|by|on)\s*(?:is)?\s*[:\-]?\s*` + textDateExpr),
		regexp.MustCompile(`(?i)pay(?:able)?\s+by\s*[:\-]?\s*` + textDateExpr),
	}
	statementDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)statement\s+date\s*(?:is)?\s*[:\-]?\s*` + textDateExpr),
		regexp.MustCompile(`(?i)generated\s+on\s*[:\-]?\s*` + textDateExpr),
	}
	billPeriodPattern = regexp.MustCompile(`(?i)statement\s+for\s+(?:the\s+month\s+of\s+)?([a-z]{3})[a-z]*[\s\-']+(\d{4}|\d{2})\b`)
)

// firstSubmatch returns the submatches of the first pattern that matches.
func firstSubmatch(patterns []*regexp.Regexp, text string) []string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}

func firstAmount(patterns []*regexp.Regexp, text string) (decimal.Decimal, bool) {
	m := firstSubmatch(patterns, text)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmount(m[1])
}

func firstDate(patterns []*regexp.Regexp, text string) (time.Time, bool) {
	m := firstSubmatch(patterns, text)
	if m == nil {
		return time.Time{}, false
	}
	return buildDate(m[1], m[2], m[3])
}

// ExtractCardLast4 returns the last four digits of the card named in text.
func ExtractCardLast4(text string) (string, bool) {
	m := firstSubmatch(cardLast4Patterns, text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractBill parses a credit card statement. Card, total due and due date
// are required; the minimum due defaults to zero, the statement date to the
// receipt time and the bill period to the statement month.
func ExtractBill(text string, receivedAt time.Time) (models.CreditCardBill, bool) {
	last4, ok := ExtractCardLast4(text)
	if !ok {
		return models.CreditCardBill{}, false
	}
	total, ok := firstAmount(totalDuePatterns, text)
	if !ok {
		return models.CreditCardBill{}, false
	}
	due, ok := firstDate(dueDatePatterns, text)
	if !ok {
		return models.CreditCardBill{}, false
	}

	minimum, ok := firstAmount(minimumDuePatterns, text)
	if !ok {
		minimum = decimal.Zero
	}
	statement, ok := firstDate(statementDatePatterns, text)
	if !ok {
		statement = receivedAt.UTC()
	}

	return models.CreditCardBill{
		CardLast4:       last4,
		BankName:        ExtractBank(text),
		BillPeriod:      billPeriod(text, statement),
		TotalAmount:     total,
		MinimumDue:      minimum,
		DueDate:         due,
		StatementDate:   statement,
		Status:          models.BillUnpaid,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		SourceText:      text,
	}, true
}

// billPeriod returns a label such as "JUN-25".
func billPeriod(text string, statement time.Time) string {
	if m := billPeriodPattern.FindStringSubmatch(text); m != nil {
		if _, ok := months[strings.ToLower(m[1])]; ok {
			year := m[2]
			return strings.ToUpper(m[1]) + "-" + year[len(year)-2:]
		}
	}
	return strings.ToUpper(statement.Format("Jan-06"))
}

// ExtractPayment parses a payment made towards a credit card. Card and
// amount are required; the date degrades to the receipt time.
func ExtractPayment(text string, receivedAt time.Time) (models.CreditCardPayment, bool) {
	last4, ok := ExtractCardLast4(text)
	if !ok {
		return models.CreditCardPayment{}, false
	}
	amount, ok := ExtractAmount(text)
	if !ok {
		return models.CreditCardPayment{}, false
	}
	date, _ := ExtractDate(text, receivedAt)

	return models.CreditCardPayment{
		CardLast4:     last4,
		BankName:      ExtractBank(text),
		PaymentAmount: amount,
		PaymentDate:   date,
		PaymentMethod: paymentChannel(strings.ToLower(text)),
		SourceText:    text,
	}, true
}

func paymentChannel(lower string) string {
	switch {
	case strings.Contains(lower, "upi"):
		return "upi"
	case utils.ContainsAny(lower, "neft", "imps", "rtgs", "net banking", "netbanking"):
		return "net_banking"
	case utils.ContainsAny(lower, "autopay", "auto debit", "auto-debit", "standing instruction"):
		return "autopay"
	case strings.Contains(lower, "debit card"):
		return "debit_card"
	}
	return "unknown"
}
