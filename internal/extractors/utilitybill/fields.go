package utilitybill

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Recognition patterns for utility bill information. Tuned for the
// layouts of the major US utilities (PG&E, SCE, SDG&E).
var (
	amountPattern  = regexp.MustCompile(`\$\s*\d{1,3}(?:,\d{3})*\.\d{2}`)
	datePattern    = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{4}\b`)
	kwhPattern     = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*kwh`)
	thermPattern   = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*therms?`)
	accountPattern = regexp.MustCompile(`(?i)(?:account|acct)[\s#:.]*(\d{5,})`)
	totalPattern   = regexp.MustCompile(`(?i)(?:total|amount)[\s\w]*?(?:due)?[\s:]*(\$\s*\d{1,3}(?:,\d{3})*\.\d{2})`)
	periodPattern  = regexp.MustCompile(`(?i)(?:service|bill(?:ing)?)\s+(?:period|date)[\s:]*(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})\s*(?:to|-)?\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})?`)
)

// Structured field names recovered from bills.
const (
	FieldTotalAmount   = "total_amount"
	FieldAccountNumber = "account_number"
	FieldBillingPeriod = "billing_period"
	FieldKWHUsage      = "kwh_usage"
	FieldThermUsage    = "therm_usage"
	FieldAmounts       = "amounts"
	FieldDates         = "dates"
)

// ParseFields recovers structured key-value fields from bill text.
// Amounts are normalised to plain decimals ("142.50"); implausible
// values (outside the $10-$2000 utility bill range) are dropped.
func ParseFields(text string) map[string]string {
	fields := make(map[string]string)

	if amount, ok := parseTotal(text); ok {
		fields[FieldTotalAmount] = amount
	}

	if m := accountPattern.FindStringSubmatch(text); m != nil {
		fields[FieldAccountNumber] = m[1]
	}

	if m := periodPattern.FindStringSubmatch(text); m != nil {
		period := m[1]
		if m[2] != "" {
			period = m[1] + " to " + m[2]
		}
		fields[FieldBillingPeriod] = period
	}

	if m := kwhPattern.FindStringSubmatch(text); m != nil {
		fields[FieldKWHUsage] = strings.ReplaceAll(m[1], ",", "")
	}

	if m := thermPattern.FindStringSubmatch(text); m != nil {
		fields[FieldThermUsage] = strings.ReplaceAll(m[1], ",", "")
	}

	if amounts := uniqueAmounts(text); len(amounts) > 0 {
		fields[FieldAmounts] = strings.Join(amounts, ", ")
	}

	if dates := uniqueMatches(datePattern, text); len(dates) > 0 {
		fields[FieldDates] = strings.Join(dates, ", ")
	}

	return fields
}

// SynthesiseText renders the recovered fields as plain sentences so
// retrieval can match on them alongside the narrative text.
func SynthesiseText(fields map[string]string) string {
	var lines []string

	if v, ok := fields[FieldTotalAmount]; ok {
		lines = append(lines, fmt.Sprintf("Total amount due: $%s.", v))
	}
	if v, ok := fields[FieldAccountNumber]; ok {
		lines = append(lines, fmt.Sprintf("Account number: %s.", v))
	}
	if v, ok := fields[FieldBillingPeriod]; ok {
		lines = append(lines, fmt.Sprintf("Billing period: %s.", v))
	}
	if v, ok := fields[FieldKWHUsage]; ok {
		lines = append(lines, fmt.Sprintf("Electricity usage: %s kWh.", v))
	}
	if v, ok := fields[FieldThermUsage]; ok {
		lines = append(lines, fmt.Sprintf("Gas usage: %s therms.", v))
	}

	return strings.Join(lines, "\n")
}

// parseTotal finds the bill total, preferring an explicit "total due"
// label and falling back to the largest plausible amount on the bill.
func parseTotal(text string) (string, bool) {
	if m := totalPattern.FindStringSubmatch(text); m != nil {
		if amount, ok := normaliseAmount(m[1]); ok {
			return amount, true
		}
	}

	// Fall back to the largest plausible amount.
	var best float64
	found := false
	for _, raw := range amountPattern.FindAllString(text, -1) {
		if amount, ok := normaliseAmount(raw); ok {
			v, _ := strconv.ParseFloat(amount, 64)
			if !found || v > best {
				best = v
				found = true
			}
		}
	}
	if found {
		return strconv.FormatFloat(best, 'f', 2, 64), true
	}
	return "", false
}

// normaliseAmount strips currency formatting and validates the value
// against the plausible utility bill range.
func normaliseAmount(raw string) (string, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", false
	}
	if v < 10.0 || v > 2000.0 {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', 2, 64), true
}

// uniqueAmounts returns the distinct plausible amounts found, sorted.
func uniqueAmounts(text string) []string {
	seen := make(map[string]bool)
	for _, raw := range amountPattern.FindAllString(text, -1) {
		if amount, ok := normaliseAmount(raw); ok {
			seen[amount] = true
		}
	}
	amounts := make([]string, 0, len(seen))
	for a := range seen {
		amounts = append(amounts, a)
	}
	sort.Strings(amounts)
	return amounts
}

// uniqueMatches returns the distinct matches of a pattern, sorted.
func uniqueMatches(pattern *regexp.Regexp, text string) []string {
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllString(text, -1) {
		seen[m] = true
	}
	matches := make([]string, 0, len(seen))
	for m := range seen {
		matches = append(matches, m)
	}
	sort.Strings(matches)
	return matches
}
