package categorizer

import (
	"regexp"

	"finpipe/bank-csv/internal/models"
)

// keywordRuleConfidence is assigned to every keyword rule hit.
const keywordRuleConfidence = 0.95

// keywordRule pairs a category with the patterns that imply it. Patterns are
// matched case-insensitively against the lowercased description.
type keywordRule struct {
	category string
	patterns []*regexp.Regexp
}

// keywordRules is evaluated in order, first match wins. Uncounted comes
// first: exchange noise, top-ups and peer-to-peer payments often contain
// merchant-like words and must never reach the generic categories below.
var keywordRules = []keywordRule{
	{models.CategoryUncounted, compilePatterns(
		`\bexchanged to (eur|chf|usd|huf|cad)\b`,
		`\btop-up by \*`,
		`\bbalance migration\b`,
		`(payment from|transfer (to|from))\s+[a-z]`,
		`debit\s+(mobile banking|ebanking mobile|standing order|account transfer):`,
		`^revolut\s+(bank|ltd)`,
		`twint:\s*,\s*.*\+\d+`,
	)},
	{models.CategoryUtilities, compilePatterns(
		`\b(swisscom|sunrise|upc|telecom|electricity|water|gas|energie|power|hydro|utility|bill)\b`,
	)},
	{models.CategoryLeisure, compilePatterns(
		`\b(netflix|spotify|youtube|steam|twitch|gaming|playstation|xbox|disney|hulu|hbo)\b`,
		`\b(cinema|movie|theater|concert|museum)\b`,
	)},
	{models.CategoryGroceries, compilePatterns(
		`\b(migros|coop|denner|aldi|lidl|volg|carrefour|edeka|supermarket|market|grocery)\b`,
	)},
	{models.CategoryDining, compilePatterns(
		`\b(restaurant|pizza|burger|mcdonald|starbucks|cafe|coffee|food|delivery)\b`,
		`\b(domino|kfc|subway|burger king|thai|sushi|chinese|italian)\b`,
	)},
	{models.CategoryTransport, compilePatterns(
		`\b(sbb|vbz|uber|taxi|shell|bp|chevron|fuel|gas station|charging|train|railway)\b`,
		`\b(parking|automat|petrol|diesel)\b`,
	)},
	{models.CategoryShopping, compilePatterns(
		`\b(amazon|ebay|zalando|h&m|zara|fashion|clothing|store|shop)\b`,
		`\b(digitec|galaxus|mediamarkt|electronics)\b`,
	)},
	{models.CategoryTravel, compilePatterns(
		`\b(booking|airbnb|hotel|flight|airline|ryanair|easyjet|swiss|lufthansa)\b`,
		`\b(hostel|airport|train ticket|train fare)\b`,
	)},
	{models.CategoryHealth, compilePatterns(
		`\b(pharmacy|pharma|doctor|medical|dentist|hospital|clinic|health)\b`,
		`\b(dm drogerie|medicine|vitamins)\b`,
	)},
	// "transfer" and "payment from" are deliberately absent here, they are
	// too generic and belong to the Uncounted patterns above.
	{models.CategoryBankTransfer, compilePatterns(
		`\b(wire|revolut|paypal)\b`,
	)},
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(expr)
	}
	return patterns
}

// matchKeywordRules returns the first rule category matching the lowercased
// description, with ok=false when nothing matches.
func matchKeywordRules(lowered string) (string, bool) {
	for _, rule := range keywordRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(lowered) {
				return rule.category, true
			}
		}
	}
	return "", false
}
