package receipt

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4}\b`),
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*\d+\.?\d{0,2}`),
	regexp.MustCompile(`\b\d+\.\d{2}\b`),
	regexp.MustCompile(`(?i)(?:total|amount|sum)[\s:]*\$?\s*\d+\.?\d{0,2}`),
}

var notAmount = regexp.MustCompile(`[^0-9.]`)

type keywordCategory struct {
	name     string
	keywords []string
}

// categoryKeywords is ordered; ties go to the earlier category. A keyword
// listed twice scores twice: burger, pizza, coffee and tea appear both as
// venues and as items.
var categoryKeywords = []keywordCategory{
	{"Food & Dining", []string{
		"restaurant", "cafe", "food", "pizza", "burger", "coffee", "starbucks",
		"mcdonalds", "subway", "dominos", "kfc", "taco bell", "wendys", "chipotle",
		"panera", "dunkin", "bakery", "bistro", "deli", "tea", "beef", "chicken",
		"pork", "fish", "seafood", "salmon", "shrimp", "lamb", "turkey", "rice",
		"bread", "pasta", "noodles", "soup", "salad", "sandwich", "wrap", "burger",
		"pizza", "fries", "wings", "tacos", "burrito", "quesadilla", "nachos",
		"coffee", "tea", "juice", "soda", "beer",
		"wine", "cocktail", "smoothie", "shake", "dessert", "cake", "pie", "cookie",
		"ice cream", "donut", "muffin", "breakfast", "lunch", "dinner", "brunch",
		"appetizer", "entree", "main course",
	}},
	{"Groceries", []string{
		"grocery", "supermarket", "walmart", "target", "costco", "safeway", "kroger",
		"whole foods", "market", "fresh", "organic", "produce", "dairy", "frozen",
		"canned goods", "milk", "eggs", "butter", "cheese", "yogurt", "fruits",
		"vegetables", "meat", "deli",
	}},
	{"Gas & Fuel", []string{"gas", "fuel", "shell", "exxon", "chevron", "bp", "mobil", "station", "petrol", "diesel"}},
	{"Shopping", []string{"mall", "store", "shop", "amazon", "ebay", "clothing", "electronics", "retail"}},
	{"Healthcare", []string{"pharmacy", "hospital", "clinic", "medical", "cvs", "walgreens", "doctor", "medicine"}},
	{"Transportation", []string{"uber", "lyft", "taxi", "bus", "train", "airline", "parking", "metro", "transit"}},
	{"Entertainment", []string{"movie", "theater", "cinema", "concert", "show", "netflix", "spotify", "game"}},
	{"Utilities", []string{"electric", "water", "gas bill", "internet", "phone", "cable", "utility"}},
}

// boostedFood are food words strong enough to outweigh merchant keywords.
var boostedFood = map[string]bool{
	"tea": true, "beef": true, "chicken": true, "coffee": true, "rice": true, "bread": true,
}

const foodBoost = 2

// ExtractDate returns the first date-like substring, trying each pattern in order.
func ExtractDate(text string) string {
	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// ExtractAmount returns the largest amount-like value in text, formatted
// without trailing zeros, or "" when none is positive.
func ExtractAmount(text string) string {
	var best float64
	for _, p := range amountPatterns {
		for _, m := range p.FindAllString(text, -1) {
			v, err := strconv.ParseFloat(notAmount.ReplaceAllString(m, ""), 64)
			if err != nil {
				continue
			}
			if v > best {
				best = v
			}
		}
	}
	if best <= 0 {
		return ""
	}
	return decimal.NewFromFloat(best).String()
}

// Categorize scores each category by the number of its keywords present in
// text. Zero everywhere yields "".
func Categorize(text string) string {
	lower := strings.ToLower(text)
	best, bestScore := "", 0
	for _, c := range categoryKeywords {
		score := 0
		for _, kw := range c.keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			score++
			if c.name == "Food & Dining" && boostedFood[kw] {
				score += foodBoost
			}
		}
		if score > bestScore {
			best, bestScore = c.name, score
		}
	}
	return best
}

// Fallback applies the deterministic rules to text.
func Fallback(text string) Result {
	return Result{
		Category: Categorize(text),
		Amount:   ExtractAmount(text),
		Date:     ExtractDate(text),
	}
}

// RuleAnalyzer is an Analyzer backed only by the deterministic rules.
type RuleAnalyzer struct{}

func (RuleAnalyzer) Analyze(_ context.Context, text string) (Result, error) {
	return Fallback(text), nil
}
