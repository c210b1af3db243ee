package parser

import (
	"regexp"
	"strings"
)

// DefaultIndustry is reported when no category has enough evidence.
const DefaultIndustry = "general business"

// minIndustryScore keeps a single generic word like "care" from deciding.
const minIndustryScore = 2

// Repeats of one keyword stop counting after this many.
const maxKeywordRepeats = 3

type industry struct {
	name     string
	keywords []*industryKeyword
}

type industryKeyword struct {
	weight int
	re     *regexp.Regexp
}

// industries is in tie-break priority order.
var industries = []industry{
	newIndustry("healthcare",
		"health", "healthcare", "health care", "medical", "patient", "patients", "clinical", "clinic",
		"care", "treatment", "therapy", "hospital", "pharmaceutical", "wellness"),
	newIndustry("technology",
		"software", "platform", "digital", "cloud", "data", "ai", "artificial intelligence",
		"machine learning", "saas", "api", "developer", "developers", "innovation", "technology"),
	newIndustry("financial services",
		"financial", "finance", "investment", "investing", "banking", "bank", "capital", "fund",
		"wealth", "insurance", "payments", "asset management", "fintech"),
	newIndustry("education",
		"education", "learning", "student", "students", "academic", "university", "course",
		"courses", "school", "curriculum", "online learning"),
	newIndustry("retail",
		"shop", "store", "retail", "ecommerce", "e-commerce", "products", "cart", "checkout",
		"free shipping", "fashion", "apparel"),
	newIndustry("consulting",
		"consulting", "consultancy", "advisory", "management consulting", "consultants",
		"professional services"),
}

func newIndustry(name string, keywords ...string) industry {
	ind := industry{name: name}
	for _, kw := range keywords {
		ind.keywords = append(ind.keywords, &industryKeyword{
			weight: keywordWeight(kw),
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
		})
	}
	return ind
}

// keywordWeight favors multi-word phrases, then longer single words.
func keywordWeight(kw string) int {
	w := 1 + 2*(len(strings.Fields(kw))-1)
	if len(kw) >= 8 {
		w++
	}
	return w
}

// ClassifyIndustry picks the best-scoring category for the given texts and
// returns it with its weighted keyword score. The score never drops when
// text is added, even if the winning category changes.
func ClassifyIndustry(texts ...string) (string, int) {
	corpus := strings.ToLower(strings.Join(texts, " "))
	if strings.TrimSpace(corpus) == "" {
		return DefaultIndustry, 0
	}

	best, bestScore := DefaultIndustry, 0
	for _, ind := range industries {
		score := 0
		for _, kw := range ind.keywords {
			score += len(kw.re.FindAllStringIndex(corpus, maxKeywordRepeats)) * kw.weight
		}
		// Strictly greater keeps the earlier category on ties.
		if score > bestScore {
			best, bestScore = ind.name, score
		}
	}

	if bestScore < minIndustryScore {
		return DefaultIndustry, 0
	}
	return best, bestScore
}
