package insights

import (
	"strings"

	"github.com/IshaanNene/BrandLens/internal/parser"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// industryTemplate is the generic profile of an industry. Guided prompts
// hand it to the model as a skeleton; the fallback uses its SWOT.
type industryTemplate struct {
	Traits []string
	SWOT   types.SWOT
}

var industryTemplates = map[string]industryTemplate{
	"healthcare": {
		Traits: []string{"trustworthy", "caring", "professional"},
		SWOT: types.SWOT{
			Strengths:     []string{"Essential service with steady demand"},
			Weaknesses:    []string{"Heavy regulatory and compliance overhead"},
			Opportunities: []string{"Telehealth and digital patient engagement"},
			Threats:       []string{"Data privacy obligations and reimbursement pressure"},
		},
	},
	"technology": {
		Traits: []string{"innovative", "efficient", "forward-looking"},
		SWOT: types.SWOT{
			Strengths:     []string{"Scalable digital delivery"},
			Weaknesses:    []string{"Dependence on continuous product investment"},
			Opportunities: []string{"Automation and AI adoption across customer industries"},
			Threats:       []string{"Fast-moving competitors and platform shifts"},
		},
	},
	"financial services": {
		Traits: []string{"reliable", "secure", "expert"},
		SWOT: types.SWOT{
			Strengths:     []string{"Recurring customer relationships"},
			Weaknesses:    []string{"Legacy systems and compliance cost"},
			Opportunities: []string{"Digital onboarding and self-service tools"},
			Threats:       []string{"Fintech challengers and regulatory change"},
		},
	},
	"education": {
		Traits: []string{"supportive", "knowledgeable", "inspiring"},
		SWOT: types.SWOT{
			Strengths:     []string{"Long-term learner relationships"},
			Weaknesses:    []string{"Seasonal enrollment cycles"},
			Opportunities: []string{"Online and hybrid course delivery"},
			Threats:       []string{"Free online alternatives"},
		},
	},
	"retail": {
		Traits: []string{"approachable", "value-focused", "customer-centric"},
		SWOT: types.SWOT{
			Strengths:     []string{"Direct relationship with buyers"},
			Weaknesses:    []string{"Thin margins and inventory risk"},
			Opportunities: []string{"Personalized e-commerce and loyalty programs"},
			Threats:       []string{"Marketplace giants and price competition"},
		},
	},
	"consulting": {
		Traits: []string{"expert", "strategic", "results-driven"},
		SWOT: types.SWOT{
			Strengths:     []string{"Specialist expertise"},
			Weaknesses:    []string{"Revenue tied to billable capacity"},
			Opportunities: []string{"Productized advisory offerings"},
			Threats:       []string{"In-house teams and low-cost competitors"},
		},
	},
	parser.DefaultIndustry: {
		Traits: []string{"professional", "dependable"},
		SWOT: types.SWOT{
			Strengths:     []string{"Established web presence"},
			Weaknesses:    []string{"Positioning not clearly differentiated online"},
			Opportunities: []string{"Sharper messaging for a defined audience"},
			Threats:       []string{"Competitors with stronger digital marketing"},
		},
	},
}

func templateFor(industry string) industryTemplate {
	if t, ok := industryTemplates[industry]; ok {
		return t
	}
	return industryTemplates[parser.DefaultIndustry]
}

// skeleton renders the template as prompt text.
func (t industryTemplate) skeleton() string {
	var sb strings.Builder
	sb.WriteString("Traits: " + strings.Join(t.Traits, ", ") + "\n")
	for _, sec := range []struct {
		name  string
		items []string
	}{
		{"Strengths", t.SWOT.Strengths},
		{"Weaknesses", t.SWOT.Weaknesses},
		{"Opportunities", t.SWOT.Opportunities},
		{"Threats", t.SWOT.Threats},
	} {
		sb.WriteString(sec.name + ":\n")
		for _, it := range sec.items {
			sb.WriteString("- " + it + "\n")
		}
	}
	return sb.String()
}
