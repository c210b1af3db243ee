package insights

import (
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xeipuuv/gojsonschema"

	"github.com/IshaanNene/BrandLens/internal/types"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	detailedSchema   = mustSchema("schemas/detailed.json")
	simplifiedSchema = mustSchema("schemas/simplified.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	raw, err := schemaFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return s
}

// reply is the JSON object models are asked to return.
type reply struct {
	CompanyName       string      `json:"company_name"`
	Positioning       string      `json:"positioning"`
	ValueProposition  string      `json:"value_proposition"`
	TargetAudience    []string    `json:"target_audience"`
	PersonalityTraits []string    `json:"personality_traits"`
	KeyMessages       []string    `json:"key_messages"`
	Differentiation   []string    `json:"differentiation_factors"`
	SWOT              *types.SWOT `json:"swot"`
	Recommendations   []string    `json:"recommendations"`
}

// decodeReply validates raw against schema and decodes it. The returned
// error is a *types.SchemaError for malformed or non-conforming JSON.
func decodeReply(stage string, schema *gojsonschema.Schema, raw string) (*reply, error) {
	body := cleanJSON(raw)
	if body == "" {
		return nil, &types.SchemaError{Stage: stage, Fields: []string{"empty reply"}}
	}

	res, err := schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, &types.SchemaError{Stage: stage, Fields: []string{"invalid JSON: " + err.Error()}}
	}
	if !res.Valid() {
		fields := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			fields = append(fields, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, &types.SchemaError{Stage: stage, Fields: fields}
	}

	var r reply
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, &types.SchemaError{Stage: stage, Fields: []string{"decode: " + err.Error()}}
	}
	r.sanitize()
	return &r, nil
}

var (
	strictPolicy = bluemonday.StrictPolicy()
	spaceRe      = regexp.MustCompile(`\s+`)
)

// cleanString removes markup from a model-returned string.
func cleanString(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func cleanList(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		s = cleanString(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func (r *reply) sanitize() {
	r.CompanyName = cleanString(r.CompanyName)
	r.Positioning = cleanString(r.Positioning)
	r.ValueProposition = cleanString(r.ValueProposition)
	r.TargetAudience = cleanList(r.TargetAudience)
	r.PersonalityTraits = cleanList(r.PersonalityTraits)
	r.KeyMessages = cleanList(r.KeyMessages)
	r.Differentiation = cleanList(r.Differentiation)
	r.Recommendations = cleanList(r.Recommendations)
	if r.SWOT != nil {
		r.SWOT.Strengths = cleanList(r.SWOT.Strengths)
		r.SWOT.Weaknesses = cleanList(r.SWOT.Weaknesses)
		r.SWOT.Opportunities = cleanList(r.SWOT.Opportunities)
		r.SWOT.Threats = cleanList(r.SWOT.Threats)
	}
}

// placeholderPatterns match template filler that models emit when they
// have nothing real to say.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)lorem ipsum`),
	regexp.MustCompile(`(?i)\byour (company|brand|business|product)\b`),
	regexp.MustCompile(`(?i)\bexample\.(com|org|net)\b`),
	regexp.MustCompile(`(?i)\b(tbd|tba)\b`),
	regexp.MustCompile(`(?i)(^|\s)n/a($|[\s.,])`),
	regexp.MustCompile(`\[[^\]]{2,}\]`),
	regexp.MustCompile(`\{\{[^}]*\}\}`),
	regexp.MustCompile(`<[A-Z][A-Z _]+>`),
}

// IsPlaceholder reports whether s looks like template filler.
func IsPlaceholder(s string) bool {
	for _, re := range placeholderPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Gate thresholds.
const (
	minPopulatedFields = 2
	minValidRatio      = 0.5
	minStringRunes     = 10
	minListItemRunes   = 5
)

// gateField is one field as seen by the quality gate.
type gateField struct {
	name  string
	text  string
	items []string
}

func (r *reply) gateFields() []gateField {
	fs := []gateField{
		{name: "positioning", text: r.Positioning},
		{name: "value_proposition", text: r.ValueProposition},
		{name: "target_audience", items: r.TargetAudience},
		{name: "personality_traits", items: r.PersonalityTraits},
		{name: "key_messages", items: r.KeyMessages},
		{name: "differentiation_factors", items: r.Differentiation},
		{name: "recommendations", items: r.Recommendations},
	}
	if r.SWOT != nil {
		fs = append(fs,
			gateField{name: "swot.strengths", items: r.SWOT.Strengths},
			gateField{name: "swot.weaknesses", items: r.SWOT.Weaknesses},
			gateField{name: "swot.opportunities", items: r.SWOT.Opportunities},
			gateField{name: "swot.threats", items: r.SWOT.Threats},
		)
	}
	return fs
}

// checkQuality applies the quality gate and returns one problem per
// failed check, or nil when the reply is usable.
func checkQuality(r *reply) []string {
	var problems []string
	populated, valid := 0, 0

	for _, f := range r.gateFields() {
		values := f.items
		if f.text != "" {
			values = []string{f.text}
		}
		if len(values) == 0 {
			continue
		}
		populated++

		ok := false
		for _, v := range values {
			if IsPlaceholder(v) {
				problems = append(problems, fmt.Sprintf("%s: placeholder value %q", f.name, v))
				continue
			}
			n := len([]rune(v))
			if (f.text != "" && n > minStringRunes) || (f.text == "" && n > minListItemRunes) {
				ok = true
			}
		}
		if ok {
			valid++
		}
	}

	if IsPlaceholder(r.CompanyName) {
		problems = append(problems, fmt.Sprintf("company_name: placeholder value %q", r.CompanyName))
	}
	if populated < minPopulatedFields {
		problems = append(problems, fmt.Sprintf("only %d populated fields, need %d", populated, minPopulatedFields))
	} else if float64(valid)/float64(populated) < minValidRatio {
		problems = append(problems, fmt.Sprintf("only %d of %d populated fields are substantive", valid, populated))
	}
	return problems
}
