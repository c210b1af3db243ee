package types

import "time"

// ProfileStatus is the terminal state of one brand analysis.
type ProfileStatus string

const (
	StatusSuccess ProfileStatus = "success"
	StatusFailed  ProfileStatus = "failed"
)

// BrandProfile is the output record for one analyzed brand.
// Once emitted by the aggregator it is treated as immutable.
type BrandProfile struct {
	URL               string             `json:"url"                         bson:"url"`
	BrandNameGuess    string             `json:"brandNameGuess,omitempty"    bson:"brand_name_guess,omitempty"`
	Status            ProfileStatus      `json:"status"                      bson:"status"`
	ExtractionMethod  ExtractionMethod   `json:"extractionMethod,omitempty"  bson:"extraction_method,omitempty"`
	StructuredContent *StructuredContent `json:"structuredContent,omitempty" bson:"structured_content,omitempty"`
	VisualAssets      *VisualAssets      `json:"visualAssets,omitempty"      bson:"visual_assets,omitempty"`
	ConfidenceScores  map[string]float64 `json:"confidenceScores,omitempty"  bson:"confidence_scores,omitempty"`
	QualityScore      float64            `json:"qualityScore"                bson:"quality_score"`
	Grade             string             `json:"grade,omitempty"             bson:"grade,omitempty"`
	Insights          *Insights          `json:"insights,omitempty"          bson:"insights,omitempty"`
	FailureReason     string             `json:"failureReason,omitempty"     bson:"failure_reason,omitempty"`
	FetchAttempts     []FetchAttempt     `json:"fetchAttempts,omitempty"     bson:"fetch_attempts,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"          bson:"warnings,omitempty"`
	AnalyzedAt        time.Time          `json:"analyzedAt"                  bson:"analyzed_at"`
	DurationMs        int64              `json:"durationMs"                  bson:"duration_ms"`
}

// Succeeded reports whether the profile has status success.
func (p *BrandProfile) Succeeded() bool { return p.Status == StatusSuccess }

// Heading is one H1-H6 heading in document order.
type Heading struct {
	Level int    `json:"level" bson:"level"`
	Text  string `json:"text"  bson:"text"`
}

// StructuredBlock is one block of machine-readable page data.
type StructuredBlock struct {
	Type string         `json:"type" bson:"type"`
	Data map[string]any `json:"data" bson:"data"`
}

// ContactInfo holds contact channels found on the page.
type ContactInfo struct {
	Email   string `json:"email,omitempty"   bson:"email,omitempty"`
	Phone   string `json:"phone,omitempty"   bson:"phone,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
}

// Channels returns the number of populated contact channels.
func (c *ContactInfo) Channels() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, v := range []string{c.Email, c.Phone, c.Address} {
		if v != "" {
			n++
		}
	}
	return n
}

// StructuredContent is the parser's output.
type StructuredContent struct {
	Title           string            `json:"title,omitempty"           bson:"title,omitempty"`
	MetaDescription string            `json:"metaDescription,omitempty" bson:"meta_description,omitempty"`
	MetaKeywords    []string          `json:"metaKeywords,omitempty"    bson:"meta_keywords,omitempty"`
	Headings        []Heading         `json:"headings,omitempty"        bson:"headings,omitempty"`
	MainText        string            `json:"mainText,omitempty"        bson:"main_text,omitempty"`
	HeroText        string            `json:"heroText,omitempty"        bson:"hero_text,omitempty"`
	AboutText       string            `json:"aboutText,omitempty"       bson:"about_text,omitempty"`
	Features        []string          `json:"features,omitempty"        bson:"features,omitempty"`
	Navigation      []string          `json:"navigation,omitempty"      bson:"navigation,omitempty"`
	Links           []string          `json:"links,omitempty"           bson:"links,omitempty"`
	Images          []string          `json:"images,omitempty"          bson:"images,omitempty"`
	StructuredData  []StructuredBlock `json:"structuredData,omitempty"  bson:"structured_data,omitempty"`
	OpenGraph       map[string]string `json:"openGraph,omitempty"       bson:"open_graph,omitempty"`
	Canonical       string            `json:"canonical,omitempty"       bson:"canonical,omitempty"`
	Language        string            `json:"language,omitempty"        bson:"language,omitempty"`
	Contact         *ContactInfo      `json:"contact,omitempty"         bson:"contact,omitempty"`
	SocialLinks     map[string]string `json:"socialLinks,omitempty"     bson:"social_links,omitempty"`
	Industry        string            `json:"industry,omitempty"        bson:"industry,omitempty"`
	IndustryScore   int               `json:"industryScore,omitempty"   bson:"industry_score,omitempty"`
	SiteName        string            `json:"siteName,omitempty"        bson:"site_name,omitempty"`
	ManifestURL     string            `json:"manifestUrl,omitempty"     bson:"manifest_url,omitempty"`
	KeyPages        []KeyPage         `json:"keyPages,omitempty"        bson:"key_pages,omitempty"`
	Markdown        string            `json:"-"                         bson:"-"`
}

// KeyPage is a same-site page read after the homepage. Error is set when
// it could not be fetched or parsed; its content then contributed nothing.
type KeyPage struct {
	URL    string           `json:"url"              bson:"url"`
	Kind   string           `json:"kind"             bson:"kind"`
	Method ExtractionMethod `json:"method,omitempty" bson:"method,omitempty"`
	Error  string           `json:"error,omitempty"  bson:"error,omitempty"`
}

// HeadingTexts returns the heading texts at the given level, in order.
func (c *StructuredContent) HeadingTexts(level int) []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, h := range c.Headings {
		if h.Level == level {
			out = append(out, h.Text)
		}
	}
	return out
}

// Color sources.
const (
	ColorSourceCSS      = "css"
	ColorSourceComputed = "computed"
	ColorSourceSVG      = "svg"
	ColorSourceManifest = "manifest"
)

// ColorSample is one palette entry. Source is where the color was first
// seen; Corroborated is set when another source reported it too.
type ColorSample struct {
	Hex          string `json:"hex"                    bson:"hex"`
	Source       string `json:"source"                 bson:"source"`
	Corroborated bool   `json:"corroborated,omitempty" bson:"corroborated,omitempty"`
}

// LogoCandidate is the detected logo image.
type LogoCandidate struct {
	URL      string `json:"url"                bson:"url"`
	Selector string `json:"selector"           bson:"selector"`
	Basis    string `json:"basis"              bson:"basis"`
	Alt      string `json:"alt,omitempty"      bson:"alt,omitempty"`
	Inline   bool   `json:"inline,omitempty"   bson:"inline,omitempty"`
}

// VisualAssets is the visual extractor's output.
type VisualAssets struct {
	Logo       *LogoCandidate `json:"logo,omitempty"       bson:"logo,omitempty"`
	FaviconURL string         `json:"faviconUrl,omitempty" bson:"favicon_url,omitempty"`
	Palette    []ColorSample  `json:"palette,omitempty"    bson:"palette,omitempty"`
	Fonts      []string       `json:"fonts,omitempty"      bson:"fonts,omitempty"`
}

// Hexes returns the palette as plain hex strings.
func (v *VisualAssets) Hexes() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.Palette))
	for i, c := range v.Palette {
		out[i] = c.Hex
	}
	return out
}

// Empty reports whether no visual signal was found at all.
func (v *VisualAssets) Empty() bool {
	return v == nil || (v.Logo == nil && v.FaviconURL == "" && len(v.Palette) == 0 && len(v.Fonts) == 0)
}

// SWOT lists.
type SWOT struct {
	Strengths     []string `json:"strengths,omitempty"     bson:"strengths,omitempty"`
	Weaknesses    []string `json:"weaknesses,omitempty"    bson:"weaknesses,omitempty"`
	Opportunities []string `json:"opportunities,omitempty" bson:"opportunities,omitempty"`
	Threats       []string `json:"threats,omitempty"       bson:"threats,omitempty"`
}

// Empty reports whether all four lists are empty.
func (s *SWOT) Empty() bool {
	return s == nil || len(s.Strengths)+len(s.Weaknesses)+len(s.Opportunities)+len(s.Threats) == 0
}

// DigitalPresence holds 0-100 sub-scores.
type DigitalPresence struct {
	SEO     int `json:"seo"     bson:"seo"`
	Content int `json:"content" bson:"content"`
	Visual  int `json:"visual"  bson:"visual"`
	Social  int `json:"social"  bson:"social"`
	Overall int `json:"overall" bson:"overall"`
}

// Insights is the AI insight generator's output.
type Insights struct {
	Positioning       string           `json:"positioning,omitempty"       bson:"positioning,omitempty"`
	ValueProposition  string           `json:"valueProposition,omitempty"  bson:"value_proposition,omitempty"`
	TargetAudience    []string         `json:"targetAudience,omitempty"    bson:"target_audience,omitempty"`
	PersonalityTraits []string         `json:"personalityTraits,omitempty" bson:"personality_traits,omitempty"`
	KeyMessages       []string         `json:"keyMessages,omitempty"       bson:"key_messages,omitempty"`
	SWOT              *SWOT            `json:"swot,omitempty"              bson:"swot,omitempty"`
	DigitalPresence   *DigitalPresence `json:"digitalPresence,omitempty"   bson:"digital_presence,omitempty"`
	Recommendations   []string         `json:"recommendations,omitempty"   bson:"recommendations,omitempty"`
	Source            string           `json:"source"                      bson:"source"`
	Model             string           `json:"model,omitempty"             bson:"model,omitempty"`
}
