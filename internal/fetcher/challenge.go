package fetcher

import (
	"strings"
)

// ChallengeKind names the kind of anti-bot interstitial a page is showing.
type ChallengeKind string

const (
	ChallengeCloudflare ChallengeKind = "cloudflare"
	ChallengeReCaptcha  ChallengeKind = "recaptcha"
	ChallengeHCaptcha   ChallengeKind = "hcaptcha"
	ChallengeTurnstile  ChallengeKind = "turnstile"
	ChallengeIncapsula  ChallengeKind = "incapsula"
	ChallengePerimeterX ChallengeKind = "perimeterx"
	ChallengeGeneric    ChallengeKind = "interstitial"
)

// challengeMaxText is the most visible text an interstitial carries. Real
// homepages with a CAPTCHA on a contact form are well above it.
const challengeMaxText = 1200

var challengeMarkers = []struct {
	kind   ChallengeKind
	needle string
}{
	{ChallengeCloudflare, "cf-browser-verification"},
	{ChallengeCloudflare, "/cdn-cgi/challenge-platform/"},
	{ChallengeCloudflare, "attention required! | cloudflare"},
	{ChallengeIncapsula, "_incapsula_resource"},
	{ChallengePerimeterX, "px-captcha"},
	{ChallengeTurnstile, "cf-turnstile"},
	{ChallengeHCaptcha, "h-captcha"},
	{ChallengeReCaptcha, "g-recaptcha"},
}

var challengeTitles = []string{
	"just a moment...",
	"verify you are human",
	"are you a robot",
	"access denied",
	"pardon our interruption",
}

// DetectChallenge reports whether body is an anti-bot interstitial rather
// than the site itself. It returns "" for ordinary pages.
func DetectChallenge(body []byte) ChallengeKind {
	if VisibleTextLength(body) > challengeMaxText {
		return ""
	}
	lower := strings.ToLower(string(body))

	for _, m := range challengeMarkers {
		if strings.Contains(lower, m.needle) {
			return m.kind
		}
	}

	title := strings.TrimSpace(extractBetween(lower, "<title>", "</title>"))
	for _, t := range challengeTitles {
		if strings.HasPrefix(title, t) {
			return ChallengeGeneric
		}
	}
	return ""
}

// extractBetween extracts a substring between two delimiters.
func extractBetween(s, start, end string) string {
	idx := strings.Index(s, start)
	if idx < 0 {
		return ""
	}
	s = s[idx+len(start):]
	idx = strings.Index(s, end)
	if idx < 0 {
		return ""
	}
	return s[:idx]
}
