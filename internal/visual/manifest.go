package visual

import (
	"encoding/json"
	"net/url"
)

// ManifestURL returns where to look for the web app manifest: the page's
// declared link when there is one, else /site.webmanifest on its origin.
func ManifestURL(declared, pageURL string) string {
	if declared != "" {
		return declared
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/site.webmanifest"}).String()
}

// ManifestThemeColor reads theme_color from a web app manifest and returns
// it as uppercase hex, or "" when absent, unparseable or a placeholder.
func ManifestThemeColor(data []byte) string {
	var m struct {
		ThemeColor string `json:"theme_color"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	hex, ok := NormalizeColor(m.ThemeColor)
	if !ok || IsPlaceholderColor(hex) {
		return ""
	}
	return hex
}
