package types

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ExtractionMethod names the fetch strategy that produced a document.
type ExtractionMethod string

const (
	MethodStatic   ExtractionMethod = "static"
	MethodRendered ExtractionMethod = "rendered"
)

// StyleSample is one computed style value read from a rendered page.
type StyleSample struct {
	Selector string `json:"selector"`
	Property string `json:"property"`
	Value    string `json:"value"`
}

// ComputedStyles holds style samples taken after layout in a real browser.
type ComputedStyles struct {
	Colors []StyleSample `json:"colors"`
	Fonts  []StyleSample `json:"fonts"`
}

// Empty reports whether no samples were taken.
func (c *ComputedStyles) Empty() bool {
	return c == nil || (len(c.Colors) == 0 && len(c.Fonts) == 0)
}

// Document is the raw result of a successful fetch strategy.
type Document struct {
	// Request is a reference to the originating request.
	Request *Request

	// Method is the strategy that produced this document.
	Method ExtractionMethod

	// StatusCode is the HTTP status code, when known.
	StatusCode int

	// Headers are the response HTTP headers (static strategy only).
	Headers http.Header

	// Body is the raw (decompressed) markup.
	Body []byte

	// ContentType is the MIME type of the response.
	ContentType string

	// FinalURL is the URL after any redirects.
	FinalURL string

	// Computed holds computed-style samples from the rendered strategy.
	Computed *ComputedStyles

	// ConsentDismissal names how a consent overlay was dismissed, or "none".
	// Empty when the pass did not run.
	ConsentDismissal string

	// ManifestThemeColor is the theme_color of the site's web app manifest,
	// set by the key-page pass when one was found.
	ManifestThemeColor string

	// FetchDuration is how long the fetch took.
	FetchDuration time.Duration

	// FetchedAt is when this document was received.
	FetchedAt time.Time

	doc *goquery.Document
}

// NewStaticDocument creates a Document from an http.Response and its decoded body.
func NewStaticDocument(req *Request, httpResp *http.Response, body []byte, duration time.Duration) *Document {
	finalURL := req.URLString()
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}
	return &Document{
		Request:       req,
		Method:        MethodStatic,
		StatusCode:    httpResp.StatusCode,
		Headers:       httpResp.Header,
		Body:          body,
		ContentType:   httpResp.Header.Get("Content-Type"),
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// NewRenderedDocument creates a Document from headless browser output.
func NewRenderedDocument(req *Request, statusCode int, body []byte, finalURL string, duration time.Duration) *Document {
	return &Document{
		Request:       req,
		Method:        MethodRendered,
		StatusCode:    statusCode,
		Headers:       make(http.Header),
		Body:          body,
		ContentType:   "text/html",
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// NewDocumentFromHTML builds a static Document from literal markup.
func NewDocumentFromHTML(rawURL, html string) (*Document, error) {
	req, err := NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	return &Document{
		Request:     req,
		Method:      MethodStatic,
		StatusCode:  http.StatusOK,
		Headers:     make(http.Header),
		Body:        []byte(html),
		ContentType: "text/html",
		FinalURL:    rawURL,
		FetchedAt:   time.Now(),
	}, nil
}

// HTML returns a parsed goquery document, lazily initializing it.
func (d *Document) HTML() (*goquery.Document, error) {
	if d.doc != nil {
		return d.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(d.Body))
	if err != nil {
		return nil, err
	}
	d.doc = doc
	return doc, nil
}

// BaseURL returns the URL that relative links resolve against.
func (d *Document) BaseURL() string {
	if d.FinalURL != "" {
		return d.FinalURL
	}
	return d.Request.URLString()
}

// IsSuccess returns true if the status is 2xx.
func (d *Document) IsSuccess() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}
