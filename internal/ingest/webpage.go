package ingest

import (
	"context"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/council/backend/pkg/httputil"
	"github.com/wonny/council/backend/pkg/logger"
)

const (
	fetchUserAgent  = "Mozilla/5.0 (compatible; VC-Council-Agent/1.0; +https://localhost)"
	minSnippetChars = 40
)

// Fetcher pulls readable text out of public startup webpages.
type Fetcher struct {
	client *httputil.Client
	log    *logger.Logger
}

func NewFetcher(client *httputil.Client, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client: client.WithUserAgent(fetchUserAgent),
		log:    log,
	}
}

// FetchText fetches the page and distills title, meta description,
// headings, and substantial paragraph text into one block.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	cleanURL, err := validatePublicURL(rawURL)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Get(ctx, cleanURL)
	if err != nil {
		return "", newInputError("Failed to fetch URL: "+err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", inputErrorf("Failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", newInputError("Failed to parse webpage: "+err.Error(), err)
	}

	text, err := distill(doc)
	if err != nil {
		return "", err
	}

	f.log.WithFields(map[string]interface{}{
		"url":   cleanURL,
		"chars": len(text),
	}).Debug("웹페이지 텍스트 추출 완료")
	return text, nil
}

// validatePublicURL normalizes the URL and rejects targets that would
// let a caller probe the host network.
func validatePublicURL(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", newInputError("Invalid URL: "+err.Error(), err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", inputErrorf("URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return "", inputErrorf("URL is missing a hostname")
	}

	hostname := parsed.Hostname()
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		return "", inputErrorf("Localhost URLs are not allowed")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			return "", inputErrorf("Private or loopback IP URLs are not allowed")
		}
	}

	return parsed.String(), nil
}

func distill(doc *goquery.Document) (string, error) {
	doc.Find("script, style, noscript, svg, iframe").Remove()

	var chunks []string

	if title := normalizeWhitespace(doc.Find("title").First().Text()); title != "" {
		chunks = append(chunks, "Title: "+title)
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if desc = normalizeWhitespace(desc); desc != "" {
			chunks = append(chunks, "Meta Description: "+desc)
		}
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := normalizeWhitespace(s.Text()); text != "" {
			chunks = append(chunks, "Heading: "+text)
		}
	})

	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		text := normalizeWhitespace(s.Text())
		if utf8.RuneCountInString(text) >= minSnippetChars {
			chunks = append(chunks, text)
		}
	})

	if len(chunks) == 0 {
		return "", inputErrorf("Could not extract readable text from the webpage")
	}

	seen := make(map[string]bool, len(chunks))
	deduped := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if !seen[chunk] {
			seen[chunk] = true
			deduped = append(deduped, chunk)
		}
	}

	return clipText(strings.Join(deduped, "\n"), maxSourceChars), nil
}
