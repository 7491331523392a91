package extractor

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// processHTML extracts a title, strips non-content subtrees, and converts
// the remainder to markdown. The title is read before cleanup because an
// h1 fallback may live inside a header element that cleanup removes.
func processHTML(html, pageURL string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = extractTitle(doc)

	doc.Find("script, style, nav, footer, aside, header, noscript, iframe").Remove()

	// Prefer a semantic content root when the page declares one
	content := doc.Find("main, article, #content, #main").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	cleaned, err := content.Html()
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize content: %w", err)
	}

	converter := md.NewConverter(pageURL, true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert to markdown: %w", err)
	}

	return title, strings.TrimSpace(markdown), nil
}

// extractTitle tries the title tag, then og:title, then the first h1.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}

	return ""
}
