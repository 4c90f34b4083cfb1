package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// loginPageTitle returns the <title> of an HTML body, falling back to the
// first <h1>, or "" when it cannot be parsed.
func loginPageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}

func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
