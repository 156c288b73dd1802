package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// extractPlanLinks walks an HTML directory listing and returns the href
// of every anchor pointing at a .yml/.yaml resource, resolved against
// base. Order follows document order; duplicates are dropped.
func extractPlanLinks(page []byte, base string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("listing: parse base URL: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("listing: parse index HTML: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" || !isPlanHref(attr.Val) {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				resolved := baseURL.ResolveReference(ref).String()
				if !seen[resolved] {
					seen[resolved] = true
					links = append(links, resolved)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return links, nil
}

func isPlanHref(href string) bool {
	return strings.HasSuffix(href, ".yml") || strings.HasSuffix(href, ".yaml")
}

// FileName returns the last path segment of a plan URL, for display and
// the source_file row field.
func FileName(planURL string) string {
	trimmed := strings.TrimSuffix(planURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
