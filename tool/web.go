package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hupe1980/autocrew/core"
)

type webFetchArgs struct {
	URL string `json:"url" description:"The URL to fetch"`
}

// NewWebFetchTool returns the web_fetch built-in: fetch an HTML page and
// reduce it to readable markdown-ish text. Network and HTTP failures are
// reported as error strings in the result, never as run failures.
func NewWebFetchTool(client *http.Client) *FunctionTool {
	return NewFunctionToolFromStruct(
		"web_fetch",
		"Fetch a web page URL and return its content as readable markdown text. Use for HTML pages, articles, blog posts, etc.",
		webFetchArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			url, _ := args["url"].(string)

			body, err := fetch(toolCtx.Context(), client, url, 30*time.Second)
			if err != nil {
				return fmt.Sprintf("Error fetching URL: %v", err), nil
			}

			doc, err := html.Parse(strings.NewReader(string(body)))
			if err != nil {
				return fmt.Sprintf("Error parsing HTML: %v", err), nil
			}

			text := extractReadableText(doc)
			if text == "" {
				return "Error: no readable content found", nil
			}
			return truncate(text), nil
		},
	)
}

// fetch issues a GET with the crawler UA under the given ceiling and returns
// the body; non-2xx statuses are errors.
func fetch(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// skipTags are non-content elements removed before text extraction.
var skipTags = map[string]bool{
	"script": true, "style": true, "nav": true, "header": true,
	"footer": true, "aside": true, "iframe": true, "noscript": true,
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// extractReadableText renders the document's main content (article, main,
// else body) as markdown-ish text: ATX headings, dash lists, links with
// their targets, blank-line separated blocks.
func extractReadableText(doc *html.Node) string {
	root := findFirst(doc, "article")
	if root == nil {
		root = findFirst(doc, "main")
	}
	if root == nil {
		root = findFirst(doc, "body")
	}
	if root == nil {
		root = doc
	}

	var sb strings.Builder
	renderNode(&sb, root)

	text := sb.String()
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		if skipTags[n.Data] {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n\n")
			sb.WriteString(strings.Repeat("#", int(n.Data[1]-'0')))
			sb.WriteString(" ")
			renderChildren(sb, n)
			sb.WriteString("\n\n")
			return
		case "p", "div", "section", "table", "blockquote", "pre":
			sb.WriteString("\n\n")
			renderChildren(sb, n)
			sb.WriteString("\n\n")
			return
		case "li":
			sb.WriteString("\n- ")
			renderChildren(sb, n)
			return
		case "ul", "ol":
			renderChildren(sb, n)
			sb.WriteString("\n")
			return
		case "br":
			sb.WriteString("\n")
			return
		case "tr":
			renderChildren(sb, n)
			sb.WriteString("\n")
			return
		case "img":
			return
		case "a":
			var inner strings.Builder
			renderChildren(&inner, n)
			text := strings.TrimSpace(inner.String())
			href := attrValue(n, "href")
			if text == "" {
				return
			}
			if href != "" && !strings.HasPrefix(href, "#") {
				fmt.Fprintf(sb, "[%s](%s)", text, href)
			} else {
				sb.WriteString(text)
			}
			return
		}
	}
	renderChildren(sb, n)
}

func renderChildren(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(sb, c)
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var spaceRuns = regexp.MustCompile(`[ \t\r\f]+`)

func collapseSpace(text string) string {
	return spaceRuns.ReplaceAllString(strings.ReplaceAll(text, "\n", " "), " ")
}
