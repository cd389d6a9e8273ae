package crawler

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// minMainTextLength is the rune count below which the article text is
// replaced by the whole body text.
const minMainTextLength = 300

// noiseElements are dropped from the body text fallback.
var noiseElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Nav:      true,
	atom.Form:     true,
	atom.Aside:    true,
}

// Links returns the absolute, cleaned targets of the anchors in body.
// mailto: and tel: links are omitted.
func Links(body []byte, base string) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Key != "href" || attr.Val == "" {
					continue
				}
				ref, err := url.Parse(strings.TrimSpace(attr.Val))
				if err != nil {
					continue
				}
				link := CleanURL(baseURL.ResolveReference(ref).String())
				if strings.HasPrefix(link, "mailto:") || strings.HasPrefix(link, "tel:") {
					continue
				}
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// MainText extracts the readable text of an HTML page.
// The first article (or else main) element is converted to Markdown; when
// that yields fewer than 300 characters the whole body text is used.
func MainText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var text string
	content := findFirst(doc, atom.Article)
	if content == nil {
		content = findFirst(doc, atom.Main)
	}
	if content != nil {
		text = toMarkdown(content)
	}

	if utf8.RuneCountInString(text) < minMainTextLength {
		root := findFirst(doc, atom.Body)
		if root == nil {
			root = doc
		}
		text = bodyText(root)
	}
	return text
}

func toMarkdown(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}

// bodyText joins the text nodes under n, skipping noise elements, with
// whitespace collapsed.
func bodyText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && noiseElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}
