package notify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// PlainText renders an HTML document as readable text for the text/plain part.
// Head content is dropped, block elements end lines, links keep their target.
func PlainText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse email html: %w", err)
	}

	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "head", "style", "script":
				return
			case "img":
				return
			case "a":
				text := getTextContent(n)
				href := getAttr(n, "href")
				switch {
				case href == "" || href == text:
					b.WriteString(text)
				case text == "":
					b.WriteString(href)
				default:
					fmt.Fprintf(&b, "%s (%s)", text, href)
				}
				return
			case "li":
				b.WriteString("- ")
			case "br":
				b.WriteString("\n")
				return
			}
		}

		if n.Type == html.TextNode {
			b.WriteString(edgeSpaced(n.Data))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			b.WriteString("\n")
		}
	}
	walk(root)

	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = collapseSpace(l)
	}
	text := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	return strings.TrimSpace(text) + "\n", nil
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "div", "h1", "h2", "h3", "h4", "li", "ul", "ol", "tr", "table":
		return true
	}
	return false
}

// edgeSpaced collapses inner whitespace but keeps one space at each edge that had
// any, so adjacent inline text stays apart.
func edgeSpaced(s string) string {
	inner := collapseSpace(s)
	if inner == "" {
		if s != "" {
			return " "
		}
		return ""
	}
	if unicode.IsSpace(rune(s[0])) {
		inner = " " + inner
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		inner += " "
	}
	return inner
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return collapseSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
