package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var paragraphTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "blockquote": true, "table": true, "pre": true,
}

var lineTags = map[string]bool{
	"div": true, "section": true, "article": true, "header": true, "footer": true,
	"tr": true, "dt": true, "dd": true,
}

// HTMLToText renders summary markup as plain text. Paragraphs and headings
// are separated by blank lines, list items become bullets and links keep
// their target in parentheses. Input without markup is only normalized.
func HTMLToText(input string) string {
	if !strings.ContainsAny(input, "<&") {
		return normalize(input)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return normalize(input)
	}
	doc.Find("script, style, head").Remove()

	var b textBuilder
	b.walk(doc.Find("body"))
	return normalize(b.String())
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(norm.NFC.String(s))
}

type textBuilder struct {
	buf          strings.Builder
	pendingSpace bool
}

func (b *textBuilder) walk(sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		switch {
		case name == "#text":
			b.text(node.Text())
		case name == "br":
			b.newlines(1)
		case name == "li":
			b.newlines(1)
			b.write("• ")
			b.walk(node)
			b.newlines(1)
		case name == "a":
			b.walk(node)
			href, _ := node.Attr("href")
			href = strings.TrimSpace(href)
			if href != "" && !strings.HasPrefix(href, "#") && strings.TrimSpace(node.Text()) != href {
				b.write(" (" + href + ")")
			}
		case paragraphTags[name]:
			b.newlines(2)
			b.walk(node)
			b.newlines(2)
		case lineTags[name]:
			b.newlines(1)
			b.walk(node)
			b.newlines(1)
		default:
			b.walk(node)
		}
	})
}

func (b *textBuilder) text(s string) {
	if s == "" {
		return
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		b.pendingSpace = b.pendingSpace || b.buf.Len() > 0
		return
	}
	if startsWithSpace(s) {
		b.pendingSpace = true
	}
	b.write(strings.Join(words, " "))
	b.pendingSpace = endsWithSpace(s)
}

func (b *textBuilder) write(s string) {
	if b.pendingSpace && !b.atLineStart() {
		b.buf.WriteByte(' ')
	}
	b.pendingSpace = false
	b.buf.WriteString(s)
}

// newlines ensures the output ends with at least n line breaks.
func (b *textBuilder) newlines(n int) {
	b.pendingSpace = false
	if b.buf.Len() == 0 {
		return
	}
	current := b.buf.String()
	have := len(current) - len(strings.TrimRight(current, "\n"))
	for ; have < n; have++ {
		b.buf.WriteByte('\n')
	}
}

func (b *textBuilder) atLineStart() bool {
	if b.buf.Len() == 0 {
		return true
	}
	s := b.buf.String()
	return s[len(s)-1] == '\n'
}

func (b *textBuilder) String() string {
	return b.buf.String()
}

func startsWithSpace(s string) bool {
	return strings.TrimLeft(s, " \t\n\r\f") != s
}

func endsWithSpace(s string) bool {
	return strings.TrimRight(s, " \t\n\r\f") != s
}
