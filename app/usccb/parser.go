package usccb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

type blockKind int

const (
	blockH1 blockKind = iota + 1
	blockH2
	blockH3
	blockH4
	blockParagraph
)

var blockKinds = map[atom.Atom]blockKind{
	atom.H1: blockH1,
	atom.H2: blockH2,
	atom.H3: blockH3,
	atom.H4: blockH4,
	atom.P:  blockParagraph,
}

// block is a heading or paragraph flattened out of the page in document order.
type block struct {
	kind blockKind
	text string
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Run(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	blocks := p.flatten(doc)

	document := &Document{
		DateLabel:     firstText(blocks, blockH1),
		LiturgicalDay: firstText(blocks, blockH2),
		Readings:      p.readings(blocks),
	}

	if len(document.Readings) == 0 {
		return nil, fmt.Errorf("no readings found in document")
	}

	return document, nil
}

// flatten walks the node tree and keeps headings and paragraphs. It does not
// descend into a kept element, so nested markup becomes part of its text.
func (p *Parser) flatten(doc *goquery.Document) []block {
	var blocks []block

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if kind, ok := blockKinds[n.DataAtom]; ok {
				blocks = append(blocks, block{
					kind: kind,
					text: cleanText(nodeText(n)),
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}

	return blocks
}

func (p *Parser) readings(blocks []block) []Reading {
	var readings []Reading

	for i, b := range blocks {
		if b.kind != blockH3 {
			continue
		}

		reading := Reading{Title: b.text}

		body := blocks[i+1:]
		if len(body) > 0 && body[0].kind == blockH4 {
			reading.Reference = body[0].text
			body = body[1:]
		}

		section := collectUntil(body, func(b block) bool {
			return b.kind == blockH2 || b.kind == blockH3
		})

		var paragraphs []string
		for _, sb := range section {
			if sb.kind == blockParagraph && sb.text != "" {
				paragraphs = append(paragraphs, sb.text)
			}
		}
		reading.Content = strings.Join(paragraphs, "\n\n")

		readings = append(readings, reading)
	}

	return readings
}

// nodeText concatenates the text under n, turning <br> into a line break so
// that verse lines stay apart.
func nodeText(n *html.Node) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return b.String()
}

// collectUntil returns the leading blocks up to, not including, the first one
// matching stop.
func collectUntil(blocks []block, stop func(block) bool) []block {
	for i, b := range blocks {
		if stop(b) {
			return blocks[:i]
		}
	}
	return blocks
}

func firstText(blocks []block, kind blockKind) string {
	for _, b := range blocks {
		if b.kind == kind {
			return b.text
		}
	}
	return ""
}

// cleanText trims every line, collapses runs of spaces (including
// non-breaking ones) and drops blank lines.
func cleanText(s string) string {
	s = norm.NFC.String(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
