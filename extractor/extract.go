// Package extractor derives SEO metadata from fetched HTML documents.
package extractor

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/seometa/models"
)

// MinParagraphLength is the trimmed length, in characters, a paragraph must
// exceed to count as the page description. Shorter paragraphs are treated as
// navigation or boilerplate.
const MinParagraphLength = 50

// Compiled once; cascadia selectors are safe for concurrent use.
var (
	titleSel           = cascadia.MustCompile("title")
	metaDescriptionSel = cascadia.MustCompile(`meta[name="description"]`)
	ogTitleSel         = cascadia.MustCompile(`meta[property="og:title"]`)
	ogDescriptionSel   = cascadia.MustCompile(`meta[property="og:description"]`)
	h1Sel              = cascadia.MustCompile("h1")
	paragraphSel       = cascadia.MustCompile("p")
)

// Extractor applies the fixed metadata rules to an HTML body.
// The zero value is ready to use and safe for concurrent use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses body and returns the six metadata fields.
//
// Malformed or partial HTML is tolerated: a missing element yields an empty
// field. Only a body the parser cannot read at all returns a PARSE_FAILED error.
func (e *Extractor) Extract(body []byte) (*models.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, models.NewParseError("parse html", err)
	}
	md := FromDocument(doc)
	return &md, nil
}

// FromDocument applies the extraction rules to an already parsed document.
func FromDocument(doc *goquery.Document) models.Metadata {
	return models.Metadata{
		MetaTitle:       orEmpty(firstText(doc, titleSel)),
		MetaDescription: orEmpty(firstContent(doc, metaDescriptionSel)),
		OGTitle:         orEmpty(firstContent(doc, ogTitleSel)),
		OGDescription:   orEmpty(firstContent(doc, ogDescriptionSel)),
		PageTitle:       orEmpty(firstText(doc, h1Sel)),
		PageDescription: orEmpty(firstLongParagraph(doc)),
	}
}

// firstText returns the trimmed text of the first element matching m.
func firstText(doc *goquery.Document, m goquery.Matcher) (string, bool) {
	sel := doc.FindMatcher(m).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

// firstContent returns the trimmed content attribute of the first element
// matching m. A matching element without a content attribute counts as absent.
func firstContent(doc *goquery.Document, m goquery.Matcher) (string, bool) {
	content, ok := doc.FindMatcher(m).First().Attr("content")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(content), true
}

// firstLongParagraph scans <p> elements in document order and returns the
// first whose trimmed text exceeds MinParagraphLength characters.
func firstLongParagraph(doc *goquery.Document) (string, bool) {
	var (
		text  string
		found bool
	)
	doc.FindMatcher(paragraphSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(t) > MinParagraphLength {
			text, found = t, true
			return false
		}
		return true
	})
	return text, found
}

func orEmpty(s string, _ bool) string {
	return s
}
