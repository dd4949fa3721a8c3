// Package scripture maps human-readable scripture references onto the
// passage keys understood by API.Bible.
package scripture

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PassageKey is BOOK.chapter, BOOK.chapter.verse, BOOK.chapter.verse-verse or,
// for a range crossing a chapter boundary, BOOK.chapter.verse-chapter.verse.
type PassageKey string

func (k PassageKey) String() string {
	return string(k)
}

// book name, chapter, then optional :verse, -verse and -chapter:verse groups.
var referencePattern = regexp.MustCompile(`^([1-3]? ?[A-Za-z]+(?: [A-Za-z]+)*) (\d+)(?::(\d+)(?:-(\d+)(?::(\d+))?)?)?$`)

// MapReference converts a reference such as "1 Corinthians 13:4-7" into a
// passage key. It reports false when the book is not in the table or the
// chapter/verse part does not match; callers skip enrichment in that case.
func MapReference(reference string) (PassageKey, bool) {
	ref := normalizeReference(reference)
	if ref == "" {
		return "", false
	}

	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return "", false
	}

	bookName, chapter, verse, rangeEnd, rangeEndVerse := m[1], m[2], m[3], m[4], m[5]

	code, ok := BookCode(bookName)
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString(code)
	b.WriteByte('.')
	b.WriteString(chapter)

	if verse == "" {
		return PassageKey(b.String()), true
	}

	b.WriteByte('.')
	b.WriteString(verse)

	switch {
	case rangeEndVerse != "":
		b.WriteByte('-')
		b.WriteString(rangeEnd)
		b.WriteByte('.')
		b.WriteString(rangeEndVerse)
	case rangeEnd != "":
		b.WriteByte('-')
		b.WriteString(rangeEnd)
	}

	return PassageKey(b.String()), true
}

// normalizeReference folds the non-breaking and repeated spaces that scraped
// references carry into single ASCII spaces.
func normalizeReference(reference string) string {
	return strings.Join(strings.Fields(norm.NFC.String(reference)), " ")
}
