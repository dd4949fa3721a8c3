package bible

import (
	"encoding/json"
	"errors"
)

// ErrEnrichmentUnavailable covers every failed lookup against the translation
// service: transport errors, non-2xx responses and undecodable bodies.
var ErrEnrichmentUnavailable = errors.New("enrichment service unavailable")

type envelope[T any] struct {
	Data T `json:"data"`
}

type apiError struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Version struct {
	ID                string   `json:"id"`
	DBLID             string   `json:"dblId,omitempty"`
	Abbreviation      string   `json:"abbreviation"`
	AbbreviationLocal string   `json:"abbreviationLocal,omitempty"`
	Name              string   `json:"name"`
	NameLocal         string   `json:"nameLocal,omitempty"`
	Description       string   `json:"description,omitempty"`
	Language          Language `json:"language"`
}

type Passage struct {
	ID              string            `json:"id"`
	BibleID         string            `json:"bibleId"`
	OrgID           string            `json:"orgId,omitempty"`
	BookID          string            `json:"bookId,omitempty"`
	Reference       string            `json:"reference"`
	Content         string            `json:"content"`
	VerseCount      int               `json:"verseCount,omitempty"`
	Copyright       string            `json:"copyright"`
	CrossReferences []json.RawMessage `json:"crossReferences,omitempty"`
}

type ChapterRef struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	BookID string `json:"bookId"`
}

type Chapter struct {
	ID         string      `json:"id"`
	BibleID    string      `json:"bibleId"`
	BookID     string      `json:"bookId"`
	Number     string      `json:"number"`
	Reference  string      `json:"reference"`
	Content    string      `json:"content"`
	VerseCount int         `json:"verseCount,omitempty"`
	Copyright  string      `json:"copyright"`
	Next       *ChapterRef `json:"next,omitempty"`
	Previous   *ChapterRef `json:"previous,omitempty"`
}

type Book struct {
	ID           string `json:"id"`
	BibleID      string `json:"bibleId"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	NameLong     string `json:"nameLong"`
}

type SearchVerse struct {
	ID        string `json:"id"`
	OrgID     string `json:"orgId,omitempty"`
	BibleID   string `json:"bibleId"`
	BookID    string `json:"bookId"`
	ChapterID string `json:"chapterId"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

type SearchResult struct {
	Query      string        `json:"query"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	Total      int           `json:"total"`
	VerseCount int           `json:"verseCount"`
	Verses     []SearchVerse `json:"verses"`
	Passages   []Passage     `json:"passages,omitempty"`
}
