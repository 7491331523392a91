package models

import (
	"fmt"
	"time"
)

// SourceKind identifies where an item's text came from. The set is closed:
// every switch on a SourceKind must handle all constants below.
type SourceKind string

const (
	// SourceNote is text typed directly by the user
	SourceNote SourceKind = "note"
	// SourceURL is text extracted from a web page
	SourceURL SourceKind = "url"
)

// ParseSourceKind converts a wire string into a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceNote:
		return SourceNote, nil
	case SourceURL:
		return SourceURL, nil
	default:
		return "", fmt.Errorf("unknown source kind %q (expected %q or %q)", s, SourceNote, SourceURL)
	}
}

// Valid reports whether the kind is one of the known constants
func (k SourceKind) Valid() bool {
	return k == SourceNote || k == SourceURL
}

// Item is one unit of ingested content: a typed note or the readable text
// of a web page. Items are immutable after creation and are removed only by
// explicit deletion, which also removes every chunk derived from them.
type Item struct {
	ID         string     `json:"id"` // item_{uuid}
	SourceKind SourceKind `json:"source_kind"`
	OriginURL  string     `json:"origin_url,omitempty"` // set only when SourceKind == SourceURL
	Title      string     `json:"title,omitempty"`
	RawText    string     `json:"raw_text"`
	CreatedAt  time.Time  `json:"created_at"`
}
