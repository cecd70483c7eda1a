package hn

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind discriminates the loose upstream item shape. Stories, comments
// and jobs all arrive from the same /item endpoint; the kind is the only
// reliable way to tell them apart.
type ItemKind string

const (
	KindStory   ItemKind = "story"
	KindComment ItemKind = "comment"
	KindJob     ItemKind = "job"
	KindUnknown ItemKind = "unknown"
)

// Item is a raw HackerNews item as returned by the Firebase API. Every
// field except ID is optional upstream.
type Item struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	By          string  `json:"by"`
	Time        int64   `json:"time"`
	Text        string  `json:"text"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Score       int64   `json:"score"`
	Parent      int64   `json:"parent"`
	Descendants int64   `json:"descendants"`
	Kids        []int64 `json:"kids"`
	Deleted     bool    `json:"deleted"`
	Dead        bool    `json:"dead"`

	// Comments holds the fully fetched child subtree, populated by
	// TreeFetcher. Order follows Kids.
	Comments []*Item `json:"-"`

	// Job holds heuristically derived job fields, populated by the client
	// for items fetched as jobs.
	Job *JobFields `json:"-"`
}

// Kind classifies the item by its type tag.
func (i *Item) Kind() ItemKind {
	switch i.Type {
	case "story":
		return KindStory
	case "comment":
		return KindComment
	case "job":
		return KindJob
	default:
		return KindUnknown
	}
}

// CreatedAt converts the upstream epoch seconds to a time.Time.
func (i *Item) CreatedAt() time.Time {
	return time.Unix(i.Time, 0).UTC()
}

// Validate checks the per-kind required fields once, at the boundary.
// Consumers downstream can then rely on the discriminator without
// re-checking field presence.
func (i *Item) Validate() error {
	if i.ID <= 0 {
		return fmt.Errorf("item has no id")
	}
	switch i.Kind() {
	case KindStory, KindJob:
		if i.Title == "" && !i.Deleted {
			return fmt.Errorf("item %d: %s without title", i.ID, i.Type)
		}
	case KindComment:
		// Comments with missing body, author or timestamp are still
		// ingested; absence upstream does not block storage.
	case KindUnknown:
		return fmt.Errorf("item %d: unknown type %q", i.ID, i.Type)
	}
	return nil
}

// User is a raw HackerNews user record.
type User struct {
	ID        string  `json:"id"`
	Created   int64   `json:"created"`
	Karma     int64   `json:"karma"`
	About     string  `json:"about"`
	Submitted []int64 `json:"submitted"`
}

// CreatedAt converts the upstream epoch seconds to a time.Time.
func (u *User) CreatedAt() time.Time {
	return time.Unix(u.Created, 0).UTC()
}

// JobFields holds the optional fields derived from a job posting's free
// text. Every field may be empty; absence of a match is the correct
// default, never an error.
type JobFields struct {
	Type        string
	Location    string
	Company     string
	SalaryRange string
}

// Job type keywords, checked in priority order: first match wins.
var jobTypeKeywords = []string{"full-time", "contract", "remote"}

// Small fixed gazetteer for location matching, first match wins.
var locationKeywords = []string{"san francisco", "new york", "london", "berlin", "remote"}

// ExtractJobFields scans a job posting's body text for job type, location,
// company and salary hints. This is a known-imprecise keyword heuristic,
// not a parser: it matches literal substrings in the lowercased text and
// leaves fields unset when nothing matches.
func ExtractJobFields(text string) JobFields {
	var f JobFields
	if text == "" {
		return f
	}
	lower := strings.ToLower(text)

	f.Type = "other"
	for _, kw := range jobTypeKeywords {
		if strings.Contains(lower, kw) {
			f.Type = kw
			break
		}
	}

	for _, loc := range locationKeywords {
		if strings.Contains(lower, loc) {
			f.Location = loc
			break
		}
	}

	// Company: first whitespace-delimited token after "hiring".
	if tok := tokenAfter(lower, "hiring"); tok != "" {
		f.Company = tok
	}

	// Salary: first token after "salary", kept only when it looks like a
	// min-max range.
	if tok := tokenAfter(lower, "salary"); strings.Contains(tok, "-") {
		f.SalaryRange = tok
	}

	return f
}

// tokenAfter returns the first whitespace-delimited token following the
// first occurrence of keyword, or "" when there is none.
func tokenAfter(text, keyword string) string {
	idx := strings.Index(text, keyword)
	if idx < 0 {
		return ""
	}
	rest := strings.Fields(text[idx+len(keyword):])
	if len(rest) == 0 {
		return ""
	}
	return rest[0]
}
