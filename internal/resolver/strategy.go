package resolver

import (
	"regexp"
	"strings"
)

// Query is one (artist, title) search attempt.
type Query struct {
	Artist string
	Title  string
}

// String is the search keyword sent to FLO: "{artist} {title}", or the bare title when artist is empty.
func (q Query) String() string {
	return strings.TrimSpace(q.Artist + " " + q.Title)
}

// Strategy derives the next query from the previous one.
//
// Apply reports false when the strategy does not apply, in which case the step is skipped and the
// previous query carries over to the next strategy.
type Strategy struct {
	Name  string
	Apply func(Query) (Query, bool)
}

// parenthetical matches from the first "(" to the last ")".
var parenthetical = regexp.MustCompile(`\(.*\)`)

var (
	// Direct searches with the song's own artist and title.
	Direct = Strategy{Name: "direct", Apply: func(q Query) (Query, bool) { return q, true }}

	// StripParenthetical removes a "(Remix)"-style qualifier from the title.
	StripParenthetical = Strategy{Name: "strip-parenthetical", Apply: stripParenthetical}

	// DropArtist searches by title only.
	DropArtist = Strategy{Name: "drop-artist", Apply: dropArtist}
)

// DefaultStrategies is the fallback chain: each step trades precision for recall.
func DefaultStrategies() []Strategy {
	return []Strategy{Direct, StripParenthetical, DropArtist}
}

func stripParenthetical(q Query) (Query, bool) {
	if !parenthetical.MatchString(q.Title) {
		return q, false
	}
	q.Title = strings.TrimSpace(parenthetical.ReplaceAllString(q.Title, ""))
	return q, true
}

func dropArtist(q Query) (Query, bool) {
	if q.Artist == "" {
		return q, false
	}
	q.Artist = ""
	return q, true
}
