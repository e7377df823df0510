// Package resolve picks the best remote candidate for a catalogue title.
// There is no authoritative join key between the catalogue and the remote
// service, so identity is decided by string similarity over a title+year
// key, with an explicit reject option when nothing scores above zero.
package resolve

import (
	"strconv"
	"strings"

	"moviefuse/pkg/table"
	"moviefuse/pkg/textutil"
	"moviefuse/pkg/tmdb"
)

// Match is the outcome of resolving one catalogue title against its
// candidate list. The zero value is the unmatched marker.
type Match struct {
	TMDBID  int64
	Score   float64
	Title   string
	Matched bool
}

// Resolver scores candidates against the local title+year key.
type Resolver struct {
	// MinScore is an optional similarity floor. At the default of 0 the
	// top-scoring candidate is accepted even at near-zero similarity; a
	// positive floor turns poor best matches into unmatched results.
	MinScore float64
}

// Resolve returns the best-scoring candidate for the local title and
// production year. Candidates are scored on title plus the year token of
// their release date; only a strictly higher score displaces the current
// best, so ties keep the first-seen candidate and the result is
// deterministic in input order. An empty candidate list resolves unmatched.
func (r Resolver) Resolve(localTitle string, localYear table.Cell, candidates []tmdb.Result) Match {
	localKey := localTitle + yearKey(localYear)

	var best Match
	for _, cand := range candidates {
		candidateKey := cand.Title + yearToken(cand.ReleaseDate)
		score := textutil.Ratio(localKey, candidateKey)
		if score > best.Score {
			best = Match{
				TMDBID:  cand.ID,
				Score:   score,
				Title:   cand.Title,
				Matched: true,
			}
		}
	}

	if r.MinScore > 0 && best.Score < r.MinScore {
		return Match{}
	}
	return best
}

// yearToken extracts the leading year segment of a release date such as
// "1995-12-15". Anything before the first dash is taken verbatim.
func yearToken(releaseDate string) string {
	token, _, _ := strings.Cut(releaseDate, "-")
	return token
}

// yearKey renders the local production year for key construction. A null
// year contributes nothing, matching a candidate with no release date.
func yearKey(year table.Cell) string {
	if year.IsNull() {
		return ""
	}
	if f, ok := year.Float(); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	return year.Value()
}
