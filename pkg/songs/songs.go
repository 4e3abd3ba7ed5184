// Package songs holds the song recommendation types and decodes them from
// the free text returned by the language model.
package songs

// Requested is the number of songs the model is asked for.
const Requested = 10

// Candidate is a recommended song before it is looked up in the catalog.
type Candidate struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Enriched is a candidate with its catalog link.
type Enriched struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	// URL is empty when the catalog had no match.
	URL string `json:"url,omitempty"`
}

// HasURL reports whether a playable link was found.
func (e Enriched) HasURL() bool {
	return e.URL != ""
}

// Sparse reports whether n songs is far below what was requested.
func Sparse(n int) bool {
	return n < Requested/2
}
