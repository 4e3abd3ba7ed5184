package songs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Kind classifies a decode failure.
type Kind int

const (
	// Empty means the model returned no content.
	Empty Kind = iota + 1
	// Malformed means the content couldn't be parsed even after repair.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ParseError is returned when the model output can't be decoded into songs.
type ParseError struct {
	Kind Kind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("songs: %s response", e.Kind)
	}
	return fmt.Sprintf("songs: %s response: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoPayload = errors.New("no json payload found")

// Decode extracts the recommended songs from raw model output.
//
// The expected shape is {"songs": [{"title": ..., "artist": ...}]}, but the
// output is untrusted: surrounding prose and code fences are dropped, a bare
// array is accepted and unescaped quotes inside strings are repaired before
// parsing. Entries without a title are skipped.
func Decode(raw string) ([]Candidate, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Kind: Empty}
	}
	payloads := extract(raw)
	if len(payloads) == 0 {
		return nil, &ParseError{Kind: Malformed, Err: errNoPayload}
	}
	var err error
	for _, p := range payloads {
		var entries []Candidate
		entries, err = parse(Repair(p.text), p.array)
		if err == nil {
			return clean(entries), nil
		}
	}
	return nil, &ParseError{Kind: Malformed, Err: err}
}

func parse(payload string, array bool) ([]Candidate, error) {
	if array {
		var entries []Candidate
		if err := json.Unmarshal([]byte(payload), &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	var resp struct {
		Songs []Candidate `json:"songs"`
	}
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, err
	}
	if resp.Songs == nil {
		return nil, errors.New(`missing "songs" array`)
	}
	return resp.Songs, nil
}

func clean(entries []Candidate) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:  title,
			Artist: strings.TrimSpace(e.Artist),
		})
	}
	return candidates
}

type payload struct {
	text  string
	array bool
}

// extract returns the outermost JSON object and array found in text, in the
// order they should be tried. An array that starts before any object comes
// first, which covers replies like `"songs": [...]` without the enclosing
// braces.
func extract(text string) []payload {
	var obj, arr *payload
	if start := strings.IndexByte(text, '{'); start >= 0 {
		if end := strings.LastIndexByte(text, '}'); end > start {
			obj = &payload{text: text[start : end+1]}
		}
	}
	if start := strings.IndexByte(text, '['); start >= 0 {
		if end := strings.LastIndexByte(text, ']'); end > start {
			arr = &payload{text: text[start : end+1], array: true}
		}
	}
	var payloads []payload
	switch {
	case obj != nil && arr != nil:
		if strings.IndexByte(text, '[') < strings.IndexByte(text, '{') {
			payloads = append(payloads, *arr, *obj)
		} else {
			payloads = append(payloads, *obj, *arr)
		}
	case obj != nil:
		payloads = append(payloads, *obj)
	case arr != nil:
		payloads = append(payloads, *arr)
	}
	return payloads
}
