package chunker

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/quorum/core"
)

// DefaultChunkSize is the chunk size used when callers have no preference.
const DefaultChunkSize = 100

// ErrNoSeparators indicates a splitter was configured without separators.
var ErrNoSeparators = errors.New("at least one separator is required")

// DefaultSeparators returns the separator fallback order.
// The empty string must stay last; it splits between runes.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", "。", "！", "？", ". ", "! ", "? ", " ", ""}
}

// Splitter splits text using a fixed separator order.
type Splitter struct {
	separators []string
}

// Option configures a Splitter.
type Option func(*Splitter) error

// WithSeparators replaces the separator order. A trailing "" is appended if
// missing so every input can be split down to the size bound.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) error {
		if len(separators) == 0 {
			return ErrNoSeparators
		}
		seps := append([]string(nil), separators...)
		if seps[len(seps)-1] != "" {
			seps = append(seps, "")
		}
		s.separators = seps
		return nil
	}
}

// New creates a Splitter.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{separators: DefaultSeparators()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var defaultSplitter = &Splitter{separators: DefaultSeparators()}

// Split splits text with the default separators. See Splitter.Split.
func Split(text string, maxSize int) ([]string, error) {
	return defaultSplitter.Split(text, maxSize)
}

// Split returns pieces of text no longer than maxSize runes, in input order.
// Pieces are whitespace-trimmed and empty pieces are dropped, so blank input
// yields an empty result.
func (s *Splitter) Split(text string, maxSize int) ([]string, error) {
	if err := core.ValidateChunkSize(maxSize); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	leaves := s.split(text, maxSize, s.separators)
	return merge(leaves, maxSize), nil
}

func (s *Splitter) split(text string, maxSize int, separators []string) []string {
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return splitRunes(text, maxSize)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= maxSize {
			out = append(out, part)
			continue
		}
		out = append(out, s.split(part, maxSize, rest)...)
	}
	return out
}

// pickSeparator returns the first separator that occurs in text along with
// the separators that follow it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

func splitRunes(text string, maxSize int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/maxSize+1)
	for start := 0; start < len(runes); start += maxSize {
		end := min(start+maxSize, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

// merge joins adjacent pieces while the result stays within maxSize, then
// trims and drops blank pieces.
func merge(pieces []string, maxSize int) []string {
	out := make([]string, 0, len(pieces))
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			out = append(out, trimmed)
		}
		current.Reset()
		currentLen = 0
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+n > maxSize {
			flush()
		}
		current.WriteString(piece)
		currentLen += n
	}
	flush()

	return out
}
