package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenPattern matches words made of letters, digits or underscores, with
// internal apostrophes or hyphens ("l'homme", "peut-être").
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['’\-][\p{L}\p{N}_]+)*`)

// Segmenter splits text into sentences and tokens using a Resources handle
type Segmenter struct {
	res *Resources
}

// NewSegmenter creates a segmenter bound to res
func NewSegmenter(res *Resources) *Segmenter {
	return &Segmenter{res: res}
}

// IsStopword reports whether token is a French or English stopword
func (s *Segmenter) IsStopword(token string) bool {
	return s.res.IsStopword(token)
}

// Sentences splits text on terminal punctuation followed by whitespace and on
// blank lines. Sentences are trimmed, non-empty and in original order.
func (s *Segmenter) Sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	flush := func(end int) {
		if sentence := strings.TrimSpace(string(runes[start:end])); sentence != "" {
			out = append(out, sentence)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case isTerminator(r):
			// Swallow runs like "?!" or "..." and closing quotes/brackets
			j := i + 1
			for j < len(runes) && (isTerminator(runes[j]) || isCloser(runes[j])) {
				j++
			}
			if j < len(runes) && !unicode.IsSpace(runes[j]) {
				i = j - 1
				continue
			}
			if r == '.' && j == i+1 && s.res.isAbbreviation(lastWord(runes[start:i])) {
				continue
			}
			flush(j)
			i = j - 1

		case r == '\n':
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && runes[j] == '\n' {
				flush(i)
				i = j - 1
			}
		}
	}
	flush(len(runes))

	return out
}

// Tokens returns lower-cased word tokens; punctuation-only tokens are dropped
func (s *Segmenter) Tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’':
		return true
	}
	return false
}

// lastWord returns the lower-cased word ending at the end of runes
func lastWord(runes []rune) string {
	end := len(runes)
	begin := end
	for begin > 0 {
		r := runes[begin-1]
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		begin--
	}
	return strings.ToLower(string(runes[begin:end]))
}
