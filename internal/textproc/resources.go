// Package textproc splits raw text into sentences and normalized word tokens.
//
// Language data (stopwords for French and English, sentence-boundary
// abbreviations) lives in a Resources handle. The process-wide handle is
// parsed once on first use by LoadResources and is read-only afterwards, so it
// is safe to share between concurrent requests.
package textproc

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed data/*.txt
var embedded embed.FS

// ErrResourcesUnavailable is returned when language data cannot be loaded
var ErrResourcesUnavailable = errors.New("language resources unavailable")

const (
	englishFile       = "stopwords_en.txt"
	frenchFile        = "stopwords_fr.txt"
	abbreviationsFile = "abbreviations.txt"
)

// Resources holds the language data used by the Segmenter
type Resources struct {
	stopwords     map[string]struct{} // French and English together
	abbreviations map[string]struct{}
}

// Loader returns a Resources handle, loading it if needed
type Loader func() (*Resources, error)

var (
	defaultOnce sync.Once
	defaultRes  *Resources
	defaultErr  error
)

// LoadResources returns the process-wide resources, parsing the embedded data
// exactly once. A failure is cached too: every later call reports it.
func LoadResources() (*Resources, error) {
	defaultOnce.Do(func() {
		defaultRes, defaultErr = ParseResources(embedded, "data")
	})
	return defaultRes, defaultErr
}

// ParseResources reads stopword and abbreviation lists from dir in fsys
func ParseResources(fsys fs.FS, dir string) (*Resources, error) {
	english, err := readWordList(fsys, path.Join(dir, englishFile))
	if err != nil {
		return nil, err
	}
	french, err := readWordList(fsys, path.Join(dir, frenchFile))
	if err != nil {
		return nil, err
	}
	abbreviations, err := readWordList(fsys, path.Join(dir, abbreviationsFile))
	if err != nil {
		return nil, err
	}

	union := make(map[string]struct{}, len(english)+len(french))
	for w := range english {
		union[w] = struct{}{}
	}
	for w := range french {
		union[w] = struct{}{}
	}

	return &Resources{
		stopwords:     union,
		abbreviations: abbreviations,
	}, nil
}

// IsStopword reports whether token is a French or English stopword
func (r *Resources) IsStopword(token string) bool {
	_, ok := r.stopwords[token]
	return ok
}

func (r *Resources) isAbbreviation(word string) bool {
	_, ok := r.abbreviations[word]
	return ok
}

// readWordList parses whitespace-separated words; lines starting with # are comments
func readWordList(fsys fs.FS, name string) (map[string]struct{}, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrResourcesUnavailable, name, err)
	}
	defer func() { _ = f.Close() }()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			words[strings.ToLower(w)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrResourcesUnavailable, name, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrResourcesUnavailable, name)
	}
	return words, nil
}
