// internal/corpus/corpus.go
//
// Word-dictionary and kanji-list loading for the game.
//
// Responsibilities:
//   - Load the word dictionary and kanji prompt list from CSV files, or fall
//     back to embedded small defaults when no files are configured.
//   - Build the lookup set used by the word judge and the prompt slice shared
//     by every lobby session.
//
// CSV format (matches the original data files):
//   - One value per row, first column only, header row skipped.
//   - kanji_words.csv  -> dictionary of valid words.
//   - N5_kanji.csv     -> kanji characters used as prompts.
//
// The corpus is loaded exactly once at process start and shared by reference
// across all lobbies; it is immutable after Load returns.

package corpus

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// --- embedded tiny defaults (ensures server runs even if no files configured) ---

//go:embed default_words.csv
var embeddedWords string

//go:embed default_kanji.csv
var embeddedKanji string

// Corpus holds the immutable word dictionary and kanji prompt list.
type Corpus struct {
	words map[string]struct{} // dictionary of valid words
	kanji []string            // prompt candidates, order irrelevant
}

// Load reads the corpus from the given CSV paths. Either path may be empty,
// in which case the embedded default for that list is used instead.
// Returns an error if either list ends up empty.
func Load(wordsPath, kanjiPath string) (*Corpus, error) {
	words, err := loadColumn(wordsPath, embeddedWords)
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	kanji, err := loadColumn(kanjiPath, embeddedKanji)
	if err != nil {
		return nil, fmt.Errorf("load kanji list: %w", err)
	}
	if len(words) == 0 {
		return nil, errors.New("corpus: word list is empty")
	}
	if len(kanji) == 0 {
		return nil, errors.New("corpus: kanji list is empty")
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return &Corpus{words: set, kanji: kanji}, nil
}

// loadColumn reads the first CSV column from path, or from the embedded
// fallback when path is empty.
func loadColumn(path, fallback string) ([]string, error) {
	if path == "" {
		return readColumn(strings.NewReader(fallback))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readColumn(f)
}

// readColumn parses one value per row from the first column, skipping the
// header row and blank entries.
func readColumn(r io.Reader) ([]string, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1 // tolerate ragged rows, we only use column 0

	var out []string
	first := true
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false // header row
			continue
		}
		if len(rec) == 0 {
			continue
		}
		v := strings.TrimSpace(rec[0])
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// ContainsWord reports whether w is in the dictionary. Exact match, no
// normalization beyond what the caller has already done.
func (c *Corpus) ContainsWord(w string) bool {
	_, ok := c.words[w]
	return ok
}

// Kanji returns the shared prompt list. Callers must not mutate it.
func (c *Corpus) Kanji() []string { return c.kanji }

// Stats returns counts of loaded entries: (words, kanji).
func (c *Corpus) Stats() (wordCount int, kanjiCount int) {
	return len(c.words), len(c.kanji)
}
