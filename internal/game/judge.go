// internal/game/judge.go
//
// Word judge for a single guess.
// Responsibilities:
//   - Decide whether a submitted word contains the current kanji prompt.
//   - Decide whether the submitted word is in the dictionary.
//   - Map the two checks onto the four outcome messages the client displays.
//
// The judge is pure: it never mutates state. Scoring and prompt rotation on a
// correct guess are the caller's job.

package game

import "strings"

// Dictionary is the read-only membership check the judge consults.
// *corpus.Corpus satisfies it.
type Dictionary interface {
	ContainsWord(word string) bool
}

// Outcome messages. The client matches on these strings, so they are fixed.
const (
	MsgGoodGuess    = "Good guess!"
	MsgNotAWord     = "Bad Guess: Correct kanji, but not a valid word."
	MsgWrongKanji   = "Bad Guess: Valid word, but does not contain the correct kanji."
	MsgNothingRight = "Bad guess: Incorrect kanji and not a valid word."
)

// Verdict is the result of judging one guess.
type Verdict struct {
	GoodKanji bool // trimmed word contains the trimmed kanji
	GoodWord  bool // trimmed word is in the dictionary
}

// Judge evaluates word against the kanji prompt and the dictionary.
// Both inputs are whitespace-trimmed; matching is exact and case-sensitive
// with no Unicode normalization.
func Judge(word, kanji string, dict Dictionary) Verdict {
	w := strings.TrimSpace(word)
	k := strings.TrimSpace(kanji)
	return Verdict{
		GoodKanji: strings.Contains(w, k),
		GoodWord:  dict.ContainsWord(w),
	}
}

// Correct reports whether the guess earns a point and a fresh prompt.
func (v Verdict) Correct() bool { return v.GoodKanji && v.GoodWord }

// Message returns the client-facing outcome string.
func (v Verdict) Message() string {
	switch {
	case v.GoodKanji && v.GoodWord:
		return MsgGoodGuess
	case v.GoodKanji:
		return MsgNotAWord
	case v.GoodWord:
		return MsgWrongKanji
	default:
		return MsgNothingRight
	}
}
