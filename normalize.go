package lemmatizer

import "strings"

// PronounSentinel is the placeholder lemma that legacy English models
// emit for pronouns instead of a real base form.
const PronounSentinel = "-PRON-"

// DisplayLemma returns the lemma reported for t. A sentinel pronoun lemma
// (compared case-insensitively) is replaced by the token's lowercased
// surface form; any other lemma is returned with its casing intact.
func DisplayLemma(t Token) string {
	if strings.EqualFold(t.Lemma, PronounSentinel) {
		return lower(t)
	}
	return t.Lemma
}

// Fragment returns the piece of reconstructed text emitted for t.
// Alphabetic tokens become their lowercased display lemma; everything
// else (numbers, punctuation, symbols, whitespace) is passed through
// verbatim. Both keep the original trailing whitespace.
func Fragment(t Token) string {
	if !t.IsAlpha {
		return t.TextWithWS()
	}
	return strings.ToLower(DisplayLemma(t)) + t.Whitespace
}

func lower(t Token) string {
	if t.Lower != "" {
		return t.Lower
	}
	return strings.ToLower(t.Text)
}
