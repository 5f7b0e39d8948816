package lemmatizer

import (
	"context"
	"strings"
)

// Model tokenizes and annotates text. Implementations must be safe for
// concurrent use: Process may not mutate shared state.
type Model interface {
	// Name returns the model identifier.
	Name() string
	// Process tokenizes text and annotates every token.
	Process(ctx context.Context, text string) (Doc, error)
}

// Meta describes a model package. It is read from meta.yaml.
type Meta struct {
	Name        string `yaml:"name"`
	Lang        string `yaml:"lang"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	// LegacyPronounLemma makes the model emit PronounSentinel as the
	// lemma of every pronoun, like older English models did.
	LegacyPronounLemma bool `yaml:"legacy_pronoun_lemma"`
}

// Analysis is a lemma with its part-of-speech annotation.
type Analysis struct {
	Lemma string
	POS   string
	Tag   string
	Morph string
}

// Rule is an inflectional suffix rule: a form ending in Suffix may have
// the base form obtained by replacing Suffix with Replacement.
type Rule struct {
	Suffix      string
	Replacement string
	POS         string
	Tag         string
	Morph       string
	// OOV allows the rule to apply to words missing from the index.
	OOV bool
}

// candidates returns the possible base forms of lower under r, most
// likely first. It returns nil when r does not apply.
func (r Rule) candidates(lower string) []string {
	if !strings.HasSuffix(lower, r.Suffix) {
		return nil
	}
	stem := lower[:len(lower)-len(r.Suffix)]
	if len(stem) < 2 {
		return nil
	}
	if r.Replacement != "" {
		return []string{stem + r.Replacement}
	}
	if doubled(stem) {
		return []string{stem[:len(stem)-1], stem, stem + "e"}
	}
	return []string{stem + "e", stem}
}

// guess returns the base form of lower under r when no candidate is
// indexed: the bare stem, un-doubled if needed.
func (r Rule) guess(lower string) string {
	stem := lower[:len(lower)-len(r.Suffix)]
	if r.Replacement == "" && doubled(stem) {
		return stem[:len(stem)-1]
	}
	return stem + r.Replacement
}

// doubled reports whether s ends in a doubled consonant, as in "runn".
func doubled(s string) bool {
	n := len(s)
	if n < 3 {
		return false
	}
	c := s[n-1]
	if c != s[n-2] || c < 'a' || c > 'z' {
		return false
	}
	return !strings.ContainsRune("aeiouylsfz", rune(c))
}

// RuleModel is an English model driven by a lexicon of closed-class and
// irregular forms, a list of suffix rules and an index of known base
// forms. It is immutable after loading.
type RuleModel struct {
	meta Meta

	// lexicon maps a lowercased form to its analyses, most frequent first.
	lexicon map[string][]Analysis

	// rules are sorted by decreasing suffix length.
	rules []Rule

	// index maps a base form to the set of its coarse POS values.
	index map[string]map[string]struct{}
}

// Name returns the model name from meta.yaml.
func (m *RuleModel) Name() string {
	return m.meta.Name
}

// Meta returns the package metadata.
func (m *RuleModel) Meta() Meta {
	return m.meta
}

// Process implements Model.
func (m *RuleModel) Process(ctx context.Context, text string) (Doc, error) {
	if err := ctx.Err(); err != nil {
		return Doc{}, err
	}
	raw := tokenize(text)
	toks := make([]Token, len(raw))
	prev := ""
	sentStart := true
	for i, r := range raw {
		toks[i] = m.annotate(r, prev, sentStart)
		if r.space {
			continue
		}
		prev = toks[i].POS
		sentStart = isSentenceEnd(r.text)
	}
	return Doc{Tokens: toks}, nil
}

// known reports whether form is an indexed base form with the given POS.
func (m *RuleModel) known(form, pos string) bool {
	set, ok := m.index[form]
	if !ok {
		return false
	}
	_, ok = set[pos]
	return ok
}
