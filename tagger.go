package lemmatizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctTags maps punctuation tokens to their Penn Treebank tag.
var punctTags = map[string]string{
	".": ".", "!": ".", "?": ".", "...": ":", "…": ":",
	",": ",", ":": ":", ";": ":", "--": ":", "—": ":", "–": ":",
	"-": "HYPH",
	"(": "-LRB-", "[": "-LRB-", "{": "-LRB-",
	")": "-RRB-", "]": "-RRB-", "}": "-RRB-",
	"“": "``", "‘": "``", "«": "``",
	"”": "''", "’": "''", "»": "''", "\"": "''", "'": "''",
	"#": "NFP", "%": "NN", "&": "CC",
}

// annotate assigns lemma and part-of-speech to one token. prev is the
// coarse POS of the previous non-space token.
func (m *RuleModel) annotate(r rawToken, prev string, sentStart bool) Token {
	t := Token{
		Text:       r.text,
		Lower:      strings.ToLower(r.text),
		Whitespace: r.ws,
	}
	if r.space {
		t.Lemma, t.POS, t.Tag = r.text, POSSpace, "_SP"
		return t
	}
	t.IsAlpha = isAlpha(r.text)

	if as, ok := m.lexicon[t.Lower]; ok {
		a := choose(as, prev)
		m.apply(&t, a)
		return t
	}

	switch {
	case t.IsAlpha:
		m.apply(&t, m.inflect(t, prev, sentStart))
	case isNumber(r.text):
		t.Lemma, t.POS, t.Tag, t.Morph = r.text, POSNumeral, "CD", "NumType=Card"
	case isPunct(r.text):
		tag, ok := punctTags[r.text]
		if !ok {
			tag = "NFP"
		}
		t.Lemma, t.POS, t.Tag = r.text, POSPunct, tag
	case isSymbol(r.text):
		tag := "SYM"
		if strings.ContainsAny(r.text, "$£€¥") {
			tag = "$"
		}
		t.Lemma, t.POS, t.Tag = r.text, POSSymbol, tag
	default:
		t.Lemma, t.POS, t.Tag = r.text, POSOther, "XX"
	}
	return t
}

func (m *RuleModel) apply(t *Token, a Analysis) {
	t.Lemma, t.POS, t.Tag, t.Morph = a.Lemma, a.POS, a.Tag, a.Morph
	if m.meta.LegacyPronounLemma && a.POS == POSPronoun {
		t.Lemma = PronounSentinel
	}
}

// inflect analyses an alphabetic word missing from the lexicon using the
// suffix rules, falling back to an uninflected noun.
func (m *RuleModel) inflect(t Token, prev string, sentStart bool) Analysis {
	var found, oov []Analysis
	for _, r := range m.rules {
		cands := r.candidates(t.Lower)
		if len(cands) == 0 {
			continue
		}
		a := Analysis{POS: r.POS, Tag: r.Tag, Morph: r.Morph}
		for _, c := range cands {
			if m.known(c, r.POS) {
				a.Lemma = c
				found = append(found, a)
				break
			}
		}
		if a.Lemma == "" && r.OOV && !m.known(t.Lower, r.POS) {
			a.Lemma = r.guess(t.Lower)
			oov = append(oov, a)
		}
	}
	if len(found) > 0 {
		return choose(found, prev)
	}
	if m.isBase(t.Lower) {
		return m.base(t.Lower, prev)
	}
	if startsUpper(t.Text) && !sentStart {
		return Analysis{Lemma: t.Text, POS: POSProperNoun, Tag: "NNP", Morph: "Number=Sing"}
	}
	if len(oov) > 0 {
		return choose(oov, prev)
	}
	if startsUpper(t.Text) {
		return Analysis{Lemma: t.Text, POS: POSProperNoun, Tag: "NNP", Morph: "Number=Sing"}
	}
	return Analysis{Lemma: t.Lower, POS: POSNoun, Tag: "NN", Morph: "Number=Sing"}
}

func (m *RuleModel) isBase(form string) bool {
	_, ok := m.index[form]
	return ok
}

// base analyses an indexed base form that carries no inflection.
func (m *RuleModel) base(form, prev string) Analysis {
	var as []Analysis
	for _, pos := range []string{POSNoun, POSVerb, POSAdjective, POSAdverb} {
		if !m.known(form, pos) {
			continue
		}
		a := Analysis{Lemma: form, POS: pos}
		switch pos {
		case POSNoun:
			a.Tag, a.Morph = "NN", "Number=Sing"
		case POSVerb:
			a.Tag, a.Morph = "VBP", "Tense=Pres|VerbForm=Fin"
			if prev == POSAuxiliary || prev == POSParticle {
				a.Tag, a.Morph = "VB", "VerbForm=Inf"
			}
		case POSAdjective:
			a.Tag, a.Morph = "JJ", "Degree=Pos"
		case POSAdverb:
			a.Tag = "RB"
		}
		as = append(as, a)
	}
	return choose(as, prev)
}

// choose picks the analysis that best fits the previous token's POS.
// Without a contextual preference the first analysis wins.
func choose(as []Analysis, prev string) Analysis {
	if len(as) == 1 {
		return as[0]
	}
	want := func(a Analysis) bool { return false }
	switch prev {
	case POSAuxiliary:
		want = func(a Analysis) bool {
			return a.Tag == "VBN" || a.Tag == "VBG" || a.Tag == "VB" || a.POS == POSAdjective
		}
	case POSDeterminer, POSAdjective, POSAdposition, POSNumeral:
		want = func(a Analysis) bool { return a.POS == POSNoun || a.POS == POSAdjective }
	case POSPronoun, POSProperNoun, POSNoun:
		want = func(a Analysis) bool { return a.POS == POSVerb || a.POS == POSAuxiliary }
	case POSParticle:
		want = func(a Analysis) bool { return a.POS == POSVerb }
	}
	for _, a := range as {
		if want(a) {
			return a
		}
	}
	return as[0]
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isNumber accepts digits with interior separators, e.g. "3", "1,000", "2.5".
func isNumber(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case (r == '.' || r == ',') && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return digits > 0
}

func isPunct(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return s != ""
}

func isSymbol(s string) bool {
	for _, r := range s {
		if !unicode.IsSymbol(r) && !unicode.IsPunct(r) {
			return false
		}
	}
	return s != ""
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
